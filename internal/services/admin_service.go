package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"basket/internal/domain"
	"basket/internal/repos"
	"basket/internal/token"
	"basket/internal/validate"
)

var errAdminCreds = domain.Unauthorized("Invalid credentials")

// AdminService manages back office accounts and the admin view of shoppers.
type AdminService struct {
	Admins *repos.AdminRepo
	Users  *repos.UserRepo
	Tokens *token.Issuer
}

func NewAdminService(admins *repos.AdminRepo, users *repos.UserRepo, tokens *token.Issuer) *AdminService {
	return &AdminService{Admins: admins, Users: users, Tokens: tokens}
}

type AdminInput struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// AdminUpdate carries optional changes; zero values leave a field alone.
type AdminUpdate struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Active      *bool    `json:"isActive"`
}

type UserUpdate struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone"`
	Address *domain.Address `json:"address"`
}

func (s *AdminService) newAdmin(in AdminInput, role domain.Role, perms domain.CapabilitySet) (*domain.Admin, error) {
	username, ok := validate.Name(in.Username)
	email, okEmail := validate.Email(in.Email)
	if !ok || !okEmail || in.Password == "" {
		return nil, domain.Invalid("Username, email, and password are required")
	}
	if !validate.Password(in.Password) {
		return nil, domain.Invalid("Password must be 6 to 72 characters")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &domain.Admin{
		Username:    username,
		Email:       email,
		Hash:        hash,
		Role:        role,
		Permissions: perms,
		Active:      true,
	}, nil
}

// Setup creates the first super admin. It fails once any admin exists.
func (s *AdminService) Setup(ctx context.Context, in AdminInput) (*domain.Admin, error) {
	exists := domain.Invalid("Admin already exists. Use /api/admin/register to add more admins.")
	n, err := s.Admins.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, exists
	}
	a, err := s.newAdmin(in, domain.RoleSuperAdmin, domain.RoleSuperAdmin.Capabilities())
	if err != nil {
		return nil, err
	}
	created, err := s.Admins.CreateFirst(ctx, a)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, exists
	}
	return a, nil
}

func (s *AdminService) Login(ctx context.Context, email, password string) (string, *domain.Admin, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, domain.Invalid("Email and password are required")
	}
	a, err := s.Admins.ByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, errAdminCreds
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte(password)) != nil {
		return "", nil, errAdminCreds
	}
	if !a.Active {
		return "", nil, domain.Forbidden("Account is disabled")
	}
	tok, err := s.Tokens.IssueAdmin(a)
	if err != nil {
		return "", nil, err
	}
	return tok, a, nil
}

// Register adds another admin. Role defaults to admin and permissions to
// the baseline product and category set.
func (s *AdminService) Register(ctx context.Context, in AdminInput) (*domain.Admin, error) {
	role := domain.RoleAdmin
	if in.Role != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok {
			return nil, domain.Invalid("Invalid role: %s", in.Role)
		}
		role = r
	}
	perms := domain.DefaultPermissions()
	if in.Permissions != nil {
		perms = domain.CapabilitiesFrom(in.Permissions)
	}
	a, err := s.newAdmin(in, role, perms)
	if err != nil {
		return nil, err
	}
	if err := s.Admins.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AdminService) Update(ctx context.Context, id string, in AdminUpdate) (*domain.Admin, error) {
	a, err := s.Admins.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Username != "" {
		name, ok := validate.Name(in.Username)
		if !ok {
			return nil, domain.Invalid("Invalid username")
		}
		a.Username = name
	}
	if in.Email != "" {
		email, ok := validate.Email(in.Email)
		if !ok {
			return nil, domain.Invalid("A valid email is required")
		}
		a.Email = email
	}
	if in.Role != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok {
			return nil, domain.Invalid("Invalid role: %s", in.Role)
		}
		a.Role = r
	}
	if in.Permissions != nil {
		a.Permissions = domain.CapabilitiesFrom(in.Permissions)
	}
	if in.Active != nil {
		a.Active = *in.Active
	}
	if err := s.Admins.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AdminService) ChangePassword(ctx context.Context, id, newPassword string) error {
	if newPassword == "" {
		return domain.Invalid("New password is required")
	}
	if !validate.Password(newPassword) {
		return domain.Invalid("Password must be 6 to 72 characters")
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Admins.SetPassword(ctx, id, hash)
}

func (s *AdminService) Delete(ctx context.Context, id string) error {
	return s.Admins.Delete(ctx, id)
}

func (s *AdminService) List(ctx context.Context) ([]domain.Admin, error) {
	return s.Admins.List(ctx)
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Users.List(ctx)
}

func (s *AdminService) UpdateUser(ctx context.Context, id string, in UserUpdate) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyContact(u, in.Name, in.Email, in.Phone, in.Address); err != nil {
		return nil, err
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	return s.Users.Delete(ctx, id)
}
