package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"basket/internal/domain"
	"basket/internal/repos"
	"basket/internal/token"
	"basket/internal/validate"
)

// ErrBadCreds is returned for an unknown email and a wrong password alike.
var ErrBadCreds = domain.Invalid("Invalid credentials")

// HashCost is the bcrypt cost for new password hashes.
var HashCost = bcrypt.DefaultCost

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *token.Issuer
}

func NewAuthService(users *repos.UserRepo, tokens *token.Issuer) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type ProfileUpdate struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Address *domain.Address `json:"address"`
}

func hashPassword(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), HashCost)
	return string(h), err
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, domain.Invalid("Name is required")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, domain.Invalid("A valid email is required")
	}
	if !validate.Password(in.Password) {
		return nil, domain.Invalid("Password must be 6 to 72 characters")
	}
	phone, ok := validate.Phone(in.Phone)
	if !ok {
		return nil, domain.Invalid("Invalid phone number")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Name: name, Email: email, Hash: hash, Phone: phone}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the password and returns a signed user token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, ErrBadCreds
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, ErrBadCreds
	}
	tok, err := s.Tokens.IssueUser(u.ID, u.Email)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.Users.ByID(ctx, userID)
}

// UpdateProfile changes name, phone and address; empty fields keep their
// current value.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := applyContact(u, in.Name, "", in.Phone, in.Address); err != nil {
		return nil, err
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// applyContact validates and copies the non-empty fields onto u.
func applyContact(u *domain.User, name, email, phone string, addr *domain.Address) error {
	if name != "" {
		n, ok := validate.Name(name)
		if !ok {
			return domain.Invalid("Invalid name")
		}
		u.Name = n
	}
	if email != "" {
		e, ok := validate.Email(email)
		if !ok {
			return domain.Invalid("A valid email is required")
		}
		u.Email = e
	}
	if phone != "" {
		p, ok := validate.Phone(phone)
		if !ok {
			return domain.Invalid("Invalid phone number")
		}
		u.Phone = p
	}
	if addr != nil {
		if _, ok := validate.Pincode(addr.Pincode); !ok {
			return domain.Invalid("Invalid pincode")
		}
		u.Address = *addr
	}
	return nil
}
