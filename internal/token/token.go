// Package token issues and verifies the signed bearer credentials used by
// shoppers and admins.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"basket/internal/domain"
)

type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

type Claims struct {
	Kind        Kind        `json:"kind"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role,omitempty"`
	Permissions []string    `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) sign(subject string, c Claims) (string, error) {
	now := i.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.Secret)
}

func (i *Issuer) IssueUser(userID, email string) (string, error) {
	return i.sign(userID, Claims{Kind: KindUser, Email: email})
}

func (i *Issuer) IssueAdmin(a *domain.Admin) (string, error) {
	return i.sign(a.ID, Claims{
		Kind:        KindAdmin,
		Email:       a.Email,
		Role:        a.Role,
		Permissions: a.Permissions.Strings(),
	})
}

// Parse verifies signature and expiry. Expired tokens wrap domain.ErrForbidden
// like any other invalid token.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, domain.Unauthorized("Access token required")
	}
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return i.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.Forbidden("Token expired")
		}
		return nil, domain.Forbidden("Invalid token")
	}
	return &c, nil
}
