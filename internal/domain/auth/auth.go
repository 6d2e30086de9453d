package auth

import (
	"errors"
	"time"
)

var (
	ErrMissingCredential = errors.New("no credential provided")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrForbidden         = errors.New("insufficient role")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("invalid credentials")
	ErrNotConfigured     = errors.New("login not configured")
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole accepts only the known roles.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), true
	}
	return "", false
}

// Claims is the verified content of a bearer credential.
type Claims struct {
	Subject   string    `json:"sub"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// LoginRequest is the body accepted by the login endpoint.
type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	InvitationCode string `json:"invitationCode"`
}

// ValidationError is a BadRequest whose message is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrBadRequest }
