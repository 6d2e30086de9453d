package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"regexp"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
)

var invitationCodePattern = regexp.MustCompile(`^[A-Z0-9]{8,12}$`)

// Credentials are the single configured account, sourced from the environment.
type Credentials struct {
	Email          string
	Password       string
	InvitationCode string
	Role           domainauth.Role
}

// ValidInvitationCode reports whether code has the required shape: 8 to 12
// uppercase letters or digits.
func ValidInvitationCode(code string) bool {
	return invitationCodePattern.MatchString(code)
}

func (c Credentials) configured() bool {
	return c.Email != "" && c.Password != "" && c.InvitationCode != ""
}

// LoginService checks a login request against the configured account and
// issues a bearer credential through the Gate.
type LoginService struct {
	creds Credentials
	gate  *Gate
}

func NewLoginService(creds Credentials, gate *Gate) *LoginService {
	if creds.Role == "" {
		creds.Role = domainauth.RoleUser
	}
	return &LoginService{creds: creds, gate: gate}
}

// Login validates presence, then invitation-code shape, then the credential
// values. The shape check runs before any comparison with configured values.
func (s *LoginService) Login(ctx context.Context, req domainauth.LoginRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", &domainauth.ValidationError{Message: "Email and password are required"}
	}
	if req.InvitationCode == "" {
		return "", &domainauth.ValidationError{Message: "Invitation code is required"}
	}
	if !ValidInvitationCode(req.InvitationCode) {
		return "", &domainauth.ValidationError{Message: "Invalid invitation code format"}
	}
	if !s.creds.configured() {
		slog.ErrorContext(ctx, "login attempted but credentials are not configured")
		return "", domainauth.ErrNotConfigured
	}

	match := equal(req.Email, s.creds.Email) &
		equal(req.Password, s.creds.Password) &
		equal(req.InvitationCode, s.creds.InvitationCode)
	if match != 1 {
		slog.InfoContext(ctx, "login rejected", "email", req.Email)
		return "", domainauth.ErrUnauthorized
	}

	token, err := s.gate.Issue(req.Email, s.creds.Role)
	if err != nil {
		return "", fmt.Errorf("issue login token: %w", err)
	}
	slog.InfoContext(ctx, "login succeeded", "email", req.Email, "role", s.creds.Role)
	return token, nil
}

func equal(a, b string) int {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b))
}
