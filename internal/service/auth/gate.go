package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
)

const DefaultTokenTTL = 24 * time.Hour

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Gate issues and verifies bearer credentials signed with one process-wide
// secret. Verification is stateless: rotating the secret invalidates every
// previously issued token. Role sufficiency is left to callers.
type Gate struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type GateOption func(*Gate)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

func NewGate(secret string, ttl time.Duration, opts ...GateOption) (*Gate, error) {
	if secret == "" {
		return nil, errors.New("auth gate: empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	g := &Gate{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Issue signs a credential for subject carrying role.
func (g *Gate) Issue(subject string, role domainauth.Role) (string, error) {
	if _, ok := domainauth.ParseRole(string(role)); !ok {
		return "", fmt.Errorf("issue token: unknown role %q", role)
	}
	now := g.now()
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify answers whether token is well-formed, correctly signed and unexpired.
func (g *Gate) Verify(token string) (domainauth.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return domainauth.Claims{}, domainauth.ErrMissingCredential
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return domainauth.Claims{}, fmt.Errorf("%w: %w", domainauth.ErrInvalidCredential, err)
	}

	role, ok := domainauth.ParseRole(claims.Role)
	if !ok {
		return domainauth.Claims{}, fmt.Errorf("%w: unknown role %q", domainauth.ErrInvalidCredential, claims.Role)
	}

	out := domainauth.Claims{Subject: claims.Subject, Role: role}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// BearerToken extracts the credential from an Authorization header value.
// Anything other than "Bearer <token>" yields an empty string.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
