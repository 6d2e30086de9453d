package authn

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
	authsvc "github.com/alanyang/iobos/internal/service/auth"
	"github.com/alanyang/iobos/internal/transport/respond"
)

// Verifier answers whether a bearer credential is valid. *auth.Gate implements it.
type Verifier interface {
	Verify(token string) (domainauth.Claims, error)
}

const claimsKey = "iobos.claims"

type claimsCtxKey struct{}

// WithClaims attaches verified claims to ctx.
func WithClaims(ctx context.Context, claims domainauth.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext returns the claims attached by WithClaims.
func ClaimsFromContext(ctx context.Context) (domainauth.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(domainauth.Claims)
	return claims, ok
}

// Authenticate verifies the Authorization bearer credential and stores the
// claims on both the gin context and the request context. It does not check
// roles. Only an absent or blank header counts as a missing credential; any
// other header that is not "Bearer <token>" is an invalid one.
func Authenticate(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := authsvc.BearerToken(header)
		if token == "" && strings.TrimSpace(header) != "" {
			respond.Error(c, fmt.Errorf("%w: authorization header is not a bearer token", domainauth.ErrInvalidCredential))
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// Claims returns the claims stored by Authenticate. Handlers mounted behind
// Authenticate can rely on ok being true.
func Claims(c *gin.Context) (domainauth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return domainauth.Claims{}, false
	}
	claims, ok := v.(domainauth.Claims)
	return claims, ok
}
