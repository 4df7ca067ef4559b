package auth

import (
	"context"

	"github.com/shindakun/campuslogin/internal/models"
)

type contextKey int

const principalKey contextKey = 0

// Principal is the authenticated caller of a request
type Principal struct {
	Account *models.Account
	Token   string
	Owner   TokenOwner
}

// GetPrincipalFromContext retrieves the caller from request context
func GetPrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// SetPrincipalInContext stores the caller in request context
func SetPrincipalInContext(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
