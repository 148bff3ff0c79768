// Package auth carries request identity through context and provides the
// HTTP middleware that establishes it. Token issuance and verification
// against the platform's identity provider happen upstream; this package
// only consumes the result.
package auth

import (
	"context"
	"errors"
)

// UserClaims holds the authenticated user's identity for a request.
type UserClaims struct {
	UID   string
	Email string
}

type contextKey string

const userClaimsKey contextKey = "userClaims"

// ErrUnauthenticated is returned when no identity is present on the context.
var ErrUnauthenticated = errors.New("user not authenticated")

// WithUserClaims returns a context carrying the given claims.
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// GetUserClaims extracts user claims from the context.
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// RequireAuth extracts user claims from the context or returns
// ErrUnauthenticated.
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok || claims.UID == "" {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
