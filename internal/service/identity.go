package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/healthmate/internal/domain/user"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Identity turns a bearer token into the stored user it was issued for.
type Identity struct {
	users  UserReader
	tokens TokenVerifier
}

func NewIdentity(users UserReader, tokens TokenVerifier) *Identity {
	return &Identity{users: users, tokens: tokens}
}

// Resolve accepts the raw Authorization header value.
func (i *Identity) Resolve(ctx context.Context, authHeader string) (user.User, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return user.User{}, ErrUnauthorized
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if raw == "" {
		return user.User{}, ErrUnauthorized
	}

	return i.ResolveToken(ctx, raw)
}

func (i *Identity) ResolveToken(ctx context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrUnauthorized
	}

	claims, err := i.tokens.Verify(token)
	if err != nil || claims.Email == "" {
		return user.User{}, ErrUnauthorized
	}

	u, err := i.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, fmt.Errorf("resolve identity: %w", err)
	}

	return u, nil
}
