package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/healthmate/internal/config"
	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/security"
	"github.com/geocoder89/healthmate/internal/service"
)

const defaultCloseTimeout = 5 * time.Second

// EnsureSeedUser creates the configured development user if it is missing.
func EnsureSeedUser(ctx context.Context, users service.UserStore, cfg config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return nil
	}

	// check if the user exists
	_, err := users.GetByEmail(ctx, cfg.SeedEmail)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	err = users.Create(ctx, user.User{
		Email:        cfg.SeedEmail,
		PasswordHash: hash,
		AddedSpots:   user.IDSet{},
		Favorites:    user.IDSet{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}

	return err
}
