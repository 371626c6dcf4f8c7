package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
)

// Favorites keeps a per-user bookmark set of spots. Favoriting does not
// require ownership.
type Favorites struct {
	users UserStore
	spots SpotStore
}

func NewFavorites(users UserStore, spots SpotStore) *Favorites {
	return &Favorites{users: users, spots: spots}
}

// List skips favorites whose spot has since been deleted.
func (f *Favorites) List(ctx context.Context, u user.User) ([]spot.WorkoutSpot, error) {
	if u.Favorites.Len() == 0 {
		return []spot.WorkoutSpot{}, nil
	}

	spots, err := f.spots.GetByIDs(ctx, u.Favorites)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return nonNil(spots), nil
}

func (f *Favorites) Add(ctx context.Context, u user.User, id string) error {
	if !spot.ValidID(id) {
		return ErrInvalidID
	}

	if _, err := f.spots.GetByID(ctx, id); err != nil {
		if errors.Is(err, spot.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get spot: %w", err)
	}

	if err := f.users.AddFavorite(ctx, u.Email, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("add favorite: %w", err)
	}

	return nil
}

func (f *Favorites) Remove(ctx context.Context, u user.User, id string) error {
	if !spot.ValidID(id) {
		return ErrInvalidID
	}

	if err := f.users.RemoveFavorite(ctx, u.Email, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("remove favorite: %w", err)
	}

	return nil
}
