package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
)

// Spots is the spot registry. Anyone authenticated can read every spot,
// only the owner can change or remove one.
type Spots struct {
	store SpotStore
	cache ListCache
}

// NewSpots wires the registry. cache may be nil.
func NewSpots(store SpotStore, cache ListCache) *Spots {
	return &Spots{store: store, cache: cache}
}

func (s *Spots) List(ctx context.Context) ([]spot.WorkoutSpot, error) {
	var (
		gen       int64
		cacheable bool
	)

	if s.cache != nil {
		if cached, ok := s.cache.GetSpots(ctx); ok {
			return cached, nil
		}
		// taken before the store read so a concurrent write voids this fill
		gen, cacheable = s.cache.SpotsGeneration(ctx)
	}

	spots, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list spots: %w", err)
	}
	spots = nonNil(spots)

	if cacheable {
		s.cache.SetSpots(ctx, gen, spots)
	}

	return spots, nil
}

func (s *Spots) ListMine(ctx context.Context, u user.User) ([]spot.WorkoutSpot, error) {
	spots, err := s.store.ListByOwner(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("list spots by owner: %w", err)
	}
	return nonNil(spots), nil
}

// GetByIDs drops malformed and unknown ids instead of failing on them.
func (s *Spots) GetByIDs(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error) {
	valid := user.NewIDSet()
	for _, id := range ids {
		if spot.ValidID(id) {
			valid.Add(id)
		}
	}

	if valid.Len() == 0 {
		return []spot.WorkoutSpot{}, nil
	}

	spots, err := s.store.GetByIDs(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("get spots by ids: %w", err)
	}
	return nonNil(spots), nil
}

func (s *Spots) Create(ctx context.Context, u user.User, req spot.CreateSpotRequest) (spot.WorkoutSpot, error) {
	created := spot.NewFromCreateRequest(req, u.Email)

	if err := s.store.Create(ctx, created); err != nil {
		return spot.WorkoutSpot{}, fmt.Errorf("create spot: %w", err)
	}

	s.invalidate(ctx)

	return created, nil
}

func (s *Spots) Update(ctx context.Context, u user.User, id string, patch spot.UpdateSpotRequest) error {
	if _, err := s.owned(ctx, u, id); err != nil {
		return err
	}

	if patch.Empty() {
		return nil
	}

	err := s.store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, spot.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update spot: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

func (s *Spots) Delete(ctx context.Context, u user.User, id string) error {
	existing, err := s.owned(ctx, u, id)
	if err != nil {
		return err
	}

	err = s.store.Delete(ctx, id, existing.OwnerEmail)
	if err != nil {
		if errors.Is(err, spot.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete spot: %w", err)
	}

	s.invalidate(ctx)

	return nil
}

// owned checks, in order: id shape, existence, ownership.
func (s *Spots) owned(ctx context.Context, u user.User, id string) (spot.WorkoutSpot, error) {
	if !spot.ValidID(id) {
		return spot.WorkoutSpot{}, ErrInvalidID
	}

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, spot.ErrNotFound) {
			return spot.WorkoutSpot{}, ErrNotFound
		}
		return spot.WorkoutSpot{}, fmt.Errorf("get spot: %w", err)
	}

	if existing.OwnerEmail != u.Email {
		return spot.WorkoutSpot{}, ErrForbidden
	}

	return existing, nil
}

func (s *Spots) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateSpots(ctx)
	}
}

func nonNil(spots []spot.WorkoutSpot) []spot.WorkoutSpot {
	if spots == nil {
		return []spot.WorkoutSpot{}
	}
	return spots
}
