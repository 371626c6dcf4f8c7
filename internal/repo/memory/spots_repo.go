package memory

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
)

type SpotsRepo struct {
	db *DB
}

// Create stores the spot and indexes it under its owner. The owner index is
// best effort: a missing owner leaves the spot in place, as the document
// stores would.
func (r *SpotsRepo) Create(ctx context.Context, s spot.WorkoutSpot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.spots[s.ID] = s
	r.db.order = append(r.db.order, s.ID)

	err := r.db.mutateUserLocked(s.OwnerEmail, func(u *user.User) { u.AddedSpots.Add(s.ID) })
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return err
	}
	return nil
}

func (r *SpotsRepo) List(ctx context.Context) ([]spot.WorkoutSpot, error) {
	return r.filter(func(spot.WorkoutSpot) bool { return true }), nil
}

func (r *SpotsRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]spot.WorkoutSpot, error) {
	return r.filter(func(s spot.WorkoutSpot) bool { return s.OwnerEmail == ownerEmail }), nil
}

func (r *SpotsRepo) GetByID(ctx context.Context, id string) (spot.WorkoutSpot, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.spots[id]
	if !ok {
		return spot.WorkoutSpot{}, spot.ErrNotFound
	}
	return s, nil
}

func (r *SpotsRepo) GetByIDs(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	return r.filter(func(s spot.WorkoutSpot) bool {
		_, ok := want[s.ID]
		return ok
	}), nil
}

func (r *SpotsRepo) Update(ctx context.Context, id string, patch spot.UpdateSpotRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.spots[id]
	if !ok {
		return spot.ErrNotFound
	}

	s = patch.Apply(s)
	s.UpdatedAt = time.Now().UTC()
	r.db.spots[id] = s
	return nil
}

func (r *SpotsRepo) Delete(ctx context.Context, id, ownerEmail string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.spots[id]; !ok {
		return spot.ErrNotFound
	}

	delete(r.db.spots, id)
	for i, v := range r.db.order {
		if v == id {
			r.db.order = append(r.db.order[:i:i], r.db.order[i+1:]...)
			break
		}
	}

	err := r.db.mutateUserLocked(ownerEmail, func(u *user.User) { u.AddedSpots.Remove(id) })
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return err
	}
	return nil
}

func (r *SpotsRepo) filter(keep func(spot.WorkoutSpot) bool) []spot.WorkoutSpot {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]spot.WorkoutSpot, 0)
	for _, id := range r.db.order {
		s := r.db.spots[id]
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
