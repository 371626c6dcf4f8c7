package service

import (
	"context"

	"github.com/geocoder89/healthmate/internal/auth"
	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
)

// UserStore is the users collection. Every mutation is a single atomic
// document update; lookups by email return user.ErrNotFound when absent.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	// Create returns user.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u user.User) error
	// UpdateProfile sets first name, last name and email together.
	UpdateProfile(ctx context.Context, email, firstName, lastName, newEmail string) error
	UpdatePasswordHash(ctx context.Context, email, hash string) error
	AddSpot(ctx context.Context, email, spotID string) error
	RemoveSpot(ctx context.Context, email, spotID string) error
	AddFavorite(ctx context.Context, email, spotID string) error
	RemoveFavorite(ctx context.Context, email, spotID string) error
	List(ctx context.Context) ([]user.User, error)
}

// SpotStore is the workout_spots collection.
type SpotStore interface {
	// Create persists s and adds its id to the owner's added_spots.
	Create(ctx context.Context, s spot.WorkoutSpot) error
	List(ctx context.Context) ([]spot.WorkoutSpot, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]spot.WorkoutSpot, error)
	GetByID(ctx context.Context, id string) (spot.WorkoutSpot, error)
	// GetByIDs returns the spots that exist among ids; ids are well formed.
	GetByIDs(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error)
	Update(ctx context.Context, id string, patch spot.UpdateSpotRequest) error
	// Delete removes the spot and pulls its id from the owner's added_spots.
	Delete(ctx context.Context, id, ownerEmail string) error
}

type TokenIssuer interface {
	Issue(email string) (string, error)
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ListCache holds the full spot listing between mutations.
type ListCache interface {
	GetSpots(ctx context.Context) ([]spot.WorkoutSpot, bool)
	// SpotsGeneration changes on every InvalidateSpots. ok is false when the
	// generation cannot be read, in which case the listing is not cached.
	SpotsGeneration(ctx context.Context) (gen int64, ok bool)
	// SetSpots is a no-op unless the generation still equals gen.
	SetSpots(ctx context.Context, gen int64, spots []spot.WorkoutSpot)
	InvalidateSpots(ctx context.Context)
}
