package memory

import (
	"sync"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
)

// DB is an in-process stand-in for the document store. The mutex gives every
// method the single-document atomicity the real stores provide.
type DB struct {
	mu    sync.RWMutex
	users map[string]user.User // keyed by email
	spots map[string]spot.WorkoutSpot
	order []string // spot insertion order
}

func NewDB() *DB {
	return &DB{
		users: make(map[string]user.User),
		spots: make(map[string]spot.WorkoutSpot),
	}
}

func (db *DB) Users() *UsersRepo { return &UsersRepo{db: db} }
func (db *DB) Spots() *SpotsRepo { return &SpotsRepo{db: db} }

func cloneUser(u user.User) user.User {
	u.AddedSpots = u.AddedSpots.Clone()
	u.Favorites = u.Favorites.Clone()
	return u
}
