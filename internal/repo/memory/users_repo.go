package memory

import (
	"context"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/user"
)

type UsersRepo struct {
	db *DB
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[u.Email]; ok {
		return user.ErrEmailTaken
	}
	r.db.users[u.Email] = cloneUser(u)
	return nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, email, firstName, lastName, newEmail string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[email]
	if !ok {
		return user.ErrNotFound
	}
	if newEmail != email {
		if _, taken := r.db.users[newEmail]; taken {
			return user.ErrEmailTaken
		}
		delete(r.db.users, email)
	}

	u.FirstName = firstName
	u.LastName = lastName
	u.Email = newEmail
	u.UpdatedAt = time.Now().UTC()
	r.db.users[newEmail] = u
	return nil
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	return r.mutate(email, func(u *user.User) { u.PasswordHash = hash })
}

func (r *UsersRepo) AddSpot(ctx context.Context, email, spotID string) error {
	return r.mutate(email, func(u *user.User) { u.AddedSpots.Add(spotID) })
}

func (r *UsersRepo) RemoveSpot(ctx context.Context, email, spotID string) error {
	return r.mutate(email, func(u *user.User) { u.AddedSpots.Remove(spotID) })
}

func (r *UsersRepo) AddFavorite(ctx context.Context, email, spotID string) error {
	return r.mutate(email, func(u *user.User) { u.Favorites.Add(spotID) })
}

func (r *UsersRepo) RemoveFavorite(ctx context.Context, email, spotID string) error {
	return r.mutate(email, func(u *user.User) { u.Favorites.Remove(spotID) })
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]user.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *UsersRepo) mutate(email string, fn func(u *user.User)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.mutateUserLocked(email, fn)
}

func (db *DB) mutateUserLocked(email string, fn func(u *user.User)) error {
	u, ok := db.users[email]
	if !ok {
		return user.ErrNotFound
	}
	u = cloneUser(u)
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	db.users[email] = u
	return nil
}
