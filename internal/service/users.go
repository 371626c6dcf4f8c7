package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/notifications"
	"github.com/geocoder89/healthmate/internal/security"
)

// Users is the user directory: registration, login and profile management.
type Users struct {
	store    UserStore
	tokens   TokenIssuer
	notifier notifications.Notifier
	log      *slog.Logger
}

// NewUsers wires the directory. notifier may be nil.
func NewUsers(store UserStore, tokens TokenIssuer, notifier notifications.Notifier, log *slog.Logger) *Users {
	if log == nil {
		log = slog.Default()
	}

	return &Users{
		store:    store,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
	}
}

func (s *Users) Register(ctx context.Context, email, password string) error {
	_, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	u := user.User{
		Email:        email,
		PasswordHash: hash,
		AddedSpots:   user.IDSet{},
		Favorites:    user.IDSet{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.sendWelcome(email)

	return nil
}

// sendWelcome runs detached from the request; a failed send never fails registration.
func (s *Users) sendWelcome(email string) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.notifier.SendWelcome(ctx, notifications.WelcomeInput{Email: email})
		if err != nil {
			s.log.Warn("welcome notification failed", "email", email, "err", err)
		}
	}()
}

// Authenticate returns ErrUnauthorized for an unknown email and for a wrong
// password alike.
func (s *Users) Authenticate(ctx context.Context, email, password string) (string, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return "", ErrUnauthorized
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// UpdateProfile does not touch spots already owned under the old email.
func (s *Users) UpdateProfile(ctx context.Context, u user.User, req user.UpdateProfileRequest) error {
	if req.Email != u.Email {
		_, err := s.store.GetByEmail(ctx, req.Email)
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("lookup user: %w", err)
		}
	}

	err := s.store.UpdateProfile(ctx, u.Email, req.FirstName, req.LastName, req.Email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, user.ErrEmailTaken):
		return ErrConflict
	case errors.Is(err, user.ErrNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("update profile: %w", err)
	}
}

func (s *Users) ChangePassword(ctx context.Context, u user.User, current, next string) error {
	if err := security.CheckPassword(u.PasswordHash, current); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return ErrInvalidCredential
		}
		return fmt.Errorf("check password: %w", err)
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}

	err = s.store.UpdatePasswordHash(ctx, u.Email, hash)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func hashPassword(plain string) (string, error) {
	hash, err := security.HashPassword(plain)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
