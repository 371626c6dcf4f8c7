package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/observability"
)

type UserStore interface {
	List(ctx context.Context) ([]user.User, error)
	AddSpot(ctx context.Context, email, spotID string) error
	RemoveSpot(ctx context.Context, email, spotID string) error
	RemoveFavorite(ctx context.Context, email, spotID string) error
}

type SpotStore interface {
	ListByOwner(ctx context.Context, ownerEmail string) ([]spot.WorkoutSpot, error)
	GetByIDs(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error)
}

// Report counts the repairs made by one run.
type Report struct {
	Users           int
	Indexed         int
	Pruned          int
	FavoritesPruned int
}

// Reconciler repairs drift between workout_spots and each user's added_spots
// left behind when a two-step create or delete was interrupted. It never
// rewrites owner_email.
type Reconciler struct {
	users UserStore
	spots SpotStore
	log   *slog.Logger
	prom  *observability.Prom

	readyMu sync.RWMutex
	ready   bool
	lastRun time.Time
}

// New wires a reconciler. prom may be nil.
func New(users UserStore, spots SpotStore, log *slog.Logger, prom *observability.Prom) *Reconciler {
	if log == nil {
		log = slog.Default()
	}

	return &Reconciler{
		users: users,
		spots: spots,
		log:   log,
		prom:  prom,
		ready: true,
	}
}

func (r *Reconciler) RunOnce(ctx context.Context) (Report, error) {
	start := time.Now()

	rep, err := r.run(ctx)

	if r.prom != nil {
		r.prom.ObserveReconcile(time.Since(start), rep.Indexed, rep.Pruned+rep.FavoritesPruned, err)
	}

	r.readyMu.Lock()
	r.lastRun = start
	r.readyMu.Unlock()

	if err != nil {
		r.log.ErrorContext(ctx, "reconcile failed", "err", err, "users", rep.Users)
		return rep, err
	}

	r.log.InfoContext(ctx, "reconcile done",
		"users", rep.Users,
		"indexed", rep.Indexed,
		"pruned", rep.Pruned,
		"favorites_pruned", rep.FavoritesPruned,
		"took_ms", time.Since(start).Milliseconds(),
	)

	return rep, nil
}

func (r *Reconciler) run(ctx context.Context) (Report, error) {
	var rep Report

	users, err := r.users.List(ctx)
	if err != nil {
		return rep, fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		if err := r.reconcileUser(ctx, u, &rep); err != nil {
			return rep, fmt.Errorf("reconcile %s: %w", u.Email, err)
		}
		rep.Users++
	}

	return rep, nil
}

func (r *Reconciler) reconcileUser(ctx context.Context, u user.User, rep *Report) error {
	owned, err := r.spots.ListByOwner(ctx, u.Email)
	if err != nil {
		return err
	}

	for _, s := range owned {
		if u.AddedSpots.Contains(s.ID) {
			continue
		}
		if err := r.users.AddSpot(ctx, u.Email, s.ID); err != nil {
			return err
		}
		rep.Indexed++
	}

	// ids whose spot is gone, whoever owned it
	missing, err := r.missing(ctx, u.AddedSpots)
	if err != nil {
		return err
	}
	for _, id := range missing {
		if err := r.users.RemoveSpot(ctx, u.Email, id); err != nil {
			return err
		}
		rep.Pruned++
	}

	missing, err = r.missing(ctx, u.Favorites)
	if err != nil {
		return err
	}
	for _, id := range missing {
		if err := r.users.RemoveFavorite(ctx, u.Email, id); err != nil {
			return err
		}
		rep.FavoritesPruned++
	}

	return nil
}

func (r *Reconciler) missing(ctx context.Context, ids user.IDSet) ([]string, error) {
	if ids.Len() == 0 {
		return nil, nil
	}

	// malformed ids can never match a spot
	var lookup []string
	var out []string
	for _, id := range ids {
		if spot.ValidID(id) {
			lookup = append(lookup, id)
		} else {
			out = append(out, id)
		}
	}

	if len(lookup) == 0 {
		return out, nil
	}

	found, err := r.spots.GetByIDs(ctx, lookup)
	if err != nil {
		return nil, err
	}

	present := make(map[string]struct{}, len(found))
	for _, s := range found {
		present[s.ID] = struct{}{}
	}

	for _, id := range lookup {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}

	return out, nil
}

// SetReady flips readiness, e.g. while shutting down.
func (r *Reconciler) SetReady(ready bool) {
	r.readyMu.Lock()
	r.ready = ready
	r.readyMu.Unlock()
}
