package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SpotsRepo keeps workout_spots and users.added_spots in step inside one
// transaction, so a spot is never left without its index entry.
type SpotsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSpotsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SpotsRepo {
	return &SpotsRepo{pool: pool, prom: prom}
}

func (r *SpotsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const spotColumns = `id, latitude, longitude, description, type, owner_email, created_at, updated_at`

func scanSpot(row pgx.Row) (spot.WorkoutSpot, error) {
	var s spot.WorkoutSpot
	err := row.Scan(&s.ID, &s.Latitude, &s.Longitude, &s.Description, &s.Type, &s.OwnerEmail, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *SpotsRepo) Create(ctx context.Context, s spot.WorkoutSpot) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = r.observe("spots.create", func() error {
		_, err := tx.Exec(ctx,
			`INSERT INTO workout_spots (`+spotColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			s.ID, s.Latitude, s.Longitude, s.Description, s.Type, s.OwnerEmail, s.CreatedAt, s.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return err
	}

	err = r.observe("users.add_spot", func() error {
		_, err := tx.Exec(ctx, addToSetSQL("added_spots"), s.OwnerEmail, s.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("index spot %s under owner: %w", s.ID, err)
	}

	return tx.Commit(ctx)
}

func (r *SpotsRepo) List(ctx context.Context) ([]spot.WorkoutSpot, error) {
	return r.query(ctx, "spots.list",
		`SELECT `+spotColumns+` FROM workout_spots ORDER BY created_at ASC, id ASC`)
}

func (r *SpotsRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]spot.WorkoutSpot, error) {
	return r.query(ctx, "spots.list_by_owner",
		`SELECT `+spotColumns+` FROM workout_spots WHERE owner_email = $1 ORDER BY created_at ASC, id ASC`,
		ownerEmail)
}

func (r *SpotsRepo) GetByID(ctx context.Context, id string) (spot.WorkoutSpot, error) {
	var s spot.WorkoutSpot

	err := r.observe("spots.get_by_id", func() error {
		var err error
		s, err = scanSpot(r.pool.QueryRow(ctx,
			`SELECT `+spotColumns+` FROM workout_spots WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return spot.WorkoutSpot{}, spot.ErrNotFound
		}
		return spot.WorkoutSpot{}, err
	}
	return s, nil
}

func (r *SpotsRepo) GetByIDs(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error) {
	if len(ids) == 0 {
		return []spot.WorkoutSpot{}, nil
	}

	return r.query(ctx, "spots.get_by_ids",
		`SELECT `+spotColumns+` FROM workout_spots WHERE id = ANY($1) ORDER BY created_at ASC, id ASC`,
		ids)
}

// Update leaves a column alone when its patch field is nil.
func (r *SpotsRepo) Update(ctx context.Context, id string, patch spot.UpdateSpotRequest) error {
	var affected int64

	err := r.observe("spots.update", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE workout_spots
			SET description = COALESCE($2, description),
				type = COALESCE($3, type),
				updated_at = NOW()
			WHERE id = $1`,
			id, patch.Description, patch.Type,
		)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return spot.ErrNotFound
	}
	return nil
}

func (r *SpotsRepo) Delete(ctx context.Context, id, ownerEmail string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var affected int64
	err = r.observe("spots.delete", func() error {
		tag, err := tx.Exec(ctx, `DELETE FROM workout_spots WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return spot.ErrNotFound
	}

	err = r.observe("users.remove_spot", func() error {
		_, err := tx.Exec(ctx, pullSQL("added_spots"), ownerEmail, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("unindex spot %s from owner: %w", id, err)
	}

	return tx.Commit(ctx)
}

func (r *SpotsRepo) query(ctx context.Context, op, sql string, args ...any) ([]spot.WorkoutSpot, error) {
	out := make([]spot.WorkoutSpot, 0)

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			s, err := scanSpot(rows)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}
