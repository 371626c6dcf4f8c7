package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `email, password_hash, first_name, last_name, added_spots, favorites, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var added, favorites []string

	err := row.Scan(
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&added,
		&favorites,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}

	u.AddedSpots = user.NewIDSet(added...)
	u.Favorites = user.NewIDSet(favorites...)
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
			FROM users
			WHERE email = $1`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (email, password_hash, first_name, last_name, added_spots, favorites, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.Email, u.PasswordHash, u.FirstName, u.LastName,
			textArray(u.AddedSpots), textArray(u.Favorites),
			u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, email, firstName, lastName, newEmail string) error {
	err := r.exec(ctx, "users.update_profile",
		`UPDATE users
		SET first_name = $2,
			last_name = $3,
			email = $4,
			updated_at = NOW()
		WHERE email = $1`,
		email, firstName, lastName, newEmail,
	)

	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	return r.exec(ctx, "users.update_password",
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE email = $1`,
		email, hash,
	)
}

func (r *UsersRepo) AddSpot(ctx context.Context, email, spotID string) error {
	return r.exec(ctx, "users.add_spot", addToSetSQL("added_spots"), email, spotID)
}

func (r *UsersRepo) RemoveSpot(ctx context.Context, email, spotID string) error {
	return r.exec(ctx, "users.remove_spot", pullSQL("added_spots"), email, spotID)
}

func (r *UsersRepo) AddFavorite(ctx context.Context, email, spotID string) error {
	return r.exec(ctx, "users.add_favorite", addToSetSQL("favorites"), email, spotID)
}

func (r *UsersRepo) RemoveFavorite(ctx context.Context, email, spotID string) error {
	return r.exec(ctx, "users.remove_favorite", pullSQL("favorites"), email, spotID)
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// exec runs a single-row update keyed by email; zero rows is user.ErrNotFound.
func (r *UsersRepo) exec(ctx context.Context, op, query string, args ...any) error {
	var tag pgconn.CommandTag

	err := r.observe(op, func() error {
		var err error
		tag, err = r.pool.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// addToSetSQL appends $2 to column unless already present, like $addToSet.
func addToSetSQL(column string) string {
	return fmt.Sprintf(
		`UPDATE users
		SET %[1]s = CASE WHEN $2 = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2) END,
			updated_at = NOW()
		WHERE email = $1`, column)
}

// pullSQL removes $2 from column, a no-op when absent.
func pullSQL(column string) string {
	return fmt.Sprintf(
		`UPDATE users
		SET %[1]s = array_remove(%[1]s, $2),
			updated_at = NOW()
		WHERE email = $1`, column)
}

func textArray(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
