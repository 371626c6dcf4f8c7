package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var errMalformedDocument = errors.New("malformed document")

// userDoc keeps the hash under "password", the field name existing data uses.
type userDoc struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	Email      string        `bson:"email"`
	Password   string        `bson:"password"`
	FirstName  string        `bson:"first_name"`
	LastName   string        `bson:"last_name"`
	AddedSpots []string      `bson:"added_spots"`
	Favorites  []string      `bson:"favorites"`
	CreatedAt  time.Time     `bson:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at"`
}

type spotDoc struct {
	ID          bson.ObjectID `bson:"_id"`
	Latitude    float64       `bson:"latitude"`
	Longitude   float64       `bson:"longitude"`
	Description string        `bson:"description"`
	Type        string        `bson:"type"`
	OwnerEmail  string        `bson:"owner_email"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

func userFromDoc(d userDoc) (user.User, error) {
	if d.Email == "" || d.Password == "" {
		return user.User{}, fmt.Errorf("%w: user %s lacks email or password", errMalformedDocument, d.ID.Hex())
	}

	return user.User{
		Email:        d.Email,
		PasswordHash: d.Password,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		AddedSpots:   user.NewIDSet(d.AddedSpots...),
		Favorites:    user.NewIDSet(d.Favorites...),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func docFromUser(u user.User) userDoc {
	return userDoc{
		Email:      u.Email,
		Password:   u.PasswordHash,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		AddedSpots: nonNilStrings(u.AddedSpots),
		Favorites:  nonNilStrings(u.Favorites),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func spotFromDoc(d spotDoc) (spot.WorkoutSpot, error) {
	if d.ID.IsZero() || d.OwnerEmail == "" {
		return spot.WorkoutSpot{}, fmt.Errorf("%w: workout spot %s lacks id or owner", errMalformedDocument, d.ID.Hex())
	}

	return spot.WorkoutSpot{
		ID:          d.ID.Hex(),
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Description: d.Description,
		Type:        d.Type,
		OwnerEmail:  d.OwnerEmail,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func docFromSpot(s spot.WorkoutSpot) (spotDoc, error) {
	oid, err := bson.ObjectIDFromHex(s.ID)
	if err != nil {
		return spotDoc{}, fmt.Errorf("%w: spot id %q", errMalformedDocument, s.ID)
	}

	return spotDoc{
		ID:          oid,
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
		Description: s.Description,
		Type:        s.Type,
		OwnerEmail:  s.OwnerEmail,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// decodeAll converts a listing, dropping documents conv rejects. One bad
// legacy record is logged and counted but does not fail the whole list.
func decodeAll[D, T any](ctx context.Context, log *slog.Logger, prom *observability.Prom, op string, docs []D, conv func(D) (T, error)) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := conv(d)
		if err != nil {
			log.WarnContext(ctx, "skipping malformed document", "op", op, "err", err)
			prom.SkippedDocument(op)
			continue
		}
		out = append(out, v)
	}
	return out
}
