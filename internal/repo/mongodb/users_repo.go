package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// UsersRepo fails single-user lookups on a malformed document but skips such
// documents in List.
type UsersRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
	log  *slog.Logger
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var doc userDoc

	err := observe(r.prom, "users.get_by_email", func() error {
		return r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return userFromDoc(doc)
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := observe(r.prom, "users.create", func() error {
		_, err := r.coll.InsertOne(ctx, docFromUser(u))
		return err
	})
	if mongo.IsDuplicateKeyError(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, email, firstName, lastName, newEmail string) error {
	err := r.updateOne(ctx, "users.update_profile", email, bson.M{
		"$set": bson.M{
			"first_name": firstName,
			"last_name":  lastName,
			"email":      newEmail,
			"updated_at": time.Now().UTC(),
		},
	})
	if mongo.IsDuplicateKeyError(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	return r.updateOne(ctx, "users.update_password", email, bson.M{
		"$set": bson.M{"password": hash, "updated_at": time.Now().UTC()},
	})
}

func (r *UsersRepo) AddSpot(ctx context.Context, email, spotID string) error {
	return r.updateOne(ctx, "users.add_spot", email, addToSet("added_spots", spotID))
}

func (r *UsersRepo) RemoveSpot(ctx context.Context, email, spotID string) error {
	return r.updateOne(ctx, "users.remove_spot", email, pull("added_spots", spotID))
}

func (r *UsersRepo) AddFavorite(ctx context.Context, email, spotID string) error {
	return r.updateOne(ctx, "users.add_favorite", email, addToSet("favorites", spotID))
}

func (r *UsersRepo) RemoveFavorite(ctx context.Context, email, spotID string) error {
	return r.updateOne(ctx, "users.remove_favorite", email, pull("favorites", spotID))
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var docs []userDoc

	err := observe(r.prom, "users.list", func() error {
		cur, err := r.coll.Find(ctx, bson.M{})
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}

	return decodeAll(ctx, r.log, r.prom, "users.list", docs, userFromDoc), nil
}

// updateOne applies update to the user with email; no match is user.ErrNotFound.
func (r *UsersRepo) updateOne(ctx context.Context, op, email string, update bson.M) error {
	var res *mongo.UpdateResult

	err := observe(r.prom, op, func() error {
		var err error
		res, err = r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
		return err
	})
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func addToSet(field, id string) bson.M {
	return bson.M{
		"$addToSet": bson.M{field: id},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
}

func pull(field, id string) bson.M {
	return bson.M{
		"$pull": bson.M{field: id},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
}
