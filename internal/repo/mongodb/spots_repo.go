package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SpotsRepo writes the spot and the owner's added_spots entry as two separate
// single-document operations. A failure between them leaves an unindexed spot
// which the reconciler picks up.
type SpotsRepo struct {
	coll  *mongo.Collection
	users *mongo.Collection
	prom  *observability.Prom
	log   *slog.Logger
}

func (r *SpotsRepo) Create(ctx context.Context, s spot.WorkoutSpot) error {
	doc, err := docFromSpot(s)
	if err != nil {
		return err
	}

	err = observe(r.prom, "spots.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		return err
	}

	err = observe(r.prom, "users.add_spot", func() error {
		_, err := r.users.UpdateOne(ctx, bson.M{"email": s.OwnerEmail}, addToSet("added_spots", s.ID))
		return err
	})
	if err != nil {
		return fmt.Errorf("index spot %s under owner: %w", s.ID, err)
	}

	return nil
}

func (r *SpotsRepo) List(ctx context.Context) ([]spot.WorkoutSpot, error) {
	return r.find(ctx, "spots.list", bson.M{})
}

func (r *SpotsRepo) ListByOwner(ctx context.Context, ownerEmail string) ([]spot.WorkoutSpot, error) {
	return r.find(ctx, "spots.list_by_owner", bson.M{"owner_email": ownerEmail})
}

func (r *SpotsRepo) GetByID(ctx context.Context, id string) (spot.WorkoutSpot, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return spot.WorkoutSpot{}, spot.ErrNotFound
	}

	var doc spotDoc
	err = observe(r.prom, "spots.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return spot.WorkoutSpot{}, spot.ErrNotFound
		}
		return spot.WorkoutSpot{}, err
	}

	return spotFromDoc(doc)
}

func (r *SpotsRepo) GetByIDs(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error) {
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := bson.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}

	if len(oids) == 0 {
		return []spot.WorkoutSpot{}, nil
	}

	return r.find(ctx, "spots.get_by_ids", bson.M{"_id": bson.M{"$in": oids}})
}

func (r *SpotsRepo) Update(ctx context.Context, id string, patch spot.UpdateSpotRequest) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return spot.ErrNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}

	var res *mongo.UpdateResult
	err = observe(r.prom, "spots.update", func() error {
		var err error
		res, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
		return err
	})
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		return spot.ErrNotFound
	}
	return nil
}

func (r *SpotsRepo) Delete(ctx context.Context, id, ownerEmail string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return spot.ErrNotFound
	}

	var res *mongo.DeleteResult
	err = observe(r.prom, "spots.delete", func() error {
		var err error
		res, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
		return err
	})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return spot.ErrNotFound
	}

	// absent from the set is fine
	err = observe(r.prom, "users.remove_spot", func() error {
		_, err := r.users.UpdateOne(ctx, bson.M{"email": ownerEmail}, pull("added_spots", id))
		return err
	})
	if err != nil {
		return fmt.Errorf("unindex spot %s from owner: %w", id, err)
	}

	return nil
}

func (r *SpotsRepo) find(ctx context.Context, op string, filter bson.M) ([]spot.WorkoutSpot, error) {
	var docs []spotDoc

	err := observe(r.prom, op, func() error {
		cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}

	return decodeAll(ctx, r.log, r.prom, op, docs, spotFromDoc), nil
}
