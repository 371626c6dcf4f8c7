package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/healthmate/internal/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	usersCollection = "users"
	spotsCollection = "workout_spots"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	prom   *observability.Prom
	log    *slog.Logger
}

// Connect dials uri, pings the primary and makes sure the unique email index exists.
// log receives warnings about documents skipped while listing; nil means slog.Default.
func Connect(ctx context.Context, uri, dbName string, prom *observability.Prom, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
		prom:   prom,
		log:    log.With("store", "mongo"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}

	_, err = s.db.Collection(spotsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create workout_spots.owner_email index: %w", err)
	}

	return nil
}

func (s *Store) Users() *UsersRepo {
	return &UsersRepo{coll: s.db.Collection(usersCollection), prom: s.prom, log: s.log}
}

func (s *Store) Spots() *SpotsRepo {
	return &SpotsRepo{
		coll:  s.db.Collection(spotsCollection),
		users: s.db.Collection(usersCollection),
		prom:  s.prom,
		log:   s.log,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func observe(prom *observability.Prom, op string, fn func() error) error {
	if prom != nil {
		return prom.ObserveDB(op, fn)
	}
	return fn()
}
