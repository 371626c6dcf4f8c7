package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/redis/go-redis/v9"
)

var errStaleGeneration = errors.New("spots listing invalidated during fill")

// Redis shares the spot listing between API replicas. Cache failures are
// logged and treated as misses; the store stays the source of truth.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

func (r *Redis) GetSpots(ctx context.Context) ([]spot.WorkoutSpot, bool) {
	raw, err := r.rdb.Get(ctx, spotsListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WarnContext(ctx, "spots cache get failed", "err", err)
		}
		return nil, false
	}

	var spots []spot.WorkoutSpot
	if err := json.Unmarshal(raw, &spots); err != nil {
		r.log.WarnContext(ctx, "spots cache decode failed", "err", err)
		return nil, false
	}

	return spots, true
}

func (r *Redis) SpotsGeneration(ctx context.Context) (int64, bool) {
	gen, err := r.rdb.Get(ctx, spotsGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.log.WarnContext(ctx, "spots cache generation read failed", "err", err)
		return 0, false
	}
	return gen, true
}

// SetSpots writes the listing under WATCH on the generation key, so an
// InvalidateSpots from any replica between the check and the write aborts it.
func (r *Redis) SetSpots(ctx context.Context, gen int64, spots []spot.WorkoutSpot) {
	raw, err := json.Marshal(spots)
	if err != nil {
		return
	}

	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, spotsGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, spotsListKey, raw, r.ttl)
			return nil
		})
		return err
	}, spotsGenKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
	default:
		r.log.WarnContext(ctx, "spots cache set failed", "err", err)
	}
}

func (r *Redis) InvalidateSpots(ctx context.Context) {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, spotsGenKey)
		p.Del(ctx, spotsListKey)
		return nil
	})
	if err != nil {
		r.log.WarnContext(ctx, "spots cache invalidate failed", "err", err)
	}
}
