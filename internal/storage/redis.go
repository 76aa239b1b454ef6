package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wellness-planner/internal/planner"

	"github.com/redis/go-redis/v9"
)

const (
	redisPlanKeyPrefix = "wellness:plan:"
	redisDatesKey      = "wellness:plan-dates"
)

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each plan as a JSON string and indexes dates in a sorted set.
type RedisStore struct {
	rdb *redis.Client
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(rdb), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisPlanKey(date string) string { return redisPlanKeyPrefix + date }

// dateScore maps YYYY-MM-DD to YYYYMMDD so score order is date order.
func dateScore(date string) (float64, error) {
	t, err := planner.ParseDate(date)
	if err != nil {
		return 0, err
	}
	return float64(t.Year()*10000 + int(t.Month())*100 + t.Day()), nil
}

// Upsert writes the plan and its index entry in one MULTI/EXEC transaction.
func (s *RedisStore) Upsert(ctx context.Context, plan *planner.Plan) error {
	score, err := dateScore(plan.Date)
	if err != nil {
		return err
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisPlanKey(plan.Date), data, 0)
		pipe.ZAdd(ctx, redisDatesKey, redis.Z{Score: score, Member: plan.Date})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}
	return nil
}

// Get retrieves the plan for date.
func (s *RedisStore) Get(ctx context.Context, date string) (*planner.Plan, error) {
	data, err := s.rdb.Get(ctx, redisPlanKey(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	var plan planner.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// Delete removes the plan for date.
func (s *RedisStore) Delete(ctx context.Context, date string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisPlanKey(date))
		pipe.ZRem(ctx, redisDatesKey, date)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete plan: %w", err)
	}
	return del.Val() > 0, nil
}

// DeleteOlderThan removes plans dated before date.
func (s *RedisStore) DeleteOlderThan(ctx context.Context, date string) (int64, error) {
	score, err := dateScore(date)
	if err != nil {
		return 0, err
	}
	old, err := s.rdb.ZRangeByScore(ctx, redisDatesKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", int64(score)),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list old plans: %w", err)
	}
	if len(old) == 0 {
		return 0, nil
	}

	keys := make([]string, len(old))
	members := make([]interface{}, len(old))
	for i, d := range old {
		keys[i] = redisPlanKey(d)
		members[i] = d
	}

	var del *redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, redisDatesKey, members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old plans: %w", err)
	}
	return del.Val(), nil
}

// List returns plans newest first.
func (s *RedisStore) List(ctx context.Context, limit int) ([]planner.Plan, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	dates, err := s.rdb.ZRevRange(ctx, redisDatesKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list plan dates: %w", err)
	}

	plans := make([]planner.Plan, 0, len(dates))
	for _, d := range dates {
		p, err := s.Get(ctx, d)
		if errors.Is(err, planner.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
