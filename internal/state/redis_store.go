package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "console:state:"

// RedisStore keeps console states in redis with a sliding TTL
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// RedisConfig holds the redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient opens a redis client
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStore creates a redis-backed store. States expire after ttl
// without a save.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Load returns the stored state of a session
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*models.ConsoleState, error) {
	data, err := s.client.Get(ctx, redisKey(sessionID)).Bytes()
	if err == redis.Nil {
		return newState(sessionID), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load console state")
	}

	var state models.ConsoleState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.AppLogger().WithFields(map[string]interface{}{
			"session_id": sessionID,
		}).WarnContext(ctx, "discarding unreadable console state")
		return newState(sessionID), nil
	}
	return &state, nil
}

// Save stores the state and refreshes its TTL
func (s *RedisStore) Save(ctx context.Context, state *models.ConsoleState) error {
	state.UpdatedAt = time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = state.UpdatedAt
	}

	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to encode console state")
	}
	if err := s.client.Set(ctx, redisKey(state.SessionID), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save console state")
	}
	return nil
}

// Delete removes the state of a session
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete console state")
	}
	return nil
}

// Prune removes states older than the cutoff. Keys normally expire through
// their TTL; this catches states saved with a longer TTL.
func (s *RedisStore) Prune(ctx context.Context, olderThan time.Duration, dryRun bool) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	var count int64

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return count, errors.Wrapf(err, "failed to read %s", key)
		}

		var state models.ConsoleState
		if err := json.Unmarshal(data, &state); err == nil && !state.UpdatedAt.Before(cutoff) {
			continue
		}

		count++
		if dryRun {
			continue
		}
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return count, errors.Wrapf(err, "failed to delete %s", key)
		}
	}
	if err := iter.Err(); err != nil {
		return count, errors.Wrap(err, "failed to scan console states")
	}

	return count, nil
}

// Ping checks the redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx).Err(), "redis ping failed")
}
