package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis so several webhook instances share them.
// Keys carry a native TTL; Sweep covers entries written with a longer TTL or
// by older deployments. Lock is process-local.
type RedisStore struct {
	client *redis.Client
	keys   *KeyedMutex
	now    func() time.Time
	ttl    time.Duration
}

// NewRedisStore connects using a redis:// URL and pings the server
func NewRedisStore(ctx context.Context, url string, opts ...Option) (*RedisStore, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreFromClient(client, opts...), nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client, opts ...Option) *RedisStore {
	o := buildOptions(opts)
	return &RedisStore{
		client: client,
		keys:   NewKeyedMutex(),
		now:    o.now,
		ttl:    o.ttl,
	}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (r *RedisStore) Get(ctx context.Context, key string) (*models.Session, error) {
	data, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(data)
}

func (r *RedisStore) Set(ctx context.Context, key string, session *models.Session) error {
	s := session.Clone()
	if s == nil {
		s = &models.Session{}
	}
	s.LastActivity = r.now()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Update(ctx context.Context, key string, patch models.SessionPatch) error {
	k := redisKey(key)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		s, err := decodeSession(data)
		if err != nil {
			return err
		}
		s.Apply(patch)
		s.LastActivity = r.now()

		payload, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, r.ttl)
			return nil
		})
		return err
	}, k)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *RedisStore) Sweep(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	cutoff := now.Add(-ttl)

	var stale []string
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		expired, err := r.expired(ctx, k, cutoff)
		if err != nil {
			return 0, fmt.Errorf("sweep sessions: %w", err)
		}
		if expired {
			stale = append(stale, strings.TrimPrefix(k, redisKeyPrefix))
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}

	removed := 0
	for _, key := range stale {
		ok, err := r.removeIfStale(ctx, key, cutoff)
		if err != nil {
			return removed, fmt.Errorf("sweep sessions: %w", err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// expired reports whether the session under redis key k is older than cutoff.
// Undecodable entries count as expired.
func (r *RedisStore) expired(ctx context.Context, k string, cutoff time.Time) (bool, error) {
	data, err := r.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s, err := decodeSession(data)
	return err != nil || s.LastActivity.Before(cutoff), nil
}

// removeIfStale deletes key under the sender's lock if it is still older than cutoff
func (r *RedisStore) removeIfStale(ctx context.Context, key string, cutoff time.Time) (bool, error) {
	unlock := r.keys.Lock(key)
	defer unlock()

	expired, err := r.expired(ctx, redisKey(key), cutoff)
	if err != nil || !expired {
		return false, err
	}
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisStore) Count(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func (r *RedisStore) Lock(key string) func() {
	return r.keys.Lock(key)
}

// Close releases the redis connection pool
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func decodeSession(data []byte) (*models.Session, error) {
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
