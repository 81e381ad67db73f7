package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/tienda/internal/domain"
)

const keySession = "session:%s"

type RedisStore struct {
	RDB *redis.Client
	Now func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{RDB: rdb, Now: time.Now}
}

func (r *RedisStore) ttl(expiresAt time.Time) time.Duration {
	ttl := expiresAt.Sub(r.Now())
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.RDB.Set(ctx, fmt.Sprintf(keySession, s.ID), data, r.ttl(s.ExpiresAt)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.RDB.Get(ctx, fmt.Sprintf(keySession, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if s.Expired(r.Now()) {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *RedisStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	s.ExpiresAt = expiresAt
	return r.Create(ctx, s)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.RDB.Del(ctx, fmt.Sprintf(keySession, id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
