package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/models"
)

const keyPrefix = "memory:session:"

// RedisStore keeps each session as one JSON value with a sliding TTL.
type RedisStore struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

func NewRedisStore(client *redis.Client, maxTurns int, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, maxTurns: maxTurns, ttl: ttl}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) load(ctx context.Context, g getter, id string) (*models.Session, error) {
	val, err := g.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError("get", err)
	}
	var s models.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, apperrors.NewSessionStoreFailedError("decode", err)
	}
	return &s, nil
}

func (r *RedisStore) GetOrCreate(ctx context.Context, id string) (*models.Session, error) {
	if id != "" {
		s, err := r.load(ctx, r.client, id)
		if err != nil || s != nil {
			return s, err
		}
	}

	s := newSession(id)
	data, err := json.Marshal(s)
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError("encode", err)
	}
	created, err := r.client.SetNX(ctx, sessionKey(s.ID), data, r.ttl).Result()
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError("create", err)
	}
	if !created {
		return r.load(ctx, r.client, s.ID)
	}
	return s, nil
}

// Append runs as a WATCH transaction. A concurrent write to the same id makes
// it fail with SESSION_STORE_FAILED.
func (r *RedisStore) Append(ctx context.Context, id string, turn models.Turn) error {
	key := sessionKey(id)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		s, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if s == nil {
			s = newSession(id)
		}
		s.Append(turn, r.maxTurns)

		data, err := json.Marshal(s)
		if err != nil {
			return apperrors.NewSessionStoreFailedError("encode", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return stdErr
		}
		return apperrors.NewSessionStoreFailedError("append", err)
	}
	return nil
}

func (r *RedisStore) History(ctx context.Context, id string, n int) ([]models.Turn, error) {
	s, err := r.load(ctx, r.client, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return []models.Turn{}, nil
	}
	return s.LastTurns(n), nil
}

func (r *RedisStore) Clear(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, apperrors.NewSessionStoreFailedError("delete", err)
	}
	return n > 0, nil
}
