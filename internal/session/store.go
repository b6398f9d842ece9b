// Package session keeps per-session conversation memory for the router.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pv-query-router/internal/common/config"
	"pv-query-router/internal/common/database"
	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/models"
)

// Store maps session ids to conversation memory. Distinct ids never share
// state; operations on one id never block another.
type Store interface {
	// GetOrCreate returns the session for id, creating it when absent. An
	// empty id always creates a session with a fresh id.
	GetOrCreate(ctx context.Context, id string) (*models.Session, error)
	// Append records a turn, creating the session when absent.
	Append(ctx context.Context, id string, turn models.Turn) error
	// History returns up to n of the most recent turns; n <= 0 returns all.
	History(ctx context.Context, id string, n int) ([]models.Turn, error)
	// Clear drops the session and reports whether it existed.
	Clear(ctx context.Context, id string) (bool, error)
}

// New selects the backend named by cfg. redis is only used by the redis backend.
func New(cfg config.SessionConfig, redis *database.RedisClient) (Store, error) {
	switch cfg.Backend {
	case config.SessionBackendRedis:
		if redis == nil {
			return nil, apperrors.NewConfigurationMissingError("database.redis")
		}
		return NewRedisStore(redis.GetClient(), cfg.MaxTurns, time.Duration(cfg.TTL)*time.Millisecond), nil
	default:
		return NewMemoryStore(cfg.MaxTurns), nil
	}
}

func newSession(id string) *models.Session {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	return &models.Session{ID: id, Turns: []models.Turn{}, CreatedAt: now, UpdatedAt: now}
}

func cloneSession(s *models.Session) *models.Session {
	out := *s
	out.Turns = append([]models.Turn(nil), s.Turns...)
	return &out
}
