package repository

import (
	"context"
	"sync/atomic"
	"time"

	"autofix/internal/domain"
	"autofix/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository prefers the primary store and drops to the
// fallback when the primary errors, retrying the primary after a
// minute.
type FailoverSessionRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) shouldRetryPrimary() bool {
	return time.Since(time.Unix(r.lastCheck.Load(), 0)) > time.Minute
}

func (r *FailoverSessionRepository) markDown() {
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().Unix())
}

func (r *FailoverSessionRepository) SetSession(ctx context.Context, session *models.Session) error {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		if err := r.primary.SetSession(ctx, session); err == nil {
			r.isDown.Store(false)
			// Mirror into the fallback so an outage does not log admins out.
			_ = r.fallback.SetSession(ctx, session)
			return nil
		} else {
			r.logger.Error().Err(err).Msg("primary session store failed, falling back to memory")
			r.markDown()
		}
	}
	return r.fallback.SetSession(ctx, session)
}

func (r *FailoverSessionRepository) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		session, err := r.primary.GetSession(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			if session != nil {
				return session, nil
			}
			// Fall through: the session may live only in the fallback.
			return r.fallback.GetSession(ctx, token)
		}
		r.logger.Error().Err(err).Msg("primary session store failed, falling back to memory")
		r.markDown()
	}
	return r.fallback.GetSession(ctx, token)
}

func (r *FailoverSessionRepository) DeleteSession(ctx context.Context, token string) error {
	var primaryErr error
	if !r.isDown.Load() || r.shouldRetryPrimary() {
		if primaryErr = r.primary.DeleteSession(ctx, token); primaryErr == nil {
			r.isDown.Store(false)
		} else {
			r.logger.Error().Err(primaryErr).Msg("primary session store failed, falling back to memory")
			r.markDown()
		}
	}
	return r.fallback.DeleteSession(ctx, token)
}
