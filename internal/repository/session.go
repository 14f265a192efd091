package repository

import (
	"context"

	"socialboard/internal/domain"
)

// SessionRepository persists login sessions. Get returns domain.ErrSessionNotFound for
// sessions that are missing or expired.
type SessionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
