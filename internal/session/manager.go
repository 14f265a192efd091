package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"socialboard/internal/domain"
	"socialboard/internal/repository"
)

// DefaultTTL is how long a login stays valid.
const DefaultTTL = 14 * 24 * time.Hour

// Manager creates, resolves and destroys sessions. Tokens handed out are signed
// cookie values; the session store decides whether they are still live.
type Manager struct {
	store repository.SessionRepository
	codec *Codec
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store repository.SessionRepository, codec *Codec, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store: store,
		codec: codec,
		ttl:   ttl,
		now:   time.Now,
	}
}

// TTL returns the lifetime of new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start creates a session bound to userID and returns its token.
func (m *Manager) Start(ctx context.Context, userID int64) (string, error) {
	now := m.now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return "", err
	}

	token, err := m.codec.Encode(sess.ID, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		_ = m.store.Delete(ctx, sess.ID)
		return "", err
	}
	return token, nil
}

// Resolve returns the user id bound to token. Invalid tokens and unknown or expired
// sessions yield domain.ErrSessionNotFound; store failures are returned as is.
func (m *Manager) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrSessionNotFound
	}
	id, err := m.codec.Decode(token)
	if err != nil {
		return 0, domain.ErrSessionNotFound
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if sess.Expired(m.now()) {
		return 0, domain.ErrSessionNotFound
	}
	return sess.UserID, nil
}

// Destroy deletes the session behind token. Unknown or invalid tokens are ignored.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	id, err := m.codec.Decode(token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Purger is implemented by stores that need expired sessions removed explicitly.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
