package service

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"socialboard/internal/domain"
	"socialboard/internal/observability"
	"socialboard/internal/repository"
	"socialboard/internal/session"
)

// SessionService logs users in and out and resolves the user behind a session token.
type SessionService interface {
	// Login verifies credentials and starts a session. Unknown usernames and wrong
	// passwords both fail with domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
	// CurrentUser returns the user bound to token, or nil for anonymous requests.
	CurrentUser(ctx context.Context, token string) *domain.User
}

type sessionService struct {
	users    repository.UserRepository
	sessions *session.Manager
	logger   *logrus.Logger
}

func NewSessionService(users repository.UserRepository, sessions *session.Manager, logger *logrus.Logger) SessionService {
	return &sessionService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy spends the same bcrypt work as a real check so that unknown
// usernames cannot be told apart by response time.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("socialboard-dummy-password"), PasswordCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func (s *sessionService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	token, user, err := s.login(ctx, username, password)
	observability.LoginsTotal.WithLabelValues(loginOutcome(err)).Inc()
	return token, user, err
}

func (s *sessionService) login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			compareDummy(password)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, internal("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Start(ctx, user.ID)
	if err != nil {
		return "", nil, internal("start session", err)
	}
	return token, sanitizeUser(user), nil
}

func (s *sessionService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return internal("logout", err)
	}
	return nil
}

func (s *sessionService) CurrentUser(ctx context.Context, token string) *domain.User {
	if token == "" {
		return nil
	}

	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Warnf("resolve session: %v", err)
		}
		return nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.WithField("user_id", userID).Warnf("load session user: %v", err)
		return nil
	}
	return sanitizeUser(user)
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
