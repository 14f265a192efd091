package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"socialboard/internal/domain"
	"socialboard/internal/events"
	"socialboard/internal/repository"
	"socialboard/internal/repository/sqlite"
	"socialboard/internal/session"
	"socialboard/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	db        *sql.DB
	users     repository.UserRepository
	posts     repository.PostRepository
	publisher *recordingPublisher
	logHook   *test.Hook
	pictures  *storage.LocalService

	userSvc    UserService
	sessionSvc SessionService
	socialSvc  SocialService
	postSvc    PostService
}

func newTestEnv(t *testing.T, specialIDs ...int64) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := sqlite.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	posts := sqlite.NewPostRepository(db)
	sessions := sqlite.NewSessionRepository(db)
	require.NoError(t, users.Init(ctx))
	require.NoError(t, posts.Init(ctx))
	require.NoError(t, sessions.Init(ctx))

	pictures, err := storage.NewLocalService(filepath.Join(dir, "uploads"), "/uploads")
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	publisher := &recordingPublisher{}
	tx := repository.NewSQLTransactor(db)
	manager := session.NewManager(sessions, session.NewCodec("test-secret", "socialboard"), time.Hour)

	return &testEnv{
		db:         db,
		users:      users,
		posts:      posts,
		publisher:  publisher,
		logHook:    hook,
		pictures:   pictures,
		userSvc:    NewUserService(users, posts, pictures, DefaultMaxUploadBytes, publisher, logger),
		sessionSvc: NewSessionService(users, manager, logger),
		socialSvc:  NewSocialService(users, tx, domain.NewBadgePolicy(specialIDs), publisher, logger),
		postSvc:    NewPostService(posts, tx, publisher, logger),
	}
}

// seedUser inserts a user directly, skipping bcrypt, for tests that do not log in.
func (e *testEnv) seedUser(t *testing.T, username string) *domain.User {
	t.Helper()

	user := &domain.User{Username: username, PasswordHash: "unused"}
	_, err := e.users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func (e *testEnv) user(t *testing.T, id int64) *domain.User {
	t.Helper()

	user, err := e.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return user
}
