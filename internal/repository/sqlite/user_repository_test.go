package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialboard/internal/domain"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{Username: "alice", PasswordHash: "hash"}
	id, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, domain.DefaultProfilePicture, got.ProfilePicture)
	assert.Equal(t, domain.BadgeNone, got.Badge)
	assert.False(t, got.CustomBadge)
	assert.Empty(t, got.Following)
	assert.Empty(t, got.Followers)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, db, "alice")

	_, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	bob := createUser(t, db, "bob")
	err = repo.UpdateProfile(ctx, bob.ID, "alice", bob.ProfilePicture)
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.ErrorIs(t, repo.UpdateBadge(ctx, 42, domain.BadgeBronze), domain.ErrUserNotFound)
}

func TestUserRepository_FollowEdges(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	require.NoError(t, repo.AddFollow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.AddFollow(ctx, carol.ID, bob.ID))
	assert.ErrorIs(t, repo.AddFollow(ctx, alice.ID, bob.ID), domain.ErrAlreadyFollowing)

	gotBob, err := repo.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID, carol.ID}, gotBob.Followers)
	assert.Empty(t, gotBob.Following)

	gotAlice, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, gotAlice.Following)

	count, err := repo.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.RemoveFollow(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, repo.RemoveFollow(ctx, alice.ID, bob.ID), domain.ErrNotFollowing)

	gotBob, err = repo.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{carol.ID}, gotBob.Followers)
}

func TestUserRepository_RejectsSelfEdge(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	alice := createUser(t, db, "alice")
	assert.Error(t, repo.AddFollow(context.Background(), alice.ID, alice.ID))
}

func TestUserRepository_UpdateProfileAndBadge(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	require.NoError(t, repo.UpdateProfile(ctx, alice.ID, "alicia", "https://cdn/pic.png"))
	require.NoError(t, repo.UpdateBadge(ctx, alice.ID, domain.BadgeMascot))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)
	assert.Equal(t, "https://cdn/pic.png", got.ProfilePicture)
	assert.Equal(t, domain.BadgeMascot, got.Badge)
}
