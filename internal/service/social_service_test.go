package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialboard/internal/domain"
	"socialboard/internal/events"
)

func TestFollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	require.NoError(t, env.socialSvc.Follow(ctx, alice.ID, bob.ID))

	gotAlice := env.user(t, alice.ID)
	gotBob := env.user(t, bob.ID)
	assert.Equal(t, []int64{bob.ID}, gotAlice.Following)
	assert.Empty(t, gotAlice.Followers)
	assert.Equal(t, []int64{alice.ID}, gotBob.Followers)
	assert.Empty(t, gotBob.Following)
	assert.Equal(t, domain.BadgeNone, gotBob.Badge)

	assert.Equal(t, []events.Type{events.UserFollowed}, env.publisher.types())
}

func TestFollow_Preconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")
	require.NoError(t, env.socialSvc.Follow(ctx, alice.ID, bob.ID))

	testCases := []struct {
		name    string
		actor   int64
		target  int64
		wantErr error
	}{
		{name: "anonymous actor", actor: 0, target: bob.ID, wantErr: domain.ErrUnauthenticated},
		{name: "self follow", actor: alice.ID, target: alice.ID, wantErr: domain.ErrSelfFollow},
		{name: "self follow of unknown user", actor: 999, target: 999, wantErr: domain.ErrSelfFollow},
		{name: "unknown target", actor: alice.ID, target: 999, wantErr: domain.ErrUserNotFound},
		{name: "unknown actor", actor: 999, target: bob.ID, wantErr: domain.ErrUserNotFound},
		{name: "already following", actor: alice.ID, target: bob.ID, wantErr: domain.ErrAlreadyFollowing},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := env.socialSvc.Follow(ctx, tc.actor, tc.target)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	assert.Equal(t, []int64{alice.ID}, env.user(t, bob.ID).Followers)
}

func TestSelfFollowRejectedRegardlessOfState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")
	require.NoError(t, env.socialSvc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, env.socialSvc.Follow(ctx, bob.ID, alice.ID))

	assert.ErrorIs(t, env.socialSvc.Follow(ctx, alice.ID, alice.ID), domain.ErrSelfFollow)
	assert.ErrorIs(t, env.socialSvc.Unfollow(ctx, alice.ID, alice.ID), domain.ErrSelfFollow)

	got := env.user(t, alice.ID)
	assert.NotContains(t, got.Following, alice.ID)
	assert.NotContains(t, got.Followers, alice.ID)
}

func TestUnfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	assert.ErrorIs(t, env.socialSvc.Unfollow(ctx, alice.ID, bob.ID), domain.ErrNotFollowing)
	assert.ErrorIs(t, env.socialSvc.Unfollow(ctx, 0, bob.ID), domain.ErrUnauthenticated)
	assert.ErrorIs(t, env.socialSvc.Unfollow(ctx, alice.ID, 999), domain.ErrUserNotFound)

	require.NoError(t, env.socialSvc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, env.socialSvc.Unfollow(ctx, alice.ID, bob.ID))

	assert.Empty(t, env.user(t, alice.ID).Following)
	assert.Empty(t, env.user(t, bob.ID).Followers)
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")
	carol := env.seedUser(t, "carol")
	dave := env.seedUser(t, "dave")

	require.NoError(t, env.socialSvc.Follow(ctx, alice.ID, carol.ID))
	require.NoError(t, env.socialSvc.Follow(ctx, dave.ID, bob.ID))
	require.NoError(t, env.socialSvc.Follow(ctx, carol.ID, bob.ID))

	beforeAlice := env.user(t, alice.ID)
	beforeBob := env.user(t, bob.ID)

	require.NoError(t, env.socialSvc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, env.socialSvc.Unfollow(ctx, alice.ID, bob.ID))

	afterAlice := env.user(t, alice.ID)
	afterBob := env.user(t, bob.ID)
	assert.Equal(t, beforeAlice.Following, afterAlice.Following)
	assert.Equal(t, beforeAlice.Followers, afterAlice.Followers)
	assert.Equal(t, beforeBob.Following, afterBob.Following)
	assert.Equal(t, beforeBob.Followers, afterBob.Followers)
	assert.Equal(t, beforeBob.Badge, afterBob.Badge)
}

func TestBadgeRecomputedOnFollowerChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	star := env.seedUser(t, "star")
	var fans []*domain.User
	for i := 0; i < 5; i++ {
		fans = append(fans, env.seedUser(t, fmt.Sprintf("fan%d", i)))
	}

	want := []domain.Badge{domain.BadgeNone, domain.BadgeMascot, domain.BadgeMascot, domain.BadgeMascot, domain.BadgeBronze}
	for i, fan := range fans {
		require.NoError(t, env.socialSvc.Follow(ctx, fan.ID, star.ID))
		assert.Equal(t, want[i], env.user(t, star.ID).Badge, "after %d followers", i+1)
	}

	require.NoError(t, env.socialSvc.Unfollow(ctx, fans[0].ID, star.ID))
	assert.Equal(t, domain.BadgeMascot, env.user(t, star.ID).Badge)

	for _, fan := range fans[1:4] {
		require.NoError(t, env.socialSvc.Unfollow(ctx, fan.ID, star.ID))
	}
	assert.Equal(t, domain.BadgeNone, env.user(t, star.ID).Badge)
}

func TestBadgeOverrides(t *testing.T) {
	ctx := context.Background()

	t.Run("custom badge", func(t *testing.T) {
		env := newTestEnv(t)
		star := env.seedUser(t, "star")
		_, err := env.db.Exec(`UPDATE users SET custom_badge = 1, badge = 'Gold' WHERE id = ?`, star.ID)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			fan := env.seedUser(t, fmt.Sprintf("fan%d", i))
			require.NoError(t, env.socialSvc.Follow(ctx, fan.ID, star.ID))
		}
		assert.Equal(t, domain.Badge("Gold"), env.user(t, star.ID).Badge)
	})

	t.Run("special user", func(t *testing.T) {
		env := newTestEnv(t, 1)
		star := env.seedUser(t, "star")
		require.Equal(t, int64(1), star.ID)

		for i := 0; i < 3; i++ {
			fan := env.seedUser(t, fmt.Sprintf("fan%d", i))
			require.NoError(t, env.socialSvc.Follow(ctx, fan.ID, star.ID))
		}
		assert.Equal(t, domain.BadgeNone, env.user(t, star.ID).Badge)
	})
}

func TestGraphNeverContainsSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var users []*domain.User
	for i := 0; i < 4; i++ {
		users = append(users, env.seedUser(t, fmt.Sprintf("user%d", i)))
	}
	for _, a := range users {
		for _, b := range users {
			err := env.socialSvc.Follow(ctx, a.ID, b.ID)
			if a.ID == b.ID {
				assert.ErrorIs(t, err, domain.ErrSelfFollow)
			} else {
				assert.NoError(t, err)
			}
		}
	}

	for _, u := range users {
		got := env.user(t, u.ID)
		assert.NotContains(t, got.Following, u.ID)
		assert.NotContains(t, got.Followers, u.ID)
		assert.Len(t, got.Following, 3)
		assert.Len(t, got.Followers, 3)
		assert.Equal(t, domain.BadgeMascot, got.Badge)
	}
}
