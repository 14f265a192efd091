package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBadge(t *testing.T) {
	testCases := []struct {
		name string
		in   BadgeInput
		want Badge
	}{
		{name: "no followers", in: BadgeInput{FollowerCount: 0}, want: BadgeNone},
		{name: "one follower", in: BadgeInput{FollowerCount: 1}, want: BadgeNone},
		{name: "two followers", in: BadgeInput{FollowerCount: 2}, want: BadgeMascot},
		{name: "four followers", in: BadgeInput{FollowerCount: 4}, want: BadgeMascot},
		{name: "five followers", in: BadgeInput{FollowerCount: 5}, want: BadgeBronze},
		{name: "many followers", in: BadgeInput{FollowerCount: 500}, want: BadgeBronze},
		{
			name: "custom badge keeps stored badge",
			in:   BadgeInput{FollowerCount: 5, CustomBadge: true, Current: "Gold"},
			want: "Gold",
		},
		{
			name: "special user keeps stored badge",
			in:   BadgeInput{FollowerCount: 0, Special: true, Current: "Founder"},
			want: "Founder",
		},
		{
			name: "override without followers keeps default",
			in:   BadgeInput{CustomBadge: true, Current: BadgeNone},
			want: BadgeNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EvaluateBadge(tc.in))
		})
	}
}

func TestBadgePolicy(t *testing.T) {
	policy := NewBadgePolicy([]int64{7})

	assert.True(t, policy.IsSpecial(7))
	assert.False(t, policy.IsSpecial(8))

	special := User{ID: 7, Badge: "Gold"}
	assert.Equal(t, Badge("Gold"), policy.Evaluate(special, 0))

	regular := User{ID: 8, Badge: "Gold"}
	assert.Equal(t, BadgeMascot, policy.Evaluate(regular, 3))

	custom := User{ID: 9, CustomBadge: true, Badge: "Gold"}
	assert.Equal(t, Badge("Gold"), policy.Evaluate(custom, 9))
}

func TestUserGraphHelpers(t *testing.T) {
	u := User{ID: 1, Following: []int64{2, 3}, Followers: []int64{4}}

	assert.True(t, u.IsFollowing(3))
	assert.False(t, u.IsFollowing(4))
	assert.True(t, u.HasFollower(4))
	assert.False(t, u.HasFollower(2))
}
