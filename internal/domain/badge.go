package domain

// Badge is the label shown next to a username.
type Badge string

const (
	BadgeNone   Badge = "No Badge"
	BadgeMascot Badge = "Mascot"
	BadgeBronze Badge = "Bronze"
)

const (
	mascotThreshold = 2
	bronzeThreshold = 5
)

// BadgeInput carries everything EvaluateBadge needs, detached from any stored record.
type BadgeInput struct {
	FollowerCount int
	Special       bool
	CustomBadge   bool
	Current       Badge
}

// EvaluateBadge maps a follower count to a badge. Special users and users with a
// custom badge keep whatever badge they currently hold.
func EvaluateBadge(in BadgeInput) Badge {
	switch {
	case in.Special || in.CustomBadge:
		return in.Current
	case in.FollowerCount >= bronzeThreshold:
		return BadgeBronze
	case in.FollowerCount >= mascotThreshold:
		return BadgeMascot
	default:
		return BadgeNone
	}
}

// BadgePolicy applies EvaluateBadge with a configured allow-list of special users.
type BadgePolicy struct {
	special map[int64]struct{}
}

func NewBadgePolicy(specialIDs []int64) BadgePolicy {
	special := make(map[int64]struct{}, len(specialIDs))
	for _, id := range specialIDs {
		special[id] = struct{}{}
	}
	return BadgePolicy{special: special}
}

// IsSpecial reports whether id is on the allow-list.
func (p BadgePolicy) IsSpecial(id int64) bool {
	_, ok := p.special[id]
	return ok
}

// Evaluate computes the badge of a user holding followerCount followers.
func (p BadgePolicy) Evaluate(user User, followerCount int) Badge {
	return EvaluateBadge(BadgeInput{
		FollowerCount: followerCount,
		Special:       p.IsSpecial(user.ID),
		CustomBadge:   user.CustomBadge,
		Current:       user.Badge,
	})
}
