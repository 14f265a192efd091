package domain

import "time"

// DefaultProfilePicture is assigned to users that never uploaded a picture.
const DefaultProfilePicture = "/uploads/default.png"

// User represents a member of the network together with its side of the follow graph.
type User struct {
	ID             int64
	Username       string
	PasswordHash   string
	ProfilePicture string
	Following      []int64
	Followers      []int64
	CustomBadge    bool
	Badge          Badge
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(id int64) bool {
	return containsID(u.Following, id)
}

// HasFollower reports whether the user with the given id follows u.
func (u *User) HasFollower(id int64) bool {
	return containsID(u.Followers, id)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
