package domain

import "time"

// MaxPostLength bounds the number of characters accepted for a post.
const MaxPostLength = 1000

// Post is a text post. AuthorID never changes after creation.
type Post struct {
	ID        int64
	Content   string
	AuthorID  int64
	Author    *Author
	Likes     []int64
	CreatedAt time.Time
}

// Author is the public projection of a post's author used when listing posts.
type Author struct {
	ID             int64
	Username       string
	ProfilePicture string
}

// LikedBy reports whether the user with the given id likes the post.
func (p *Post) LikedBy(userID int64) bool {
	return containsID(p.Likes, userID)
}

// LikeState is the outcome of a like toggle.
type LikeState struct {
	Liked bool
	Count int
}
