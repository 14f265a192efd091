package repository

import (
	"context"

	"socialboard/internal/domain"
)

// UserRepository defines persistence operations for User entities and the follow graph.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, username, profilePicture string) error
	UpdateBadge(ctx context.Context, id int64, badge domain.Badge) error

	// AddFollow records followerID -> followeeID. It returns domain.ErrAlreadyFollowing
	// when the edge exists.
	AddFollow(ctx context.Context, followerID, followeeID int64) error
	// RemoveFollow deletes followerID -> followeeID. It returns domain.ErrNotFollowing
	// when there was no such edge.
	RemoveFollow(ctx context.Context, followerID, followeeID int64) error
	CountFollowers(ctx context.Context, id int64) (int, error)
}
