package repository

import (
	"context"

	"socialboard/internal/domain"
)

// PostRepository exposes persistence operations for posts and their likes.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	// List returns every post, newest first, with Author populated.
	List(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error)
	Delete(ctx context.Context, id int64) error

	AddLike(ctx context.Context, postID, userID int64) error
	RemoveLike(ctx context.Context, postID, userID int64) error
	CountLikes(ctx context.Context, postID int64) (int, error)
}
