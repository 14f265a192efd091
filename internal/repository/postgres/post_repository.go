package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"socialboard/internal/domain"
	"socialboard/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	content TEXT NOT NULL,
	author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
CREATE TABLE IF NOT EXISTS post_likes (
	post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (post_id, user_id)
);
`

// likes are aggregated in one round trip, ordered by when they were added
const selectPosts = `
SELECT p.id, p.content, p.author_id, p.created_at, u.username, u.profile_picture,
	COALESCE(ARRAY(SELECT l.user_id FROM post_likes l WHERE l.post_id = p.id ORDER BY l.created_at, l.user_id), '{}')
FROM posts p
JOIN users u ON u.id = p.author_id`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if err := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
INSERT INTO posts (content, author_id, created_at)
VALUES ($1, $2, $3)
RETURNING id`,
		post.Content, post.AuthorID, post.CreatedAt,
	).Scan(&post.ID); err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	post.Likes = []int64{}
	return post.ID, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := repository.Conn(ctx, r.db).QueryRowContext(ctx, selectPosts+`
WHERE p.id=$1`, id)
	return scanPost(row)
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.queryPosts(ctx, selectPosts+`
ORDER BY p.created_at DESC, p.id DESC`)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error) {
	return r.queryPosts(ctx, selectPosts+`
WHERE p.author_id=$1
ORDER BY p.created_at DESC, p.id DESC`, authorID)
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectAffected(res, domain.ErrPostNotFound)
}

func (r *PostRepository) AddLike(ctx context.Context, postID, userID int64) error {
	if _, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO post_likes (post_id, user_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID int64) error {
	if _, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2`, postID, userID); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

func (r *PostRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	var count int
	if err := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
SELECT COUNT(*) FROM post_likes WHERE post_id=$1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := repository.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func scanPost(scanner interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var (
		post   domain.Post
		author domain.Author
		likes  pq.Int64Array
	)
	if err := scanner.Scan(
		&post.ID,
		&post.Content,
		&post.AuthorID,
		&post.CreatedAt,
		&author.Username,
		&author.ProfilePicture,
		&likes,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	author.ID = post.AuthorID
	post.Author = &author
	post.Likes = []int64(likes)
	if post.Likes == nil {
		post.Likes = []int64{}
	}
	return &post, nil
}
