package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"socialboard/internal/domain"
	"socialboard/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	author_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
CREATE TABLE IF NOT EXISTS post_likes (
	post_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (post_id, user_id),
	FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

const selectPosts = `
SELECT p.id, p.content, p.author_id, p.created_at, u.username, u.profile_picture
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

	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO posts (content, author_id, created_at)
VALUES (?, ?, ?)`,
		post.Content,
		post.AuthorID,
		post.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	post.ID = id
	post.Likes = []int64{}
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := repository.Conn(ctx, r.db).QueryRowContext(ctx, selectPosts+`
WHERE p.id=?`, id)

	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if post.Likes, err = r.listLikes(ctx, post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.queryPosts(ctx, selectPosts+`
ORDER BY p.created_at DESC, p.id DESC`)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error) {
	return r.queryPosts(ctx, selectPosts+`
WHERE p.author_id=?
ORDER BY p.created_at DESC, p.id DESC`, authorID)
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectAffected(res, domain.ErrPostNotFound)
}

func (r *PostRepository) AddLike(ctx context.Context, postID, userID int64) error {
	if _, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO post_likes (post_id, user_id, created_at)
VALUES (?, ?, ?)
ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID,
		userID,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID int64) error {
	if _, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
DELETE FROM post_likes
WHERE post_id=? AND user_id=?`,
		postID,
		userID,
	); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

func (r *PostRepository) CountLikes(ctx context.Context, postID int64) (int, error) {
	var count int
	if err := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
SELECT COUNT(*) FROM post_likes WHERE post_id=?`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// queryPosts reads all matching posts before loading likes; the sqlite pool has a
// single connection, so rows must be closed before the next query.
func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := repository.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	rows.Close()

	for i := range posts {
		if posts[i].Likes, err = r.listLikes(ctx, posts[i].ID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (r *PostRepository) listLikes(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := repository.Conn(ctx, r.db).QueryContext(ctx, `
SELECT user_id FROM post_likes
WHERE post_id=?
ORDER BY created_at ASC, rowid ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	likes := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, id)
	}
	return likes, rows.Err()
}

func scanPost(scanner interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var (
		post   domain.Post
		author domain.Author
	)
	if err := scanner.Scan(
		&post.ID,
		&post.Content,
		&post.AuthorID,
		&post.CreatedAt,
		&author.Username,
		&author.ProfilePicture,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	author.ID = post.AuthorID
	post.Author = &author
	return &post, nil
}
