package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialboard/internal/domain"
	"socialboard/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	profile_picture TEXT NOT NULL DEFAULT '/uploads/default.png',
	custom_badge INTEGER NOT NULL DEFAULT 0,
	badge TEXT NOT NULL DEFAULT 'No Badge',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS follows (
	follower_id INTEGER NOT NULL,
	followee_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (follower_id, followee_id),
	CHECK (follower_id <> followee_id),
	FOREIGN KEY(follower_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY(followee_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_follows_followee_id ON follows(followee_id);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ProfilePicture == "" {
		user.ProfilePicture = domain.DefaultProfilePicture
	}
	if user.Badge == "" {
		user.Badge = domain.BadgeNone
	}

	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO users (username, password_hash, profile_picture, custom_badge, badge, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.ProfilePicture,
		user.CustomBadge,
		string(user.Badge),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
SELECT id, username, password_hash, profile_picture, custom_badge, badge, created_at, updated_at
FROM users
WHERE username = ?`,
		username,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return user, r.loadGraph(ctx, user)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
SELECT id, username, password_hash, profile_picture, custom_badge, badge, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return user, r.loadGraph(ctx, user)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, username, profilePicture string) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
UPDATE users
SET username=?, profile_picture=?, updated_at=?
WHERE id=?`,
		username,
		profilePicture,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("update user profile: %w", err)
	}
	return expectAffected(res, domain.ErrUserNotFound)
}

func (r *UserRepository) UpdateBadge(ctx context.Context, id int64, badge domain.Badge) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
UPDATE users
SET badge=?, updated_at=?
WHERE id=?`,
		string(badge),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update user badge: %w", err)
	}
	return expectAffected(res, domain.ErrUserNotFound)
}

func (r *UserRepository) AddFollow(ctx context.Context, followerID, followeeID int64) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO follows (follower_id, followee_id, created_at)
VALUES (?, ?, ?)
ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID,
		followeeID,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return expectAffected(res, domain.ErrAlreadyFollowing)
}

func (r *UserRepository) RemoveFollow(ctx context.Context, followerID, followeeID int64) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
DELETE FROM follows
WHERE follower_id=? AND followee_id=?`,
		followerID,
		followeeID,
	)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return expectAffected(res, domain.ErrNotFollowing)
}

func (r *UserRepository) CountFollowers(ctx context.Context, id int64) (int, error) {
	var count int
	if err := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
SELECT COUNT(*) FROM follows WHERE followee_id=?`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count followers: %w", err)
	}
	return count, nil
}

func (r *UserRepository) loadGraph(ctx context.Context, user *domain.User) error {
	following, err := r.listIDs(ctx, `
SELECT followee_id FROM follows
WHERE follower_id=?
ORDER BY created_at ASC, rowid ASC`, user.ID)
	if err != nil {
		return fmt.Errorf("query following: %w", err)
	}
	followers, err := r.listIDs(ctx, `
SELECT follower_id FROM follows
WHERE followee_id=?
ORDER BY created_at ASC, rowid ASC`, user.ID)
	if err != nil {
		return fmt.Errorf("query followers: %w", err)
	}
	user.Following = following
	user.Followers = followers
	return nil
}

func (r *UserRepository) listIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := repository.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user  domain.User
		badge string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.ProfilePicture,
		&user.CustomBadge,
		&badge,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Badge = domain.Badge(badge)
	return &user, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

func expectAffected(res sql.Result, notAffected error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notAffected
	}
	return nil
}
