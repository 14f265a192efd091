package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"socialboard/internal/domain"
	"socialboard/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	profile_picture TEXT NOT NULL DEFAULT '/uploads/default.png',
	custom_badge BOOLEAN NOT NULL DEFAULT FALSE,
	badge TEXT NOT NULL DEFAULT 'No Badge',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS follows (
	follower_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	followee_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (follower_id, followee_id),
	CHECK (follower_id <> followee_id)
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

	err := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
INSERT INTO users (username, password_hash, profile_picture, custom_badge, badge, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`,
		user.Username,
		user.PasswordHash,
		user.ProfilePicture,
		user.CustomBadge,
		string(user.Badge),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var (
		user  domain.User
		badge string
	)
	err := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
SELECT id, username, password_hash, profile_picture, custom_badge, badge, created_at, updated_at
FROM users
`+where, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.ProfilePicture,
		&user.CustomBadge,
		&badge,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Badge = domain.Badge(badge)

	conn := repository.Conn(ctx, r.db)
	rows, err := conn.QueryContext(ctx, `
SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at, followee_id`, user.ID)
	if err != nil {
		return nil, fmt.Errorf("query following: %w", err)
	}
	if user.Following, err = scanIDs(rows); err != nil {
		return nil, fmt.Errorf("scan following: %w", err)
	}

	rows, err = conn.QueryContext(ctx, `
SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at, follower_id`, user.ID)
	if err != nil {
		return nil, fmt.Errorf("query followers: %w", err)
	}
	if user.Followers, err = scanIDs(rows); err != nil {
		return nil, fmt.Errorf("scan followers: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, username, profilePicture string) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
UPDATE users SET username=$1, profile_picture=$2, updated_at=$3 WHERE id=$4`,
		username, profilePicture, time.Now().UTC(), id)
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
UPDATE users SET badge=$1, updated_at=$2 WHERE id=$3`,
		string(badge), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update user badge: %w", err)
	}
	return expectAffected(res, domain.ErrUserNotFound)
}

func (r *UserRepository) AddFollow(ctx context.Context, followerID, followeeID int64) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
INSERT INTO follows (follower_id, followee_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return expectAffected(res, domain.ErrAlreadyFollowing)
}

func (r *UserRepository) RemoveFollow(ctx context.Context, followerID, followeeID int64) error {
	res, err := repository.Conn(ctx, r.db).ExecContext(ctx, `
DELETE FROM follows WHERE follower_id=$1 AND followee_id=$2`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return expectAffected(res, domain.ErrNotFollowing)
}

func (r *UserRepository) CountFollowers(ctx context.Context, id int64) (int, error) {
	var count int
	if err := repository.Conn(ctx, r.db).QueryRowContext(ctx, `
SELECT COUNT(*) FROM follows WHERE followee_id=$1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count followers: %w", err)
	}
	return count, nil
}
