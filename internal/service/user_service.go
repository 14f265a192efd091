package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"socialboard/internal/domain"
	"socialboard/internal/events"
	"socialboard/internal/repository"
	"socialboard/internal/storage"
)

// PasswordCost is the bcrypt cost used for new password hashes.
const PasswordCost = 10

const (
	maxUsernameLength = 32
	minPasswordLength = 8
)

// Profile is a user together with the posts and graph counts shown on a profile page.
type Profile struct {
	User           *domain.User
	Posts          []domain.Post
	FollowersCount int
	FollowingCount int
}

// UpdateProfileInput carries the optional fields of a profile update.
type UpdateProfileInput struct {
	Username string
	Picture  *Upload
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Profile(ctx context.Context, id int64) (*Profile, error)
	UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*domain.User, error)
	UploadPicture(ctx context.Context, id int64, upload Upload) (*domain.User, error)
}

type userService struct {
	users     repository.UserRepository
	posts     repository.PostRepository
	pictures  storage.Service
	maxUpload int64
	events    events.Publisher
	logger    *logrus.Logger
}

func NewUserService(
	users repository.UserRepository,
	posts repository.PostRepository,
	pictures storage.Service,
	maxUpload int64,
	publisher events.Publisher,
	logger *logrus.Logger,
) UserService {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &userService{
		users:     users,
		posts:     posts,
		pictures:  pictures,
		maxUpload: maxUpload,
		events:    publisher,
		logger:    logger,
	}
}

func (s *userService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, validation("password is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, internal("hash password", err)
	}

	user := &domain.User{
		Username:       username,
		PasswordHash:   string(hash),
		ProfilePicture: domain.DefaultProfilePicture,
		Following:      []int64{},
		Followers:      []int64{},
		Badge:          domain.BadgeNone,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, internal("create user", err)
	}

	publish(ctx, s.events, s.logger, events.New(events.UserRegistered, user.ID, user.ID))
	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internal("get user", err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) Profile(ctx context.Context, id int64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internal("get user", err)
	}
	posts, err := s.posts.ListByAuthor(ctx, id)
	if err != nil {
		return nil, internal("list posts", err)
	}
	return &Profile{
		User:           sanitizeUser(user),
		Posts:          posts,
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*domain.User, error) {
	if id <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, internal("get user", err)
	}

	username := user.Username
	if trimmed := strings.TrimSpace(in.Username); trimmed != "" {
		if err := validateUsername(trimmed); err != nil {
			return nil, err
		}
		username = trimmed
	}

	picture := user.ProfilePicture
	var storedKey string
	if in.Picture != nil {
		storedKey, picture, err = s.storePicture(ctx, id, *in.Picture)
		if err != nil {
			return nil, err
		}
	}

	if err := s.users.UpdateProfile(ctx, id, username, picture); err != nil {
		if storedKey != "" {
			if delErr := s.pictures.Delete(ctx, storedKey); delErr != nil {
				s.logger.Warnf("remove orphaned picture %s: %v", storedKey, delErr)
			}
		}
		return nil, internal("update profile", err)
	}

	user.Username = username
	user.ProfilePicture = picture
	return sanitizeUser(user), nil
}

func (s *userService) UploadPicture(ctx context.Context, id int64, upload Upload) (*domain.User, error) {
	return s.UpdateProfile(ctx, id, UpdateProfileInput{Picture: &upload})
}

func (s *userService) storePicture(ctx context.Context, userID int64, upload Upload) (string, string, error) {
	ext, err := validateUpload(upload, s.maxUpload)
	if err != nil {
		return "", "", err
	}
	if s.pictures == nil {
		return "", "", internal("store picture", fmt.Errorf("picture storage not configured"))
	}

	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)
	url, err := s.pictures.Put(ctx, storage.Object{
		Key:         key,
		ContentType: upload.ContentType,
		Size:        upload.Size,
		Body:        limitBody(upload, s.maxUpload),
	})
	if err != nil {
		return "", "", internal("store picture", err)
	}
	return key, url, nil
}

func validateUsername(username string) error {
	if username == "" {
		return validation("username is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return validation(fmt.Sprintf("username must be at most %d characters", maxUsernameLength))
	}
	if strings.ContainsAny(username, " \t\r\n/") {
		return validation("username must not contain spaces or slashes")
	}
	return nil
}
