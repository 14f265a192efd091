package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"socialboard/internal/domain"
	"socialboard/internal/events"
	"socialboard/internal/observability"
	"socialboard/internal/repository"
)

// PostService coordinates post level operations backed by repositories.
type PostService interface {
	Create(ctx context.Context, authorID int64, content string) (*domain.Post, error)
	Feed(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error)
	ToggleLike(ctx context.Context, postID, userID int64) (domain.LikeState, error)
	Delete(ctx context.Context, postID, actorID int64) error
}

type postService struct {
	posts  repository.PostRepository
	tx     repository.Transactor
	events events.Publisher
	logger *logrus.Logger
}

func NewPostService(posts repository.PostRepository, tx repository.Transactor, publisher events.Publisher, logger *logrus.Logger) PostService {
	return &postService{
		posts:  posts,
		tx:     tx,
		events: publisher,
		logger: logger,
	}
}

func (s *postService) Create(ctx context.Context, authorID int64, content string) (*domain.Post, error) {
	if authorID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validation("post content is required")
	}
	if utf8.RuneCountInString(content) > domain.MaxPostLength {
		return nil, validation(fmt.Sprintf("post must be at most %d characters", domain.MaxPostLength))
	}

	post := &domain.Post{
		Content:  content,
		AuthorID: authorID,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, internal("create post", err)
	}

	publish(ctx, s.events, s.logger, events.New(events.PostCreated, authorID, post.ID))
	return post, nil
}

func (s *postService) Feed(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, internal("list posts", err)
	}
	return posts, nil
}

func (s *postService) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, internal("list posts by author", err)
	}
	return posts, nil
}

func (s *postService) ToggleLike(ctx context.Context, postID, userID int64) (domain.LikeState, error) {
	if userID <= 0 {
		return domain.LikeState{}, domain.ErrUnauthenticated
	}

	var state domain.LikeState
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		post, err := s.posts.Get(ctx, postID)
		if err != nil {
			return err
		}

		if post.LikedBy(userID) {
			err = s.posts.RemoveLike(ctx, postID, userID)
		} else {
			err = s.posts.AddLike(ctx, postID, userID)
		}
		if err != nil {
			return err
		}

		count, err := s.posts.CountLikes(ctx, postID)
		if err != nil {
			return err
		}
		state = domain.LikeState{Liked: !post.LikedBy(userID), Count: count}
		return nil
	})
	if err != nil {
		return domain.LikeState{}, internal("toggle like", err)
	}

	if state.Liked {
		observability.LikeTogglesTotal.WithLabelValues("liked").Inc()
		publish(ctx, s.events, s.logger, events.New(events.PostLiked, userID, postID))
	} else {
		observability.LikeTogglesTotal.WithLabelValues("unliked").Inc()
		publish(ctx, s.events, s.logger, events.New(events.PostUnliked, userID, postID))
	}
	return state, nil
}

func (s *postService) Delete(ctx context.Context, postID, actorID int64) error {
	if actorID <= 0 {
		return domain.ErrUnauthenticated
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		post, err := s.posts.Get(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != actorID {
			return domain.ErrForbidden
		}
		return s.posts.Delete(ctx, postID)
	})
	if err != nil {
		return internal("delete post", err)
	}

	publish(ctx, s.events, s.logger, events.New(events.PostDeleted, actorID, postID))
	return nil
}
