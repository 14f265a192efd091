package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"socialboard/internal/domain"
	"socialboard/internal/events"
	"socialboard/internal/observability"
	"socialboard/internal/repository"
)

// SocialService mutates the follow graph. Both sides of an edge and the followee's
// badge change in one transaction.
type SocialService interface {
	Follow(ctx context.Context, actorID, targetID int64) error
	Unfollow(ctx context.Context, actorID, targetID int64) error
}

type socialService struct {
	users  repository.UserRepository
	tx     repository.Transactor
	badges domain.BadgePolicy
	events events.Publisher
	logger *logrus.Logger
}

func NewSocialService(
	users repository.UserRepository,
	tx repository.Transactor,
	badges domain.BadgePolicy,
	publisher events.Publisher,
	logger *logrus.Logger,
) SocialService {
	return &socialService{
		users:  users,
		tx:     tx,
		badges: badges,
		events: publisher,
		logger: logger,
	}
}

func (s *socialService) Follow(ctx context.Context, actorID, targetID int64) error {
	err := s.mutate(ctx, actorID, targetID, func(ctx context.Context, actor *domain.User) error {
		if actor.IsFollowing(targetID) {
			return domain.ErrAlreadyFollowing
		}
		return s.users.AddFollow(ctx, actorID, targetID)
	})
	observability.GraphMutationsTotal.WithLabelValues("follow", observability.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	publish(ctx, s.events, s.logger, events.New(events.UserFollowed, actorID, targetID))
	return nil
}

func (s *socialService) Unfollow(ctx context.Context, actorID, targetID int64) error {
	err := s.mutate(ctx, actorID, targetID, func(ctx context.Context, actor *domain.User) error {
		if !actor.IsFollowing(targetID) {
			return domain.ErrNotFollowing
		}
		return s.users.RemoveFollow(ctx, actorID, targetID)
	})
	observability.GraphMutationsTotal.WithLabelValues("unfollow", observability.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	publish(ctx, s.events, s.logger, events.New(events.UserUnfollowed, actorID, targetID))
	return nil
}

// mutate checks the preconditions shared by follow and unfollow, applies change and
// recomputes the target's badge inside a single transaction.
func (s *socialService) mutate(
	ctx context.Context,
	actorID, targetID int64,
	change func(ctx context.Context, actor *domain.User) error,
) error {
	if actorID <= 0 {
		return domain.ErrUnauthenticated
	}
	if actorID == targetID {
		return domain.ErrSelfFollow
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		actor, err := s.users.GetByID(ctx, actorID)
		if err != nil {
			return err
		}
		target, err := s.users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		if err := change(ctx, actor); err != nil {
			return err
		}
		return s.recomputeBadge(ctx, target)
	})
	return internal("mutate follow graph", err)
}

func (s *socialService) recomputeBadge(ctx context.Context, target *domain.User) error {
	count, err := s.users.CountFollowers(ctx, target.ID)
	if err != nil {
		return err
	}
	badge := s.badges.Evaluate(*target, count)
	if badge == target.Badge {
		return nil
	}
	return s.users.UpdateBadge(ctx, target.ID, badge)
}
