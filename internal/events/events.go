package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Type names a social event.
type Type string

const (
	UserRegistered Type = "user.registered"
	UserFollowed   Type = "user.followed"
	UserUnfollowed Type = "user.unfollowed"
	PostCreated    Type = "post.created"
	PostDeleted    Type = "post.deleted"
	PostLiked      Type = "post.liked"
	PostUnliked    Type = "post.unliked"
)

// Event is published after a state change has been committed.
type Event struct {
	Type       Type      `json:"type"`
	ActorID    int64     `json:"actor_id"`
	SubjectID  int64     `json:"subject_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event stamped with the current time.
func New(t Type, actorID, subjectID int64) Event {
	return Event{Type: t, ActorID: actorID, SubjectID: subjectID, OccurredAt: time.Now().UTC()}
}

// Key partitions events by the user that caused them.
func (e Event) Key() []byte {
	return []byte(strconv.FormatInt(e.ActorID, 10))
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogPublisher writes events to the application log. It is used when no broker is configured.
type LogPublisher struct {
	logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.WithFields(logrus.Fields{
		"event":   event.Type,
		"actor":   event.ActorID,
		"subject": event.SubjectID,
	}).Debug("social event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
