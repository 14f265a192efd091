package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"socialboard/internal/events"
)

// publish delivers e after the triggering change committed. Failures are logged only.
func publish(ctx context.Context, p events.Publisher, logger *logrus.Logger, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil && logger != nil {
		logger.WithField("event", e.Type).Warnf("publish event: %v", err)
	}
}
