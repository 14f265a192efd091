package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RunJanitor periodically purges expired sessions until ctx is cancelled.
func RunJanitor(ctx context.Context, purger Purger, interval time.Duration, logger *logrus.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpired(ctx)
			if err != nil {
				logger.Warnf("purge expired sessions: %v", err)
				continue
			}
			if n > 0 {
				logger.WithField("count", n).Info("purged expired sessions")
			}
		}
	}
}
