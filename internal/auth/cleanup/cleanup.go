package cleanup

import (
	"context"
	"time"

	"github.com/mzotova/threadline/internal/common/constants"
	"github.com/mzotova/threadline/internal/common/logger"
	"github.com/mzotova/threadline/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartSessionCleanup periodically removes expired session rows until the
// context is cancelled.
func StartSessionCleanup(ctx context.Context, repo ExpiredDeleter, log *logger.Logger) {
	StartSessionCleanupEvery(ctx, repo, log, constants.SessionCleanupInterval)
}

func StartSessionCleanupEvery(ctx context.Context, repo ExpiredDeleter, log *logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Errorf("session cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				metrics.SessionsCleanupDeleted.Add(float64(deleted))
				log.Infof("session cleanup: deleted %d expired sessions", deleted)
			}
		}
	}
}
