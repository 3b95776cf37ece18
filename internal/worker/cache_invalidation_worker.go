package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/hardware-store/internal/cache"
	"github.com/spec-kit/hardware-store/internal/events"
)

// StartCacheInvalidationWorker evicts cached users whenever a user event is published.
func StartCacheInvalidationWorker(dispatcher events.Dispatcher, users cache.UserCache, logger *zap.Logger) {
	if dispatcher == nil || users == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	evict := func(ctx context.Context, event events.Event) error {
		if err := users.Delete(ctx, event.UserID); err != nil {
			logger.Warn("user cache eviction failed",
				zap.String("event", string(event.Type)),
				zap.String("user_id", event.UserID),
				zap.Error(err))
			return err
		}
		logger.Debug("user cache evicted", zap.String("event", string(event.Type)), zap.String("user_id", event.UserID))
		return nil
	}

	dispatcher.Subscribe(events.EventUserChanged, evict)
	dispatcher.Subscribe(events.EventUserDeleted, evict)
}
