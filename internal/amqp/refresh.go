package amqp

import (
	"context"
	"slices"

	"outreach/internal/log"
	"outreach/internal/store"
)

// RefreshHandler returns a Consume handler that replays changes made by
// other processes into live. The instance's own changes and unknown
// collections are acknowledged without work.
func RefreshHandler(live *store.Live, logger *log.Logger) func(context.Context, *ChangeMessage) error {
	logger = logger.WithComponent(log.ComponentAMQP)
	return func(ctx context.Context, msg *ChangeMessage) error {
		if msg.Origin == live.Origin() {
			return nil
		}
		if !slices.Contains(store.Collections(), msg.Collection) {
			logger.WarnContext(ctx, "Ignoring change for unknown collection", log.FieldCollection, msg.Collection)
			return nil
		}
		logger.DebugContext(ctx, "Refreshing from remote change",
			log.FieldCollection, msg.Collection,
			log.FieldOrigin, msg.Origin,
			log.FieldOperation, log.OpRefresh)
		return live.Refresh(ctx, msg.Collection)
	}
}
