package services

import (
	"context"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
)

// publishVisitEvent sends event on the visit's channel and the global one.
// The change it announces is already committed, so failures are only logged.
func publishVisitEvent(ctx context.Context, bus providers.EventBus, event *entities.VisitEvent) {
	if bus == nil {
		return
	}
	for _, channel := range []string{providers.GetVisitChannel(event.VisitID), providers.EventChannelVisitUpdates} {
		if err := bus.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("channel", channel).
				Str("event_type", string(event.EventType)).
				Msg("failed to publish visit event")
		}
	}
}
