package providers

import (
	"context"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to visit events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.VisitEvent) error

	// Subscribe returns a channel of events that is closed when ctx ends
	Subscribe(ctx context.Context, channel string) (<-chan *entities.VisitEvent, error)

	// Unsubscribe drops every subscriber of a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelVisitUpdates carries every visit event
	EventChannelVisitUpdates = "visit:updates"

	// EventChannelVisitPrefix is the prefix for visit-specific channels
	EventChannelVisitPrefix = "visit:"
)

// GetVisitChannel returns the channel name for a specific visit
func GetVisitChannel(visitID string) string {
	return EventChannelVisitPrefix + visitID
}
