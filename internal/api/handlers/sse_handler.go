package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/workflow"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
)

const (
	defaultHeartbeatInterval = 30 * time.Second

	// triggerConnected marks the next action sent when a stream opens
	triggerConnected = "connected"
)

// nextActionEvent is the payload of every next_action event. Trigger is the
// visit event type that caused the resolution.
type nextActionEvent struct {
	Trigger string           `json:"trigger"`
	Result  *workflow.Result `json:"result"`
}

// SSEHandler streams a visit's next action whenever one of its facts changes
type SSEHandler struct {
	eventBus  providers.EventBus
	resolver  NextActionResolver
	heartbeat time.Duration
	clients   map[string]map[chan *entities.VisitEvent]bool // channel -> clients
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus, resolver NextActionResolver) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		resolver:  resolver,
		heartbeat: defaultHeartbeatInterval,
		clients:   make(map[string]map[chan *entities.VisitEvent]bool),
	}
}

// SetHeartbeatInterval changes how often idle streams are pinged
func (h *SSEHandler) SetHeartbeatInterval(d time.Duration) {
	if d > 0 {
		h.heartbeat = d
	}
}

// StreamVisitUpdates handles GET /api/stream/visits/{id}.
// The current next action is sent on connect and again after every visit event.
func (h *SSEHandler) StreamVisitUpdates(w http.ResponseWriter, r *http.Request) {
	visitID := r.PathValue("id")
	if visitID == "" {
		respondWithError(w, http.StatusBadRequest, "visit ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx).With().Str("visit_id", visitID).Logger()

	// Resolve before committing to a stream so an unknown visit is a plain 404.
	initial, err := h.resolver.NextAction(ctx, visitID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	clientChan := make(chan *entities.VisitEvent, 10)
	channel := providers.GetVisitChannel(visitID)

	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	eventChan, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("failed to subscribe")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.sendEvent(w, "connected", map[string]interface{}{
		"visit_id":  visitID,
		"timestamp": time.Now(),
	})
	h.sendEvent(w, "next_action", nextActionEvent{Trigger: triggerConnected, Result: initial})
	flusher.Flush()

	go h.forwardEvents(ctx, eventChan, clientChan)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("client disconnected from visit stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			result, err := h.resolver.NextAction(ctx, visitID)
			if err != nil {
				logger.Warn().Err(err).Str("event_type", string(event.EventType)).Msg("failed to resolve next action")
				continue
			}
			h.sendEvent(w, "next_action", nextActionEvent{Trigger: string(event.EventType), Result: result})
			flusher.Flush()
		}
	}
}

// forwardEvents forwards events from the event bus to a client channel
func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.VisitEvent, clientChan chan<- *entities.VisitEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
				// a pending event already triggers a fresh resolution
			}
		}
	}
}

func (h *SSEHandler) registerClient(channel string, clientChan chan *entities.VisitEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.VisitEvent]bool)
	}
	h.clients[channel][clientChan] = true
}

func (h *SSEHandler) unregisterClient(channel string, clientChan chan *entities.VisitEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[channel]; exists {
		delete(clients, clientChan)
		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
}

// sendEvent sends an SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Str("event", eventType).Msg("failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
