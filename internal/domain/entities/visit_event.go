package entities

import (
	"time"

	"github.com/google/uuid"
)

// VisitEventType represents the type of visit event
type VisitEventType string

const (
	VisitEventTypeInvoiceCreated     VisitEventType = "invoice_created"
	VisitEventTypeInvoicePrinted     VisitEventType = "invoice_printed"
	VisitEventTypeDocumentUploaded   VisitEventType = "document_uploaded"
	VisitEventTypeFormFPrinted       VisitEventType = "form_f_printed"
	VisitEventTypeNextActionResolved VisitEventType = "next_action_resolved"
)

// VisitEvent is published whenever a fact that feeds the workflow changes
type VisitEvent struct {
	ID        string                 `json:"id"`
	VisitID   string                 `json:"visit_id"`
	EventType VisitEventType         `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewVisitEvent creates a new visit event
func NewVisitEvent(visitID string, eventType VisitEventType, payload map[string]interface{}) *VisitEvent {
	return &VisitEvent{
		ID:        uuid.NewString(),
		VisitID:   visitID,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
