package events

import (
	"time"

	"github.com/gasworks/servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestAssigned      EventType = "request_assigned"
	EventAttachmentAdded      EventType = "attachment_added"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string          `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	RequestNumber string      `json:"request_number"`
	Actor         Actor       `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	ServiceTypeID string                 `json:"service_type_id"`
	Priority      domain.RequestPriority `json:"priority"`
	Description   string                 `json:"description"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	PreviousStatus domain.RequestStatus `json:"previous_status"`
	NewStatus      domain.RequestStatus `json:"new_status"`
	Notes          string               `json:"notes,omitempty"`
}

// RequestAssignedPayload payload.
type RequestAssignedPayload struct {
	AssignedStaffID *string `json:"assigned_staff_id,omitempty"`
}

// AttachmentAddedPayload payload.
type AttachmentAddedPayload struct {
	AttachmentID string `json:"attachment_id"`
	Filename     string `json:"filename"`
	SizeBytes    int64  `json:"size_bytes"`
}
