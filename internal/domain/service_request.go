package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusOnHold     RequestStatus = "on_hold"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

// RequestStatuses lists every valid status in display order.
var RequestStatuses = []RequestStatus{
	StatusPending,
	StatusInProgress,
	StatusOnHold,
	StatusCompleted,
	StatusCancelled,
}

// ValidStatus reports whether s is one of the five lifecycle states.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// RequestPriority enumerates urgency levels.
type RequestPriority string

const (
	PriorityLow       RequestPriority = "low"
	PriorityMedium    RequestPriority = "medium"
	PriorityHigh      RequestPriority = "high"
	PriorityEmergency RequestPriority = "emergency"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p RequestPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// ServiceRequest is the aggregate for a customer's logged issue.
// RequestNumber is assigned exactly once at creation and never changes.
// SupportNotes are internal and must never be exposed to customers.
type ServiceRequest struct {
	ID              string
	RequestNumber   string
	CustomerID      string
	ServiceTypeID   string
	Description     string
	Status          RequestStatus
	Priority        RequestPriority
	AssignedStaffID *string
	SupportNotes    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
