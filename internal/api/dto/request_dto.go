package dto

import (
	"time"

	"github.com/gasworks/servicedesk/internal/domain"
)

// CreateRequest payload for filing a new service request. Sent either as
// JSON or as multipart form fields alongside an optional file.
type CreateRequest struct {
	ServiceTypeID string `json:"service_type_id" form:"service_type_id"`
	Description   string `json:"description" form:"description"`
	Priority      string `json:"priority" form:"priority"`
}

// RequestSummary response row for request listings.
type RequestSummary struct {
	RequestNumber string                 `json:"request_number"`
	ServiceTypeID string                 `json:"service_type_id"`
	Description   string                 `json:"description"`
	Status        domain.RequestStatus   `json:"status"`
	Priority      domain.RequestPriority `json:"priority"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// RequestDetailResponse provides full request info for customers.
type RequestDetailResponse struct {
	RequestSummary
	StatusUpdates []StatusUpdateResponse `json:"status_updates"`
	Attachments   []AttachmentResponse   `json:"attachments"`
}

// StaffRequestResponse adds staff-only fields to the detail view.
type StaffRequestResponse struct {
	RequestDetailResponse
	CustomerID      string  `json:"customer_id"`
	AssignedStaffID *string `json:"assigned_staff_id"`
	SupportNotes    string  `json:"support_notes,omitempty"`
}

// StatusUpdateResponse represents one audit trail entry.
type StatusUpdateResponse struct {
	ID             string               `json:"id"`
	PreviousStatus domain.RequestStatus `json:"previous_status"`
	NewStatus      domain.RequestStatus `json:"new_status"`
	UpdatedByID    *string              `json:"updated_by_id"`
	Notes          string               `json:"notes,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// AttachmentResponse metadata for a stored file.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TransitionRequest payload for staff status changes.
type TransitionRequest struct {
	Status domain.RequestStatus `json:"status"`
	Notes  string               `json:"notes"`
}

// StaffUpdateRequest payload for the staff edit endpoint.
type StaffUpdateRequest struct {
	Priority        domain.RequestPriority `json:"priority,omitempty"`
	AssignedStaffID *string                `json:"assigned_staff_id"`
	ClearAssignee   bool                   `json:"clear_assignee"`
	SupportNotes    *string                `json:"support_notes"`
	Status          domain.RequestStatus   `json:"status,omitempty"`
	StatusNotes     string                 `json:"status_notes"`
}

// StatusCountsResponse holds the live per-status totals.
type StatusCountsResponse struct {
	Counts map[domain.RequestStatus]int `json:"counts"`
	Total  int                          `json:"total"`
}
