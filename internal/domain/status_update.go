package domain

import "time"

// StatusInitial is the sentinel previous-status of the very first audit
// entry of a request.
const StatusInitial RequestStatus = ""

// InitialUpdateNotes is recorded on the audit entry created together with
// the request itself.
const InitialUpdateNotes = "Service request created"

// StatusUpdate is an immutable audit entry describing one status
// transition of a service request. Entries for a request, newest first,
// chain together: each PreviousStatus equals the NewStatus of the
// next-older entry, except the oldest whose PreviousStatus is StatusInitial.
type StatusUpdate struct {
	ID               string
	ServiceRequestID string
	PreviousStatus   RequestStatus
	NewStatus        RequestStatus
	UpdatedByID      *string
	Notes            string
	CreatedAt        time.Time
}
