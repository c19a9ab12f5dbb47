package domain

import "time"

// Attachment is metadata for a file attached to a service request. The
// bytes themselves live in the blob store under StorageKey.
type Attachment struct {
	ID               string
	ServiceRequestID string
	StorageKey       string
	Filename         string
	SizeBytes        int64
	UploadedAt       time.Time
}
