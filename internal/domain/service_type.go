package domain

import "time"

// ServiceType is a category of service request (leak inspection, meter
// installation, ...). Requests reference it by ID and never copy its
// fields; a type may be deactivated but not deleted while referenced.
type ServiceType struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
