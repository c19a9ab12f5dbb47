package domain

import "time"

// UserRole distinguishes customers from support staff.
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleStaff    UserRole = "STAFF"
)

// User is the domain model for any authenticated account, customer or staff.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStaff reports whether the user may perform support operations.
func (u *User) IsStaff() bool {
	return u != nil && u.Role == RoleStaff
}

// CustomerProfile stores utility-account details for a customer.
// CustomerNotes is visible to support staff only.
type CustomerProfile struct {
	UserID        string
	AccountNumber string
	Address       string
	PhoneNumber   string
	CustomerNotes string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
