package dto

import "time"

// RegisterRequest payload for new customer accounts.
type RegisterRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	AccountNumber string `json:"account_number"`
	Address       string `json:"address"`
	PhoneNumber   string `json:"phone_number"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse describes an account without sensitive fields.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ProfileResponse describes a customer's utility profile.
type ProfileResponse struct {
	UserID        string `json:"user_id"`
	AccountNumber string `json:"account_number"`
	Address       string `json:"address"`
	PhoneNumber   string `json:"phone_number"`
	CustomerNotes string `json:"customer_notes,omitempty"`
}

// ProfileUpdateRequest payload for profile edits.
type ProfileUpdateRequest struct {
	Address       string  `json:"address"`
	PhoneNumber   string  `json:"phone_number"`
	CustomerNotes *string `json:"customer_notes,omitempty"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// StaffMemberResponse lists an assignable staff account.
type StaffMemberResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
