package user

import "time"

const (
	EventUserRegistered         = "UserRegistered"
	EventVerificationRequested  = "VerificationRequested"
	EventEmailVerified          = "EmailVerified"
	EventPasswordResetRequested = "PasswordResetRequested"
	EventPasswordReset          = "PasswordReset"
	EventUserDeleted            = "UserDeleted"
)

// TokenIssued carries a one-time token to the mailer. It is the payload of
// UserRegistered, VerificationRequested and PasswordResetRequested.
type TokenIssued struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type EmailVerified struct {
	UserID     string    `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

type PasswordReset struct {
	UserID  string    `json:"user_id"`
	ResetAt time.Time `json:"reset_at"`
}

type UserDeleted struct {
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
