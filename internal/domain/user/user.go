package user

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
)

const AggregateType = "User"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
)

var (
	ErrUserNotFound       = fmt.Errorf("%w: user not found", apperror.ErrNotFound)
	ErrEmailTaken         = fmt.Errorf("%w: email is already registered", apperror.ErrConflict)
	ErrInvalidEmail       = fmt.Errorf("%w: a valid email is required", apperror.ErrValidation)
	ErrInvalidName        = fmt.Errorf("%w: first and last name are required", apperror.ErrValidation)
	ErrInvalidRole        = fmt.Errorf("%w: unknown role", apperror.ErrValidation)
	ErrInvalidStatus      = fmt.Errorf("%w: unknown account status", apperror.ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperror.ErrAuth)
	ErrAccountInactive    = fmt.Errorf("%w: account is not active", apperror.ErrAuth)
	ErrEmailNotVerified   = fmt.Errorf("%w: email address is not verified", apperror.ErrAuth)
	ErrTokenNotFound      = fmt.Errorf("%w: token is invalid or already used", apperror.ErrNotFound)
	ErrTokenExpired       = fmt.Errorf("%w: token has expired", apperror.ErrValidation)
	ErrAlreadyVerified    = fmt.Errorf("%w: email address is already verified", apperror.ErrConflict)
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type User struct {
	UserID            string        `json:"user_id"`
	FirstName         string        `json:"first_name"`
	LastName          string        `json:"last_name"`
	Email             string        `json:"email"`
	PasswordHash      string        `json:"-"`
	Role              Role          `json:"role"`
	AccountStatus     AccountStatus `json:"account_status"`
	IsEmailVerified   bool          `json:"is_email_verified"`
	VerificationToken string        `json:"-"`
	TokenExpiry       *time.Time    `json:"-"`
	ResetToken        string        `json:"-"`
	ResetExpiry       *time.Time    `json:"-"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateProfile(firstName, lastName, email string) error {
	if firstName == "" || lastName == "" {
		return ErrInvalidName
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func (r Role) valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

func (s AccountStatus) valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Repository persists users. Find* methods return (nil, nil) when absent.
// Insert and Update return ErrEmailTaken on a duplicate email.
type Repository interface {
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	FindByID(ctx context.Context, userID string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, userID string) (bool, error)
}
