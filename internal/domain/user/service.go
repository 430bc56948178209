package user

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/event"
	"github.com/google/uuid"
)

// Registration is the input of Register and CreateByAdmin.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AdminCreate extends Registration with fields only an administrator may set.
type AdminCreate struct {
	Registration
	Role     Role
	Verified bool
}

// AdminUpdate is a partial update made from the back-office.
type AdminUpdate struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Role          *Role
	AccountStatus *AccountStatus
	Password      *string
}

// ProfileUpdate is a partial update made by the user.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Password  *string
}

type Option func(*Service)

func WithTokenTTLs(verification, reset time.Duration) Option {
	return func(s *Service) {
		s.verificationTTL = verification
		s.resetTTL = reset
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service handles accounts, email verification and password reset.
type Service struct {
	repo            Repository
	publisher       event.Publisher
	verificationTTL time.Duration
	resetTTL        time.Duration
	now             func() time.Time
}

func NewService(repo Repository, publisher event.Publisher, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		publisher:       publisher,
		verificationTTL: time.Hour,
		resetTTL:        time.Hour,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unverified customer and issues a verification token.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, error) {
	u, err := s.newUser(reg, RoleCustomer)
	if err != nil {
		return nil, err
	}
	s.issueVerificationToken(u)

	if err := s.insert(ctx, u); err != nil {
		return nil, err
	}

	s.emitToken(ctx, u, EventUserRegistered, u.VerificationToken, *u.TokenExpiry)
	return u, nil
}

// CreateByAdmin creates an account from the back-office, optionally verified.
func (s *Service) CreateByAdmin(ctx context.Context, in AdminCreate) (*User, error) {
	role := in.Role
	if role == "" {
		role = RoleCustomer
	}
	if !role.valid() {
		return nil, ErrInvalidRole
	}
	u, err := s.newUser(in.Registration, role)
	if err != nil {
		return nil, err
	}
	if in.Verified {
		u.IsEmailVerified = true
	} else {
		s.issueVerificationToken(u)
	}

	if err := s.insert(ctx, u); err != nil {
		return nil, err
	}

	if !in.Verified {
		s.emitToken(ctx, u, EventUserRegistered, u.VerificationToken, *u.TokenExpiry)
	}
	return u, nil
}

// EnsureAdmin creates a verified administrator unless the email is taken.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	existing, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	_, err = s.CreateByAdmin(ctx, AdminCreate{
		Registration: Registration{FirstName: "Store", LastName: "Admin", Email: email, Password: password},
		Role:         RoleAdmin,
		Verified:     true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// VerifyEmail consumes a verification token. A consumed token is cleared and
// cannot be replayed.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenNotFound
	}
	u, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrTokenNotFound
	}
	now := s.now().UTC()
	if u.TokenExpiry == nil || !now.Before(*u.TokenExpiry) {
		return nil, ErrTokenExpired
	}

	u.IsEmailVerified = true
	u.VerificationToken = ""
	u.TokenExpiry = nil
	u.UpdatedAt = now
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	event.Emit(ctx, s.publisher, u.UserID, AggregateType, EventEmailVerified, EmailVerified{
		UserID:     u.UserID,
		VerifiedAt: now,
	})
	return u, nil
}

// ResendVerification issues a fresh token for an unverified account.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	if u.IsEmailVerified {
		return ErrAlreadyVerified
	}

	s.issueVerificationToken(u)
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.emitToken(ctx, u, EventVerificationRequested, u.VerificationToken, *u.TokenExpiry)
	return nil
}

// Authenticate checks credentials for login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if u.AccountStatus != StatusActive {
		return nil, ErrAccountInactive
	}
	if !u.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// RequestPasswordReset issues a reset token. An unknown email is not reported
// to the caller so addresses cannot be probed.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if u == nil {
		log.Printf("[User] Password reset requested for unknown address")
		return nil
	}

	now := s.now().UTC()
	expiry := now.Add(s.resetTTL)
	u.ResetToken = uuid.New().String()
	u.ResetExpiry = &expiry
	u.UpdatedAt = now
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.emitToken(ctx, u, EventPasswordResetRequested, u.ResetToken, expiry)
	return nil
}

// CheckResetToken reports whether token can still be used.
func (s *Service) CheckResetToken(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenNotFound
	}
	u, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrTokenNotFound
	}
	if u.ResetExpiry == nil || !s.now().UTC().Before(*u.ResetExpiry) {
		return nil, ErrTokenExpired
	}
	return u, nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	u, err := s.CheckResetToken(ctx, token)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	u.PasswordHash = hash
	u.ResetToken = ""
	u.ResetExpiry = nil
	u.UpdatedAt = now
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	event.Emit(ctx, s.publisher, u.UserID, AggregateType, EventPasswordReset, PasswordReset{
		UserID:  u.UserID,
		ResetAt: now,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Update applies a back-office edit.
func (s *Service) Update(ctx context.Context, userID string, in AdminUpdate) (*User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		u.Email = NormalizeEmail(*in.Email)
	}
	if in.Role != nil {
		if !in.Role.valid() {
			return nil, ErrInvalidRole
		}
		u.Role = *in.Role
	}
	if in.AccountStatus != nil {
		if !in.AccountStatus.valid() {
			return nil, ErrInvalidStatus
		}
		u.AccountStatus = *in.AccountStatus
	}
	if err := validateProfile(u.FirstName, u.LastName, u.Email); err != nil {
		return nil, err
	}
	if err := s.applyPassword(u, in.Password); err != nil {
		return nil, err
	}

	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile applies an edit made by the account owner.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*User, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if err := validateProfile(u.FirstName, u.LastName, u.Email); err != nil {
		return nil, err
	}
	if err := s.applyPassword(u, in.Password); err != nil {
		return nil, err
	}

	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	deleted, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	event.Emit(ctx, s.publisher, userID, AggregateType, EventUserDeleted, UserDeleted{
		UserID:    userID,
		DeletedAt: s.now().UTC(),
	})
	return nil
}

func (s *Service) newUser(reg Registration, role Role) (*User, error) {
	firstName := strings.TrimSpace(reg.FirstName)
	lastName := strings.TrimSpace(reg.LastName)
	email := NormalizeEmail(reg.Email)
	if err := validateProfile(firstName, lastName, email); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return &User{
		UserID:        uuid.New().String(),
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		AccountStatus: StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (s *Service) insert(ctx context.Context, u *User) error {
	existing, err := s.repo.FindByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	// The unique index still guards against a concurrent registration.
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Service) issueVerificationToken(u *User) {
	expiry := s.now().UTC().Add(s.verificationTTL)
	u.VerificationToken = uuid.New().String()
	u.TokenExpiry = &expiry
}

func (s *Service) applyPassword(u *User, password *string) error {
	if password == nil || *password == "" {
		return nil
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (s *Service) emitToken(ctx context.Context, u *User, eventType, token string, expiresAt time.Time) {
	event.Emit(ctx, s.publisher, u.UserID, AggregateType, eventType, TokenIssued{
		UserID:    u.UserID,
		Email:     u.Email,
		FirstName: u.FirstName,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
