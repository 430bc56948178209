package user_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	service   *user.Service
	store     *mocks.MockUserStore
	publisher *mocks.MockPublisher
	clock     *clock
}

func newTestUserService() testEnv {
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := mocks.NewMockUserStore()
	publisher := mocks.NewMockPublisher()
	return testEnv{
		service:   user.NewService(store, publisher, user.WithClock(c.Now), user.WithTokenTTLs(time.Hour, 30*time.Minute)),
		store:     store,
		publisher: publisher,
		clock:     c,
	}
}

var alice = user.Registration{
	FirstName: "Alice",
	LastName:  "Liddell",
	Email:     " Alice@Example.com ",
	Password:  "wonderland1",
}

func lastToken(t *testing.T, publisher *mocks.MockPublisher) user.TokenIssued {
	t.Helper()
	events := publisher.Events()
	require.NotEmpty(t, events)
	var payload user.TokenIssued
	require.NoError(t, json.Unmarshal(events[len(events)-1].Data, &payload))
	return payload
}

func TestService_Register(t *testing.T) {
	env := newTestUserService()

	u, err := env.service.Register(context.Background(), alice)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.RoleCustomer, u.Role)
	assert.Equal(t, user.StatusActive, u.AccountStatus)
	assert.False(t, u.IsEmailVerified)
	assert.NotEmpty(t, u.VerificationToken)
	require.NotNil(t, u.TokenExpiry)
	assert.Equal(t, env.clock.now.Add(time.Hour), *u.TokenExpiry)
	assert.True(t, auth.CheckPassword("wonderland1", u.PasswordHash))

	assert.Equal(t, []string{user.EventUserRegistered}, env.publisher.EventTypes())
	payload := lastToken(t, env.publisher)
	assert.Equal(t, u.VerificationToken, payload.Token)
	assert.Equal(t, "alice@example.com", payload.Email)
}

func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name    string
		reg     user.Registration
		wantErr error
	}{
		{"missing first name", user.Registration{LastName: "L", Email: "a@b.co", Password: "password1"}, user.ErrInvalidName},
		{"bad email", user.Registration{FirstName: "A", LastName: "L", Email: "nope", Password: "password1"}, user.ErrInvalidEmail},
		{"short password", user.Registration{FirstName: "A", LastName: "L", Email: "a@b.co", Password: "short"}, auth.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestUserService()

			_, err := env.service.Register(context.Background(), tt.reg)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Empty(t, env.store.InsertCalls)
		})
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()
	_, err := env.service.Register(ctx, alice)
	require.NoError(t, err)

	dup := alice
	dup.Email = "ALICE@example.com"
	_, err = env.service.Register(ctx, dup)

	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestService_VerifyEmail_TokenIsSingleUse(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()
	u, err := env.service.Register(ctx, alice)
	require.NoError(t, err)
	token := u.VerificationToken

	verified, err := env.service.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)

	stored, _ := env.store.GetData(u.UserID)
	assert.True(t, stored.IsEmailVerified)
	assert.Empty(t, stored.VerificationToken)
	assert.Nil(t, stored.TokenExpiry)

	_, err = env.service.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, user.ErrTokenNotFound)
}

func TestService_VerifyEmail_Expired(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()
	u, err := env.service.Register(ctx, alice)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.service.VerifyEmail(ctx, u.VerificationToken)

	assert.ErrorIs(t, err, user.ErrTokenExpired)
	stored, _ := env.store.GetData(u.UserID)
	assert.False(t, stored.IsEmailVerified)
}

func TestService_VerifyEmail_EmptyToken(t *testing.T) {
	env := newTestUserService()

	_, err := env.service.VerifyEmail(context.Background(), " ")

	assert.ErrorIs(t, err, user.ErrTokenNotFound)
}

func TestService_ResendVerification(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()
	u, err := env.service.Register(ctx, alice)
	require.NoError(t, err)

	require.NoError(t, env.service.ResendVerification(ctx, "alice@example.com"))

	stored, _ := env.store.GetData(u.UserID)
	assert.NotEqual(t, u.VerificationToken, stored.VerificationToken)
	assert.Equal(t, user.EventVerificationRequested, env.publisher.EventTypes()[1])

	_, err = env.service.VerifyEmail(ctx, u.VerificationToken)
	assert.ErrorIs(t, err, user.ErrTokenNotFound)

	_, err = env.service.VerifyEmail(ctx, stored.VerificationToken)
	require.NoError(t, err)

	err = env.service.ResendVerification(ctx, "alice@example.com")
	assert.ErrorIs(t, err, user.ErrAlreadyVerified)

	err = env.service.ResendVerification(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestService_Authenticate(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()
	u, err := env.service.Register(ctx, alice)
	require.NoError(t, err)

	_, err = env.service.Authenticate(ctx, "alice@example.com", "wonderland1")
	assert.ErrorIs(t, err, user.ErrEmailNotVerified)

	_, err = env.service.VerifyEmail(ctx, u.VerificationToken)
	require.NoError(t, err)

	got, err := env.service.Authenticate(ctx, "ALICE@example.com", "wonderland1")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, got.UserID)

	_, err = env.service.Authenticate(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = env.service.Authenticate(ctx, "nobody@example.com", "wonderland1")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	inactive := user.StatusInactive
	_, err = env.service.Update(ctx, u.UserID, user.AdminUpdate{AccountStatus: &inactive})
	require.NoError(t, err)
	_, err = env.service.Authenticate(ctx, "alice@example.com", "wonderland1")
	assert.ErrorIs(t, err, user.ErrAccountInactive)
	assert.ErrorIs(t, err, apperror.ErrAuth)
}

func TestService_PasswordReset(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()
	_, err := env.service.CreateByAdmin(ctx, user.AdminCreate{Registration: alice, Verified: true})
	require.NoError(t, err)

	require.NoError(t, env.service.RequestPasswordReset(ctx, "alice@example.com"))
	assert.Equal(t, []string{user.EventPasswordResetRequested}, env.publisher.EventTypes())
	token := lastToken(t, env.publisher).Token

	_, err = env.service.CheckResetToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, env.service.ResetPassword(ctx, token, "looking-glass"))

	_, err = env.service.Authenticate(ctx, "alice@example.com", "looking-glass")
	require.NoError(t, err)
	_, err = env.service.Authenticate(ctx, "alice@example.com", "wonderland1")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	err = env.service.ResetPassword(ctx, token, "another-one")
	assert.ErrorIs(t, err, user.ErrTokenNotFound)
}

func TestService_PasswordReset_Expired(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()
	_, err := env.service.CreateByAdmin(ctx, user.AdminCreate{Registration: alice, Verified: true})
	require.NoError(t, err)
	require.NoError(t, env.service.RequestPasswordReset(ctx, "alice@example.com"))
	token := lastToken(t, env.publisher).Token

	env.clock.Advance(31 * time.Minute)

	err = env.service.ResetPassword(ctx, token, "looking-glass")
	assert.ErrorIs(t, err, user.ErrTokenExpired)
}

func TestService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	env := newTestUserService()

	err := env.service.RequestPasswordReset(context.Background(), "nobody@example.com")

	require.NoError(t, err)
	assert.Empty(t, env.publisher.PublishCalls)
}

func TestService_EnsureAdmin(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()

	created, err := env.service.EnsureAdmin(ctx, "admin@example.com", "admin-password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.service.EnsureAdmin(ctx, "ADMIN@example.com", "admin-password")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := env.service.Authenticate(ctx, "admin@example.com", "admin-password")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.Empty(t, env.publisher.PublishCalls)
}

func TestService_CreateByAdmin_InvalidRole(t *testing.T) {
	env := newTestUserService()

	_, err := env.service.CreateByAdmin(context.Background(), user.AdminCreate{Registration: alice, Role: "owner"})

	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestService_UpdateProfileAndDelete(t *testing.T) {
	env := newTestUserService()
	ctx := context.Background()
	u, err := env.service.CreateByAdmin(ctx, user.AdminCreate{Registration: alice, Verified: true})
	require.NoError(t, err)

	name := "Alicia"
	updated, err := env.service.UpdateProfile(ctx, u.UserID, user.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Alicia Liddell", updated.FullName())

	empty := " "
	_, err = env.service.UpdateProfile(ctx, u.UserID, user.ProfileUpdate{LastName: &empty})
	assert.ErrorIs(t, err, user.ErrInvalidName)

	require.NoError(t, env.service.Delete(ctx, u.UserID))
	_, err = env.service.Get(ctx, u.UserID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	err = env.service.Delete(ctx, u.UserID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
