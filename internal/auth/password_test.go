package auth

import (
	"strings"
	"testing"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_LengthBounds(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"minimum length", strings.Repeat("a", 8), nil},
		{"one below minimum", strings.Repeat("a", 7), ErrPasswordTooShort},
		{"empty", "", ErrPasswordTooShort},
		{"bcrypt limit", strings.Repeat("a", 72), nil},
		{"one past bcrypt limit", strings.Repeat("a", 73), ErrPasswordTooLong},
		// limits count bytes: 24 kana are 72 bytes, 25 are 75
		{"multibyte at limit", strings.Repeat("パ", 24), nil},
		{"multibyte past limit", strings.Repeat("パ", 25), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, apperror.ErrValidation)
				assert.Empty(t, hash)
				return
			}
			require.NoError(t, err)
			assert.True(t, CheckPassword(tt.password, hash))
		})
	}
}

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	hash, err := HashPassword("wonderland1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcryptCost, cost)
}

func TestHashPassword_SaltsEachHash(t *testing.T) {
	first, err := HashPassword("wonderland1")
	require.NoError(t, err)
	second, err := HashPassword("wonderland1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword("wonderland1", first))
	assert.True(t, CheckPassword("wonderland1", second))
}

func TestCheckPassword_Rejects(t *testing.T) {
	hash, err := HashPassword("Looking-Glass")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
	}{
		{"different case", "looking-glass", hash},
		{"empty password", "", hash},
		{"not a bcrypt hash", "Looking-Glass", "plain-text"},
		{"empty hash", "Looking-Glass", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, CheckPassword(tt.password, tt.hash))
		})
	}
}
