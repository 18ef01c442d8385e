package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

func TestNewUser(t *testing.T) {
	t.Run("Success: normalizes email and defaults timezone", func(t *testing.T) {
		u, err := domain.NewUser("u1", "  Anna@Example.COM ", "")

		require.NoError(t, err)
		assert.Equal(t, "anna@example.com", u.Email)
		assert.Equal(t, "UTC", u.Timezone)
		assert.WithinDuration(t, time.Now().UTC(), u.CreatedAt, 2*time.Second)
	})

	t.Run("Success: accepts a valid IANA timezone", func(t *testing.T) {
		u, err := domain.NewUser("u1", "anna@example.com", "Europe/Rome")

		require.NoError(t, err)
		assert.Equal(t, "Europe/Rome", u.Timezone)
	})

	t.Run("Error: invalid email", func(t *testing.T) {
		_, err := domain.NewUser("u1", "not-an-email", "")
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("Error: unknown timezone", func(t *testing.T) {
		_, err := domain.NewUser("u1", "anna@example.com", "Mars/Olympus")
		assert.ErrorIs(t, err, domain.ErrInvalidTimezone)
	})
}

func TestUser_Password(t *testing.T) {
	u, err := domain.NewUser("u1", "anna@example.com", "")
	require.NoError(t, err)

	t.Run("Error: too short", func(t *testing.T) {
		assert.ErrorIs(t, u.SetPassword("short"), domain.ErrPasswordTooShort)
	})

	t.Run("Success: hash verifies", func(t *testing.T) {
		require.NoError(t, u.SetPassword("correct-horse-battery"))
		assert.NoError(t, u.CheckPassword("correct-horse-battery"))
		assert.Error(t, u.CheckPassword("wrong-password"))
	})
}

func TestUser_SetTimezone(t *testing.T) {
	u, err := domain.NewUser("u1", "anna@example.com", "")
	require.NoError(t, err)

	require.NoError(t, u.SetTimezone("America/New_York"))
	assert.Equal(t, "America/New_York", u.Timezone)

	assert.ErrorIs(t, u.SetTimezone("Nowhere/Nope"), domain.ErrInvalidTimezone)
}
