package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"investgame/src/schemas"
	"investgame/src/services"
	"investgame/src/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(store *testutils.Store, delay time.Duration) *services.UserService {
	return services.NewUserService(store.Users(), store.Holdings(), dec("100000.00"), delay)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with the starting balance and a hashed pin", func(t *testing.T) {
		store := testutils.NewStore()
		user, err := newUserService(store, 0).Register(ctx, schemas.RegisterRequest{Name: "  Alice  ", PIN: "1234"})
		require.NoError(t, err)

		assert.Equal(t, "Alice", user.Name)
		assert.True(t, user.CashBalance.Equal(dec("100000.00")))
		assert.NotEqual(t, "1234", user.PasswordHash)
		assert.Equal(t, user.Name, store.User(user.ID).Name)
	})

	t.Run("long names are cut to 30 characters", func(t *testing.T) {
		store := testutils.NewStore()
		user, err := newUserService(store, 0).Register(ctx, schemas.RegisterRequest{Name: strings.Repeat("æ", 40), PIN: "0000"})
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("æ", 30), user.Name)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc := newUserService(testutils.NewStore(), 0)

		_, err := svc.Register(ctx, schemas.RegisterRequest{Name: "   ", PIN: "1234"})
		assert.ErrorIs(t, err, services.ErrInvalidName)

		for _, pin := range []string{"", "123", "12345", "12a4"} {
			_, err := svc.Register(ctx, schemas.RegisterRequest{Name: "bob", PIN: pin})
			assert.ErrorIs(t, err, services.ErrInvalidPIN, pin)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := testutils.NewStore()
	svc := newUserService(store, 50*time.Millisecond)
	user, err := svc.Register(ctx, schemas.RegisterRequest{Name: "alice", PIN: "4321"})
	require.NoError(t, err)

	t.Run("correct pin", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, user.ID, "4321")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong pin is delayed", func(t *testing.T) {
		start := time.Now()
		_, err := svc.Authenticate(ctx, user.ID, "0000")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("unknown user looks like a wrong pin", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, user.ID+100, "4321")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})
}

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	store := testutils.NewStore()
	user := store.AddUser("alice", "90.00")
	priced := store.AddStock("AAA", "2.00")
	unpriced := store.AddStock("BBB", "")
	store.AddHolding(user.ID, priced.ID, 3, "1.50")
	store.AddHolding(user.ID, unpriced.ID, 1, "4.00")

	dashboard, err := newUserService(store, 0).GetDashboard(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", dashboard.Name)
	require.Len(t, dashboard.Holdings, 2)

	var sawUnpriced bool
	for _, lot := range dashboard.Holdings {
		if lot.StockID == unpriced.ID {
			sawUnpriced = true
			assert.Nil(t, lot.CurrentPrice)
		} else {
			require.NotNil(t, lot.CurrentPrice)
			assert.True(t, lot.CurrentPrice.Equal(dec("2.00")))
		}
	}
	assert.True(t, sawUnpriced)

	_, err = newUserService(store, 0).GetDashboard(ctx, 999)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}
