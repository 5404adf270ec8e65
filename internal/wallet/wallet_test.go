package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deadpool750/list7/internal/docstore"
	"github.com/deadpool750/list7/internal/domain"
	"github.com/deadpool750/list7/internal/notify"
)

func seedProfile(t *testing.T, store docstore.Store, userID string, balance float64) {
	p := domain.UserProfile{Name: "Ann", Email: "a@b.c", Balance: balance}
	require.NoError(t, store.Collection("users").Set(context.Background(), userID, p.Document()))
}

func TestBalance(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, notify.NewMemoryNotifier())

	seedProfile(t, store, "u1", 42.5)

	got, err := svc.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 42.5, got)
}

func TestBalance_MissingProfileReadsAsZero(t *testing.T) {
	svc := NewService(docstore.NewMemoryStore(), notify.NewMemoryNotifier())

	got, err := svc.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestAddFunds(t *testing.T) {
	store := docstore.NewMemoryStore()
	notifier := notify.NewMemoryNotifier()
	svc := NewService(store, notifier)

	seedProfile(t, store, "u1", 10.0)

	got, err := svc.AddFunds(context.Background(), "u1", "4111111111111111", "12/25", "123", 25.0)
	require.NoError(t, err)
	assert.Equal(t, 35.0, got)

	stored, err := svc.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 35.0, stored)

	sent := notifier.Sent(WalletChannel)
	require.Len(t, sent, 1)
	assert.Equal(t, "Funds Added", sent[0].Title)
}

func TestAddFunds_AcceptsAllDemoCards(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, notify.NewMemoryNotifier())
	seedProfile(t, store, "u1", 0)

	cards := []struct{ number, expiry, cvv string }{
		{"4111111111111111", "12/25", "123"},
		{"5500000000000004", "01/26", "456"},
		{"340000000000009", "03/27", "789"},
	}
	for _, c := range cards {
		_, err := svc.AddFunds(context.Background(), "u1", c.number, c.expiry, c.cvv, 1.0)
		assert.NoError(t, err, "card %s", c.number)
	}
}

func TestAddFunds_DeclinesUnknownCard(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, notify.NewMemoryNotifier())
	seedProfile(t, store, "u1", 10.0)

	cases := []struct {
		name                string
		number, expiry, cvv string
	}{
		{"unknown number", "4000000000000002", "12/25", "123"},
		{"wrong expiry", "4111111111111111", "11/25", "123"},
		{"wrong cvv", "4111111111111111", "12/25", "999"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddFunds(context.Background(), "u1", tc.number, tc.expiry, tc.cvv, 5.0)
			assert.ErrorIs(t, err, ErrCardDeclined)
		})
	}

	// Balance untouched after declines.
	got, err := svc.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)
}

func TestAddFunds_CardNumberSpacesIgnored(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, notify.NewMemoryNotifier())
	seedProfile(t, store, "u1", 0)

	_, err := svc.AddFunds(context.Background(), "u1", "4111 1111 1111 1111", "12/25", "123", 5.0)
	assert.NoError(t, err)
}

func TestAddFunds_RejectsNonPositiveAmount(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, notify.NewMemoryNotifier())
	seedProfile(t, store, "u1", 10.0)

	_, err := svc.AddFunds(context.Background(), "u1", "4111111111111111", "12/25", "123", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.AddFunds(context.Background(), "u1", "4111111111111111", "12/25", "123", -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAddFunds_MissingProfile(t *testing.T) {
	svc := NewService(docstore.NewMemoryStore(), notify.NewMemoryNotifier())

	_, err := svc.AddFunds(context.Background(), "u1", "4111111111111111", "12/25", "123", 5.0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddFunds_NotAuthenticated(t *testing.T) {
	svc := NewService(docstore.NewMemoryStore(), notify.NewMemoryNotifier())

	_, err := svc.AddFunds(context.Background(), "", "4111111111111111", "12/25", "123", 5.0)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
