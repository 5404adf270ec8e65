package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deadpool750/list7/internal/cart"
	"github.com/deadpool750/list7/internal/docstore"
	"github.com/deadpool750/list7/internal/domain"
)

type mockLedger struct {
	mu              sync.Mutex
	created         *Session
	statuses        []State
	steps           []string
	completedID     string
	completedStatus State
	payload         []byte
}

func (m *mockLedger) CreateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = s
	return nil
}

func (m *mockLedger) SetStatus(_ context.Context, _ string, status State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *mockLedger) MarkStepCompleted(_ context.Context, _ string, step string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step)
	return nil
}

func (m *mockLedger) CompleteSession(_ context.Context, id string, payload []byte, status State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completedID = id
	m.payload = payload
	m.completedStatus = status
	return nil
}

func (m *mockLedger) GetUnprocessedEvents(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (m *mockLedger) MarkEventProcessed(context.Context, int64) error { return nil }

func (m *mockLedger) Close() error { return nil }

// failingUpdates makes Update fail for one document id, leaving the
// rest of the collection healthy.
type failingUpdates struct {
	docstore.Collection
	failID string
}

func (c failingUpdates) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == c.failID {
		return errors.New("write timeout")
	}
	return c.Collection.Update(ctx, id, fields)
}

func seedUser(t *testing.T, store docstore.Store, userID string, balance float64) {
	profile := domain.UserProfile{Name: "Ann", Balance: balance}
	require.NoError(t, store.Collection("users").Set(context.Background(), userID, profile.Document()))
}

func seedItem(t *testing.T, store docstore.Store, name string, price float64, qty int) string {
	id, err := store.Collection("items").Add(context.Background(),
		domain.Item{Name: name, Price: price, Quantity: qty}.Document())
	require.NoError(t, err)
	return id
}

func itemQuantity(t *testing.T, store docstore.Store, id string) int {
	doc, err := store.Collection("items").Get(context.Background(), id)
	require.NoError(t, err)
	return domain.ItemFromDocument(doc.ID, doc.Fields).Quantity
}

func userBalance(t *testing.T, store docstore.Store, userID string) float64 {
	doc, err := store.Collection("users").Get(context.Background(), userID)
	require.NoError(t, err)
	return domain.UserProfileFromDocument(doc.Fields).Balance
}

func addToCart(carts *cart.Registry, userID string, item domain.Item, qty int) {
	c := carts.For(userID)
	for i := 0; i < qty; i++ {
		c.Add(item)
	}
}

func TestPurchase_NotAuthenticated(t *testing.T) {
	w := NewWorkflow(docstore.NewMemoryStore(), cart.NewRegistry(), &mockLedger{})

	result, err := w.Purchase(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, StateFailed, result.State)
}

func TestPurchase_EmptyCart(t *testing.T) {
	w := NewWorkflow(docstore.NewMemoryStore(), cart.NewRegistry(), &mockLedger{})

	result, err := w.Purchase(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StateFailed, result.State)
}

func TestPurchase_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	carts := cart.NewRegistry()
	ledger := &mockLedger{}
	w := NewWorkflow(store, carts, ledger)

	seedUser(t, store, "u1", 15.0)
	itemID := seedItem(t, store, "boots", 10.0, 5)
	addToCart(carts, "u1", domain.Item{UID: itemID, Name: "boots", Price: 10.0, Quantity: 5}, 2)

	result, err := w.Purchase(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 20.0, result.Total)

	// Cart preserved, no remote write happened.
	assert.Equal(t, 1, carts.For("u1").Len())
	assert.Equal(t, 15.0, userBalance(t, store, "u1"))
	assert.Equal(t, 5, itemQuantity(t, store, itemID))
}

func TestPurchase_MissingProfileReadsAsZeroBalance(t *testing.T) {
	store := docstore.NewMemoryStore()
	carts := cart.NewRegistry()
	w := NewWorkflow(store, carts, &mockLedger{})

	itemID := seedItem(t, store, "boots", 10.0, 5)
	addToCart(carts, "u1", domain.Item{UID: itemID, Name: "boots", Price: 10.0}, 1)

	_, err := w.Purchase(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestPurchase_Success(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	carts := cart.NewRegistry()
	ledger := &mockLedger{}
	w := NewWorkflow(store, carts, ledger)

	seedUser(t, store, "u1", 100.0)
	bootsID := seedItem(t, store, "boots", 10.0, 5)
	poleID := seedItem(t, store, "poles", 20.0, 2)
	addToCart(carts, "u1", domain.Item{UID: bootsID, Name: "boots", Price: 10.0}, 2)
	addToCart(carts, "u1", domain.Item{UID: poleID, Name: "poles", Price: 20.0}, 1)

	result, err := w.Purchase(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, 40.0, result.Total)
	assert.Equal(t, 60.0, result.NewBalance)
	assert.Empty(t, result.LineErrors)

	assert.Equal(t, 60.0, userBalance(t, store, "u1"))
	assert.Equal(t, 3, itemQuantity(t, store, bootsID))
	assert.Equal(t, 1, itemQuantity(t, store, poleID))
	assert.Equal(t, 0, carts.For("u1").Len())

	// Ledger saw the full lifecycle and the completion event.
	require.NotNil(t, ledger.created)
	assert.Equal(t, "u1", ledger.created.UserID)
	assert.Contains(t, ledger.steps, "debit")
	assert.Contains(t, ledger.steps, "stock:"+bootsID)
	assert.Equal(t, result.CheckoutID, ledger.completedID)
	assert.Equal(t, StateSucceeded, ledger.completedStatus)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(ledger.payload, &payload))
	assert.Equal(t, "u1", payload["user_id"])
	assert.Equal(t, 40.0, payload["total_amount"])
}

func TestPurchase_StockFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	carts := cart.NewRegistry()
	w := NewWorkflow(store, carts, &mockLedger{})

	seedUser(t, store, "u1", 100.0)
	// Cart asks for more than the remote still has.
	itemID := seedItem(t, store, "boots", 10.0, 1)
	addToCart(carts, "u1", domain.Item{UID: itemID, Name: "boots", Price: 10.0}, 3)

	result, err := w.Purchase(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, 0, itemQuantity(t, store, itemID))
}

func TestPurchase_LineFailureDoesNotRollBackDebit(t *testing.T) {
	ctx := context.Background()
	inner := docstore.NewMemoryStore()
	carts := cart.NewRegistry()
	w := NewWorkflow(inner, carts, &mockLedger{})

	seedUser(t, inner, "u1", 100.0)
	bootsID := seedItem(t, inner, "boots", 10.0, 5)
	poleID := seedItem(t, inner, "poles", 20.0, 2)

	// Make the boots decrement fail.
	w.items = failingUpdates{Collection: w.items, failID: bootsID}

	addToCart(carts, "u1", domain.Item{UID: bootsID, Name: "boots", Price: 10.0}, 1)
	addToCart(carts, "u1", domain.Item{UID: poleID, Name: "poles", Price: 20.0}, 1)

	result, err := w.Purchase(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, result.State)
	require.Len(t, result.LineErrors, 1)
	assert.Equal(t, bootsID, result.LineErrors[0].ItemUID)

	// Debit stands, the healthy line settled, the failed one did not.
	assert.Equal(t, 70.0, userBalance(t, inner, "u1"))
	assert.Equal(t, 5, itemQuantity(t, inner, bootsID))
	assert.Equal(t, 1, itemQuantity(t, inner, poleID))
	assert.Equal(t, 0, carts.For("u1").Len())
}

func TestPurchase_DebitFailurePreservesCart(t *testing.T) {
	ctx := context.Background()
	inner := docstore.NewMemoryStore()
	carts := cart.NewRegistry()
	w := NewWorkflow(inner, carts, &mockLedger{})

	seedUser(t, inner, "u1", 100.0)
	itemID := seedItem(t, inner, "boots", 10.0, 5)

	// The balance debit fails while reads still work.
	w.users = failingUpdates{Collection: w.users, failID: "u1"}

	addToCart(carts, "u1", domain.Item{UID: itemID, Name: "boots", Price: 10.0}, 1)

	result, err := w.Purchase(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrRemoteWrite)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 1, carts.For("u1").Len())
	assert.Equal(t, 5, itemQuantity(t, inner, itemID))
}

// ctxAwareUpdates rejects writes once the request context is gone,
// the way a real driver would.
type ctxAwareUpdates struct {
	docstore.Collection
}

func (c ctxAwareUpdates) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Collection.Update(ctx, id, fields)
}

func TestPurchase_SettleSurvivesRequestCancellation(t *testing.T) {
	store := docstore.NewMemoryStore()
	carts := cart.NewRegistry()
	w := NewWorkflow(store, carts, &mockLedger{})

	seedUser(t, store, "u1", 100.0)
	itemID := seedItem(t, store, "boots", 10.0, 5)
	addToCart(carts, "u1", domain.Item{UID: itemID, Name: "boots", Price: 10.0}, 1)

	w.users = ctxAwareUpdates{Collection: w.users}
	w.items = ctxAwareUpdates{Collection: w.items}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := w.Purchase(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, 90.0, userBalance(t, store, "u1"))
	assert.Equal(t, 4, itemQuantity(t, store, itemID))
	assert.Empty(t, result.LineErrors)
}

func TestTransitions(t *testing.T) {
	assert.True(t, CanTransitionTo(StateIdle, StateValidating))
	assert.True(t, CanTransitionTo(StateValidating, StateBalanceCheck))
	assert.True(t, CanTransitionTo(StateBalanceCheck, StateSettling))
	assert.True(t, CanTransitionTo(StateSettling, StateSucceeded))
	assert.True(t, CanTransitionTo(StateBalanceCheck, StateFailed))

	assert.False(t, CanTransitionTo(StateIdle, StateSettling))
	assert.False(t, CanTransitionTo(StateSucceeded, StateValidating))
	assert.False(t, CanTransitionTo(StateFailed, StateFailed))

	assert.True(t, StateSucceeded.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateSettling.IsTerminal())
}
