// Package checkout runs the purchase workflow: validate the cart,
// check funds, debit the balance, decrement stock, clear the cart.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/deadpool750/list7/internal/cart"
	"github.com/deadpool750/list7/internal/docstore"
	"github.com/deadpool750/list7/internal/domain"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition = errors.New("illegal transition of checkout state")
)

// LineError reports a settlement failure for one cart line. The
// balance debit and the other lines are not rolled back; partial
// application is accepted and surfaced, not hidden.
type LineError struct {
	ItemUID  string `json:"item_uid"`
	ItemName string `json:"item_name"`
	Reason   string `json:"reason"`
}

// Result is the outcome of one Purchase invocation.
type Result struct {
	CheckoutID string      `json:"checkout_id"`
	State      State       `json:"state"`
	Total      float64     `json:"total"`
	NewBalance float64     `json:"new_balance,omitempty"`
	LineErrors []LineError `json:"line_errors,omitempty"`
}

// Workflow executes purchases. Invocations are serialized per user:
// a second "buy" tap while one is in flight joins the running
// purchase and receives its result instead of double-settling.
type Workflow struct {
	users  docstore.Collection
	items  docstore.Collection
	carts  *cart.Registry
	ledger Ledger
	sfg    singleflight.Group
}

func NewWorkflow(store docstore.Store, carts *cart.Registry, ledger Ledger) *Workflow {
	return &Workflow{
		users:  store.Collection("users"),
		items:  store.Collection("items"),
		carts:  carts,
		ledger: ledger,
	}
}

// Purchase drives one checkout from Idle to a terminal state. On a
// Failed result the cart is left untouched; on Succeeded the cart is
// cleared and the new balance reported. There is no automatic retry;
// the caller may invoke again from Idle.
func (w *Workflow) Purchase(ctx context.Context, userID string) (*Result, error) {
	v, err, _ := w.sfg.Do(userID, func() (interface{}, error) {
		return w.purchase(ctx, userID)
	})
	if v == nil {
		return nil, err
	}
	return v.(*Result), err
}

func (w *Workflow) purchase(ctx context.Context, userID string) (*Result, error) {
	state := StateIdle
	result := &Result{CheckoutID: uuid.New().String()}

	// Validating.
	if err := w.advance(&state, StateValidating, result.CheckoutID); err != nil {
		return nil, err
	}
	if userID == "" {
		return w.fail(state, result), domain.ErrNotAuthenticated
	}

	userCart := w.carts.For(userID)
	lines := userCart.Lines()
	if len(lines) == 0 {
		return w.fail(state, result), ErrEmptyCart
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return w.fail(state, result), domain.ErrInvalidQuantity
		}
	}

	// Total is fixed here, before any mutation.
	var total float64
	for _, l := range lines {
		total += l.Item.Price * float64(l.Quantity)
	}
	result.Total = total

	w.recordSession(ctx, result.CheckoutID, userID, state, lines, total)

	// BalanceCheck.
	if err := w.advance(&state, StateBalanceCheck, result.CheckoutID); err != nil {
		return nil, err
	}
	balance, err := w.balance(ctx, userID)
	if err != nil {
		return w.fail(state, result), err
	}
	if balance < total {
		return w.fail(state, result), domain.ErrInsufficientBalance
	}

	// Settling: funds are committed first, stock after, to keep the
	// inconsistency window as small as the store allows. Joined
	// callers share this invocation, so once funds start moving the
	// writes must not be cut short because the initiating request
	// went away.
	ctx = context.WithoutCancel(ctx)
	if err := w.advance(&state, StateSettling, result.CheckoutID); err != nil {
		return nil, err
	}
	newBalance := balance - total
	if err := w.users.Update(ctx, userID, map[string]any{"balance": newBalance}); err != nil {
		return w.fail(state, result), fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
	}
	w.recordStep(ctx, result.CheckoutID, "debit")

	for _, l := range lines {
		if err := w.decrementStock(ctx, l.Item.UID, l.Quantity); err != nil {
			result.LineErrors = append(result.LineErrors, LineError{
				ItemUID:  l.Item.UID,
				ItemName: l.Item.Name,
				Reason:   err.Error(),
			})
			continue
		}
		w.recordStep(ctx, result.CheckoutID, "stock:"+l.Item.UID)
	}

	// Succeeded.
	if err := w.advance(&state, StateSucceeded, result.CheckoutID); err != nil {
		return nil, err
	}
	userCart.Clear()
	result.State = StateSucceeded
	result.NewBalance = newBalance

	w.completeSession(ctx, result.CheckoutID, userID, lines, total, newBalance)
	return result, nil
}

func (w *Workflow) balance(ctx context.Context, userID string) (float64, error) {
	doc, err := w.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			// Never-saved profile reads as a zero balance.
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}
	return domain.UserProfileFromDocument(doc.Fields).Balance, nil
}

// decrementStock subtracts quantity from the item's remote stock,
// floored at zero.
func (w *Workflow) decrementStock(ctx context.Context, itemID string, quantity int) error {
	doc, err := w.items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}

	current := domain.ItemFromDocument(doc.ID, doc.Fields).Quantity
	next := current - quantity
	if next < 0 {
		next = 0
	}
	if err := w.items.Update(ctx, itemID, map[string]any{"quantity": next}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
	}
	return nil
}

func (w *Workflow) advance(state *State, next State, checkoutID string) error {
	if !CanTransitionTo(*state, next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, *state, next)
	}
	*state = next
	// Validating precedes the session row; Succeeded is written by
	// CompleteSession together with the outbox event.
	if next == StateBalanceCheck || next == StateSettling {
		w.setStatus(checkoutID, next)
	}
	return nil
}

func (w *Workflow) fail(state State, result *Result) *Result {
	result.State = StateFailed
	if CanTransitionTo(state, StateFailed) {
		w.setStatus(result.CheckoutID, StateFailed)
	}
	return result
}

// Ledger writes are best effort: the purchase itself must not fail
// because the audit trail is unavailable.
func (w *Workflow) recordSession(ctx context.Context, id, userID string, state State, lines []cart.Line, total float64) {
	snapshot, err := json.Marshal(lines)
	if err != nil {
		log.Printf("failed to marshal cart snapshot: %v", err)
		return
	}
	err = w.ledger.CreateSession(ctx, &Session{
		ID:           id,
		UserID:       userID,
		Status:       state,
		CartSnapshot: snapshot,
		Total:        total,
	})
	if err != nil {
		log.Printf("failed to record checkout session %s: %v", id, err)
	}
}

func (w *Workflow) setStatus(id string, status State) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.ledger.SetStatus(ctx, id, status); err != nil {
		log.Printf("failed to update checkout %s status: %v", id, err)
	}
}

func (w *Workflow) recordStep(ctx context.Context, id, step string) {
	if err := w.ledger.MarkStepCompleted(ctx, id, step); err != nil {
		log.Printf("failed to record checkout step %s/%s: %v", id, step, err)
	}
}

func (w *Workflow) completeSession(ctx context.Context, id, userID string, lines []cart.Line, total, newBalance float64) {
	payload, err := json.Marshal(map[string]any{
		"checkout_id":  id,
		"user_id":      userID,
		"items":        lines,
		"total_amount": total,
		"new_balance":  newBalance,
		"completed_at": time.Now(),
	})
	if err != nil {
		log.Printf("failed to marshal checkout payload: %v", err)
		return
	}
	if err := w.ledger.CompleteSession(ctx, id, payload, StateSucceeded); err != nil {
		log.Printf("failed to complete checkout session %s: %v", id, err)
	}
}
