// Package cart holds the in-memory per-session cart. Carts are not
// persisted; a restart loses them.
package cart

import (
	"sync"

	"github.com/deadpool750/list7/internal/domain"
)

// Line is one selected item with its quantity. Quantity is always >= 1
// while the line exists; setting it to 0 or below removes the line.
type Line struct {
	Item     domain.Item `json:"item"`
	Quantity int         `json:"quantity"`
}

// Cart is the authoritative local view of one user's selections. One
// line per item uid, insertion order preserved. All methods are safe
// for concurrent use; a user can tap from several screens at once.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts a copy of the item in the cart with quantity 1, or bumps
// the quantity when the uid is already present. The copy is decoupled
// from the catalog's live object.
func (c *Cart) Add(item domain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].Item.UID == item.UID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// Remove drops the line with the given uid. Absent uid is a no-op.
func (c *Cart) Remove(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(uid)
}

// SetQuantity sets the stored quantity for the uid. A quantity of 0 or
// below removes the line. Stock is not checked here; that is the
// checkout workflow's job.
func (c *Cart) SetQuantity(uid string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(uid)
		return
	}
	for i := range c.lines {
		if c.lines[i].Item.UID == uid {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart. Called after a fully successful purchase.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a snapshot of the cart in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, l := range c.lines {
		total += l.Item.Price * float64(l.Quantity)
	}
	return total
}

// Len reports the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) removeLocked(uid string) {
	for i := range c.lines {
		if c.lines[i].Item.UID == uid {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Registry hands out one Cart per user id, so sessions never share
// state and tests can run in isolation.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// For returns the cart of the given user, creating it on first use.
func (r *Registry) For(userID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		c = New()
		r.carts[userID] = c
	}
	return c
}
