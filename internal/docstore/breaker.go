package docstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// WithBreaker wraps a Store so that every collection call goes through
// a circuit breaker. A collection that keeps failing is cut off for
// the breaker timeout and calls fail fast with gobreaker.ErrOpenState
// instead of hanging on a dead backend.
func WithBreaker(store Store) Store {
	return &breakerStore{
		store:    store,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

type breakerStore struct {
	store    Store
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// Collection is safe for concurrent use; callers sharing a path share
// one breaker.
func (s *breakerStore) Collection(path string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.breakers[path]
	if !ok {
		cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        path,
			MaxRequests: 3,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// A missing document is an answer, not a backend failure.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNoDocument)
			},
		})
		s.breakers[path] = cb
	}
	return &breakerCollection{inner: s.store.Collection(path), cb: cb}
}

type breakerCollection struct {
	inner Collection
	cb    *gobreaker.CircuitBreaker[any]
}

func (c *breakerCollection) Get(ctx context.Context, id string) (*Document, error) {
	v, err := c.cb.Execute(func() (any, error) {
		return c.inner.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

func (c *breakerCollection) Set(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.inner.Set(ctx, id, fields)
	})
	return err
}

func (c *breakerCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.inner.Update(ctx, id, fields)
	})
	return err
}

func (c *breakerCollection) Add(ctx context.Context, fields map[string]any) (string, error) {
	v, err := c.cb.Execute(func() (any, error) {
		return c.inner.Add(ctx, fields)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *breakerCollection) Delete(ctx context.Context, id string) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.inner.Delete(ctx, id)
	})
	return err
}

func (c *breakerCollection) QueryAll(ctx context.Context) ([]Document, error) {
	v, err := c.cb.Execute(func() (any, error) {
		return c.inner.QueryAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Document), nil
}
