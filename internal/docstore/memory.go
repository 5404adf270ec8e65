package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. It backs unit tests and local
// runs without a MongoDB instance.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) Collection(path string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[path]
	if !ok {
		coll = &memoryCollection{
			docs:  make(map[string]map[string]any),
			order: make(map[string]int),
		}
		s.collections[path] = coll
	}
	return coll
}

type memoryCollection struct {
	mu    sync.RWMutex
	docs  map[string]map[string]any
	order map[string]int // insertion sequence, for stable QueryAll
	seq   int
}

func (c *memoryCollection) Get(_ context.Context, id string) (*Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fields, ok := c.docs[id]
	if !ok {
		return nil, ErrNoDocument
	}
	return &Document{ID: id, Fields: copyFields(fields)}, nil
}

func (c *memoryCollection) Set(_ context.Context, id string, fields map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		c.order[id] = c.seq
		c.seq++
	}
	c.docs[id] = copyFields(fields)
	return nil
}

func (c *memoryCollection) Update(_ context.Context, id string, fields map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[id]
	if !ok {
		return ErrNoDocument
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (c *memoryCollection) Add(_ context.Context, fields map[string]any) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.New().String()
	c.docs[id] = copyFields(fields)
	c.order[id] = c.seq
	c.seq++
	return id, nil
}

func (c *memoryCollection) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.docs, id)
	delete(c.order, id)
	return nil
}

func (c *memoryCollection) QueryAll(_ context.Context) ([]Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]Document, 0, len(c.docs))
	for id, fields := range c.docs {
		docs = append(docs, Document{ID: id, Fields: copyFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool {
		return c.order[docs[i].ID] < c.order[docs[j].ID]
	})
	return docs, nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
