// Package catalog bridges the cart and the remote items collection.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/deadpool750/list7/internal/cart"
	"github.com/deadpool750/list7/internal/docstore"
	"github.com/deadpool750/list7/internal/domain"
	"github.com/deadpool750/list7/internal/notify"
)

// OffersChannel receives a notification whenever a new offer lands.
const OffersChannel = "offers"

// AddOutcome says what actually happened during an AddToCart call.
// The intermediate state is never hidden from the caller: a rolled
// back add means the cart was touched and then compensated.
type AddOutcome int

const (
	AddRejected AddOutcome = iota
	AddCommitted
	AddRolledBack
)

type Service struct {
	items    docstore.Collection
	carts    *cart.Registry
	cache    ItemsCache
	notifier notify.Notifier
	sfg      singleflight.Group
}

func NewService(store docstore.Store, carts *cart.Registry, cache ItemsCache, notifier notify.Notifier) *Service {
	if err := notifier.CreateChannel(OffersChannel, "Offer Notifications"); err != nil {
		log.Printf("failed to create offers channel: %v", err)
	}
	return &Service{
		items:    store.Collection("items"),
		carts:    carts,
		cache:    cache,
		notifier: notifier,
	}
}

// ListItems returns every offer in the catalog, document id as uid.
// Reads go through the cache; concurrent misses collapse into one
// remote query.
func (s *Service) ListItems(ctx context.Context) ([]domain.Item, error) {
	v, err, _ := s.sfg.Do(itemsCacheKey, func() (interface{}, error) {
		items, err := s.cache.Get(ctx)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err)
		}

		docs, err := s.items.QueryAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
		}

		items = make([]domain.Item, 0, len(docs))
		for _, doc := range docs {
			items = append(items, domain.ItemFromDocument(doc.ID, doc.Fields))
		}

		go func() {
			cacheCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(cacheCtx, items); err != nil {
				log.Printf("cache set error: %v", err)
			}
		}()

		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Item), nil
}

// AddToCart re-reads the item's remote stock, rejects when nothing is
// left, applies the local cart add, then decrements remote stock by 1.
// A failed decrement compensates the local add and reports the
// rollback. A crash between the two phases still leaves the views
// inconsistent; that window is the accepted cost of not having
// cross-document transactions.
func (s *Service) AddToCart(ctx context.Context, userID, itemID string) (AddOutcome, error) {
	doc, err := s.items.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return AddRejected, domain.ErrNotFound
		}
		return AddRejected, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}

	item := domain.ItemFromDocument(doc.ID, doc.Fields)
	if item.Quantity <= 0 {
		return AddRejected, domain.ErrOutOfStock
	}

	// Phase one: optimistic local add. Remember the prior quantity so
	// the compensation restores exactly that state.
	userCart := s.carts.For(userID)
	prev := lineQuantity(userCart, itemID)
	userCart.Add(item)

	// Phase two: remote decrement.
	if err := s.items.Update(ctx, itemID, map[string]any{"quantity": item.Quantity - 1}); err != nil {
		userCart.SetQuantity(itemID, prev)
		return AddRolledBack, fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
	}

	s.invalidateCache()
	return AddCommitted, nil
}

// CreateItem validates the offer form and appends it to the items
// collection. The submitted uid is only checked for presence; the
// store assigns the real document id.
func (s *Service) CreateItem(ctx context.Context, name, price, quantity, uid string) (string, error) {
	if name == "" || price == "" || quantity == "" || uid == "" {
		return "", domain.ErrInvalidInput
	}
	priceValue, err := strconv.ParseFloat(price, 64)
	if err != nil || priceValue <= 0 {
		return "", domain.ErrInvalidInput
	}
	qty, err := strconv.Atoi(quantity)
	if err != nil {
		qty = 0
	}

	item := domain.Item{Name: name, Price: priceValue, Quantity: qty}
	id, err := s.items.Add(ctx, item.Document())
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
	}

	s.invalidateCache()

	notifyCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = s.notifier.Notify(notifyCtx, OffersChannel, notify.Message{
		Title: "Offer Created",
		Body:  fmt.Sprintf("Your offer for '%s' was created successfully!", name),
	})
	if err != nil {
		log.Printf("offer notification failed: %v", err)
	}

	return id, nil
}

func (s *Service) invalidateCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func lineQuantity(c *cart.Cart, uid string) int {
	for _, l := range c.Lines() {
		if l.Item.UID == uid {
			return l.Quantity
		}
	}
	return 0
}
