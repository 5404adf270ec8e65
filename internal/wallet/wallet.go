// Package wallet holds the user's prepaid balance and the card
// top-up flow.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/deadpool750/list7/internal/docstore"
	"github.com/deadpool750/list7/internal/domain"
	"github.com/deadpool750/list7/internal/notify"
)

var (
	ErrCardDeclined  = errors.New("card was declined")
	ErrInvalidAmount = errors.New("top-up amount must be positive")
)

// WalletChannel carries top-up notifications.
const WalletChannel = "wallet"

type card struct {
	number string
	expiry string
	cvv    string
}

// acceptedCards is the demo payment processor: only these three
// cards authorize, everything else declines.
var acceptedCards = []card{
	{"4111111111111111", "12/25", "123"},
	{"5500000000000004", "01/26", "456"},
	{"340000000000009", "03/27", "789"},
}

type Service struct {
	users    docstore.Collection
	notifier notify.Notifier
}

func NewService(store docstore.Store, notifier notify.Notifier) *Service {
	if err := notifier.CreateChannel(WalletChannel, "Wallet"); err != nil {
		log.Printf("failed to create wallet channel: %v", err)
	}
	return &Service{
		users:    store.Collection("users"),
		notifier: notifier,
	}
}

// Balance reads the current balance. A missing profile reads as zero.
func (s *Service) Balance(ctx context.Context, userID string) (float64, error) {
	if userID == "" {
		return 0, domain.ErrNotAuthenticated
	}
	doc, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}
	return domain.UserProfileFromDocument(doc.Fields).Balance, nil
}

// AddFunds authorizes the card and credits the balance. The write is
// update-only: topping up requires a saved profile, so a missing
// document surfaces as not found instead of silently creating one.
func (s *Service) AddFunds(ctx context.Context, userID, number, expiry, cvv string, amount float64) (float64, error) {
	if userID == "" {
		return 0, domain.ErrNotAuthenticated
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if !authorize(number, expiry, cvv) {
		return 0, ErrCardDeclined
	}

	doc, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}

	newBalance := domain.UserProfileFromDocument(doc.Fields).Balance + amount
	if err := s.users.Update(ctx, userID, map[string]any{"balance": newBalance}); err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
	}

	s.announce(amount, newBalance)
	return newBalance, nil
}

func authorize(number, expiry, cvv string) bool {
	number = strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	for _, c := range acceptedCards {
		if c.number == number && c.expiry == expiry && c.cvv == cvv {
			return true
		}
	}
	return false
}

func (s *Service) announce(amount, newBalance float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.notifier.Notify(ctx, WalletChannel, notify.Message{
		Title: "Funds Added",
		Body:  fmt.Sprintf("Added %.2f, new balance %.2f", amount, newBalance),
	})
	if err != nil {
		log.Printf("failed to send wallet notification: %v", err)
	}
}
