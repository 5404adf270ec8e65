// Package profile reads and edits the signed-in user's personal data.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deadpool750/list7/internal/docstore"
	"github.com/deadpool750/list7/internal/domain"
)

// Sessions is the slice of the identity service the profile needs.
type Sessions interface {
	SignOut(ctx context.Context, token string) error
}

type Service struct {
	users    docstore.Collection
	sessions Sessions
}

func NewService(store docstore.Store, sessions Sessions) *Service {
	return &Service{
		users:    store.Collection("users"),
		sessions: sessions,
	}
}

// Load returns the user's stored profile. A user who never saved one
// gets a zero-valued profile, not an error; every field is editable
// from that blank slate.
func (s *Service) Load(ctx context.Context, userID string) (domain.UserProfile, error) {
	if userID == "" {
		return domain.UserProfile{}, domain.ErrNotAuthenticated
	}
	doc, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return domain.UserProfile{}, nil
		}
		return domain.UserProfile{}, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}
	return domain.UserProfileFromDocument(doc.Fields), nil
}

// Save upserts the editable profile fields. The balance is owned by
// the wallet and is never touched here; a first save creates the
// document with a zero balance.
func (s *Service) Save(ctx context.Context, userID string, p domain.UserProfile) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}

	fields := map[string]any{
		"name":        p.Name,
		"surname":     p.Surname,
		"email":       p.Email,
		"phoneNumber": p.PhoneNumber,
		"address":     p.Address,
		"dateOfBirth": p.DateOfBirth,
	}

	_, err := s.users.Get(ctx, userID)
	switch {
	case err == nil:
		if err := s.users.Update(ctx, userID, fields); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
		}
	case errors.Is(err, docstore.ErrNoDocument):
		fields["balance"] = 0.0
		if err := s.users.Set(ctx, userID, fields); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
		}
	default:
		return fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}
	return nil
}

// DeleteAll removes the profile document and ends the session. A
// missing document is not an error; the sign-out still happens.
func (s *Service) DeleteAll(ctx context.Context, userID, token string) error {
	if userID == "" {
		return domain.ErrNotAuthenticated
	}
	if err := s.users.Delete(ctx, userID); err != nil && !errors.Is(err, docstore.ErrNoDocument) {
		return fmt.Errorf("%w: %v", domain.ErrRemoteWrite, err)
	}
	return s.sessions.SignOut(ctx, token)
}
