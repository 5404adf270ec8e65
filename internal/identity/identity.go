// Package identity implements the email/password identity collaborator:
// credential storage, session issuance and session lookup.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/deadpool750/list7/internal/docstore"
	"github.com/deadpool750/list7/internal/domain"
)

var (
	ErrAuthFailed  = errors.New("invalid email or password")
	ErrEmailTaken  = errors.New("email already registered")
	ErrNoSuchToken = errors.New("session token not found")
)

// Service signs users up and in, and resolves session tokens to user
// ids. Tokens live in the session store until sign-out or expiry.
type Service struct {
	credentials docstore.Collection
	sessions    SessionStore
}

func NewService(store docstore.Store, sessions SessionStore) *Service {
	return &Service{
		credentials: store.Collection("credentials"),
		sessions:    sessions,
	}
}

// SignUp registers a new account and returns the assigned user id.
func (s *Service) SignUp(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", domain.ErrInvalidInput
	}

	taken, err := s.emailInUse(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.credentials.Add(ctx, map[string]any{
		"email":        email,
		"passwordHash": string(hash),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store credentials: %w", err)
	}
	return userID, nil
}

// SignIn verifies the credentials and issues a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	docs, err := s.credentials.QueryAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}

	for _, doc := range docs {
		if doc.Fields["email"] != email {
			continue
		}
		hash, _ := doc.Fields["passwordHash"].(string)
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			return "", ErrAuthFailed
		}
		return s.sessions.Create(ctx, doc.ID)
	}
	return "", ErrAuthFailed
}

// UserID resolves a session token to the signed-in user id.
func (s *Service) UserID(ctx context.Context, token string) (string, error) {
	userID, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSuchToken) {
			return "", domain.ErrNotAuthenticated
		}
		return "", err
	}
	return userID, nil
}

// SignOut drops the session. Unknown tokens are a no-op.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *Service) emailInUse(ctx context.Context, email string) (bool, error) {
	docs, err := s.credentials.QueryAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read credentials: %w", err)
	}
	for _, doc := range docs {
		if doc.Fields["email"] == email {
			return true, nil
		}
	}
	return false, nil
}
