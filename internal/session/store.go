package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/models"
)

// Record is the persisted session.
type Record struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Store is the only reader and writer of the persisted session and token.
type Store struct {
	storage    Storage
	sessionKey string
	tokenKey   string
}

func NewStore(storage Storage, sessionKey, tokenKey string) *Store {
	return &Store{storage: storage, sessionKey: sessionKey, tokenKey: tokenKey}
}

// Load returns the persisted record. ok is false when nothing usable is stored; a
// corrupt record is logged and treated as absent.
func (s *Store) Load(ctx context.Context) (Record, bool, error) {
	raw, ok, err := s.storage.Get(ctx, s.sessionKey)
	if err != nil {
		return Record{}, false, fmt.Errorf("loading session: %w", err)
	}
	if !ok {
		return Record{}, false, nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		slog.Warn("discarding unreadable session record", "key", s.sessionKey, "err", err)
		return Record{}, false, nil
	}
	// isAuthenticated holds only together with a user.
	if rec.User == nil || !rec.IsAuthenticated {
		rec.User = nil
		rec.IsAuthenticated = false
	}
	return rec, true, nil
}

func (s *Store) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := s.storage.Set(ctx, s.sessionKey, string(data)); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// DeleteRecord removes the session record and keeps the token.
func (s *Store) DeleteRecord(ctx context.Context) error {
	return s.storage.Delete(ctx, s.sessionKey)
}

// Clear removes both the session record and the token.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(
		s.storage.Delete(ctx, s.sessionKey),
		s.storage.Delete(ctx, s.tokenKey),
	)
}

// Token satisfies httpclient.TokenSource.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.storage.Get(ctx, s.tokenKey)
	return token, err
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.storage.Delete(ctx, s.tokenKey)
	}
	return s.storage.Set(ctx, s.tokenKey, token)
}
