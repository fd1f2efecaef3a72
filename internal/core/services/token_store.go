package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driven"
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
	"github.com/custodia-labs/ghview/internal/logger"
)

// Ensure TokenStore implements the interface.
var _ driving.TokenService = (*TokenStore)(nil)

// TokenStore holds the single access token.
//
// Writers are serialized and persist before the new value becomes visible,
// so Get always returns the most recently completed write and never waits
// on one in flight. Change hooks run synchronously, before Set or Clear
// return; the channel feed coalesces to the latest value.
type TokenStore struct {
	store driven.CredentialStore
	key   string

	writeMu sync.Mutex

	mu    sync.RWMutex
	value string

	hooksMu sync.Mutex
	hooks   map[int]func(string)
	hookID  int

	feed *broadcaster[string]
}

// NewTokenStore creates a token store and loads the persisted token.
func NewTokenStore(ctx context.Context, store driven.CredentialStore) (*TokenStore, error) {
	value, err := store.Load(ctx, domain.CredentialKey)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	logger.Redact(value)
	return &TokenStore{
		store: store,
		key:   domain.CredentialKey,
		value: value,
		hooks: make(map[int]func(string)),
		feed:  newBroadcaster(value),
	}, nil
}

// Get returns the last persisted token, or "" when unauthenticated.
func (t *TokenStore) Get() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value
}

// Set persists token and notifies observers.
// On a persistence failure the previous token remains current.
func (t *TokenStore) Set(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is empty", domain.ErrInvalidInput)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.store.Save(ctx, t.key, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	logger.Redact(token)
	logger.Debug("token store: token set (%s)", domain.MaskCredential(token))
	t.commit(token)
	return nil
}

// Clear removes the token and notifies observers.
// The in-memory token is cleared even when the persisted copy could not be
// deleted; the deletion error is still returned.
func (t *TokenStore) Clear(ctx context.Context) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	err := t.store.Delete(ctx, t.key)
	if err != nil {
		logger.Error("token store: delete failed: %v", err)
		err = fmt.Errorf("delete token: %w", err)
	}
	logger.Debug("token store: token cleared")
	t.commit("")
	return err
}

// commit must be called with writeMu held.
func (t *TokenStore) commit(value string) {
	t.mu.Lock()
	t.value = value
	t.mu.Unlock()

	t.hooksMu.Lock()
	hooks := make([]func(string), 0, len(t.hooks))
	for _, fn := range t.hooks {
		hooks = append(hooks, fn)
	}
	t.hooksMu.Unlock()

	for _, fn := range hooks {
		fn(value)
	}
	t.feed.publish(value)
}

// Subscribe returns a channel that always holds the latest token.
func (t *TokenStore) Subscribe() (<-chan string, func()) {
	return t.feed.subscribe()
}

// OnChange registers fn to run synchronously after every committed change.
// fn must not call Set or Clear. The returned function unregisters it.
func (t *TokenStore) OnChange(fn func(string)) func() {
	t.hooksMu.Lock()
	defer t.hooksMu.Unlock()
	id := t.hookID
	t.hookID++
	t.hooks[id] = fn
	return func() {
		t.hooksMu.Lock()
		defer t.hooksMu.Unlock()
		delete(t.hooks, id)
	}
}
