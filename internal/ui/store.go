package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists per-session UI state in redis, next to the session
// itself.
type Store struct {
	client    *redis.Client
	noticeTTL time.Duration
	now       func() time.Time
}

// NewStore creates a UI state store. noticeTTL is how long a notification
// stays visible before auto-dismissing.
func NewStore(client *redis.Client, noticeTTL time.Duration) *Store {
	if client == nil {
		panic("ui: redis client required")
	}
	if noticeTTL <= 0 {
		noticeTTL = 3 * time.Second
	}
	return &Store{client: client, noticeTTL: noticeTTL, now: time.Now}
}

// WithClock overrides the store's clock (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// NoticeTTL returns the configured notification lifetime.
func (s *Store) NoticeTTL() time.Duration {
	return s.noticeTTL
}

func stateKey(sid string) string {
	return "ui:" + sid
}

// Get returns the UI state for a session, or a fresh initial state when
// none is stored.
func (s *Store) Get(ctx context.Context, sid string) (*State, error) {
	if sid == "" {
		return NewState(), nil
	}
	raw, err := s.client.Get(ctx, stateKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("ui: get state: %w", err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("ui: unmarshal state: %w", err)
	}
	if !state.ActiveTab.Valid() {
		state.ActiveTab = NewState().ActiveTab
	}
	return &state, nil
}

// Save persists the UI state.
func (s *Store) Save(ctx context.Context, sid string, state *State) error {
	if sid == "" {
		return fmt.Errorf("ui: empty session id")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("ui: marshal state: %w", err)
	}
	if err := s.client.Set(ctx, stateKey(sid), payload, 0).Err(); err != nil {
		return fmt.Errorf("ui: save state: %w", err)
	}
	return nil
}

// Mutate loads, applies fn, and saves in one step.
func (s *Store) Mutate(ctx context.Context, sid string, fn func(*State)) (*State, error) {
	state, err := s.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	fn(state)
	if err := s.Save(ctx, sid, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Notify replaces the session's notification.
func (s *Store) Notify(ctx context.Context, sid, message string, severity Severity) error {
	_, err := s.Mutate(ctx, sid, func(state *State) {
		state.Notify(message, severity, s.now(), s.noticeTTL)
	})
	return err
}

// PromptLogin stages the login-required prompt: error notice plus the auth
// modal open on the login tab. Satisfies session.Prompter.
func (s *Store) PromptLogin(ctx context.Context, sid, message string) error {
	_, err := s.Mutate(ctx, sid, func(state *State) {
		state.Notify(message, SeverityError, s.now(), s.noticeTTL)
		state.OpenAuth(AuthTabLogin)
	})
	return err
}
