// Package session holds the admin session: the upstream API token keyed by
// a signed per-browser session ID, persisted in redis so it survives page
// reloads and gateway restarts. There is no local expiry; the upstream
// token's server-side validity governs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session is the authentication state for one browser.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Store persists sessions in redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store. A zero ttl means sessions never expire
// locally.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		panic("session: redis client required")
	}
	return &Store{client: client, ttl: ttl}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Save persists the session for the given session ID.
func (s *Store) Save(ctx context.Context, sid string, sess *Session) error {
	if sid == "" {
		return fmt.Errorf("session: empty session id")
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sid), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Get returns the session for the given session ID. A missing session is
// not an error: an empty, unauthenticated session is returned instead.
func (s *Store) Get(ctx context.Context, sid string) (*Session, error) {
	if sid == "" {
		return &Session{}, nil
	}
	raw, err := s.client.Get(ctx, sessionKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &sess, nil
}

// Clear removes the session, returning the browser to the logged-out
// state.
func (s *Store) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.client.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}
