package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one line item in a visitor's cart. Orders are not placed
// online; the cart is a call-back list.
type Entry struct {
	Name    string    `json:"name"`
	Price   string    `json:"price"`
	AddedAt time.Time `json:"added_at"`
}

// CartStore persists per-visitor carts as redis lists.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(sid string) string { return "cart:" + sid }

// Add appends an entry to the visitor's cart and refreshes its expiry.
func (s *CartStore) Add(ctx context.Context, sid string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cart: marshal entry: %w", err)
	}
	key := cartKey(sid)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("cart: push entry: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("cart: refresh expiry: %w", err)
		}
	}
	return nil
}

// List returns the visitor's cart oldest-first.
func (s *CartStore) List(ctx context.Context, sid string) ([]Entry, error) {
	raw, err := s.client.LRange(ctx, cartKey(sid), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cart: load entries: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("cart: decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
