package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound indicates no cart snapshot exists for the session id.
var ErrSessionNotFound = errors.New("cart: session not found")

// Session binds a guest session id to its cart and applied voucher code. The
// Store is the authoritative in-memory container; the session layer only
// snapshots it so a guest survives a process restart.
type Session struct {
	ID          string
	Store       *Store
	VoucherCode string
}

type snapshot struct {
	Items       []LineItem `json:"items"`
	VoucherCode string     `json:"voucherCode,omitempty"`
}

// Sessions persists cart snapshots in Redis with a sliding TTL.
type Sessions struct {
	R   *redis.Client
	TTL time.Duration
}

func (s *Sessions) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// Create allocates a new session with an empty cart.
func (s *Sessions) Create(ctx context.Context) (Session, error) {
	session := Session{ID: uuid.NewString(), Store: NewStore()}
	if err := s.Save(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Load restores a session's cart from its snapshot and refreshes the TTL.
func (s *Sessions) Load(ctx context.Context, id string) (Session, error) {
	if s == nil || s.R == nil {
		return Session{}, errors.New("cart: session store not configured")
	}
	if id == "" {
		return Session{}, ErrSessionNotFound
	}
	data, err := s.R.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("cart: load session: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Session{}, fmt.Errorf("cart: decode session: %w", err)
	}
	store := NewStore()
	for i := range snap.Items {
		item := snap.Items[i]
		store.items[item.Key] = &item
		store.order = append(store.order, item.Key)
	}
	_ = s.R.Expire(ctx, sessionKey(id), s.ttl()).Err()
	return Session{ID: id, Store: store, VoucherCode: snap.VoucherCode}, nil
}

// Save snapshots the session's cart with a fresh TTL.
func (s *Sessions) Save(ctx context.Context, session Session) error {
	if s == nil || s.R == nil {
		return errors.New("cart: session store not configured")
	}
	if session.ID == "" || session.Store == nil {
		return ErrInvalidInput
	}
	snap := snapshot{Items: session.Store.Items(), VoucherCode: session.VoucherCode}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cart: encode session: %w", err)
	}
	if err := s.R.Set(ctx, sessionKey(session.ID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("cart: save session: %w", err)
	}
	return nil
}

// Delete drops the session snapshot. Missing keys are not an error.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	if s == nil || s.R == nil {
		return errors.New("cart: session store not configured")
	}
	return s.R.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id string) string {
	return "cart:session:" + id
}
