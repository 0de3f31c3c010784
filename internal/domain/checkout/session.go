// internal/domain/checkout/session.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

const (
	sessionTTL = 2 * time.Hour

	// processingTTL bounds how long a crashed session can hold its flag.
	processingTTL = 10 * time.Minute
)

// Session is one shopper's checkout in progress. It is the unit the state
// machine runs over; everything needed to settle is carried here so a gateway
// callback can finish the flow without re-reading the cart.
type Session struct {
	UserID        uint                `json:"user_id"`
	State         State               `json:"state"`
	Address       order.Address       `json:"address"`
	HasAddress    bool                `json:"has_address"`
	PaymentMethod order.PaymentMethod `json:"payment_method,omitempty"`

	// Applied coupon, revalidated against the live cart at proceed time.
	CouponCode string  `json:"coupon_code,omitempty"`
	Discount   float64 `json:"discount,omitempty"`

	// Fixed at proceed-to-payment so the verified amount is the quoted amount.
	Snapshot *cart.Snapshot `json:"snapshot,omitempty"`
	Totals   pricing.Totals `json:"totals"`

	GatewayOrderID string    `json:"gateway_order_id,omitempty"`
	OrderID        string    `json:"order_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SessionStore persists checkout sessions and owns the per-session processing
// flag. AcquireProcessing and AcquireCallback must be atomic: under concurrent
// calls for the same key exactly one may succeed.
type SessionStore interface {
	Load(ctx context.Context, userID uint) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, userID uint) error
	AcquireProcessing(ctx context.Context, userID uint) (bool, error)
	ReleaseProcessing(ctx context.Context, userID uint) error
	// AcquireCallback consumes the gateway result for one payment attempt.
	// Gateways redeliver; only the first caller per attempt may act on it.
	AcquireCallback(ctx context.Context, userID uint, gatewayOrderID string) (bool, error)
}

// RedisSessionStore keeps sessions in Redis with a sliding TTL and implements
// the processing flag as SET NX with its own expiry.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("checkout:session:%d", userID)
}

func processingKey(userID uint) string {
	return fmt.Sprintf("checkout:processing:%d", userID)
}

func callbackKey(userID uint, gatewayOrderID string) string {
	return fmt.Sprintf("checkout:callback:%d:%s", userID, gatewayOrderID)
}

// Load returns the stored session, or nil when none exists.
func (s *RedisSessionStore) Load(ctx context.Context, userID uint) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

// Save writes the session back with a refreshed TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	session.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(session.UserID), data, sessionTTL).Err()
}

// Delete removes the session.
func (s *RedisSessionStore) Delete(ctx context.Context, userID uint) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}

// AcquireProcessing takes the per-user processing flag. Returns false when
// another attempt already holds it.
func (s *RedisSessionStore) AcquireProcessing(ctx context.Context, userID uint) (bool, error) {
	return s.client.SetNX(ctx, processingKey(userID), "1", processingTTL).Result()
}

// ReleaseProcessing clears the flag so the shopper can retry.
func (s *RedisSessionStore) ReleaseProcessing(ctx context.Context, userID uint) error {
	return s.client.Del(ctx, processingKey(userID)).Err()
}

// AcquireCallback takes the consume-once marker for a payment attempt's
// gateway result. Never released; the TTL bounds it and a retry issues a new
// gateway order id.
func (s *RedisSessionStore) AcquireCallback(ctx context.Context, userID uint, gatewayOrderID string) (bool, error) {
	return s.client.SetNX(ctx, callbackKey(userID, gatewayOrderID), "1", processingTTL).Result()
}

// MemorySessionStore is an in-process store used by tests.
type MemorySessionStore struct {
	mu         sync.Mutex
	sessions   map[uint]*Session
	processing map[uint]bool
	callbacks  map[string]bool
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions:   make(map[uint]*Session),
		processing: make(map[uint]bool),
		callbacks:  make(map[string]bool),
	}
}

func (s *MemorySessionStore) Load(_ context.Context, userID uint) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	clone := *stored
	return &clone, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = time.Now().UTC()
	clone := *session
	s.sessions[session.UserID] = &clone
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *MemorySessionStore) AcquireProcessing(_ context.Context, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing[userID] {
		return false, nil
	}
	s.processing[userID] = true
	return true, nil
}

func (s *MemorySessionStore) ReleaseProcessing(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processing, userID)
	return nil
}

func (s *MemorySessionStore) AcquireCallback(_ context.Context, userID uint, gatewayOrderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := callbackKey(userID, gatewayOrderID)
	if s.callbacks[key] {
		return false, nil
	}
	s.callbacks[key] = true
	return true, nil
}

// ProcessingHeld reports whether the flag is currently held. Test helper.
func (s *MemorySessionStore) ProcessingHeld(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing[userID]
}
