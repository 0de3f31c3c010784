// internal/domain/order/sequence.go
package order

import (
	"context"
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"
)

// Sequence hands out the order numbering sequence. Uniqueness must hold
// under concurrent order creation from different sessions, so implementations
// have to increment atomically, never read-then-write.
type Sequence interface {
	Next(ctx context.Context) (int64, error)
}

// CounterOrders names the row backing the order number sequence.
const CounterOrders = "orders"

// Counter is the single-row table backing the database sequence.
type Counter struct {
	Name  string `gorm:"primaryKey;size:50"`
	Value int64  `gorm:"not null"`
}

// TableName overrides the table name
func (Counter) TableName() string { return "order_counters" }

type dbSequence struct {
	db *gorm.DB
}

// NewSequence creates the Postgres-backed sequence.
func NewSequence(db *gorm.DB) Sequence {
	return &dbSequence{db: db}
}

// Next increments and returns the counter in one statement. The upsert makes
// the first call self-initializing and keeps the increment atomic at the
// database, so two sessions can never observe the same value.
func (s *dbSequence) Next(ctx context.Context) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO order_counters (name, value) VALUES ('orders', 1)
		ON CONFLICT (name) DO UPDATE SET value = order_counters.value + 1
		RETURNING value`).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance order sequence: %w", err)
	}
	return value, nil
}

// MemorySequence is an in-process atomic counter for tests.
type MemorySequence struct {
	value atomic.Int64
}

// Next returns the next counter value.
func (s *MemorySequence) Next(ctx context.Context) (int64, error) {
	return s.value.Add(1), nil
}
