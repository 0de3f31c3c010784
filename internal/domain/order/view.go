// internal/domain/order/view.go
package order

import (
	"context"
	"fmt"
	"strings"
)

// ListQuery filters a user's order history. Search matches order number, id
// and item product names, case-insensitively; Status intersects with an
// exact fulfillment status. Both optional.
type ListQuery struct {
	Search string            `form:"search"`
	Status FulfillmentStatus `form:"status"`
}

// List is the read path over a user's historical orders: it never mutates
// stored data, and callers re-derive tax breakdowns and invoice numbers per
// order for display.
func (s *Service) List(ctx context.Context, userID uint, q ListQuery) ([]Order, error) {
	query := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if q.Status != "" {
		query = query.Where("fulfillment_status = ?", q.Status)
	}

	var orders []Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	if q.Search == "" {
		return orders, nil
	}

	// Item-name matching needs the loaded rows, so the substring filter runs
	// here rather than in SQL.
	needle := strings.ToLower(q.Search)
	filtered := orders[:0]
	for _, ord := range orders {
		if matchesSearch(ord, needle) {
			filtered = append(filtered, ord)
		}
	}
	return filtered, nil
}

func matchesSearch(ord Order, needle string) bool {
	if strings.Contains(strings.ToLower(ord.OrderNumber), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(ord.ID), needle) {
		return true
	}
	for _, item := range ord.Items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			return true
		}
	}
	return false
}
