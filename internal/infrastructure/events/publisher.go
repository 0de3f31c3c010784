// internal/infrastructure/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

const (
	EventOrderSettled  = "order.settled"
	EventPaymentFailed = "payment.failed"
)

// Envelope is the wire shape of every published event.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// OrderSettledPayload carries the settled order facts downstream consumers
// need without re-reading the database.
type OrderSettledPayload struct {
	OrderID       string  `json:"order_id"`
	OrderNumber   string  `json:"order_number"`
	UserID        uint    `json:"user_id"`
	GrandTotal    float64 `json:"grand_total"`
	TaxAmount     float64 `json:"tax_amount"`
	PaymentMethod string  `json:"payment_method"`
}

// PaymentFailedPayload records a failed payment attempt.
type PaymentFailedPayload struct {
	UserID         uint   `json:"user_id"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// KafkaPublisher publishes settlement lifecycle events to a single topic,
// keyed so all events of one order land on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *logrus.Logger
}

// NewKafkaPublisher creates a publisher for the configured brokers and topic.
func NewKafkaPublisher(cfg config.EventsConfig, log *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		log: log,
	}
}

// OrderSettled publishes an order.settled event.
func (p *KafkaPublisher) OrderSettled(ctx context.Context, ord *order.Order) error {
	return p.publish(ctx, ord.ID, Envelope{
		Type:       EventOrderSettled,
		OccurredAt: time.Now().UTC(),
		Payload: OrderSettledPayload{
			OrderID:       ord.ID,
			OrderNumber:   ord.OrderNumber,
			UserID:        ord.UserID,
			GrandTotal:    ord.GrandTotal,
			TaxAmount:     ord.TaxAmount,
			PaymentMethod: string(ord.PaymentMethod),
		},
	})
}

// PaymentFailed publishes a payment.failed event.
func (p *KafkaPublisher) PaymentFailed(ctx context.Context, userID uint, gatewayOrderID, reason string) error {
	key := gatewayOrderID
	if key == "" {
		key = fmt.Sprintf("user:%d", userID)
	}
	return p.publish(ctx, key, Envelope{
		Type:       EventPaymentFailed,
		OccurredAt: time.Now().UTC(),
		Payload: PaymentFailedPayload{
			UserID:         userID,
			GatewayOrderID: gatewayOrderID,
			Reason:         reason,
		},
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", env.Type, err)
	}

	p.log.WithFields(logrus.Fields{
		"event": env.Type,
		"key":   key,
	}).Debug("event published")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
