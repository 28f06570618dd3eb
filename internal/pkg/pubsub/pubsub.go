package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const ChannelPaymentEvents = "payment_events"

// Payment event types pushed to the admin dashboard.
const (
	EventPaymentSubmitted = "payment_submitted"
	EventPaymentApproved  = "payment_approved"
	EventPaymentRejected  = "payment_rejected"
)

// PaymentEvent is broadcast whenever a claim is created or decided.
type PaymentEvent struct {
	Type      string `json:"type"`
	PaymentID int64  `json:"payment_id"`
	UserID    int64  `json:"user_id"`
	FullName  string `json:"full_name,omitempty"`
	Amount    int64  `json:"amount"`
	DecidedBy int64  `json:"decided_by,omitempty"`
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends a payment event; callers treat failures as best-effort.
func (p *Publisher) Publish(ctx context.Context, event *PaymentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}
	return p.client.Publish(ctx, ChannelPaymentEvents, data).Err()
}

type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe delivers payment events to the handler until ctx is cancelled.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*PaymentEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelPaymentEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event PaymentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // skip malformed payloads
			}

			handler(&event)
		}
	}
}
