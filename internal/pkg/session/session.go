package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Conversation states. Each inbound message advances the per-user state
// machine one step; there is no implicit call-stack suspension.
const (
	StateAwaitingFullName = "awaiting_fullname"
	StateAwaitingPhone    = "awaiting_phone"
	StateAwaitingReceipt  = "awaiting_receipt"

	// Admin /admin sub-conversations.
	StateAwaitingCardNumber = "awaiting_card_number"
	StateAwaitingCardHolder = "awaiting_card_holder"
	StateAwaitingChatID     = "awaiting_chat_id"
)

// Session is the per-user conversation state, keyed by Telegram id.
type Session struct {
	State      string `json:"state"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

func key(telegramID int64) string {
	return fmt.Sprintf("session:%d", telegramID)
}

// Get returns the user's session, or nil when no conversation is in flight.
func (s *Store) Get(ctx context.Context, telegramID int64) (*Session, error) {
	data, err := s.client.Get(ctx, key(telegramID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Set writes the session and refreshes its TTL.
func (s *Store) Set(ctx context.Context, telegramID int64, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.Set(ctx, key(telegramID), data, s.ttl).Err()
}

// Clear ends the conversation.
func (s *Store) Clear(ctx context.Context, telegramID int64) error {
	return s.client.Del(ctx, key(telegramID)).Err()
}
