package testutil

import (
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/model"
)

var seq int64

func nextID() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser creates a registered user.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextID()
	user := &model.User{
		TelegramID: 100000 + n,
		FirstName:  "Test",
		LastName:   "User",
		Phone:      "+998901234567",
		Username:   "testuser",
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// WithTelegramID sets the external Telegram id.
func WithTelegramID(id int64) func(*model.User) {
	return func(u *model.User) {
		u.TelegramID = id
	}
}

// WithName sets first and last name.
func WithName(first, last string) func(*model.User) {
	return func(u *model.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// TestPayment creates a payment claim for the user.
func TestPayment(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Payment)) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		UserID:        userID,
		Amount:        99000,
		ReceiptFileID: "AgACAgIAAxkBAAIB",
		Status:        model.PaymentStatusPending,
	}

	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}
	return payment
}

// WithStatus sets the payment status.
func WithStatus(status string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Status = status
	}
}

// TestSubscription creates an active grant funded by the given payment.
func TestSubscription(t *testing.T, db *gorm.DB, userID, paymentID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	now := time.Now().UTC()
	sub := &model.Subscription{
		UserID:      userID,
		PaymentID:   paymentID,
		StartDate:   now,
		EndDate:     now.Add(30 * 24 * time.Hour),
		IsActive:    true,
		WarningSent: false,
	}

	for _, opt := range opts {
		opt(sub)
	}

	// gorm replaces a zero-value bool with its default:true on INSERT, so an
	// inactive row has to be downgraded with an explicit update after create.
	wantActive := sub.IsActive
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}
	if !wantActive {
		if err := db.Model(sub).Update("is_active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate test subscription: %v", err)
		}
	}
	return sub
}

// WithEndDate sets the grant's end date.
func WithEndDate(end time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.EndDate = end
	}
}

// WithInactive deactivates the grant.
func WithInactive() func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.IsActive = false
	}
}

// WithWarningSent marks the grant as already warned.
func WithWarningSent() func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.WarningSent = true
	}
}

// TestDestination creates an active protected destination.
func TestDestination(t *testing.T, db *gorm.DB, opts ...func(*model.Destination)) *model.Destination {
	t.Helper()

	dest := &model.Destination{
		ChatID:   -1000000000000 - nextID(),
		Title:    "Test Group",
		IsActive: true,
	}

	for _, opt := range opts {
		opt(dest)
	}

	wantActive := dest.IsActive
	if err := db.Create(dest).Error; err != nil {
		t.Fatalf("Failed to create test destination: %v", err)
	}
	if !wantActive {
		if err := db.Model(dest).Update("is_active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate test destination: %v", err)
		}
	}
	return dest
}

// WithChatID sets the destination chat id.
func WithChatID(chatID int64) func(*model.Destination) {
	return func(d *model.Destination) {
		d.ChatID = chatID
	}
}

// WithDestinationInactive soft-deletes the destination.
func WithDestinationInactive() func(*model.Destination) {
	return func(d *model.Destination) {
		d.IsActive = false
	}
}

// TestCard creates an active payment card.
func TestCard(t *testing.T, db *gorm.DB, opts ...func(*model.Card)) *model.Card {
	t.Helper()

	card := &model.Card{
		CardNumber: "8600 1234 5678 9012",
		CardHolder: "Test Holder",
		IsActive:   true,
	}

	for _, opt := range opts {
		opt(card)
	}

	wantActive := card.IsActive
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("Failed to create test card: %v", err)
	}
	if !wantActive {
		if err := db.Model(card).Update("is_active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate test card: %v", err)
		}
	}
	return card
}
