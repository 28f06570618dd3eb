package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/repository"
	"github.com/obunabot/obuna_go_server/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		Admin: config.AdminConfig{TelegramIDs: []int64{111, 222}},
		Subscription: config.SubscriptionConfig{
			MonthlyPrice: 99000,
			DurationDays: 30,
			WarningDays:  3,
		},
	}
}

func setupPaymentService(t *testing.T, db *gorm.DB, messenger Messenger) *PaymentService {
	t.Helper()

	cfg := testConfig()
	subService := NewSubscriptionService(repository.NewSubscriptionRepository(db), cfg)
	return NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewDestinationRepository(db),
		subService,
		messenger,
		nil,
		cfg,
	)
}

func TestPaymentService_Submit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	messenger := newFakeMessenger()
	svc := setupPaymentService(t, db, messenger)
	user := testutil.TestUser(t, db)

	payment, err := svc.Submit(context.Background(), user, "receipt-file-id")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
	assert.Equal(t, int64(99000), payment.Amount)
	assert.Nil(t, payment.DecidedBy)

	// Receipt forwarded to both admins.
	require.Len(t, messenger.photos, 2)
	assert.Equal(t, int64(111), messenger.photos[0].ChatID)
	assert.Equal(t, "receipt-file-id", messenger.photos[0].FileID)
}

func TestPaymentService_Submit_NoReceipt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupPaymentService(t, db, newFakeMessenger())
	user := testutil.TestUser(t, db)

	_, err := svc.Submit(context.Background(), user, "")
	assert.Equal(t, ErrNoReceipt, err)
}

// Admin delivery failure must not fail the submission: the pending claim
// is the durable fact.
func TestPaymentService_Submit_AdminDeliveryFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	messenger := newFakeMessenger()
	messenger.failSend = true
	svc := setupPaymentService(t, db, messenger)
	user := testutil.TestUser(t, db)

	payment, err := svc.Submit(context.Background(), user, "receipt")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
}

func TestPaymentService_Decide_Approve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	messenger := newFakeMessenger()
	svc := setupPaymentService(t, db, messenger)
	user := testutil.TestUser(t, db)
	pending := testutil.TestPayment(t, db, user.ID)
	dest := testutil.TestDestination(t, db)

	before := time.Now().UTC()
	payment, err := svc.Decide(context.Background(), pending.ID, 111, OutcomeApprove)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusApproved, payment.Status)
	assert.Equal(t, int64(111), *payment.DecidedBy)

	// Grant anchored at decision time, 30 days long.
	subRepo := repository.NewSubscriptionRepository(db)
	sub, err := subRepo.ActiveByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, pending.ID, sub.PaymentID)
	assert.True(t, sub.IsActive)
	assert.False(t, sub.WarningSent)
	assert.WithinDuration(t, before.Add(30*24*time.Hour), sub.EndDate, 5*time.Second)

	// One invite link per active destination, sent to the user.
	assert.Equal(t, []int64{dest.ChatID}, messenger.inviteLinks)
	require.Len(t, messenger.messagesTo(user.TelegramID), 1)
}

func TestPaymentService_Decide_Approve_NoDestinations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	messenger := newFakeMessenger()
	svc := setupPaymentService(t, db, messenger)
	user := testutil.TestUser(t, db)
	pending := testutil.TestPayment(t, db, user.ID)

	_, err := svc.Decide(context.Background(), pending.ID, 111, OutcomeApprove)
	require.NoError(t, err)

	// User still notified, without invite buttons.
	assert.Empty(t, messenger.inviteLinks)
	require.Len(t, messenger.messagesTo(user.TelegramID), 1)
}

func TestPaymentService_Decide_Reject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	messenger := newFakeMessenger()
	svc := setupPaymentService(t, db, messenger)
	user := testutil.TestUser(t, db)
	pending := testutil.TestPayment(t, db, user.ID)

	payment, err := svc.Decide(context.Background(), pending.ID, 222, OutcomeReject)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRejected, payment.Status)

	// No grant created.
	subRepo := repository.NewSubscriptionRepository(db)
	sub, err := subRepo.ActiveByUserID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, sub)

	require.Len(t, messenger.messagesTo(user.TelegramID), 1)
}

// Two admins racing on the same claim: exactly one outcome persists and
// the loser is told the claim was already handled.
func TestPaymentService_Decide_Race(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	messenger := newFakeMessenger()
	svc := setupPaymentService(t, db, messenger)
	user := testutil.TestUser(t, db)
	pending := testutil.TestPayment(t, db, user.ID)

	_, err := svc.Decide(context.Background(), pending.ID, 111, OutcomeApprove)
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), pending.ID, 222, OutcomeReject)
	assert.Equal(t, ErrPaymentAlreadyDecided, err)

	// First outcome stands.
	payRepo := repository.NewPaymentRepository(db)
	found, err := payRepo.GetByID(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusApproved, found.Status)
	assert.Equal(t, int64(111), *found.DecidedBy)
}

func TestPaymentService_Decide_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupPaymentService(t, db, newFakeMessenger())

	_, err := svc.Decide(context.Background(), 99999, 111, OutcomeApprove)
	assert.Equal(t, ErrPaymentNotFound, err)
}

func TestPaymentService_Decide_InvalidOutcome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := setupPaymentService(t, db, newFakeMessenger())
	user := testutil.TestUser(t, db)
	pending := testutil.TestPayment(t, db, user.ID)

	_, err := svc.Decide(context.Background(), pending.ID, 111, "maybe")
	assert.Equal(t, ErrInvalidOutcome, err)

	// No state change.
	payRepo := repository.NewPaymentRepository(db)
	found, err := payRepo.GetByID(pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, found.Status)
}

// Notification failure never rolls back the decision.
func TestPaymentService_Decide_NotificationFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	messenger := newFakeMessenger()
	messenger.failSend = true
	messenger.failInvites = true
	svc := setupPaymentService(t, db, messenger)
	user := testutil.TestUser(t, db)
	pending := testutil.TestPayment(t, db, user.ID)
	testutil.TestDestination(t, db)

	payment, err := svc.Decide(context.Background(), pending.ID, 111, OutcomeApprove)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusApproved, payment.Status)

	subRepo := repository.NewSubscriptionRepository(db)
	sub, err := subRepo.ActiveByUserID(user.ID)
	require.NoError(t, err)
	assert.NotNil(t, sub)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "99 000", FormatPrice(99000))
	assert.Equal(t, "1 250 000", FormatPrice(1250000))
	assert.Equal(t, "500", FormatPrice(500))
}
