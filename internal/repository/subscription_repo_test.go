package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obunabot/obuna_go_server/internal/testutil"
)

func TestSubscriptionRepository_ActiveByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)
	created := testutil.TestSubscription(t, db, user.ID, payment.ID)

	found, err := repo.ActiveByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
}

func TestSubscriptionRepository_ActiveByUserID_None(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)

	found, err := repo.ActiveByUserID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSubscriptionRepository_ActiveByUserID_Inactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)
	testutil.TestSubscription(t, db, user.ID, payment.ID, testutil.WithInactive())

	found, err := repo.ActiveByUserID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

// Renewing before expiry stacks two active rows; the gate must see the
// one with the latest end_date.
func TestSubscriptionRepository_ActiveByUserID_StackedRenewals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	now := time.Now().UTC()

	p1 := testutil.TestPayment(t, db, user.ID)
	testutil.TestSubscription(t, db, user.ID, p1.ID,
		testutil.WithEndDate(now.Add(2*24*time.Hour)))

	p2 := testutil.TestPayment(t, db, user.ID)
	renewal := testutil.TestSubscription(t, db, user.ID, p2.ID,
		testutil.WithEndDate(now.Add(32*24*time.Hour)))

	found, err := repo.ActiveByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, renewal.ID, found.ID)
}

func TestSubscriptionRepository_ListExpiring(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	now := time.Now().UTC()
	window := 3 * 24 * time.Hour

	// Ends in 2 days: inside the window.
	u1 := testutil.TestUser(t, db)
	p1 := testutil.TestPayment(t, db, u1.ID)
	inWindow := testutil.TestSubscription(t, db, u1.ID, p1.ID,
		testutil.WithEndDate(now.Add(2*24*time.Hour)))

	// Ends in 10 days: outside.
	u2 := testutil.TestUser(t, db)
	p2 := testutil.TestPayment(t, db, u2.ID)
	testutil.TestSubscription(t, db, u2.ID, p2.ID,
		testutil.WithEndDate(now.Add(10*24*time.Hour)))

	// Already past end: expiry pass material, not a warning.
	u3 := testutil.TestUser(t, db)
	p3 := testutil.TestPayment(t, db, u3.ID)
	testutil.TestSubscription(t, db, u3.ID, p3.ID,
		testutil.WithEndDate(now.Add(-time.Hour)))

	// In window but already warned.
	u4 := testutil.TestUser(t, db)
	p4 := testutil.TestPayment(t, db, u4.ID)
	testutil.TestSubscription(t, db, u4.ID, p4.ID,
		testutil.WithEndDate(now.Add(24*time.Hour)), testutil.WithWarningSent())

	subs, err := repo.ListExpiring(now, window)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, inWindow.ID, subs[0].ID)
	// Owner preloaded for the notification.
	assert.Equal(t, u1.TelegramID, subs[0].User.TelegramID)
}

func TestSubscriptionRepository_ListExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	now := time.Now().UTC()

	u1 := testutil.TestUser(t, db)
	p1 := testutil.TestPayment(t, db, u1.ID)
	expired := testutil.TestSubscription(t, db, u1.ID, p1.ID,
		testutil.WithEndDate(now.Add(-time.Hour)))

	u2 := testutil.TestUser(t, db)
	p2 := testutil.TestPayment(t, db, u2.ID)
	testutil.TestSubscription(t, db, u2.ID, p2.ID,
		testutil.WithEndDate(now.Add(time.Hour)))

	// Already deactivated rows are not reprocessed.
	u3 := testutil.TestUser(t, db)
	p3 := testutil.TestPayment(t, db, u3.ID)
	testutil.TestSubscription(t, db, u3.ID, p3.ID,
		testutil.WithEndDate(now.Add(-time.Hour)), testutil.WithInactive())

	subs, err := repo.ListExpired(now)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, expired.ID, subs[0].ID)
}

func TestSubscriptionRepository_MarkWarned_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)
	sub := testutil.TestSubscription(t, db, user.ID, payment.ID)

	require.NoError(t, repo.MarkWarned(sub.ID))
	require.NoError(t, repo.MarkWarned(sub.ID))

	found, err := repo.GetByID(sub.ID)
	require.NoError(t, err)
	assert.True(t, found.WarningSent)
}

func TestSubscriptionRepository_Expire_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)
	sub := testutil.TestSubscription(t, db, user.ID, payment.ID)

	require.NoError(t, repo.Expire(sub.ID))
	require.NoError(t, repo.Expire(sub.ID))

	found, err := repo.GetByID(sub.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestSubscriptionRepository_CountActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)

	p1 := testutil.TestPayment(t, db, user.ID)
	testutil.TestSubscription(t, db, user.ID, p1.ID)
	p2 := testutil.TestPayment(t, db, user.ID)
	testutil.TestSubscription(t, db, user.ID, p2.ID, testutil.WithInactive())

	count, err := repo.CountActive()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
