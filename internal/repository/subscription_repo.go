package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ActiveByUserID returns the user's active subscription, or nil when there
// is none. Renewals may stack several active rows; the one with the latest
// end_date wins so a renewal bought early is never shadowed by the old row.
func (r *SubscriptionRepository) ActiveByUserID(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("end_date DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// ListExpiring selects active, not yet warned subscriptions ending within
// the warning window: now < end_date <= now + window.
func (r *SubscriptionRepository) ListExpiring(now time.Time, window time.Duration) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Preload("User").
		Where("is_active = ? AND warning_sent = ? AND end_date > ? AND end_date <= ?",
			true, false, now, now.Add(window)).
		Find(&subs).Error
	return subs, err
}

// ListExpired selects active subscriptions whose end_date has passed.
func (r *SubscriptionRepository) ListExpired(now time.Time) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.Preload("User").
		Where("is_active = ? AND end_date <= ?", true, now).
		Find(&subs).Error
	return subs, err
}

// MarkWarned sets warning_sent once; re-running on an already warned row
// is a no-op.
func (r *SubscriptionRepository) MarkWarned(id int64) error {
	return r.db.Model(&model.Subscription{}).
		Where("id = ? AND warning_sent = ?", id, false).
		Update("warning_sent", true).Error
}

// Expire deactivates a subscription once; idempotent like MarkWarned.
func (r *SubscriptionRepository) Expire(id int64) error {
	return r.db.Model(&model.Subscription{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false).Error
}

func (r *SubscriptionRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
