package service

import (
	"time"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/repository"
)

type SubscriptionService struct {
	subRepo *repository.SubscriptionRepository
	cfg     *config.Config
}

func NewSubscriptionService(subRepo *repository.SubscriptionRepository, cfg *config.Config) *SubscriptionService {
	return &SubscriptionService{
		subRepo: subRepo,
		cfg:     cfg,
	}
}

// Grant materializes the time-bounded access grant for an approved
// payment, anchored at the decision time. No check for an existing active
// grant: renewals stack, and the gate picks the row with the latest
// end_date.
func (s *SubscriptionService) Grant(userID, paymentID int64, start time.Time) (*model.Subscription, error) {
	days := s.cfg.Subscription.DurationDays
	if days <= 0 {
		days = 30
	}

	sub := &model.Subscription{
		UserID:      userID,
		PaymentID:   paymentID,
		StartDate:   start,
		EndDate:     start.Add(time.Duration(days) * 24 * time.Hour),
		IsActive:    true,
		WarningSent: false,
	}
	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ActiveGrant returns the user's current grant, nil when none.
func (s *SubscriptionService) ActiveGrant(userID int64) (*model.Subscription, error) {
	return s.subRepo.ActiveByUserID(userID)
}
