package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/repository"
	"github.com/obunabot/obuna_go_server/internal/service"
)

// Sweeper runs the recurring expiry job: one warning pass, one expiry
// pass. Both passes are idempotent re-scans, so an interrupted run is
// simply picked up by the next one.
type Sweeper struct {
	subRepo   *repository.SubscriptionRepository
	destRepo  *repository.DestinationRepository
	messenger service.Messenger
	cfg       *config.Config
	now       func() time.Time
}

func NewSweeper(
	subRepo *repository.SubscriptionRepository,
	destRepo *repository.DestinationRepository,
	messenger service.Messenger,
	cfg *config.Config,
) *Sweeper {
	return &Sweeper{
		subRepo:   subRepo,
		destRepo:  destRepo,
		messenger: messenger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run executes both passes and returns (warned, expired) counts.
func (s *Sweeper) Run(ctx context.Context) (int, int, error) {
	now := s.now()

	warned, err := s.warningPass(ctx, now)
	if err != nil {
		return warned, 0, err
	}

	expired, err := s.expiryPass(ctx, now)
	if err != nil {
		return warned, expired, err
	}

	log.Info().Int("warned", warned).Int("expired", expired).Msg("subscription sweep done")
	return warned, expired, nil
}

// warningPass notifies users whose grant ends within the warning window.
// warning_sent is only set after a successful delivery, so a failed
// notification is retried on the next run.
func (s *Sweeper) warningPass(ctx context.Context, now time.Time) (int, error) {
	window := time.Duration(s.cfg.Subscription.WarningDays) * 24 * time.Hour

	expiring, err := s.subRepo.ListExpiring(now, window)
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}

	warned := 0
	for _, sub := range expiring {
		daysLeft := sub.DaysLeft(now)
		text := fmt.Sprintf(
			"⚠️ <b>Diqqat!</b>\n\n"+
				"Obunangiz tugashiga <b>%d kun</b> qoldi.\n\n"+
				"To'lovni uzaytirish uchun /start bosing.",
			daysLeft,
		)

		if err := s.messenger.SendMessage(ctx, sub.User.TelegramID, text); err != nil {
			log.Error().Err(err).Int64("telegram_id", sub.User.TelegramID).
				Msg("failed to warn expiring user")
			continue
		}

		if err := s.subRepo.MarkWarned(sub.ID); err != nil {
			log.Error().Err(err).Int64("subscription_id", sub.ID).
				Msg("failed to mark subscription warned")
			continue
		}

		warned++
		log.Info().Int64("telegram_id", sub.User.TelegramID).Int("days_left", daysLeft).
			Msg("expiry warning sent")
	}
	return warned, nil
}

// expiryPass deactivates expired grants and removes their owners from
// every active destination. The grant is deactivated before any removal
// call, so a crash mid-sweep never leaves an expired user counted as
// active. Per-destination failures are isolated.
func (s *Sweeper) expiryPass(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.subRepo.ListExpired(now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired subscriptions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	dests, err := s.destRepo.ListActive()
	if err != nil {
		return 0, fmt.Errorf("failed to list destinations: %w", err)
	}

	processed := 0
	for _, sub := range expired {
		if err := s.subRepo.Expire(sub.ID); err != nil {
			log.Error().Err(err).Int64("subscription_id", sub.ID).
				Msg("failed to deactivate subscription")
			continue
		}
		processed++

		for _, dest := range dests {
			if err := s.messenger.BanThenUnban(ctx, dest.ChatID, sub.User.TelegramID); err != nil {
				log.Error().Err(err).Int64("telegram_id", sub.User.TelegramID).
					Int64("dest_chat_id", dest.ChatID).Msg("failed to remove expired user")
				continue
			}
			log.Info().Int64("telegram_id", sub.User.TelegramID).
				Int64("dest_chat_id", dest.ChatID).Msg("expired user removed")
		}

		text := "❌ <b>Obunangiz tugadi!</b>\n\n" +
			"Siz guruh/kanallardan chiqarildingiz.\n\n" +
			"Qayta obuna bo'lish uchun /start bosing."
		if err := s.messenger.SendMessage(ctx, sub.User.TelegramID, text); err != nil {
			log.Warn().Err(err).Int64("telegram_id", sub.User.TelegramID).
				Msg("failed to notify expired user")
		}
	}
	return processed, nil
}
