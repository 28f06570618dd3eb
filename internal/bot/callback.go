package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/obunabot/obuna_go_server/internal/pkg/telegram"
	"github.com/obunabot/obuna_go_server/internal/service"
)

func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if b.handleAdminCallback(ctx, cb) {
		return
	}

	var outcome string
	var rawID string
	switch {
	case strings.HasPrefix(cb.Data, "approve_"):
		outcome = service.OutcomeApprove
		rawID = strings.TrimPrefix(cb.Data, "approve_")
	case strings.HasPrefix(cb.Data, "reject_"):
		outcome = service.OutcomeReject
		rawID = strings.TrimPrefix(cb.Data, "reject_")
	default:
		b.answerCallback(ctx, cb.ID, "", false)
		return
	}

	adminID := cb.From.ID
	if !b.cfg.IsAdmin(adminID) {
		b.answerCallback(ctx, cb.ID, "Ruxsat yo'q", true)
		return
	}

	paymentID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		b.answerCallback(ctx, cb.ID, "", false)
		return
	}

	payment, err := b.payments.Decide(ctx, paymentID, adminID, outcome)
	switch {
	case errors.Is(err, service.ErrPaymentAlreadyDecided):
		b.answerCallback(ctx, cb.ID, "Bu to'lov allaqachon ko'rib chiqilgan", true)
		return
	case errors.Is(err, service.ErrPaymentNotFound):
		b.answerCallback(ctx, cb.ID, "To'lov topilmadi", true)
		return
	case err != nil:
		log.Error().Err(err).Int64("payment_id", paymentID).Msg("failed to decide payment")
		b.answerCallback(ctx, cb.ID, "Xatolik yuz berdi", true)
		return
	}

	verdict := "✅ TASDIQLANDI"
	answer := "To'lov tasdiqlandi"
	if outcome == service.OutcomeReject {
		verdict = "❌ RAD ETILDI"
		answer = "To'lov rad etildi"
	}

	// Stamp the verdict onto the receipt message so the other admins see
	// the claim immediately.
	if cb.Message != nil {
		caption := fmt.Sprintf("%s\n\n%s (admin: %d)", cb.Message.Caption, verdict, adminID)
		if err := b.tg.EditMessageCaption(ctx, cb.Message.Chat.ID, cb.Message.MessageID, caption); err != nil {
			log.Warn().Err(err).Int64("payment_id", payment.ID).Msg("failed to stamp receipt caption")
		}
	}

	b.answerCallback(ctx, cb.ID, answer, false)
}
