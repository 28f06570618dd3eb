package bot

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/obunabot/obuna_go_server/internal/pkg/telegram"
	"github.com/obunabot/obuna_go_server/internal/service"
)

// handleJoinRequest is the synchronous access gate: every join request
// against a destination is approved or declined based on the requester's
// current grant, never left pending.
func (b *Bot) handleJoinRequest(ctx context.Context, req *telegram.ChatJoinRequest) {
	decision, err := b.access.Check(req.From.ID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", req.From.ID).
			Int64("chat_id", req.Chat.ID).Msg("access check failed")
		// Fail closed.
		decision = service.AccessDeniedNoGrant
	}

	if decision == service.AccessApproved {
		if err := b.tg.ApproveJoinRequest(ctx, req.Chat.ID, req.From.ID); err != nil {
			log.Error().Err(err).Int64("telegram_id", req.From.ID).
				Int64("chat_id", req.Chat.ID).Msg("failed to approve join request")
			return
		}
		log.Info().Int64("telegram_id", req.From.ID).Int64("chat_id", req.Chat.ID).
			Msg("join request approved")
		return
	}

	if err := b.tg.DeclineJoinRequest(ctx, req.Chat.ID, req.From.ID); err != nil {
		log.Error().Err(err).Int64("telegram_id", req.From.ID).
			Int64("chat_id", req.Chat.ID).Msg("failed to decline join request")
		return
	}
	log.Info().Int64("telegram_id", req.From.ID).Int64("chat_id", req.Chat.ID).
		Msg("join request declined")

	// Best effort; fails silently for users who never opened the bot.
	text := "❌ Sizda faol obuna yo'q.\n\nObuna bo'lish uchun /start bosing."
	if decision == service.AccessDeniedUnregistered {
		text = "❌ Siz hali ro'yxatdan o'tmagansiz.\n\nRo'yxatdan o'tish uchun /start bosing."
	}
	if err := b.tg.SendMessage(ctx, req.From.ID, text); err != nil {
		log.Debug().Err(err).Int64("telegram_id", req.From.ID).Msg("denial notice not delivered")
	}
}
