package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/pkg/session"
	"github.com/obunabot/obuna_go_server/internal/pkg/telegram"
	"github.com/obunabot/obuna_go_server/internal/service"
)

// handleStart either reports an already-active subscription or opens the
// registration conversation.
func (b *Bot) handleStart(ctx context.Context, msg *telegram.Message) {
	telegramID := msg.From.ID

	if user, err := b.userRepo.GetByTelegramID(telegramID); err == nil {
		sub, err := b.subs.ActiveGrant(user.ID)
		if err != nil {
			log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to check active grant")
		}
		if sub != nil {
			b.reply(ctx, telegramID, fmt.Sprintf(
				"✅ <b>Obunangiz faol.</b>\n\n"+
					"Tugash sanasi: <b>%s</b>\n"+
					"Qolgan kunlar: <b>%d kun</b>\n\n"+
					"Uzaytirish uchun to'lov chekini yuborishingiz mumkin.",
				sub.EndDate.Format("02.01.2006"), sub.DaysLeft(b.nowUTC())))
			b.askForReceipt(ctx, telegramID, &session.Session{
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Phone:     user.Phone,
			})
			return
		}
		// Known user, no active grant: skip straight to payment.
		b.askForReceipt(ctx, telegramID, &session.Session{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Phone:     user.Phone,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to look up user")
		return
	}

	if err := b.sessions.Set(ctx, telegramID, &session.Session{State: session.StateAwaitingFullName}); err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to open session")
		return
	}
	b.reply(ctx, telegramID,
		"Assalomu alaykum! 👋\n\n"+
			"Obuna bo'lish uchun ro'yxatdan o'ting.\n\n"+
			"Ism va familiyangizni yuboring\n(masalan: <i>Aziz Azizov</i>):")
}

func (b *Bot) handleFullName(ctx context.Context, msg *telegram.Message, sess *session.Session) {
	telegramID := msg.From.ID

	name := strings.TrimSpace(msg.Text)
	if name == "" {
		b.reply(ctx, telegramID, "Iltimos, ism va familiyangizni matn ko'rinishida yuboring:")
		return
	}

	first, last := splitName(name)
	sess.State = session.StateAwaitingPhone
	sess.FirstName = first
	sess.LastName = last
	if err := b.sessions.Set(ctx, telegramID, sess); err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to save session")
		return
	}

	markup := telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: "📱 Raqamni yuborish", RequestContact: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
	b.replyMarkup(ctx, telegramID,
		"Telefon raqamingizni yuboring.\n\n"+
			"Pastdagi tugmani bosing yoki raqamni yozing\n(masalan: <i>+998901234567</i>):",
		markup)
}

func (b *Bot) handlePhone(ctx context.Context, msg *telegram.Message, sess *session.Session) {
	telegramID := msg.From.ID

	phone := strings.TrimSpace(msg.Text)
	if msg.Contact != nil {
		phone = msg.Contact.PhoneNumber
	}
	if phone == "" {
		b.reply(ctx, telegramID, "Iltimos, telefon raqamingizni yuboring:")
		return
	}

	sess.Phone = phone
	b.askForReceipt(ctx, telegramID, sess)
}

// askForReceipt shows the active cards and price, then waits for a
// receipt photo. The session carries the registration fields forward.
func (b *Bot) askForReceipt(ctx context.Context, telegramID int64, sess *session.Session) {
	cards, err := b.cardRepo.ListActive()
	if err != nil {
		log.Error().Err(err).Msg("failed to list cards")
		b.reply(ctx, telegramID, "Xatolik yuz berdi. Keyinroq urinib ko'ring.")
		return
	}
	if len(cards) == 0 {
		b.reply(ctx, telegramID, "Hozircha to'lov kartalari mavjud emas. Keyinroq urinib ko'ring.")
		return
	}

	sess.State = session.StateAwaitingReceipt
	if err := b.sessions.Set(ctx, telegramID, sess); err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to save session")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"💳 <b>To'lov</b>\n\nOylik obuna narxi: <b>%s so'm</b>\n\nKartalar:\n",
		service.FormatPrice(b.cfg.Subscription.MonthlyPrice)))
	for _, card := range cards {
		sb.WriteString(fmt.Sprintf("• <code>%s</code>\n  %s\n", card.CardNumber, card.CardHolder))
	}
	sb.WriteString("\nTo'lovni amalga oshirib, chek rasmini yuboring. 📸")

	b.replyMarkup(ctx, telegramID, sb.String(), telegram.ReplyKeyboardRemove{RemoveKeyboard: true})
}

func (b *Bot) handleReceipt(ctx context.Context, msg *telegram.Message, sess *session.Session) {
	telegramID := msg.From.ID

	if len(msg.Photo) == 0 {
		b.reply(ctx, telegramID, "Iltimos, to'lov chekini <b>rasm</b> ko'rinishida yuboring. 📸")
		return
	}
	// Telegram orders sizes ascending, take the largest.
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	user, err := b.registration.GetOrCreateUser(
		telegramID, sess.FirstName, sess.LastName, sess.Phone, msg.From.Username)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to persist user")
		b.reply(ctx, telegramID, "Xatolik yuz berdi. Keyinroq urinib ko'ring.")
		return
	}

	if _, err := b.payments.Submit(ctx, user, fileID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to submit payment")
		b.reply(ctx, telegramID, "Xatolik yuz berdi. Keyinroq urinib ko'ring.")
		return
	}

	if err := b.sessions.Clear(ctx, telegramID); err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to clear session")
	}

	b.reply(ctx, telegramID,
		"✅ <b>Chek qabul qilindi!</b>\n\n"+
			"Adminlar tekshirgandan so'ng sizga xabar beramiz.\n"+
			"Odatda bu bir necha daqiqa vaqt oladi.")
}

// splitName splits "First Last Middle" into first and the rest.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
