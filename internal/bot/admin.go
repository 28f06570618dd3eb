package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/pkg/session"
	"github.com/obunabot/obuna_go_server/internal/pkg/telegram"
	"github.com/obunabot/obuna_go_server/internal/service"
)

// Admin menu callback codes. Deletions carry the row id as a suffix.
const (
	cbAdminStats   = "admin_stats"
	cbAdminCards   = "admin_cards"
	cbAdminCardAdd = "admin_card_add"
	cbAdminCardDel = "admin_card_del_"
	cbAdminDests   = "admin_dests"
	cbAdminDestAdd = "admin_dest_add"
	cbAdminDestDel = "admin_dest_del_"
	cbAdminPending = "admin_pending"
)

func (b *Bot) handleAdminMenu(ctx context.Context, msg *telegram.Message) {
	if !b.cfg.IsAdmin(msg.From.ID) {
		return
	}

	markup := telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "📊 Statistika", CallbackData: cbAdminStats}},
			{{Text: "💳 Kartalar", CallbackData: cbAdminCards}},
			{{Text: "📢 Kanallar/Guruhlar", CallbackData: cbAdminDests}},
			{{Text: "⏳ Kutilayotgan to'lovlar", CallbackData: cbAdminPending}},
		},
	}
	b.replyMarkup(ctx, msg.From.ID, "🛠 <b>Admin panel</b>", markup)
}

// handleAdminCallback returns true when the callback data belongs to the
// admin menu.
func (b *Bot) handleAdminCallback(ctx context.Context, cb *telegram.CallbackQuery) bool {
	data := cb.Data
	if !strings.HasPrefix(data, "admin_") {
		return false
	}
	adminID := cb.From.ID
	if !b.cfg.IsAdmin(adminID) {
		b.answerCallback(ctx, cb.ID, "Ruxsat yo'q", true)
		return true
	}

	switch {
	case data == cbAdminStats:
		b.showStats(ctx, adminID)
	case data == cbAdminCards:
		b.showCards(ctx, adminID)
	case data == cbAdminCardAdd:
		b.startCardAdd(ctx, adminID)
	case strings.HasPrefix(data, cbAdminCardDel):
		b.deleteCard(ctx, adminID, strings.TrimPrefix(data, cbAdminCardDel))
	case data == cbAdminDests:
		b.showDestinations(ctx, adminID)
	case data == cbAdminDestAdd:
		b.startDestAdd(ctx, adminID)
	case strings.HasPrefix(data, cbAdminDestDel):
		b.deleteDestination(ctx, adminID, strings.TrimPrefix(data, cbAdminDestDel))
	case data == cbAdminPending:
		b.showPendingPayments(ctx, adminID)
	default:
		b.answerCallback(ctx, cb.ID, "", false)
		return true
	}

	b.answerCallback(ctx, cb.ID, "", false)
	return true
}

func (b *Bot) showStats(ctx context.Context, adminID int64) {
	overview, err := b.stats.Overview()
	if err != nil {
		log.Error().Err(err).Msg("failed to load stats")
		b.reply(ctx, adminID, "Statistikani olishda xatolik.")
		return
	}
	b.reply(ctx, adminID, fmt.Sprintf(
		"📊 <b>Statistika</b>\n\n"+
			"👥 Foydalanuvchilar: <b>%d</b>\n"+
			"✅ Faol obunalar: <b>%d</b>\n"+
			"⏳ Kutilayotgan to'lovlar: <b>%d</b>\n"+
			"✔️ Tasdiqlangan: <b>%d</b>\n"+
			"✖️ Rad etilgan: <b>%d</b>\n"+
			"📢 Kanallar/Guruhlar: <b>%d</b>",
		overview.Users, overview.ActiveGrants,
		overview.PaymentsPending, overview.PaymentsApproved,
		overview.PaymentsRejected, overview.Destinations))
}

func (b *Bot) showCards(ctx context.Context, adminID int64) {
	cards, err := b.cardRepo.ListActive()
	if err != nil {
		log.Error().Err(err).Msg("failed to list cards")
		b.reply(ctx, adminID, "Kartalarni olishda xatolik.")
		return
	}

	rows := make([][]telegram.InlineKeyboardButton, 0, len(cards)+1)
	for _, card := range cards {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         fmt.Sprintf("🗑 %s (%s)", card.CardNumber, card.CardHolder),
			CallbackData: fmt.Sprintf("%s%d", cbAdminCardDel, card.ID),
		}})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{
		Text: "➕ Karta qo'shish", CallbackData: cbAdminCardAdd,
	}})

	text := "💳 <b>Kartalar</b>\n\nO'chirish uchun kartani bosing."
	if len(cards) == 0 {
		text = "💳 Kartalar yo'q."
	}
	b.replyMarkup(ctx, adminID, text, telegram.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (b *Bot) startCardAdd(ctx context.Context, adminID int64) {
	if err := b.sessions.Set(ctx, adminID, &session.Session{State: session.StateAwaitingCardNumber}); err != nil {
		log.Error().Err(err).Int64("telegram_id", adminID).Msg("failed to open session")
		return
	}
	b.reply(ctx, adminID, "Karta raqamini yuboring\n(masalan: <i>8600 1234 5678 9012</i>):")
}

func (b *Bot) handleCardNumber(ctx context.Context, msg *telegram.Message, sess *session.Session) {
	adminID := msg.From.ID
	if !b.cfg.IsAdmin(adminID) {
		return
	}

	number := strings.TrimSpace(msg.Text)
	if number == "" {
		b.reply(ctx, adminID, "Iltimos, karta raqamini yuboring:")
		return
	}

	sess.State = session.StateAwaitingCardHolder
	sess.CardNumber = number
	if err := b.sessions.Set(ctx, adminID, sess); err != nil {
		log.Error().Err(err).Int64("telegram_id", adminID).Msg("failed to save session")
		return
	}
	b.reply(ctx, adminID, "Karta egasining ismini yuboring:")
}

func (b *Bot) handleCardHolder(ctx context.Context, msg *telegram.Message, sess *session.Session) {
	adminID := msg.From.ID
	if !b.cfg.IsAdmin(adminID) {
		return
	}

	holder := strings.TrimSpace(msg.Text)
	if holder == "" {
		b.reply(ctx, adminID, "Iltimos, karta egasining ismini yuboring:")
		return
	}

	card := &model.Card{CardNumber: sess.CardNumber, CardHolder: holder, IsActive: true}
	if err := b.cardRepo.Create(card); err != nil {
		log.Error().Err(err).Msg("failed to create card")
		b.reply(ctx, adminID, "Kartani saqlashda xatolik.")
		return
	}

	if err := b.sessions.Clear(ctx, adminID); err != nil {
		log.Error().Err(err).Int64("telegram_id", adminID).Msg("failed to clear session")
	}
	b.reply(ctx, adminID, fmt.Sprintf("✅ Karta qo'shildi: <code>%s</code> (%s)", card.CardNumber, card.CardHolder))
}

func (b *Bot) deleteCard(ctx context.Context, adminID int64, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	if err := b.cardRepo.Deactivate(id); err != nil {
		log.Error().Err(err).Int64("card_id", id).Msg("failed to deactivate card")
		b.reply(ctx, adminID, "Kartani o'chirishda xatolik.")
		return
	}
	b.reply(ctx, adminID, "✅ Karta o'chirildi.")
}

func (b *Bot) showDestinations(ctx context.Context, adminID int64) {
	dests, err := b.destRepo.ListActive()
	if err != nil {
		log.Error().Err(err).Msg("failed to list destinations")
		b.reply(ctx, adminID, "Kanallarni olishda xatolik.")
		return
	}

	rows := make([][]telegram.InlineKeyboardButton, 0, len(dests)+1)
	for _, dest := range dests {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         fmt.Sprintf("🗑 %s", dest.Title),
			CallbackData: fmt.Sprintf("%s%d", cbAdminDestDel, dest.ID),
		}})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{{
		Text: "➕ Kanal/Guruh qo'shish", CallbackData: cbAdminDestAdd,
	}})

	text := "📢 <b>Kanallar/Guruhlar</b>\n\nO'chirish uchun bosing."
	if len(dests) == 0 {
		text = "📢 Kanallar yo'q."
	}
	b.replyMarkup(ctx, adminID, text, telegram.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (b *Bot) startDestAdd(ctx context.Context, adminID int64) {
	if err := b.sessions.Set(ctx, adminID, &session.Session{State: session.StateAwaitingChatID}); err != nil {
		log.Error().Err(err).Int64("telegram_id", adminID).Msg("failed to open session")
		return
	}
	b.reply(ctx, adminID,
		"Kanal yoki guruh chat ID sini yuboring\n(masalan: <i>-1001234567890</i>).\n\n"+
			"Bot avval o'sha kanalga admin qilib qo'shilgan bo'lishi kerak.")
}

// handleChatID validates the chat id by fetching it through the bot. The
// getChat call fails unless the bot is already a member.
func (b *Bot) handleChatID(ctx context.Context, msg *telegram.Message) {
	adminID := msg.From.ID
	if !b.cfg.IsAdmin(adminID) {
		return
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		b.reply(ctx, adminID, "Noto'g'ri format. Chat ID raqam bo'lishi kerak\n(masalan: <i>-1001234567890</i>):")
		return
	}

	chat, err := b.tg.GetChat(ctx, chatID)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("getChat failed for new destination")
		b.reply(ctx, adminID,
			"❌ Kanal topilmadi. Bot o'sha kanalga admin qilib qo'shilganini tekshiring.")
		return
	}

	dest := &model.Destination{ChatID: chatID, Title: orTitle(chat.Title, chatID), IsActive: true}
	if err := b.destRepo.Create(dest); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to create destination")
		b.reply(ctx, adminID, "Kanalni saqlashda xatolik.")
		return
	}

	if err := b.sessions.Clear(ctx, adminID); err != nil {
		log.Error().Err(err).Int64("telegram_id", adminID).Msg("failed to clear session")
	}
	b.reply(ctx, adminID, fmt.Sprintf("✅ Qo'shildi: <b>%s</b>", dest.Title))
}

func (b *Bot) deleteDestination(ctx context.Context, adminID int64, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}
	if err := b.destRepo.Deactivate(id); err != nil {
		log.Error().Err(err).Int64("destination_id", id).Msg("failed to deactivate destination")
		b.reply(ctx, adminID, "Kanalni o'chirishda xatolik.")
		return
	}
	b.reply(ctx, adminID, "✅ Kanal o'chirildi.")
}

func (b *Bot) showPendingPayments(ctx context.Context, adminID int64) {
	payments, total, err := b.paymentRepo.List(model.PaymentStatusPending, 1, 10)
	if err != nil {
		log.Error().Err(err).Msg("failed to list pending payments")
		b.reply(ctx, adminID, "To'lovlarni olishda xatolik.")
		return
	}
	if total == 0 {
		b.reply(ctx, adminID, "⏳ Kutilayotgan to'lovlar yo'q.")
		return
	}

	b.reply(ctx, adminID, fmt.Sprintf("⏳ Kutilayotgan to'lovlar: <b>%d</b>", total))
	for _, payment := range payments {
		markup := telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{{
				{Text: "✅ Tasdiqlash", CallbackData: fmt.Sprintf("approve_%d", payment.ID)},
				{Text: "❌ Rad etish", CallbackData: fmt.Sprintf("reject_%d", payment.ID)},
			}},
		}
		caption := fmt.Sprintf(
			"💰 <b>To'lov #%d</b>\n\n👤 %s\n📱 %s\n💵 %s so'm",
			payment.ID, payment.User.FullName(), payment.User.Phone,
			service.FormatPrice(payment.Amount))
		if err := b.tg.SendPhoto(ctx, adminID, payment.ReceiptFileID, caption, markup); err != nil {
			log.Error().Err(err).Int64("payment_id", payment.ID).Msg("failed to send pending payment")
		}
	}
}

func (b *Bot) answerCallback(ctx context.Context, callbackID, text string, alert bool) {
	if err := b.tg.AnswerCallbackQuery(ctx, callbackID, text, alert); err != nil {
		log.Error().Err(err).Msg("failed to answer callback")
	}
}

func orTitle(title string, chatID int64) string {
	if title != "" {
		return title
	}
	return strconv.FormatInt(chatID, 10)
}
