package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/pkg/pubsub"
	"github.com/obunabot/obuna_go_server/internal/pkg/telegram"
	"github.com/obunabot/obuna_go_server/internal/repository"
)

var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentAlreadyDecided = errors.New("payment already decided")
	ErrInvalidOutcome        = errors.New("invalid decision outcome")
	ErrNoReceipt             = errors.New("receipt file id is required")
)

// Decision outcomes accepted by Decide.
const (
	OutcomeApprove = "approve"
	OutcomeReject  = "reject"
)

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	destRepo    *repository.DestinationRepository
	subService  *SubscriptionService
	messenger   Messenger
	events      *pubsub.Publisher
	cfg         *config.Config
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	destRepo *repository.DestinationRepository,
	subService *SubscriptionService,
	messenger Messenger,
	events *pubsub.Publisher,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		destRepo:    destRepo,
		subService:  subService,
		messenger:   messenger,
		events:      events,
		cfg:         cfg,
	}
}

// Submit records a pending payment claim and fans the receipt out to every
// administrator. Resubmissions are not de-duplicated: a user may hold
// several pending claims at once.
func (s *PaymentService) Submit(ctx context.Context, user *model.User, receiptFileID string) (*model.Payment, error) {
	if receiptFileID == "" {
		return nil, ErrNoReceipt
	}

	payment := &model.Payment{
		UserID:        user.ID,
		Amount:        s.cfg.Subscription.MonthlyPrice,
		ReceiptFileID: receiptFileID,
		Status:        model.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	caption := fmt.Sprintf(
		"🆕 <b>Yangi to'lov!</b>\n\n"+
			"👤 Ism: %s\n"+
			"👤 Familiya: %s\n"+
			"📱 Telefon: %s\n"+
			"🆔 Username: @%s\n"+
			"🆔 Telegram ID: <code>%d</code>\n"+
			"💰 Summa: %s so'm\n"+
			"🕐 To'lov ID: #%d",
		user.FirstName, user.LastName, user.Phone,
		orDefault(user.Username, "yo'q"), user.TelegramID,
		FormatPrice(payment.Amount), payment.ID,
	)

	markup := telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "✅ Tasdiqlash", CallbackData: fmt.Sprintf("approve_%d", payment.ID)},
			{Text: "❌ Rad etish", CallbackData: fmt.Sprintf("reject_%d", payment.ID)},
		}},
	}

	for _, adminID := range s.cfg.Admin.TelegramIDs {
		if err := s.messenger.SendPhoto(ctx, adminID, receiptFileID, caption, markup); err != nil {
			log.Warn().Err(err).Int64("admin_id", adminID).Int64("payment_id", payment.ID).
				Msg("failed to forward receipt to admin")
		}
	}

	s.publishEvent(ctx, &pubsub.PaymentEvent{
		Type:      pubsub.EventPaymentSubmitted,
		PaymentID: payment.ID,
		UserID:    user.ID,
		FullName:  user.FullName(),
		Amount:    payment.Amount,
	})

	return payment, nil
}

// Decide transitions a pending payment to approved or rejected exactly
// once. The repository's compare-and-set serializes racing admins; the
// loser gets ErrPaymentAlreadyDecided. On approval a grant anchored at the
// decision time is created before any notification goes out.
func (s *PaymentService) Decide(ctx context.Context, paymentID, adminID int64, outcome string) (*model.Payment, error) {
	var status string
	switch outcome {
	case OutcomeApprove:
		status = model.PaymentStatusApproved
	case OutcomeReject:
		status = model.PaymentStatusRejected
	default:
		return nil, ErrInvalidOutcome
	}

	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	decidedAt := time.Now().UTC()
	won, err := s.paymentRepo.Decide(paymentID, adminID, status, decidedAt)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrPaymentAlreadyDecided
	}

	payment.Status = status
	payment.DecidedBy = &adminID
	payment.DecidedAt = &decidedAt

	if status == model.PaymentStatusApproved {
		sub, err := s.subService.Grant(payment.UserID, payment.ID, decidedAt)
		if err != nil {
			// The decision is already durable; surface the grant failure.
			return nil, fmt.Errorf("failed to create grant: %w", err)
		}
		log.Info().Int64("payment_id", payment.ID).Int64("subscription_id", sub.ID).
			Time("end_date", sub.EndDate).Msg("payment approved, grant created")

		s.notifyApproval(ctx, payment)
		s.publishEvent(ctx, &pubsub.PaymentEvent{
			Type:      pubsub.EventPaymentApproved,
			PaymentID: payment.ID,
			UserID:    payment.UserID,
			Amount:    payment.Amount,
			DecidedBy: adminID,
		})
	} else {
		log.Info().Int64("payment_id", payment.ID).Int64("admin_id", adminID).
			Msg("payment rejected")

		s.notifyRejection(ctx, payment)
		s.publishEvent(ctx, &pubsub.PaymentEvent{
			Type:      pubsub.EventPaymentRejected,
			PaymentID: payment.ID,
			UserID:    payment.UserID,
			Amount:    payment.Amount,
			DecidedBy: adminID,
		})
	}

	return payment, nil
}

// notifyApproval sends the user one invite button per active destination.
// Delivery is best-effort: failures are logged and reported to admins but
// never undo the approval.
func (s *PaymentService) notifyApproval(ctx context.Context, payment *model.Payment) {
	chatID := payment.User.TelegramID

	dests, err := s.destRepo.ListActive()
	if err != nil {
		log.Error().Err(err).Int64("payment_id", payment.ID).Msg("failed to list destinations")
		return
	}

	if len(dests) == 0 {
		text := "🎉 <b>To'lovingiz tasdiqlandi!</b>\n\n" +
			"✅ Obunangiz 30 kunga faollashtirildi.\n\n" +
			"⚠️ Hozircha guruh/kanal qo'shilmagan. Admin tez orada qo'shadi."
		if err := s.messenger.SendMessage(ctx, chatID, text); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to notify approved user")
		}
		return
	}

	var buttons [][]telegram.InlineKeyboardButton
	for _, dest := range dests {
		link, err := s.messenger.CreateInviteLink(ctx, dest.ChatID, fmt.Sprintf("user_%d", chatID))
		if err != nil {
			log.Error().Err(err).Int64("dest_chat_id", dest.ChatID).Msg("failed to create invite link")
			s.alertAdmins(ctx, fmt.Sprintf("⚠️ Userga (%d) havola yaratishda xato: %v", chatID, err))
			continue
		}
		title := dest.Title
		if title == "" {
			title = fmt.Sprintf("Guruh #%d", dest.ID)
		}
		buttons = append(buttons, []telegram.InlineKeyboardButton{{Text: "📢 " + title, URL: link}})
	}

	text := "🎉 <b>To'lovingiz tasdiqlandi!</b>\n\n" +
		"✅ Obunangiz 30 kunga faollashtirildi.\n\n" +
		"Quyidagi tugmalarni bosib guruh/kanallarga qo'shiling:"
	err = s.messenger.SendMessageWithMarkup(ctx, chatID, text,
		telegram.InlineKeyboardMarkup{InlineKeyboard: buttons})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send invite links")
		s.alertAdmins(ctx, fmt.Sprintf("⚠️ Userga (%d) havola yuborishda xato: %v", chatID, err))
	}
}

func (s *PaymentService) notifyRejection(ctx context.Context, payment *model.Payment) {
	text := "❌ <b>To'lovingiz rad etildi.</b>\n\n" +
		"Iltimos, to'lov chekini qayta yuboring yoki admin bilan bog'laning.\n" +
		"Qaytadan boshlash uchun /start bosing."
	if err := s.messenger.SendMessage(ctx, payment.User.TelegramID, text); err != nil {
		log.Warn().Err(err).Int64("chat_id", payment.User.TelegramID).
			Msg("failed to notify rejected user")
	}
}

func (s *PaymentService) alertAdmins(ctx context.Context, text string) {
	for _, adminID := range s.cfg.Admin.TelegramIDs {
		if err := s.messenger.SendMessage(ctx, adminID, text); err != nil {
			log.Warn().Err(err).Int64("admin_id", adminID).Msg("failed to alert admin")
		}
	}
}

func (s *PaymentService) publishEvent(ctx context.Context, event *pubsub.PaymentEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", event.Type).Msg("failed to publish payment event")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// FormatPrice renders 99000 as "99 000".
func FormatPrice(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	return string(out)
}
