package bot

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/pkg/session"
	"github.com/obunabot/obuna_go_server/internal/pkg/telegram"
	"github.com/obunabot/obuna_go_server/internal/repository"
	"github.com/obunabot/obuna_go_server/internal/service"
)

// api is the slice of the Telegram client the dispatcher needs.
type api interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup interface{}) error
	EditMessageCaption(ctx context.Context, chatID, messageID int64, caption string) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string, showAlert bool) error
	ApproveJoinRequest(ctx context.Context, chatID, userID int64) error
	DeclineJoinRequest(ctx context.Context, chatID, userID int64) error
	GetChat(ctx context.Context, chatID int64) (*telegram.Chat, error)
}

// Bot long-polls getUpdates and routes each update to the matching
// handler. Handlers are synchronous; an update is only acknowledged
// (offset advanced) after its handler returns.
type Bot struct {
	tg       api
	sessions *session.Store
	cfg      *config.Config

	registration *service.RegistrationService
	payments     *service.PaymentService
	access       *service.AccessService
	subs         *service.SubscriptionService
	stats        *service.StatsService

	userRepo    *repository.UserRepository
	cardRepo    *repository.CardRepository
	destRepo    *repository.DestinationRepository
	paymentRepo *repository.PaymentRepository
}

func New(
	tg *telegram.Client,
	sessions *session.Store,
	cfg *config.Config,
	registration *service.RegistrationService,
	payments *service.PaymentService,
	access *service.AccessService,
	subs *service.SubscriptionService,
	stats *service.StatsService,
	userRepo *repository.UserRepository,
	cardRepo *repository.CardRepository,
	destRepo *repository.DestinationRepository,
	paymentRepo *repository.PaymentRepository,
) *Bot {
	return &Bot{
		tg:           tg,
		sessions:     sessions,
		cfg:          cfg,
		registration: registration,
		payments:     payments,
		access:       access,
		subs:         subs,
		stats:        stats,
		userRepo:     userRepo,
		cardRepo:     cardRepo,
		destRepo:     destRepo,
		paymentRepo:  paymentRepo,
	}
}

// Run polls until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	log.Info().Msg("bot polling started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("bot polling stopped")
			return
		default:
		}

		updates, err := b.tg.GetUpdates(ctx, offset, b.cfg.Telegram.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("bot polling stopped")
				return
			}
			log.Error().Err(err).Msg("getUpdates failed")
			time.Sleep(3 * time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(parent context.Context, update telegram.Update) {
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Int64("update_id", update.UpdateID).
				Msg("handler panicked")
		}
	}()

	switch {
	case update.ChatJoinRequest != nil:
		b.handleJoinRequest(ctx, update.ChatJoinRequest)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage routes by command first, then by conversation state.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || msg.Chat.Type != "private" {
		return
	}
	telegramID := msg.From.ID

	switch msg.Text {
	case "/start":
		b.handleStart(ctx, msg)
		return
	case "/admin":
		b.handleAdminMenu(ctx, msg)
		return
	case "/cancel":
		if err := b.sessions.Clear(ctx, telegramID); err != nil {
			log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to clear session")
		}
		b.reply(ctx, telegramID, "Bekor qilindi. Qaytadan boshlash uchun /start bosing.")
		return
	}

	sess, err := b.sessions.Get(ctx, telegramID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("failed to load session")
		return
	}
	if sess == nil {
		b.reply(ctx, telegramID, "Boshlash uchun /start bosing.")
		return
	}

	switch sess.State {
	case session.StateAwaitingFullName:
		b.handleFullName(ctx, msg, sess)
	case session.StateAwaitingPhone:
		b.handlePhone(ctx, msg, sess)
	case session.StateAwaitingReceipt:
		b.handleReceipt(ctx, msg, sess)
	case session.StateAwaitingCardNumber:
		b.handleCardNumber(ctx, msg, sess)
	case session.StateAwaitingCardHolder:
		b.handleCardHolder(ctx, msg, sess)
	case session.StateAwaitingChatID:
		b.handleChatID(ctx, msg)
	default:
		b.reply(ctx, telegramID, "Boshlash uchun /start bosing.")
	}
}

// reply is a logged fire-and-forget send.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.tg.SendMessage(ctx, chatID, text); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

func (b *Bot) replyMarkup(ctx context.Context, chatID int64, text string, markup interface{}) {
	if err := b.tg.SendMessageWithMarkup(ctx, chatID, text, markup); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

func (b *Bot) nowUTC() time.Time {
	return time.Now().UTC()
}
