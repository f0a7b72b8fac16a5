package telegram

import (
	"context"
	"fmt"

	"balance-ledger-bot/config"
	"balance-ledger-bot/internal/core/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Bot drives the long-polling loop: receive update, hand the message text to
// the ledger service, send the rendered outcome back to the chat.
type Bot struct {
	api    *tgbotapi.BotAPI
	ledger ports.LedgerService
	log    zerolog.Logger

	pollTimeout int
}

// NewBot authenticates against the Bot API and returns a ready-to-run bot.
func NewBot(cfg config.TelegramConfig, ledger ports.LedgerService, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")

	return &Bot{
		api:         api,
		ledger:      ledger,
		log:         log,
		pollTimeout: cfg.PollTimeout,
	}, nil
}

// Run polls for updates until ctx is cancelled. Each text message is handled
// synchronously in arrival order; updates without a message are skipped.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info().Msg("telegram polling stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	b.log.Debug().
		Int64("user_id", userID).
		Str("text", msg.Text).
		Msg("inbound message")

	outcome := b.ledger.Handle(ctx, userID, msg.Text)

	if err := b.Notify(ctx, msg.Chat.ID, Render(outcome)); err != nil {
		b.log.Error().Err(err).
			Int64("user_id", userID).
			Str("outcome", string(outcome.Kind)).
			Msg("failed to send reply")
	}
}

// Notify sends a plain-text message to the given chat. Satisfies ports.Notifier.
func (b *Bot) Notify(_ context.Context, chatID int64, message string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, message))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
