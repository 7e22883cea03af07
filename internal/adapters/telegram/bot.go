package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/okian/lovequiz/pkg/logger"
	"github.com/okian/lovequiz/pkg/metrics"
)

// Bot runs a Conversation behind the Telegram Bot API using long polling.
type Bot struct {
	api    *bot.Bot
	conv   *Conversation
	logger logger.Logger
}

// NewBot creates the Bot API client for token. It does not start polling.
func NewBot(token string, conv *Conversation, log logger.Logger) (*Bot, error) {
	if log == nil {
		log = logger.Get().Named("telegram")
	}
	b := &Bot{conv: conv, logger: log}

	api, err := bot.New(token,
		bot.WithDefaultHandler(b.handle),
		bot.WithErrorsHandler(func(err error) {
			metrics.RecordErrorByComponent("telegram", "api")
			log.Warn(context.Background(), "telegram api error", logger.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b.api = api
	return b, nil
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info(ctx, "telegram bot polling")
	b.api.Start(ctx)
	return nil
}

func (b *Bot) handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	chatID, in, kind, ok := inputOf(update)
	if !ok {
		return
	}
	metrics.RecordTelegramUpdate(kind)

	if update.CallbackQuery != nil {
		if _, err := b.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		}); err != nil {
			b.logger.Debug(ctx, "answer callback failed", logger.Error(err))
		}
	}

	replies, err := b.conv.Handle(ctx, chatID, in)
	if err != nil {
		metrics.RecordErrorByComponent("telegram", "conversation")
		b.logger.Error(ctx, "telegram update failed",
			logger.Int64("chat", chatID),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return
	}

	for _, r := range replies {
		params := &bot.SendMessageParams{ChatID: chatID, Text: r.Text}
		if len(r.Buttons) > 0 {
			params.ReplyMarkup = keyboard(r.Buttons)
		}
		if _, err := b.api.SendMessage(ctx, params); err != nil {
			b.logger.Warn(ctx, "send message failed", logger.Int64("chat", chatID), logger.Error(err))
			return
		}
	}
}

// inputOf extracts the chat and the input of update. Updates without a chat
// are skipped.
func inputOf(update *models.Update) (int64, Input, string, bool) {
	switch {
	case update.Message != nil:
		kind := "text"
		if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
			kind = "command"
		}
		return update.Message.Chat.ID, Input{Text: update.Message.Text}, kind, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		cq := update.CallbackQuery
		return cq.Message.Message.Chat.ID, Input{Callback: cq.Data, CallbackID: cq.ID}, "callback", true
	default:
		return 0, Input{}, "", false
	}
}

func keyboard(rows [][]Button) *models.InlineKeyboardMarkup {
	out := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, models.InlineKeyboardButton{Text: btn.Text, CallbackData: btn.Data})
		}
		out = append(out, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: out}
}
