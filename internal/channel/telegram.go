// Package channel connects inbound transports to the request pipeline.
package channel

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/aidesk/internal/models"
	"github.com/xaenox/aidesk/internal/pipeline"
	"github.com/xaenox/aidesk/internal/ticket"
)

// TelegramBot polls for messages and feeds them through the pipeline.
// Escalations open tickets carrying the chat id so operator replies can
// be delivered back over the same channel.
type TelegramBot struct {
	api      *tgbotapi.BotAPI
	pipeline *pipeline.Pipeline
	machine  *ticket.Machine
	logger   *zap.Logger
}

func NewTelegramBot(token string, p *pipeline.Pipeline, m *ticket.Machine, logger *zap.Logger) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramBot{api: api, pipeline: p, machine: m, logger: logger}, nil
}

// Start polls for updates until the context is cancelled. Each message
// is handled on its own goroutine; pipeline calls are independent.
func (b *TelegramBot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("telegram polling started", zap.String("bot", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		if message.Command() == "start" {
			b.send(message.Chat.ID, "Hello! I am your AI Assistant. How can I help you today?")
		}
		return
	}

	text := message.Text
	if text == "" {
		return
	}
	chatID := message.Chat.ID

	result := b.pipeline.Process(ctx, text, "telegram")

	switch result.Action {
	case models.ActionEscalate:
		contact := map[string]string{"chat_id": strconv.FormatInt(chatID, 10)}
		if _, err := b.machine.Create(ctx, text, "telegram", contact); err != nil {
			b.logger.Error("failed to create ticket",
				zap.Error(err), zap.Int64("chat_id", chatID))
			b.send(chatID, "Sorry, I encountered an error.")
			return
		}
		b.send(chatID, "I am forwarding your request to a human operator. Please wait.")

	case models.ActionAutoReply:
		if err := b.machine.Log(ctx, text, "telegram", models.TicketResult{
			Action:   models.ActionAutoReply,
			Response: result.Response,
		}); err != nil {
			b.logger.Error("failed to log auto-reply", zap.Error(err))
		}
		b.send(chatID, result.Response)

	case models.ActionIgnore:
		b.logger.Info("ignored spam", zap.Int64("chat_id", chatID))
	}
}

// Deliver sends an operator reply to the chat recorded in a ticket's
// contact info.
func (b *TelegramBot) Deliver(contactInfo map[string]string, text string) error {
	raw, ok := contactInfo["chat_id"]
	if !ok {
		return fmt.Errorf("deliver reply: no chat_id in contact info")
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("deliver reply: bad chat_id %q: %w", raw, err)
	}
	b.send(chatID, text)
	return nil
}

func (b *TelegramBot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send telegram message",
			zap.Error(err), zap.Int64("chat_id", chatID))
	}
}
