package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/kripto_bot/internal/charts"
	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/ivanoskov/kripto_bot/internal/repository"
	"github.com/ivanoskov/kripto_bot/internal/service"
)

// Сколько последних транзакций попадает в /stats
const statsLimit = 500

// messageSender часть tgbotapi.BotAPI, через которую уходят ответы
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   messageSender
	exchange *service.Exchange
	charts   *charts.Generator
	logger   *slog.Logger
}

func NewBot(token string, debug bool, exchange *service.Exchange, charts *charts.Generator, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug

	b := newBot(api, exchange, charts, logger)
	b.api = api
	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))
	return b, nil
}

func newBot(sender messageSender, exchange *service.Exchange, charts *charts.Generator, logger *slog.Logger) *Bot {
	return &Bot{
		sender:   sender,
		exchange: exchange,
		charts:   charts,
		logger:   logger,
	}
}

// Start запускает бота в режиме long polling до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				// Логируем ошибку, но продолжаем работу
				b.logger.Error("Error handling update", slog.Int("update_id", update.UpdateID), slog.Any("error", err))
			}
		}
	}
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("failed to decode update: %w", err)
	}

	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return nil
	}

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			return b.handleStart(ctx, message)
		case "help":
			return b.reply(message.Chat.ID, helpText())
		case "rates":
			return b.handleRates(ctx, message)
		case "stats":
			return b.handleStats(ctx, message)
		}
	}

	return b.handleMessage(ctx, message)
}

func senderOf(message *tgbotapi.Message) service.Sender {
	return service.Sender{
		UserID:    message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
		ChatType:  model.ChatTypeFromTelegram(message.Chat.Type),
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	b.exchange.RegisterUser(ctx, senderOf(message))

	msg := tgbotapi.NewMessage(message.Chat.ID, welcomeText())
	if message.Chat.IsPrivate() {
		msg.ReplyMarkup = b.getMainKeyboard()
	}
	return b.send(msg)
}

func (b *Bot) handleRates(ctx context.Context, message *tgbotapi.Message) error {
	rates, err := b.exchange.Rates(ctx)
	if err != nil || len(rates) == 0 {
		if err != nil {
			b.logger.Error("Error getting rates", slog.Any("error", err))
		}
		return b.reply(message.Chat.ID, ratesErrorText)
	}
	return b.reply(message.Chat.ID, ratesText(rates))
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	counts, err := b.exchange.TargetCurrencyBreakdown(ctx, repository.TransactionFilter{
		UserID: &userID,
		Limit:  statsLimit,
	})
	if err != nil {
		b.logger.Error("Error getting stats", slog.Int64("user_id", userID), slog.Any("error", err))
		return b.reply(message.Chat.ID, statsErrorText)
	}

	png, err := b.charts.TargetCurrencyPie(statsTitle, counts)
	if err != nil {
		b.logger.Error("Error rendering stats chart", slog.Any("error", err))
		return b.reply(message.Chat.ID, statsErrorText)
	}
	if png == nil {
		return b.reply(message.Chat.ID, statsEmptyText)
	}

	photo := tgbotapi.NewPhoto(message.Chat.ID, tgbotapi.FileBytes{Name: "stats.png", Bytes: png})
	photo.Caption = statsCaption(counts)
	return b.send(photo)
}

// handleMessage обрабатывает расчёты; нераспознанный текст остаётся без ответа.
// Стикеры, фото и прочие сообщения без текста пропускаются целиком.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.Text == "" {
		return nil
	}

	sender := senderOf(message)
	b.exchange.RegisterUser(ctx, sender)

	outcome, ok := b.exchange.HandleText(ctx, sender, message.Text)
	if !ok {
		return nil
	}

	return b.reply(message.Chat.ID, replyText(outcome))
}

func (b *Bot) reply(chatID int64, text string) error {
	return b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	if _, err := b.sender.Send(c); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
