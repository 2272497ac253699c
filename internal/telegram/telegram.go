// Package telegram wraps the Telegram Bot API client used as the chat
// transport for the FitFriends bot.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// DefaultPollTimeout is the long-poll timeout in seconds for update fetching.
const DefaultPollTimeout = 30

// Sender defines the minimal outbound surface of the Telegram client,
// allowing mocks in tests.
type Sender interface {
	SendMessage(ctx context.Context, userID int64, body string) error
	SendMessageWithButtons(ctx context.Context, userID int64, body string, buttons []models.Button) error
}

// Opts holds configuration options for the Telegram client.
type Opts struct {
	Token       string
	PollTimeout int
	Debug       bool
}

// Option defines a configuration option for the Telegram client.
type Option func(*Opts)

// WithToken sets the bot token, overriding $BOT_TOKEN.
func WithToken(token string) Option {
	return func(o *Opts) { o.Token = token }
}

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) Option {
	return func(o *Opts) { o.PollTimeout = seconds }
}

// WithDebug enables verbose Bot API logging.
func WithDebug() Option {
	return func(o *Opts) { o.Debug = true }
}

// Client wraps the Telegram Bot API.
type Client struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
}

// NewClient creates and authenticates a Telegram client. The token falls
// back to the BOT_TOKEN environment variable.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{PollTimeout: DefaultPollTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("BOT_TOKEN")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("BOT_TOKEN not set")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		slog.Error("telegram.NewClient: authentication failed", "error", err)
		return nil, fmt.Errorf("failed to authenticate bot: %w", err)
	}
	bot.Debug = cfg.Debug
	slog.Info("telegram.NewClient: authenticated", "username", bot.Self.UserName)

	return &Client{bot: bot, pollTimeout: cfg.PollTimeout}, nil
}

// SendMessage sends a plain HTML-formatted message.
func (c *Client) SendMessage(ctx context.Context, userID int64, body string) error {
	msg := tgbotapi.NewMessage(userID, body)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := c.bot.Send(msg); err != nil {
		slog.Error("telegram.SendMessage failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to send message to %d: %w", userID, err)
	}
	slog.Debug("telegram.SendMessage succeeded", "user_id", userID, "body_length", len(body))
	return nil
}

// SendMessageWithButtons sends an HTML-formatted message with one inline
// button per row, matching the bot's menu layout.
func (c *Client) SendMessageWithButtons(ctx context.Context, userID int64, body string, buttons []models.Button) error {
	msg := tgbotapi.NewMessage(userID, body)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = BuildInlineKeyboard(buttons)
	if _, err := c.bot.Send(msg); err != nil {
		slog.Error("telegram.SendMessageWithButtons failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to send message to %d: %w", userID, err)
	}
	return nil
}

// AckCallback answers a callback query so the client stops showing the
// loading spinner.
func (c *Client) AckCallback(callbackID string) error {
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// Updates starts long polling and returns the update channel.
func (c *Client) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	return c.bot.GetUpdatesChan(u)
}

// Stop halts long polling.
func (c *Client) Stop() {
	c.bot.StopReceivingUpdates()
}

// BuildInlineKeyboard converts button models into Telegram inline keyboard
// markup, one button per row.
func BuildInlineKeyboard(buttons []models.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
