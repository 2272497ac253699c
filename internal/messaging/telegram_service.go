package messaging

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
	"github.com/Shadowkot11/FitFriends-bot/internal/telegram"
)

// TelegramService implements Service using the Telegram Bot API client.
type TelegramService struct {
	client    telegram.Sender
	tgClient  *telegram.Client // Access to underlying client for update polling
	responses chan models.Response
	callbacks chan models.Callback
	done      chan struct{}
}

// NewTelegramService creates a new TelegramService wrapping the given Sender.
func NewTelegramService(client telegram.Sender) *TelegramService {
	service := &TelegramService{
		client:    client,
		responses: make(chan models.Response, DefaultChannelBufferSize),
		callbacks: make(chan models.Callback, DefaultChannelBufferSize),
		done:      make(chan struct{}),
	}

	// If the client is a full Client (not just an interface), store it for update polling
	if tgClient, ok := client.(*telegram.Client); ok {
		service.tgClient = tgClient
		slog.Debug("TelegramService created with full client for update polling")
	} else {
		slog.Debug("TelegramService created with interface client (likely mock)")
	}

	return service
}

// Start begins background update polling.
func (s *TelegramService) Start(ctx context.Context) error {
	slog.Debug("TelegramService Start invoked")
	if s.tgClient != nil {
		go s.handleUpdates(ctx)
		slog.Debug("TelegramService update handler started")
	} else {
		slog.Debug("TelegramService no full client available, skipping update polling (likely mock)")
	}
	return nil
}

// Stop stops background processing.
func (s *TelegramService) Stop() error {
	slog.Info("TelegramService Stop invoked")
	if s.tgClient != nil {
		s.tgClient.Stop()
	}
	close(s.done)
	close(s.responses)
	close(s.callbacks)
	slog.Info("TelegramService stopped and channels closed")
	return nil
}

// SendMessage sends a plain text message.
func (s *TelegramService) SendMessage(ctx context.Context, userID int64, body string) error {
	slog.Debug("TelegramService SendMessage invoked", "user_id", userID, "body_length", len(body))
	return s.client.SendMessage(ctx, userID, body)
}

// SendMessageWithButtons sends a message with inline action buttons.
func (s *TelegramService) SendMessageWithButtons(ctx context.Context, userID int64, body string, buttons []models.Button) error {
	slog.Debug("TelegramService SendMessageWithButtons invoked", "user_id", userID, "buttons", len(buttons))
	return s.client.SendMessageWithButtons(ctx, userID, body, buttons)
}

// Responses returns the channel of incoming free-text messages.
func (s *TelegramService) Responses() <-chan models.Response {
	return s.responses
}

// Callbacks returns the channel of inline-button presses.
func (s *TelegramService) Callbacks() <-chan models.Callback {
	return s.callbacks
}

// handleUpdates converts Telegram updates into response and callback events.
func (s *TelegramService) handleUpdates(ctx context.Context) {
	updates := s.tgClient.Updates()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("TelegramService update handler stopping: context done")
			return
		case <-s.done:
			slog.Debug("TelegramService update handler stopping: service stopped")
			return
		case update, ok := <-updates:
			if !ok {
				slog.Debug("TelegramService update channel closed")
				return
			}
			s.routeUpdate(update)
		}
	}
}

// routeUpdate dispatches one update into the matching channel. Emits are
// non-blocking: if a channel is full the event is dropped with a warning
// rather than stalling the poll loop.
func (s *TelegramService) routeUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if err := s.tgClient.AckCallback(cq.ID); err != nil {
			slog.Warn("TelegramService failed to ack callback", "error", err)
		}
		cb := models.Callback{
			From:      cq.From.ID,
			FirstName: cq.From.FirstName,
			Data:      cq.Data,
			Time:      time.Now().Unix(),
		}
		if cq.Message != nil {
			cb.MessageID = cq.Message.MessageID
		}
		select {
		case s.callbacks <- cb:
			slog.Debug("TelegramService callback routed", "from", cb.From, "data", cb.Data)
		default:
			slog.Warn("TelegramService callback channel full, dropping event", "from", cb.From)
		}
	case update.Message != nil && update.Message.Text != "":
		m := update.Message
		resp := models.Response{
			From:      m.From.ID,
			Username:  m.From.UserName,
			FirstName: m.From.FirstName,
			LastName:  m.From.LastName,
			Body:      m.Text,
			Time:      int64(m.Date),
		}
		select {
		case s.responses <- resp:
			slog.Debug("TelegramService response routed", "from", resp.From, "body_length", len(resp.Body))
		default:
			slog.Warn("TelegramService response channel full, dropping event", "from", resp.From)
		}
	}
}
