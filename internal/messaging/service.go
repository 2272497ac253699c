// Package messaging provides the message delivery abstraction used by the
// bot, decoupling dispatch logic from the concrete chat transport.
package messaging

import (
	"context"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// Constants for service configuration
const (
	// DefaultChannelBufferSize defines the default buffer size for response and callback channels
	DefaultChannelBufferSize = 100
)

// Service defines a pluggable message delivery abstraction.
// It supports sending messages and provides channels for incoming responses
// and inline-button callbacks.
type Service interface {
	// SendMessage sends a plain text message to a user.
	SendMessage(ctx context.Context, userID int64, body string) error

	// SendMessageWithButtons sends a message with inline action buttons.
	SendMessageWithButtons(ctx context.Context, userID int64, body string, buttons []models.Button) error

	// Start begins any background processing (e.g., polling for updates).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Responses returns a channel of incoming free-text messages.
	Responses() <-chan models.Response

	// Callbacks returns a channel of inline-button presses.
	Callbacks() <-chan models.Callback
}
