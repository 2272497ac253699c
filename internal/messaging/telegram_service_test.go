package messaging

import (
	"context"
	"testing"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// mockSender implements telegram.Sender for testing.
type mockSender struct {
	sent        []string
	lastButtons []models.Button
}

func (m *mockSender) SendMessage(ctx context.Context, userID int64, body string) error {
	m.sent = append(m.sent, body)
	return nil
}

func (m *mockSender) SendMessageWithButtons(ctx context.Context, userID int64, body string, buttons []models.Button) error {
	m.sent = append(m.sent, body)
	m.lastButtons = buttons
	return nil
}

func TestTelegramServiceSendDelegation(t *testing.T) {
	sender := &mockSender{}
	svc := NewTelegramService(sender)

	if err := svc.SendMessage(context.Background(), 1, "привет"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buttons := []models.Button{{Label: "💪", Data: "quick_workout"}}
	if err := svc.SendMessageWithButtons(context.Background(), 1, "меню", buttons); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 2 || sender.sent[0] != "привет" {
		t.Errorf("messages not delegated: %v", sender.sent)
	}
	if len(sender.lastButtons) != 1 || sender.lastButtons[0].Data != "quick_workout" {
		t.Errorf("buttons not delegated: %+v", sender.lastButtons)
	}
}

func TestTelegramServiceStartStopWithMock(t *testing.T) {
	svc := NewTelegramService(&mockSender{})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Channels must be closed after Stop.
	if _, ok := <-svc.Responses(); ok {
		t.Error("expected responses channel to be closed")
	}
	if _, ok := <-svc.Callbacks(); ok {
		t.Error("expected callbacks channel to be closed")
	}
}
