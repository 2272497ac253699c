package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Shadowkot11/FitFriends-bot/internal/flow"
	"github.com/Shadowkot11/FitFriends-bot/internal/models"
	"github.com/Shadowkot11/FitFriends-bot/internal/store"
)

// mockService implements messaging.Service for testing and records sends.
type mockService struct {
	messages    []string
	lastButtons []models.Button
	responses   chan models.Response
	callbacks   chan models.Callback
}

func newMockService() *mockService {
	return &mockService{
		responses: make(chan models.Response, 10),
		callbacks: make(chan models.Callback, 10),
	}
}

func (m *mockService) SendMessage(ctx context.Context, userID int64, body string) error {
	m.messages = append(m.messages, body)
	return nil
}

func (m *mockService) SendMessageWithButtons(ctx context.Context, userID int64, body string, buttons []models.Button) error {
	m.messages = append(m.messages, body)
	m.lastButtons = buttons
	return nil
}

func (m *mockService) Start(ctx context.Context) error { return nil }

func (m *mockService) Stop() error { return nil }

func (m *mockService) Responses() <-chan models.Response { return m.responses }

func (m *mockService) Callbacks() <-chan models.Callback { return m.callbacks }

// failingCompleter forces the fallback path.
type failingCompleter struct{}

func (f *failingCompleter) Complete(ctx context.Context, userMessage string, history []models.ConversationTurn) (string, error) {
	return "", context.DeadlineExceeded
}

func newTestBot(svc *mockService, st store.Store) *Bot {
	chat := flow.NewChatFlow(st, &failingCompleter{})
	return New(svc, st, chat, WithFollowupDelay(time.Hour))
}

func TestHandleStartRegistersUser(t *testing.T) {
	svc := newMockService()
	st := store.NewInMemoryStore()
	b := newTestBot(svc, st)

	b.HandleResponse(context.Background(), models.Response{From: 42, Username: "ivan", FirstName: "Иван", Body: "/start"})

	u, err := st.GetUser(42)
	if err != nil {
		t.Fatalf("expected user registered, got %v", err)
	}
	if u.Subscription != models.SubscriptionTrial {
		t.Errorf("expected trial subscription, got %q", u.Subscription)
	}
	lead, _ := st.GetLead(42)
	if lead.Stage != models.LeadStageNew {
		t.Errorf("expected new lead stage, got %q", lead.Stage)
	}
	if len(svc.messages) != 1 || !strings.Contains(svc.messages[0], "Иван") {
		t.Errorf("expected personalized welcome, got %v", svc.messages)
	}
	if len(svc.lastButtons) != len(mainMenuButtons) {
		t.Errorf("expected main menu buttons, got %d", len(svc.lastButtons))
	}
}

func TestHandleChatDispatchesReplyAndUpsell(t *testing.T) {
	svc := newMockService()
	st := store.NewInMemoryStore()
	st.AddUser(models.User{ID: 42})
	st.IncrementWorkoutCount(42)
	st.IncrementWorkoutCount(42)
	b := newTestBot(svc, st)

	b.HandleResponse(context.Background(), models.Response{From: 42, Body: "ничего не получается"})

	if len(svc.messages) != 3 {
		t.Fatalf("expected thinking note, primary reply and upsell, got %d messages", len(svc.messages))
	}
	if svc.messages[0] != thinkingText {
		t.Errorf("expected thinking placeholder first, got %q", svc.messages[0])
	}
	if !strings.Contains(svc.messages[2], "Premium") {
		t.Errorf("expected Premium upsell as final message, got %q", svc.messages[2])
	}
	if len(svc.lastButtons) != 2 {
		t.Errorf("expected offer/continue buttons on upsell, got %+v", svc.lastButtons)
	}

	history, _ := st.GetConversationHistory(42)
	if len(history) != 1 {
		t.Errorf("expected one turn appended, got %d", len(history))
	}
}

func TestCallbackWorkoutEngagesLead(t *testing.T) {
	svc := newMockService()
	st := store.NewInMemoryStore()
	st.AddUser(models.User{ID: 42})
	b := newTestBot(svc, st)

	b.HandleCallback(context.Background(), models.Callback{From: 42, Data: callbackQuickWorkout})

	if len(svc.messages) != 1 || !strings.Contains(svc.messages[0], "ТВОЯ AI-ТРЕНИРОВКА") {
		t.Errorf("expected workout plan message, got %v", svc.messages)
	}
	lead, _ := st.GetLead(42)
	if lead.Stage != models.LeadStageEngaged {
		t.Errorf("expected engaged lead stage after workout, got %q", lead.Stage)
	}
}

func TestCallbackWorkoutDoneIncrementsCounter(t *testing.T) {
	svc := newMockService()
	st := store.NewInMemoryStore()
	st.AddUser(models.User{ID: 42})
	b := newTestBot(svc, st)

	b.HandleCallback(context.Background(), models.Callback{From: 42, Data: callbackWorkoutDone})

	u, _ := st.GetUser(42)
	if u.WorkoutCount != 1 {
		t.Errorf("expected workout count 1, got %d", u.WorkoutCount)
	}
}

func TestCallbackBuyPremiumConvertsUser(t *testing.T) {
	svc := newMockService()
	st := store.NewInMemoryStore()
	st.AddUser(models.User{ID: 42})
	b := newTestBot(svc, st)

	b.HandleCallback(context.Background(), models.Callback{From: 42, Data: callbackBuyPremium})

	u, _ := st.GetUser(42)
	if u.Subscription != models.SubscriptionPremium {
		t.Errorf("expected premium subscription, got %q", u.Subscription)
	}
	lead, _ := st.GetLead(42)
	if lead.Stage != models.LeadStageConverted {
		t.Errorf("expected converted lead stage, got %q", lead.Stage)
	}
}

func TestProgressRequiresRegistration(t *testing.T) {
	svc := newMockService()
	b := newTestBot(svc, store.NewInMemoryStore())

	b.HandleResponse(context.Background(), models.Response{From: 42, Body: "/progress"})

	if len(svc.messages) != 1 || !strings.Contains(svc.messages[0], "/start") {
		t.Errorf("expected registration hint, got %v", svc.messages)
	}
}

func TestSalesAutomationSweep(t *testing.T) {
	svc := newMockService()
	st := store.NewInMemoryStore()
	st.AddUser(models.User{ID: 1, FirstName: "Анна"})
	for i := 0; i < 3; i++ {
		st.IncrementWorkoutCount(1)
	}
	st.UpdateLeadStage(1, models.LeadStageEngaged)
	st.SetLeadInterest(1, 3)

	a := NewSalesAutomation(svc, st)
	a.SweepHotLeads(context.Background())

	if len(svc.messages) != 1 || !strings.Contains(svc.messages[0], "Premium") {
		t.Fatalf("expected one premium pitch, got %v", svc.messages)
	}
	lead, _ := st.GetLead(1)
	if lead.Stage != models.LeadStageHot {
		t.Errorf("expected lead advanced to hot, got %q", lead.Stage)
	}

	// Second sweep must not pitch again.
	a.SweepHotLeads(context.Background())
	if len(svc.messages) != 1 {
		t.Errorf("expected no repeat pitch, got %d messages", len(svc.messages))
	}
}

func TestSendTrialMessage(t *testing.T) {
	svc := newMockService()
	a := NewSalesAutomation(svc, store.NewInMemoryStore())

	if err := a.SendTrialMessage(context.Background(), 1, "day7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.messages) != 1 || !strings.Contains(svc.messages[0], "Trial") {
		t.Errorf("expected day7 trial message, got %v", svc.messages)
	}
	if err := a.SendTrialMessage(context.Background(), 1, "day42"); err == nil {
		t.Error("expected error for unknown trial message key")
	}
}
