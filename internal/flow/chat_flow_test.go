package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
	"github.com/Shadowkot11/FitFriends-bot/internal/store"
)

// mockCompleter implements Completer for testing.
type mockCompleter struct {
	reply       string
	err         error
	lastHistory []models.ConversationTurn
}

func (m *mockCompleter) Complete(ctx context.Context, userMessage string, history []models.ConversationTurn) (string, error) {
	m.lastHistory = history
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func TestHandleMessageFallbackSubstitution(t *testing.T) {
	st := store.NewInMemoryStore()
	completer := &mockCompleter{err: errors.New("connection refused")}
	f := NewChatFlow(st, completer)

	reply, err := f.HandleMessage(context.Background(), 1, "как похудеть?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := f.Fallback().Resolve("как похудеть?"); reply.Text != want {
		t.Errorf("expected exact fallback reply %q, got %q", want, reply.Text)
	}
}

func TestHandleMessageEmptyHistoryScenario(t *testing.T) {
	st := store.NewInMemoryStore()
	st.AddUser(models.User{ID: 7, FirstName: "Оля"})
	completer := &mockCompleter{err: errors.New("service down")}
	f := NewChatFlow(st, completer)

	reply, err := f.HandleMessage(context.Background(), 7, "привет")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, _ := st.GetConversationHistory(7)
	if len(history) != 1 {
		t.Fatalf("expected exactly one appended turn, got %d", len(history))
	}
	if history[0].UserMessage != "привет" || history[0].BotResponse != reply.Text {
		t.Errorf("turn does not match realized exchange: %+v", history[0])
	}
	if history[0].BotResponse != f.Fallback().Resolve("привет") {
		t.Errorf("expected fallback greeting persisted, got %q", history[0].BotResponse)
	}
}

func TestHandleMessageSuccessAppendsTurn(t *testing.T) {
	st := store.NewInMemoryStore()
	completer := &mockCompleter{reply: "Вот твой план!"}
	f := NewChatFlow(st, completer)

	reply, err := f.HandleMessage(context.Background(), 3, "составь план")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "Вот твой план!" {
		t.Errorf("expected completion reply, got %q", reply.Text)
	}

	history, _ := st.GetConversationHistory(3)
	if len(history) != 1 || history[0].BotResponse != "Вот твой план!" {
		t.Errorf("expected realized turn appended, got %+v", history)
	}
}

func TestHandleMessageHistoryFlowsToCompleter(t *testing.T) {
	st := store.NewInMemoryStore()
	completer := &mockCompleter{reply: "ok"}
	f := NewChatFlow(st, completer)

	for i := 0; i < 3; i++ {
		if _, err := f.HandleMessage(context.Background(), 4, fmt.Sprintf("msg %d", i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// The fourth call must see the three prior turns, oldest first.
	if _, err := f.HandleMessage(context.Background(), 4, "msg 3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(completer.lastHistory) != 3 {
		t.Fatalf("expected 3 turns of history, got %d", len(completer.lastHistory))
	}
	if completer.lastHistory[0].UserMessage != "msg 0" {
		t.Errorf("expected oldest-first history, got %+v", completer.lastHistory)
	}
}

func TestHandleMessageUpsellDispatch(t *testing.T) {
	st := store.NewInMemoryStore()
	st.AddUser(models.User{ID: 9})
	st.IncrementWorkoutCount(9)
	st.IncrementWorkoutCount(9)
	f := NewChatFlow(st, &mockCompleter{reply: "Держись, получится!"})

	reply, err := f.HandleMessage(context.Background(), 9, "у меня не получается")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Upsell == nil {
		t.Fatal("expected upsell for eligible trial user with a trigger phrase")
	}
	if reply.Text != "Держись, получится!" {
		t.Errorf("primary reply must stay the completion text, got %q", reply.Text)
	}
}

func TestHandleMessageNoUpsellForUnknownUser(t *testing.T) {
	st := store.NewInMemoryStore()
	f := NewChatFlow(st, &mockCompleter{reply: "ok"})

	reply, err := f.HandleMessage(context.Background(), 11, "хочу результат")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Upsell != nil {
		t.Error("expected no upsell without a funnel record")
	}
}

func TestHandleMessageValidation(t *testing.T) {
	f := NewChatFlow(store.NewInMemoryStore(), &mockCompleter{reply: "ok"})
	if _, err := f.HandleMessage(context.Background(), 0, "привет"); err != models.ErrInvalidUserID {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
	if _, err := f.HandleMessage(context.Background(), 1, ""); err != models.ErrEmptyMessage {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestHandleMessageConcurrentSameUser(t *testing.T) {
	st := store.NewInMemoryStore()
	f := NewChatFlow(st, &mockCompleter{reply: "ok"})

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.HandleMessage(context.Background(), 5, fmt.Sprintf("msg %d", i)); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	history, _ := st.GetConversationHistory(5)
	if len(history) != n {
		t.Errorf("expected %d turns with no lost updates, got %d", n, len(history))
	}
}
