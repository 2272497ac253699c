package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
	"github.com/Shadowkot11/FitFriends-bot/internal/store"
)

// Completer generates a reply from the new message and the conversation
// history. Implemented by genai.Client; tests substitute mocks.
type Completer interface {
	Complete(ctx context.Context, userMessage string, history []models.ConversationTurn) (string, error)
}

// ChatFlow orchestrates one incoming message: load history, attempt the
// completion, fall back on failure, persist the realized turn, evaluate the
// sales trigger, and return the outbound payload. The caller always receives
// a reply; degraded service only shows as keyword-based text.
type ChatFlow struct {
	store     store.Store
	completer Completer
	fallback  *FallbackResolver
	triggers  *SalesTriggerEvaluator

	// userLocks serializes message handling per user so concurrent messages
	// from one user cannot interleave the load→append span. Messages from
	// different users proceed independently.
	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewChatFlow creates the pipeline with its dependencies.
func NewChatFlow(st store.Store, completer Completer) *ChatFlow {
	slog.Debug("ChatFlow.NewChatFlow: creating flow with dependencies", "hasCompleter", completer != nil)
	return &ChatFlow{
		store:     st,
		completer: completer,
		fallback:  NewFallbackResolver(),
		triggers:  NewSalesTriggerEvaluator(),
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// lockUser returns the mutex serializing the given user's pipeline runs.
func (f *ChatFlow) lockUser(userID int64) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		f.userLocks[userID] = lock
	}
	return lock
}

// HandleMessage runs the response pipeline for one incoming message and
// returns the primary reply plus an optional upsell.
func (f *ChatFlow) HandleMessage(ctx context.Context, userID int64, text string) (models.Reply, error) {
	if err := models.ValidateIncoming(userID, text); err != nil {
		return models.Reply{}, err
	}
	slog.Debug("ChatFlow.HandleMessage: message received", "user_id", userID, "text_length", len(text))

	lock := f.lockUser(userID)
	lock.Lock()

	history, err := f.store.GetConversationHistory(userID)
	if err != nil {
		// Degrade to an empty history rather than failing the message.
		slog.Error("ChatFlow.HandleMessage: failed to load history", "error", err, "user_id", userID)
		history = nil
	}

	reply := f.generateReply(ctx, text, history)

	turn := models.ConversationTurn{
		Timestamp:   time.Now(),
		UserMessage: text,
		BotResponse: reply,
	}
	if err := f.store.AppendConversationTurn(userID, turn); err != nil {
		// Don't fail the request if we can't save history, but log the error.
		slog.Error("ChatFlow.HandleMessage: failed to append turn", "error", err, "user_id", userID)
	}
	lock.Unlock()

	var upsell *models.Upsell
	user, err := f.store.GetUser(userID)
	if err != nil {
		slog.Debug("ChatFlow.HandleMessage: no user record for trigger evaluation", "user_id", userID, "error", err)
	} else {
		// The evaluator sees the original user message, not the reply.
		upsell = f.triggers.Evaluate(text, user)
	}

	slog.Info("ChatFlow.HandleMessage: dispatched", "user_id", userID, "upsell", upsell != nil)
	return models.Reply{Text: reply, Upsell: upsell}, nil
}

// generateReply attempts the remote completion and substitutes the fallback
// reply on any failure. It always returns text.
func (f *ChatFlow) generateReply(ctx context.Context, text string, history []models.ConversationTurn) string {
	if f.completer == nil {
		slog.Debug("ChatFlow.generateReply: no completer configured, using fallback")
		return f.fallback.Resolve(text)
	}
	reply, err := f.completer.Complete(ctx, text, history)
	if err != nil {
		slog.Warn("ChatFlow.generateReply: completion failed, using fallback", "error", err)
		return f.fallback.Resolve(text)
	}
	return reply
}

// Fallback exposes the resolver for callers that need canned replies
// directly.
func (f *ChatFlow) Fallback() *FallbackResolver {
	return f.fallback
}

// Triggers exposes the sales-trigger evaluator.
func (f *ChatFlow) Triggers() *SalesTriggerEvaluator {
	return f.triggers
}
