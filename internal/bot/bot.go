// Package bot dispatches Telegram updates: commands, inline-button callbacks
// and free-text messages, the latter routed through the conversation
// pipeline.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Shadowkot11/FitFriends-bot/internal/flow"
	"github.com/Shadowkot11/FitFriends-bot/internal/messaging"
	"github.com/Shadowkot11/FitFriends-bot/internal/models"
	"github.com/Shadowkot11/FitFriends-bot/internal/store"
)

// DefaultFollowupDelay is how long after /start the nudge message is sent.
const DefaultFollowupDelay = time.Minute

// Bot routes incoming events to handlers.
type Bot struct {
	svc           messaging.Service
	store         store.Store
	chat          *flow.ChatFlow
	followupDelay time.Duration
}

// Opts holds configuration options for the bot.
type Opts struct {
	FollowupDelay time.Duration
}

// Option defines a configuration option for the bot.
type Option func(*Opts)

// WithFollowupDelay overrides the post-registration nudge delay.
func WithFollowupDelay(d time.Duration) Option {
	return func(o *Opts) { o.FollowupDelay = d }
}

// New creates a bot with its dependencies.
func New(svc messaging.Service, st store.Store, chat *flow.ChatFlow, opts ...Option) *Bot {
	cfg := Opts{FollowupDelay: DefaultFollowupDelay}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("bot.New: creating bot", "followup_delay", cfg.FollowupDelay)
	return &Bot{svc: svc, store: st, chat: chat, followupDelay: cfg.FollowupDelay}
}

// Run consumes events until the context is cancelled or both channels close.
func (b *Bot) Run(ctx context.Context) {
	slog.Info("Bot event loop started")
	responses := b.svc.Responses()
	callbacks := b.svc.Callbacks()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Bot event loop stopping: context done")
			return
		case resp, ok := <-responses:
			if !ok {
				responses = nil
				if callbacks == nil {
					return
				}
				continue
			}
			b.HandleResponse(ctx, resp)
		case cb, ok := <-callbacks:
			if !ok {
				callbacks = nil
				if responses == nil {
					return
				}
				continue
			}
			b.HandleCallback(ctx, cb)
		}
	}
}

// HandleResponse processes one incoming message: commands by prefix, all
// other text through the conversation pipeline.
func (b *Bot) HandleResponse(ctx context.Context, resp models.Response) {
	if strings.HasPrefix(resp.Body, "/") {
		b.handleCommand(ctx, resp)
		return
	}
	b.handleChat(ctx, resp)
}

func (b *Bot) handleCommand(ctx context.Context, resp models.Response) {
	command := strings.TrimPrefix(strings.Fields(resp.Body)[0], "/")
	slog.Debug("Bot handling command", "from", resp.From, "command", command)

	switch command {
	case "start":
		b.handleStart(ctx, resp)
	case "workout":
		b.send(ctx, resp.From, "Нажми для персональной AI-тренировки!", []models.Button{
			{Label: "💪 Получить тренировку", Data: callbackQuickWorkout},
		})
	case "nutrition":
		b.send(ctx, resp.From, "Нажми для AI-плана питания!", []models.Button{
			{Label: "🥗 Получить питание", Data: callbackNutrition},
		})
	case "progress":
		b.handleProgress(ctx, resp.From)
	default:
		b.send(ctx, resp.From, "Не знаю такую команду. Попробуй /start", nil)
	}
}

func (b *Bot) handleStart(ctx context.Context, resp models.Response) {
	user := models.User{
		ID:        resp.From,
		Username:  resp.Username,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
	}
	if err := b.store.AddUser(user); err != nil {
		slog.Error("Bot failed to register user", "error", err, "user_id", resp.From)
	}
	if err := b.store.UpdateLeadStage(resp.From, models.LeadStageNew); err != nil {
		slog.Error("Bot failed to reset lead stage", "error", err, "user_id", resp.From)
	}

	b.send(ctx, resp.From, welcomeText(resp.FirstName), mainMenuButtons)
	slog.Info("Bot registered user", "user_id", resp.From, "username", resp.Username)

	// Nudge shortly after registration.
	userID := resp.From
	time.AfterFunc(b.followupDelay, func() {
		if err := b.svc.SendMessageWithButtons(context.Background(), userID, followupText, followupButtons); err != nil {
			slog.Warn("Bot failed to send followup", "error", err, "user_id", userID)
		}
	})
}

func (b *Bot) handleProgress(ctx context.Context, userID int64) {
	user, err := b.store.GetUser(userID)
	if err != nil {
		b.send(ctx, userID, "Сначала запусти /start для регистрации", nil)
		return
	}
	b.send(ctx, userID, progressText(user), nil)
}

// handleChat routes free text through the conversation pipeline and
// dispatches the primary reply plus the optional upsell.
func (b *Bot) handleChat(ctx context.Context, resp models.Response) {
	// Acknowledge immediately; the completion call can take seconds.
	b.send(ctx, resp.From, thinkingText, nil)

	reply, err := b.chat.HandleMessage(ctx, resp.From, resp.Body)
	if err != nil {
		slog.Error("Bot chat pipeline rejected message", "error", err, "from", resp.From)
		return
	}
	b.send(ctx, resp.From, reply.Text, nil)
	if reply.Upsell != nil {
		b.send(ctx, resp.From, reply.Upsell.Message, reply.Upsell.Actions)
	}
}

// HandleCallback processes one inline-button press.
func (b *Bot) HandleCallback(ctx context.Context, cb models.Callback) {
	slog.Debug("Bot handling callback", "from", cb.From, "data", cb.Data)
	switch cb.Data {
	case callbackStartSurvey:
		b.send(ctx, cb.From, surveyText, nil)
	case callbackQuickWorkout:
		b.sendWorkout(ctx, cb.From)
	case callbackWorkoutDone:
		b.handleWorkoutDone(ctx, cb.From)
	case callbackNutrition:
		b.sendNutrition(ctx, cb.From)
	case callbackAIChat:
		b.send(ctx, cb.From, aiChatText, nil)
	case callbackConnectAlice:
		b.send(ctx, cb.From, aliceText, []models.Button{
			{Label: "💪 Получить тренировку", Data: callbackQuickWorkout},
			{Label: "🏠 В главное меню", Data: callbackMainMenu},
		})
	case callbackPremium:
		// Opening the offer is a strong interest signal for the funnel.
		if err := b.store.SetLeadInterest(cb.From, 3); err != nil {
			slog.Debug("Bot could not record lead interest", "error", err, "user_id", cb.From)
		}
		b.send(ctx, cb.From, premiumText, premiumButtons)
	case callbackBuyPremium:
		b.handleBuyPremium(ctx, cb.From)
	case callbackMainMenu:
		b.send(ctx, cb.From, "Выбери действие:", mainMenuButtons)
	default:
		slog.Warn("Bot received unknown callback", "from", cb.From, "data", cb.Data)
	}
}

func (b *Bot) sendWorkout(ctx context.Context, userID int64) {
	user, err := b.store.GetUser(userID)
	if err != nil {
		slog.Debug("Bot generating workout for unregistered user", "user_id", userID)
	}
	plan := flow.GenerateWorkoutPlan(user)
	b.send(ctx, userID, workoutText(plan), workoutButtons)

	if err := b.store.UpdateLeadStage(userID, models.LeadStageEngaged); err != nil {
		slog.Error("Bot failed to update lead stage", "error", err, "user_id", userID)
	}
}

func (b *Bot) handleWorkoutDone(ctx context.Context, userID int64) {
	if err := b.store.IncrementWorkoutCount(userID); err != nil {
		slog.Error("Bot failed to increment workout count", "error", err, "user_id", userID)
	}
	b.send(ctx, userID, "🔥 Отличная работа! Тренировка засчитана.", []models.Button{
		{Label: "🔄 Новая тренировка", Data: callbackQuickWorkout},
		{Label: "📊 Мой прогресс", Data: callbackMainMenu},
	})
}

func (b *Bot) sendNutrition(ctx context.Context, userID int64) {
	user, err := b.store.GetUser(userID)
	if err != nil {
		slog.Debug("Bot generating nutrition plan for unregistered user", "user_id", userID)
	}
	plan := flow.GenerateNutritionPlan(user)
	b.send(ctx, userID, nutritionText(plan), nutritionButtons)
}

func (b *Bot) handleBuyPremium(ctx context.Context, userID int64) {
	user, err := b.store.GetUser(userID)
	if err != nil {
		b.send(ctx, userID, "Сначала запусти /start для регистрации", nil)
		return
	}
	user.Subscription = models.SubscriptionPremium
	user.SubscriptionEnd = time.Now().AddDate(0, 1, 0)
	if err := b.store.UpdateUser(user); err != nil {
		slog.Error("Bot failed to upgrade subscription", "error", err, "user_id", userID)
		b.send(ctx, userID, "⚠️ Не получилось оформить Premium. Попробуй ещё раз!", nil)
		return
	}
	if err := b.store.UpdateLeadStage(userID, models.LeadStageConverted); err != nil {
		slog.Error("Bot failed to mark lead converted", "error", err, "user_id", userID)
	}
	b.send(ctx, userID, "💎 Premium активирован! Теперь тебе доступны все AI-программы.", nil)
	slog.Info("Bot converted user to premium", "user_id", userID)
}

// send delivers a message, with buttons when provided, logging failures.
func (b *Bot) send(ctx context.Context, userID int64, body string, buttons []models.Button) {
	var err error
	if len(buttons) > 0 {
		err = b.svc.SendMessageWithButtons(ctx, userID, body, buttons)
	} else {
		err = b.svc.SendMessage(ctx, userID, body)
	}
	if err != nil {
		slog.Error("Bot failed to send message", "error", err, "user_id", userID)
	}
}
