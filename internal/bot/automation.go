package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shadowkot11/FitFriends-bot/internal/messaging"
	"github.com/Shadowkot11/FitFriends-bot/internal/models"
	"github.com/Shadowkot11/FitFriends-bot/internal/scheduler"
	"github.com/Shadowkot11/FitFriends-bot/internal/store"
)

// DefaultSweepCron runs the sales sweep at the top of every hour.
const DefaultSweepCron = "0 * * * *"

// trialMessages are the scripted trial-period touches keyed by trial day.
var trialMessages = map[string]string{
	"day1": "Как твои первые впечатления? Нужна помощь с тренировкой? 💪",
	"day3": "Вижу ты активен! Хочешь получить расширенную программу? 🚀",
	"day7": "Trial заканчивается! Успей оформить Premium со скидкой 20%! 💎",
}

// SalesAutomation sends scripted sales touches and sweeps the funnel for
// hot leads.
type SalesAutomation struct {
	svc   messaging.Service
	store store.Store
}

// NewSalesAutomation creates the automation with its dependencies.
func NewSalesAutomation(svc messaging.Service, st store.Store) *SalesAutomation {
	return &SalesAutomation{svc: svc, store: st}
}

// SendTrialMessage sends the scripted message for the given trial day key
// ("day1", "day3", "day7").
func (a *SalesAutomation) SendTrialMessage(ctx context.Context, userID int64, key string) error {
	message, ok := trialMessages[key]
	if !ok {
		return fmt.Errorf("unknown trial message key %q", key)
	}
	if err := a.svc.SendMessage(ctx, userID, message); err != nil {
		slog.Warn("SalesAutomation failed to send trial message", "error", err, "user_id", userID, "key", key)
		return err
	}
	slog.Info("SalesAutomation trial message sent", "user_id", userID, "key", key)
	return nil
}

// SweepHotLeads queries the funnel for hot leads, pitches Premium to each
// and advances their stage so they are not pitched again next sweep.
func (a *SalesAutomation) SweepHotLeads(ctx context.Context) {
	leads, err := a.store.GetHotLeads()
	if err != nil {
		slog.Error("SalesAutomation hot-lead query failed", "error", err)
		return
	}
	slog.Debug("SalesAutomation sweep", "hot_leads", len(leads))

	for _, lead := range leads {
		pitch := fmt.Sprintf("%s, ты уже выполнил %d тренировок! 🔥 С Premium прогресс пойдёт ещё быстрее.",
			lead.FirstName, lead.WorkoutCount)
		if err := a.svc.SendMessageWithButtons(ctx, lead.UserID, pitch, premiumButtons); err != nil {
			slog.Warn("SalesAutomation failed to pitch hot lead", "error", err, "user_id", lead.UserID)
			continue
		}
		if err := a.store.UpdateLeadStage(lead.UserID, models.LeadStageHot); err != nil {
			slog.Error("SalesAutomation failed to advance lead stage", "error", err, "user_id", lead.UserID)
		}
	}
}

// Register schedules the hourly hot-lead sweep.
func (a *SalesAutomation) Register(sched *scheduler.Scheduler, cronExpr string) error {
	if cronExpr == "" {
		cronExpr = DefaultSweepCron
	}
	return sched.AddJob(cronExpr, func() {
		a.SweepHotLeads(context.Background())
	})
}
