package flow

import (
	"strings"
	"testing"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

func trialUser(workouts int) models.User {
	return models.User{ID: 1, Subscription: models.SubscriptionTrial, WorkoutCount: workouts}
}

func TestEvaluateFiresForEligibleTrialUser(t *testing.T) {
	e := NewSalesTriggerEvaluator()
	upsell := e.Evaluate("я хочу результат", trialUser(2))
	if upsell == nil {
		t.Fatal("expected upsell for eligible trial user")
	}
	if !strings.Contains(upsell.Message, "Premium") {
		t.Errorf("expected Premium pitch, got %q", upsell.Message)
	}
	if len(upsell.Actions) != 2 || upsell.Actions[0].Data != CallbackPremiumOffer {
		t.Errorf("expected offer/continue actions, got %+v", upsell.Actions)
	}
}

func TestEvaluateGateBySubscription(t *testing.T) {
	e := NewSalesTriggerEvaluator()
	paid := models.User{ID: 1, Subscription: models.SubscriptionPremium, WorkoutCount: 5}
	if e.Evaluate("я хочу результат", paid) != nil {
		t.Error("expected no upsell for premium user even with a trigger phrase")
	}
}

func TestEvaluateGateByWorkoutCount(t *testing.T) {
	e := NewSalesTriggerEvaluator()
	if e.Evaluate("я хочу результат", trialUser(1)) != nil {
		t.Error("expected no upsell below the workout threshold")
	}
	if e.Evaluate("я хочу результат", trialUser(2)) == nil {
		t.Error("expected upsell at the workout threshold")
	}
}

func TestEvaluateNoMatch(t *testing.T) {
	e := NewSalesTriggerEvaluator()
	if e.Evaluate("какая сегодня погода", trialUser(5)) != nil {
		t.Error("expected no upsell without a trigger phrase")
	}
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	e := NewSalesTriggerEvaluator()
	// Contains both "не получается" and "плато"; "не получается" is declared
	// earlier, so its upsell must be selected.
	upsell := e.Evaluate("у меня плато и не получается", trialUser(3))
	if upsell == nil {
		t.Fatal("expected upsell")
	}
	if !strings.Contains(upsell.Message, "корректировать твою программу") {
		t.Errorf("expected earlier declared rule to win, got %q", upsell.Message)
	}
}

func TestEvaluateCaseInsensitive(t *testing.T) {
	e := NewSalesTriggerEvaluator()
	if e.Evaluate("ХОЧУ РЕЗУЛЬТАТ", trialUser(2)) == nil {
		t.Error("expected case-insensitive phrase matching")
	}
}
