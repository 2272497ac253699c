package flow

import (
	"strings"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// Trigger gating thresholds: upsells only fire for trial users with at
// least this many completed workouts.
const MinWorkoutsForUpsell = 2

// Callback data attached to upsell action buttons.
const (
	CallbackPremiumOffer = "premium_offer"
	CallbackQuickWorkout = "quick_workout"
)

// triggerRule pairs a trigger phrase with its upsell message. Rules are
// evaluated in declared order, first match wins; tests pin the order.
type triggerRule struct {
	phrase  string
	message string
}

var defaultTriggerRules = []triggerRule{
	{"хочу результат", "Вижу твою мотивацию! Для максимальных результатов рекомендую Premium с персональным коучингом!"},
	{"не получается", "Понимаю! С Premium доступом я буду корректировать твою программу ежедневно!"},
	{"плато", "Это нормально! С моим AI-анализом мы преодолеем плато быстрее!"},
	{"скучно", "Добавлю разнообразия! В Premium версии +200 упражнений и челленджей!"},
}

// upsellActions are the offer/continue options attached to every upsell.
var upsellActions = []models.Button{
	{Label: "💎 Узнать о Premium", Data: CallbackPremiumOffer},
	{Label: "💪 Продолжить тренировки", Data: CallbackQuickWorkout},
}

// SalesTriggerEvaluator scans the original user message for promotional
// trigger phrases and decides whether an upsell should follow the primary
// reply. It is a pure decision function: it never mutates funnel state.
type SalesTriggerEvaluator struct {
	rules []triggerRule
}

// NewSalesTriggerEvaluator creates an evaluator with the built-in rule set.
func NewSalesTriggerEvaluator() *SalesTriggerEvaluator {
	return &SalesTriggerEvaluator{rules: defaultTriggerRules}
}

// Evaluate returns an upsell if the user is gated in (trial subscription,
// enough workouts) and the message contains a trigger phrase. Returns nil
// on gate failure or no match.
func (e *SalesTriggerEvaluator) Evaluate(userMessage string, user models.User) *models.Upsell {
	if user.Subscription != models.SubscriptionTrial || user.WorkoutCount < MinWorkoutsForUpsell {
		return nil
	}
	lower := strings.ToLower(userMessage)
	for _, rule := range e.rules {
		if strings.Contains(lower, rule.phrase) {
			return &models.Upsell{Message: rule.message, Actions: upsellActions}
		}
	}
	return nil
}
