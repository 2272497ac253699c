// Package flow implements the conversation pipeline for the FitFriends bot:
// fallback resolution, sales-trigger evaluation, plan generation and the
// per-message orchestration that ties them to storage and the completion
// client.
package flow

import "strings"

// fallbackRule pairs a keyword with its canned response. Rules are evaluated
// in declared order, first match wins.
type fallbackRule struct {
	keyword  string
	response string
}

// DefaultFallbackReply is returned when no keyword matches.
const DefaultFallbackReply = "Отличный вопрос! Рекомендую тебе индивидуальную программу тренировок и питания. Хочешь, создам её для тебя? 🚀"

// defaultFallbackRules is the fixed rule order. Matching is substring
// containment over the lower-cased message; do not reorder.
var defaultFallbackRules = []fallbackRule{
	{"привет", "Привет! Я твой AI-фитнес тренер! 🏋️\nЧем могу помочь? Тренировка, питание или совет?"},
	{"треня", "Отлично! Сгенерирую для тебя персональную тренировку! 💪"},
	{"питание", "Создам идеальный план питания под твои цели! 🥗"},
	{"мотивация", "Ты можешь всё! Каждая тренировка приближает к цели! 🔥"},
	{"как похудеть", "Советую: 1) Дефицит калорий 2) Силовые тренировки 3) Кардио 4) Белок"},
	{"как накачаться", "Фокус на: 1) Прогрессия нагрузок 2) Протеин 3) Восстановление 4) Дисциплина"},
}

// FallbackResolver produces deterministic replies when the completion
// endpoint is unavailable. Resolve is pure and total: it always returns a
// non-empty reply.
type FallbackResolver struct {
	rules        []fallbackRule
	defaultReply string
}

// NewFallbackResolver creates a resolver with the built-in rule set.
func NewFallbackResolver() *FallbackResolver {
	return &FallbackResolver{rules: defaultFallbackRules, defaultReply: DefaultFallbackReply}
}

// Resolve returns the response of the first keyword found as a substring of
// the lower-cased message, or the generic default reply.
func (r *FallbackResolver) Resolve(userMessage string) string {
	lower := strings.ToLower(userMessage)
	for _, rule := range r.rules {
		if strings.Contains(lower, rule.keyword) {
			return rule.response
		}
	}
	return r.defaultReply
}
