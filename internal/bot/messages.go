package bot

import (
	"fmt"

	"github.com/Shadowkot11/FitFriends-bot/internal/flow"
	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// Callback data values for inline menu buttons.
const (
	callbackStartSurvey  = "start_survey"
	callbackQuickWorkout = "quick_workout"
	callbackWorkoutDone  = "workout_done"
	callbackNutrition    = "nutrition_plan"
	callbackAIChat       = "ai_chat"
	callbackConnectAlice = "connect_alice"
	callbackPremium      = "premium_offer"
	callbackBuyPremium   = "buy_premium"
	callbackMainMenu     = "main_menu"
)

// mainMenuButtons is the welcome menu.
var mainMenuButtons = []models.Button{
	{Label: "🎯 Пройти опрос (2 мин)", Data: callbackStartSurvey},
	{Label: "💪 Быстрая тренировка", Data: callbackQuickWorkout},
	{Label: "🥗 План питания", Data: callbackNutrition},
	{Label: "💬 Задать вопрос AI", Data: callbackAIChat},
	{Label: "🔗 Подключить Яндекс Алису", Data: callbackConnectAlice},
	{Label: "💎 Premium доступ", Data: callbackPremium},
}

var workoutButtons = []models.Button{
	{Label: "✅ Выполнил тренировку", Data: callbackWorkoutDone},
	{Label: "🔄 Новая тренировка", Data: callbackQuickWorkout},
	{Label: "🥗 План питания", Data: callbackNutrition},
}

var nutritionButtons = []models.Button{
	{Label: "💪 Тренировка", Data: callbackQuickWorkout},
	{Label: "💬 Задать вопрос", Data: callbackAIChat},
}

var premiumButtons = []models.Button{
	{Label: "💳 Оформить Premium", Data: callbackBuyPremium},
	{Label: "💪 Продолжить trial", Data: callbackQuickWorkout},
	{Label: "💬 Консультация", Data: callbackAIChat},
}

var followupButtons = []models.Button{
	{Label: "🎯 Начать опрос", Data: callbackStartSurvey},
	{Label: "💬 Спросить AI", Data: callbackAIChat},
}

// thinkingText is sent before the completion call so the user is not left
// waiting in silence.
const thinkingText = "🤔 Думаю над ответом..."

const followupText = `💡 <b>Не знаешь с чего начать?</b>

Рекомендую:
1. Пройти быстрый опрос (2 минуты)
2. Получить персональную программу
3. Начать первую тренировку!

Или просто спроси меня о чем угодно! 💬`

const surveyText = `🎯 <b>ДАВАЙ ПОЗНАКОМИМСЯ!</b>

Ответь на 3 быстрых вопроса для персонализации:

1. <b>Какая твоя основная цель?</b>
   • Похудение
   • Набор мышечной массы
   • Поддержание формы
   • Улучшение здоровья

Напиши свой ответ:`

const aiChatText = `💬 <b>AI-ЧАТ АКТИВИРОВАН</b>

Задай мне любой вопрос о тренировках, питании, беге, йоге, целях или мотивации.
Я профессиональный AI-тренер и помогу с любым вопросом!

<b>Пиши свой вопрос:</b>`

const aliceText = `🎧 <b>ПОДКЛЮЧИ ЯНДЕКС АЛИСУ!</b>

Теперь я доступен в твоей Яндекс Станции! 🏠

<b>Как подключить:</b>
1. Скажи: <i>"Алиса, запусти навык Фитнес Тренер"</i>
2. Или найди в каталоге: <i>"AI Fitness Coach"</i>

<b>Буду твоим голосовым тренером дома! 🏋️</b>`

const premiumText = `💎 <b>PREMIUM ДОСТУП</b>

<b>Что получишь:</b>
• 🏋️ <b>Ежедневные AI-тренировки</b> - уникальные каждый день
• 🥗 <b>Персональное питание</b> - с учетом твоих предпочтений
• 📊 <b>AI-анализ прогресса</b> - фото, замеры, метрики
• 💬 <b>Приоритетная поддержка</b> - ответы за 5 минут
• 🔔 <b>Умные напоминания</b> - в лучшее для тебя время

<b>Всего 290/мес</b> - меньше 10р в день!

🚀 <b>Гарантия результата или верну деньги!</b>`

// welcomeText formats the /start greeting.
func welcomeText(firstName string) string {
	return fmt.Sprintf(`🤖 <b>Добро пожаловать в AI-FITNESS PRO, %s!</b>

Я твой персональный <b>AI-тренер, нутрициолог и мотивационный друг</b>!

🎯 <b>Что я умею:</b>
• 🏋️ Создавать персональные тренировки
• 🥗 Составлять планы питания
• 📊 Анализировать прогресс
• 💬 Отвечать на любые вопросы
• 🔔 Напоминать о тренировках

🚀 <b>Начни с бесплатного 7-дневного trial!</b>

Выбери действие:`, firstName)
}

// workoutText formats a generated workout plan.
func workoutText(plan flow.WorkoutPlan) string {
	text := fmt.Sprintf(`🏋️ <b>ТВОЯ AI-ТРЕНИРОВКА</b>

📅 <b>Дата:</b> %s
🎯 <b>Тип:</b> %s
⏱ <b>Время:</b> %s
🔥 <b>Калории:</b> %s

<b>Упражнения:</b>
`, plan.Date, plan.Type, plan.Duration, plan.Calories)
	for i, exercise := range plan.Exercises {
		text += fmt.Sprintf("\n%d. %s", i+1, exercise)
	}
	return text + "\n\n💡 <b>Совет:</b> Начинай с разминки 5-10 минут!"
}

// nutritionText formats a generated meal plan.
func nutritionText(plan flow.NutritionPlan) string {
	return fmt.Sprintf(`🥗 <b>ТВОЙ AI-ПЛАН ПИТАНИЯ</b>

🔥 <b>Калории:</b> %s

<b>План на день:</b>
• 🍳 <b>Завтрак:</b> %s
• 🍲 <b>Обед:</b> %s
• 🍽️ <b>Ужин:</b> %s
• 🍎 <b>Перекусы:</b> %s

💡 <b>Совет:</b> Пей 2-3 литра воды в день!`,
		plan.Calories, plan.Breakfast, plan.Lunch, plan.Dinner, plan.Snacks)
}

// progressText formats the /progress report.
func progressText(u models.User) string {
	goal := string(u.Goal)
	if goal == "" {
		goal = "Не указана"
	}
	level := u.FitnessLevel
	if level == "" {
		level = "Начинающий"
	}
	return fmt.Sprintf(`📊 <b>ТВОЙ ПРОГРЕСС</b>

💪 <b>Тренировок выполнено:</b> %d
🎯 <b>Цель:</b> %s
⚡ <b>Уровень:</b> %s

🚀 <b>Совет:</b> Продолжай в том же духе!`, u.WorkoutCount, goal, level)
}
