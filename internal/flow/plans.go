package flow

import (
	"time"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// WorkoutPlan is a generated day workout.
type WorkoutPlan struct {
	Date      string   `json:"date"`
	Type      string   `json:"type"`
	Focus     string   `json:"focus"`
	Duration  string   `json:"duration"`
	Calories  string   `json:"calories"`
	Exercises []string `json:"exercises"`
}

// NutritionPlan is a generated day meal plan.
type NutritionPlan struct {
	Calories  string `json:"calories"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Snacks    string `json:"snacks"`
}

var workoutsByGoal = map[models.FitnessGoal]WorkoutPlan{
	models.GoalWeightLoss: {
		Type:     "Жиросжигающая",
		Focus:    "Кардио + Силовая",
		Duration: "35-45 минут",
		Calories: "250-400 ккал",
		Exercises: []string{
			"Приседания 4x15",
			"Берпи 3x10",
			"Планка 3x60сек",
			"Выпады 3x12",
			"Скакалка 5x1мин",
		},
	},
	models.GoalMuscleGain: {
		Type:     "Мышечная масса",
		Focus:    "Силовая",
		Duration: "35-45 минут",
		Calories: "250-400 ккал",
		Exercises: []string{
			"Приседания 4x8-10",
			"Отжимания 4x10-12",
			"Подтягивания 3x6-8",
			"Ягодичный мостик 4x12",
			"Планка 3x45сек",
		},
	},
}

var nutritionByGoal = map[models.FitnessGoal]NutritionPlan{
	models.GoalWeightLoss: {
		Calories:  "1800-2000 ккал",
		Breakfast: "Овсянка с ягодами и протеином",
		Lunch:     "Куриная грудка с гречкой и овощами",
		Dinner:    "Рыба на пару с салатом",
		Snacks:    "Творог, яблоко, орехи",
	},
	models.GoalMuscleGain: {
		Calories:  "2800-3200 ккал",
		Breakfast: "Омлет из 4 яиц + овсянка",
		Lunch:     "Говядина с рисом и овощами",
		Dinner:    "Творог с бананом и орехами",
		Snacks:    "Протеин, фрукты, йогурт",
	},
}

// GenerateWorkoutPlan builds a date-stamped workout for the user's goal,
// defaulting to weight loss.
func GenerateWorkoutPlan(user models.User) WorkoutPlan {
	plan, ok := workoutsByGoal[user.Goal]
	if !ok {
		plan = workoutsByGoal[models.GoalWeightLoss]
	}
	plan.Date = time.Now().Format("02.01.2006")
	return plan
}

// GenerateNutritionPlan builds a meal plan for the user's goal, defaulting
// to weight loss.
func GenerateNutritionPlan(user models.User) NutritionPlan {
	plan, ok := nutritionByGoal[user.Goal]
	if !ok {
		plan = nutritionByGoal[models.GoalWeightLoss]
	}
	return plan
}
