package flow

import (
	"testing"
	"time"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

func TestGenerateWorkoutPlanByGoal(t *testing.T) {
	plan := GenerateWorkoutPlan(models.User{Goal: models.GoalMuscleGain})
	if plan.Type != "Мышечная масса" {
		t.Errorf("expected muscle-gain plan, got %q", plan.Type)
	}
	if len(plan.Exercises) != 5 {
		t.Errorf("expected 5 exercises, got %d", len(plan.Exercises))
	}
	if plan.Date != time.Now().Format("02.01.2006") {
		t.Errorf("expected today's date stamp, got %q", plan.Date)
	}
}

func TestGenerateWorkoutPlanDefaultsToWeightLoss(t *testing.T) {
	plan := GenerateWorkoutPlan(models.User{})
	if plan.Type != "Жиросжигающая" {
		t.Errorf("expected weight-loss default, got %q", plan.Type)
	}
}

func TestGenerateNutritionPlanByGoal(t *testing.T) {
	plan := GenerateNutritionPlan(models.User{Goal: models.GoalMuscleGain})
	if plan.Calories != "2800-3200 ккал" {
		t.Errorf("expected muscle-gain calories, got %q", plan.Calories)
	}
}

func TestGenerateNutritionPlanDefaultsToWeightLoss(t *testing.T) {
	plan := GenerateNutritionPlan(models.User{Goal: "unknown"})
	if plan.Calories != "1800-2000 ккал" {
		t.Errorf("expected weight-loss default, got %q", plan.Calories)
	}
}
