// Package models defines the core data structures for the FitFriends bot.
//
// It includes types for users, leads, conversation turns and upsell offers,
// which are shared across modules.
package models

import (
	"errors"
	"time"
)

// SubscriptionType identifies the user's current subscription tier.
type SubscriptionType string

const (
	// SubscriptionTrial is the free 7-day trial every new user starts on.
	SubscriptionTrial SubscriptionType = "trial"
	// SubscriptionPremium is the paid tier.
	SubscriptionPremium SubscriptionType = "premium"
)

// LeadStage tracks where a user sits in the sales funnel.
type LeadStage string

const (
	// LeadStageNew marks a freshly registered user.
	LeadStageNew LeadStage = "new"
	// LeadStageEngaged marks a user who completed at least one workout.
	LeadStageEngaged LeadStage = "engaged"
	// LeadStageHot marks a user surfaced by the hot-leads query.
	LeadStageHot LeadStage = "hot"
	// LeadStageConverted marks a user who purchased Premium.
	LeadStageConverted LeadStage = "converted"
)

// FitnessGoal identifies the user's training goal, set during the survey.
type FitnessGoal string

const (
	// GoalWeightLoss is the default goal.
	GoalWeightLoss FitnessGoal = "weight_loss"
	// GoalMuscleGain selects strength-focused plans.
	GoalMuscleGain FitnessGoal = "muscle_gain"
)

// Limits shared across modules.
const (
	// MaxConversationTurns bounds the per-user conversation log. Oldest
	// turns are evicted first when the bound is exceeded.
	MaxConversationTurns = 50
	// CompletionHistoryWindow bounds how many trailing turns are sent to
	// the completion endpoint.
	CompletionHistoryWindow = 10
	// TrialDays is the length of the free trial.
	TrialDays = 7
)

// Error variables for better error handling and testability
var (
	ErrInvalidUserID       = errors.New("user id must be positive")
	ErrEmptyMessage        = errors.New("message text cannot be empty")
	ErrInvalidSubscription = errors.New("invalid subscription type")
	ErrInvalidLeadStage    = errors.New("invalid lead stage")
	ErrUserNotFound        = errors.New("user not found")
)

// ConversationTurn is one user-message/bot-response exchange. Immutable once
// created; the pipeline appends a turn after each completed reply.
type ConversationTurn struct {
	Timestamp   time.Time `json:"timestamp"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
}

// User is the persistent per-user record.
type User struct {
	ID               int64            `json:"id"`
	Username         string           `json:"username,omitempty"`
	FirstName        string           `json:"first_name,omitempty"`
	LastName         string           `json:"last_name,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Goal             FitnessGoal      `json:"goal,omitempty"`
	FitnessLevel     string           `json:"fitness_level,omitempty"`
	PreferredTime    string           `json:"preferred_time,omitempty"`
	Subscription     SubscriptionType `json:"subscription"`
	SubscriptionEnd  time.Time        `json:"subscription_end"`
	RegistrationDate time.Time        `json:"registration_date"`
	WorkoutCount     int              `json:"workout_count"`
	LastWorkout      time.Time        `json:"last_workout,omitempty"`
	TotalCalories    int              `json:"total_calories"`
}

// Lead is the sales-funnel record attached to a user.
type Lead struct {
	UserID        int64     `json:"user_id"`
	Stage         LeadStage `json:"stage"`
	InterestLevel int       `json:"interest_level"`
	LastContact   time.Time `json:"last_contact,omitempty"`
	NextContact   time.Time `json:"next_contact,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedDate   time.Time `json:"created_date"`
}

// HotLead is one row of the hot-leads report used by sales automation.
type HotLead struct {
	UserID        int64  `json:"user_id"`
	FirstName     string `json:"first_name"`
	WorkoutCount  int    `json:"workout_count"`
	InterestLevel int    `json:"interest_level"`
}

// Button is one inline action attached to an outgoing message.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Upsell is a secondary promotional message conditionally appended after the
// primary reply.
type Upsell struct {
	Message string   `json:"message"`
	Actions []Button `json:"actions"`
}

// Reply is the outbound payload produced by the response pipeline: the
// primary text plus an optional upsell.
type Reply struct {
	Text   string  `json:"text"`
	Upsell *Upsell `json:"upsell,omitempty"`
}

// Response represents an incoming free-text message from a user.
type Response struct {
	From      int64  `json:"from"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Body      string `json:"body"`
	Time      int64  `json:"time"`
}

// Callback represents an inline-button press.
type Callback struct {
	From      int64  `json:"from"`
	FirstName string `json:"first_name,omitempty"`
	Data      string `json:"data"`
	MessageID int    `json:"message_id"`
	Time      int64  `json:"time"`
}

// IsValidSubscription checks if the given subscription type is supported.
func IsValidSubscription(s SubscriptionType) bool {
	switch s {
	case SubscriptionTrial, SubscriptionPremium:
		return true
	}
	return false
}

// IsValidLeadStage checks if the given lead stage is supported.
func IsValidLeadStage(s LeadStage) bool {
	switch s {
	case LeadStageNew, LeadStageEngaged, LeadStageHot, LeadStageConverted:
		return true
	}
	return false
}

// ValidateIncoming validates the (user id, text) pair captured at the start
// of the response pipeline.
func ValidateIncoming(userID int64, text string) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	if text == "" {
		return ErrEmptyMessage
	}
	return nil
}
