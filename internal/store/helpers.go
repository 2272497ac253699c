package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// hotLeadsQuery selects trial users ready for a sales touch. Shared by the
// SQLite and Postgres backends (both accept this syntax).
const hotLeadsQuery = `SELECT u.user_id, COALESCE(u.first_name, ''), u.workout_count, l.interest_level
	FROM users u
	JOIN leads l ON u.user_id = l.user_id
	WHERE u.subscription_type = 'trial'
	AND u.workout_count >= 3
	AND l.interest_level >= 3
	AND l.stage = 'engaged'`

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// decodeHistory parses the conversation_history JSON column. An empty or
// missing value decodes to an empty history.
func decodeHistory(raw string) ([]models.ConversationTurn, error) {
	if raw == "" {
		return nil, nil
	}
	var history []models.ConversationTurn
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("failed to decode conversation history: %w", err)
	}
	return history, nil
}

// scanUserRow scans a User from a single sql.Row.
func scanUserRow(row *sql.Row) (models.User, error) {
	var u models.User
	var username, firstName, lastName, phone, goal, level, preferredTime, subscription sql.NullString
	var subscriptionEnd, registrationDate, lastWorkout sql.NullTime
	err := row.Scan(
		&u.ID, &username, &firstName, &lastName, &phone, &goal,
		&level, &preferredTime, &subscription, &subscriptionEnd,
		&registrationDate, &u.WorkoutCount, &lastWorkout, &u.TotalCalories,
	)
	if err != nil {
		return u, err
	}
	u.Username = username.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.Phone = phone.String
	u.Goal = models.FitnessGoal(goal.String)
	u.FitnessLevel = level.String
	u.PreferredTime = preferredTime.String
	u.Subscription = models.SubscriptionType(subscription.String)
	if subscriptionEnd.Valid {
		u.SubscriptionEnd = subscriptionEnd.Time
	}
	if registrationDate.Valid {
		u.RegistrationDate = registrationDate.Time
	}
	if lastWorkout.Valid {
		u.LastWorkout = lastWorkout.Time
	}
	return u, nil
}

// scanLeadRow scans a Lead from a single sql.Row.
func scanLeadRow(row *sql.Row) (models.Lead, error) {
	var l models.Lead
	var stage sql.NullString
	var notes sql.NullString
	var lastContact, nextContact, createdDate sql.NullTime
	err := row.Scan(&l.UserID, &stage, &l.InterestLevel, &lastContact, &nextContact, &notes, &createdDate)
	if err != nil {
		return l, err
	}
	l.Stage = models.LeadStage(stage.String)
	l.Notes = notes.String
	if lastContact.Valid {
		l.LastContact = lastContact.Time
	}
	if nextContact.Valid {
		l.NextContact = nextContact.Time
	}
	if createdDate.Valid {
		l.CreatedDate = createdDate.Time
	}
	return l, nil
}

// scanHotLeads scans the hot-leads report rows.
func scanHotLeads(rows *sql.Rows) ([]models.HotLead, error) {
	var hot []models.HotLead
	for rows.Next() {
		var h models.HotLead
		if err := rows.Scan(&h.UserID, &h.FirstName, &h.WorkoutCount, &h.InterestLevel); err != nil {
			return nil, fmt.Errorf("scan hot lead failed: %w", err)
		}
		hot = append(hot, h)
	}
	return hot, rows.Err()
}
