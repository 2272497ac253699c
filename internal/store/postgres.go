// Package store provides storage backends for the FitFriends bot.
//
// This file implements a PostgreSQL-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) AddUser(u models.User) error {
	if u.Subscription == "" {
		u.Subscription = models.SubscriptionTrial
	}
	if u.RegistrationDate.IsZero() {
		u.RegistrationDate = time.Now()
	}
	if u.SubscriptionEnd.IsZero() {
		u.SubscriptionEnd = u.RegistrationDate.AddDate(0, 0, models.TrialDays)
	}
	_, err := s.db.Exec(`INSERT INTO users
		(user_id, username, first_name, last_name, subscription_type, subscription_end, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (user_id) DO NOTHING`,
		u.ID, nilIfEmpty(u.Username), nilIfEmpty(u.FirstName), nilIfEmpty(u.LastName),
		string(u.Subscription), u.SubscriptionEnd, u.RegistrationDate)
	if err != nil {
		slog.Error("PostgresStore AddUser failed", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to insert user %d: %w", u.ID, err)
	}
	_, err = s.db.Exec(`INSERT INTO leads (user_id, stage, interest_level) VALUES ($1, 'new', 1)
		ON CONFLICT (user_id) DO NOTHING`, u.ID)
	if err != nil {
		slog.Error("PostgresStore AddUser lead insert failed", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to insert lead for user %d: %w", u.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetUser(userID int64) (models.User, error) {
	row := s.db.QueryRow(`SELECT user_id, username, first_name, last_name, phone, goal,
		fitness_level, preferred_time, subscription_type, subscription_end,
		registration_date, workout_count, last_workout, total_calories
		FROM users WHERE user_id = $1`, userID)
	u, err := scanUserRow(row)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetUser failed", "error", err, "user_id", userID)
		return models.User{}, fmt.Errorf("failed to query user %d: %w", userID, err)
	}
	return u, nil
}

func (s *PostgresStore) UpdateUser(u models.User) error {
	res, err := s.db.Exec(`UPDATE users SET goal = $1, fitness_level = $2, preferred_time = $3,
		subscription_type = $4, subscription_end = $5 WHERE user_id = $6`,
		string(u.Goal), u.FitnessLevel, u.PreferredTime, string(u.Subscription), u.SubscriptionEnd, u.ID)
	if err != nil {
		slog.Error("PostgresStore UpdateUser failed", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) IncrementWorkoutCount(userID int64) error {
	res, err := s.db.Exec(`UPDATE users SET workout_count = workout_count + 1, last_workout = $1 WHERE user_id = $2`,
		time.Now(), userID)
	if err != nil {
		slog.Error("PostgresStore IncrementWorkoutCount failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to increment workout count for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) GetConversationHistory(userID int64) ([]models.ConversationTurn, error) {
	var raw sql.NullString
	err := s.db.QueryRow(`SELECT conversation_history FROM users WHERE user_id = $1`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversationHistory failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query history for user %d: %w", userID, err)
	}
	return decodeHistory(raw.String)
}

func (s *PostgresStore) AppendConversationTurn(userID int64, turn models.ConversationTurn) error {
	history, err := s.GetConversationHistory(userID)
	if err != nil {
		return err
	}
	history = truncateHistory(append(history, turn))
	encoded, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode history for user %d: %w", userID, err)
	}
	_, err = s.db.Exec(`UPDATE users SET conversation_history = $1 WHERE user_id = $2`, string(encoded), userID)
	if err != nil {
		slog.Error("PostgresStore AppendConversationTurn failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to save history for user %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateLeadStage(userID int64, stage models.LeadStage) error {
	_, err := s.db.Exec(`UPDATE leads SET stage = $1, last_contact = $2 WHERE user_id = $3`,
		string(stage), time.Now(), userID)
	if err != nil {
		slog.Error("PostgresStore UpdateLeadStage failed", "error", err, "user_id", userID, "stage", stage)
		return fmt.Errorf("failed to update lead stage for user %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) SetLeadInterest(userID int64, level int) error {
	res, err := s.db.Exec(`UPDATE leads SET interest_level = $1 WHERE user_id = $2`, level, userID)
	if err != nil {
		slog.Error("PostgresStore SetLeadInterest failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to set lead interest for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) GetLead(userID int64) (models.Lead, error) {
	row := s.db.QueryRow(`SELECT user_id, stage, interest_level, last_contact, next_contact, notes, created_date
		FROM leads WHERE user_id = $1`, userID)
	lead, err := scanLeadRow(row)
	if err == sql.ErrNoRows {
		return models.Lead{}, models.ErrUserNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetLead failed", "error", err, "user_id", userID)
		return models.Lead{}, fmt.Errorf("failed to query lead for user %d: %w", userID, err)
	}
	return lead, nil
}

func (s *PostgresStore) GetHotLeads() ([]models.HotLead, error) {
	rows, err := s.db.Query(hotLeadsQuery)
	if err != nil {
		slog.Error("PostgresStore GetHotLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query hot leads: %w", err)
	}
	defer rows.Close()
	return scanHotLeads(rows)
}

func (s *PostgresStore) CountUsers() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
