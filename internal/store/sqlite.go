// Package store provides storage backends for the FitFriends bot.
//
// This file implements an SQLite-backed store for user, lead and
// conversation data.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AddUser(u models.User) error {
	if u.Subscription == "" {
		u.Subscription = models.SubscriptionTrial
	}
	if u.RegistrationDate.IsZero() {
		u.RegistrationDate = time.Now()
	}
	if u.SubscriptionEnd.IsZero() {
		u.SubscriptionEnd = u.RegistrationDate.AddDate(0, 0, models.TrialDays)
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO users
		(user_id, username, first_name, last_name, subscription_type, subscription_end, registration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, nilIfEmpty(u.Username), nilIfEmpty(u.FirstName), nilIfEmpty(u.LastName),
		string(u.Subscription), u.SubscriptionEnd, u.RegistrationDate)
	if err != nil {
		slog.Error("SQLiteStore AddUser failed", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to insert user %d: %w", u.ID, err)
	}
	_, err = s.db.Exec(`INSERT OR IGNORE INTO leads (user_id, stage, interest_level) VALUES (?, 'new', 1)`, u.ID)
	if err != nil {
		slog.Error("SQLiteStore AddUser lead insert failed", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to insert lead for user %d: %w", u.ID, err)
	}
	slog.Debug("SQLiteStore AddUser succeeded", "user_id", u.ID)
	return nil
}

func (s *SQLiteStore) GetUser(userID int64) (models.User, error) {
	row := s.db.QueryRow(`SELECT user_id, username, first_name, last_name, phone, goal,
		fitness_level, preferred_time, subscription_type, subscription_end,
		registration_date, workout_count, last_workout, total_calories
		FROM users WHERE user_id = ?`, userID)
	u, err := scanUserRow(row)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetUser failed", "error", err, "user_id", userID)
		return models.User{}, fmt.Errorf("failed to query user %d: %w", userID, err)
	}
	return u, nil
}

func (s *SQLiteStore) UpdateUser(u models.User) error {
	res, err := s.db.Exec(`UPDATE users SET goal = ?, fitness_level = ?, preferred_time = ?,
		subscription_type = ?, subscription_end = ? WHERE user_id = ?`,
		string(u.Goal), u.FitnessLevel, u.PreferredTime, string(u.Subscription), u.SubscriptionEnd, u.ID)
	if err != nil {
		slog.Error("SQLiteStore UpdateUser failed", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *SQLiteStore) IncrementWorkoutCount(userID int64) error {
	res, err := s.db.Exec(`UPDATE users SET workout_count = workout_count + 1, last_workout = ? WHERE user_id = ?`,
		time.Now(), userID)
	if err != nil {
		slog.Error("SQLiteStore IncrementWorkoutCount failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to increment workout count for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *SQLiteStore) GetConversationHistory(userID int64) ([]models.ConversationTurn, error) {
	var raw sql.NullString
	err := s.db.QueryRow(`SELECT conversation_history FROM users WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		// Unknown user reads as empty history, not an error.
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversationHistory failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query history for user %d: %w", userID, err)
	}
	return decodeHistory(raw.String)
}

func (s *SQLiteStore) AppendConversationTurn(userID int64, turn models.ConversationTurn) error {
	history, err := s.GetConversationHistory(userID)
	if err != nil {
		return err
	}
	history = truncateHistory(append(history, turn))
	encoded, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode history for user %d: %w", userID, err)
	}
	_, err = s.db.Exec(`UPDATE users SET conversation_history = ? WHERE user_id = ?`, string(encoded), userID)
	if err != nil {
		slog.Error("SQLiteStore AppendConversationTurn failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to save history for user %d: %w", userID, err)
	}
	slog.Debug("SQLiteStore AppendConversationTurn succeeded", "user_id", userID, "history_len", len(history))
	return nil
}

func (s *SQLiteStore) UpdateLeadStage(userID int64, stage models.LeadStage) error {
	_, err := s.db.Exec(`UPDATE leads SET stage = ?, last_contact = ? WHERE user_id = ?`,
		string(stage), time.Now(), userID)
	if err != nil {
		slog.Error("SQLiteStore UpdateLeadStage failed", "error", err, "user_id", userID, "stage", stage)
		return fmt.Errorf("failed to update lead stage for user %d: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) SetLeadInterest(userID int64, level int) error {
	res, err := s.db.Exec(`UPDATE leads SET interest_level = ? WHERE user_id = ?`, level, userID)
	if err != nil {
		slog.Error("SQLiteStore SetLeadInterest failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to set lead interest for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *SQLiteStore) GetLead(userID int64) (models.Lead, error) {
	row := s.db.QueryRow(`SELECT user_id, stage, interest_level, last_contact, next_contact, notes, created_date
		FROM leads WHERE user_id = ?`, userID)
	lead, err := scanLeadRow(row)
	if err == sql.ErrNoRows {
		return models.Lead{}, models.ErrUserNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetLead failed", "error", err, "user_id", userID)
		return models.Lead{}, fmt.Errorf("failed to query lead for user %d: %w", userID, err)
	}
	return lead, nil
}

func (s *SQLiteStore) GetHotLeads() ([]models.HotLead, error) {
	rows, err := s.db.Query(hotLeadsQuery)
	if err != nil {
		slog.Error("SQLiteStore GetHotLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query hot leads: %w", err)
	}
	defer rows.Close()
	return scanHotLeads(rows)
}

func (s *SQLiteStore) CountUsers() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
