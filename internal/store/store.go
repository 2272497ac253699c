// Package store provides storage backends for the FitFriends bot.
//
// It includes an in-memory store for tests and development, plus persistent
// SQLite and PostgreSQL backends selected by DSN detection.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// Store is the persistence abstraction shared by the bot, the response
// pipeline and the ops API.
type Store interface {
	// AddUser registers a user if not already present and creates the
	// matching lead record in stage "new". Re-registering is a no-op.
	AddUser(u models.User) error

	// GetUser returns the user record, or models.ErrUserNotFound.
	GetUser(userID int64) (models.User, error)

	// UpdateUser overwrites mutable profile fields (goal, fitness level,
	// preferred time, subscription).
	UpdateUser(u models.User) error

	// IncrementWorkoutCount bumps the workout counter and stamps the last
	// workout date.
	IncrementWorkoutCount(userID int64) error

	// GetConversationHistory returns the ordered conversation log, oldest
	// first. Unknown users yield an empty history, not an error.
	GetConversationHistory(userID int64) ([]models.ConversationTurn, error)

	// AppendConversationTurn appends a turn to the user's log, evicting the
	// oldest turns so the log never exceeds models.MaxConversationTurns.
	AppendConversationTurn(userID int64, turn models.ConversationTurn) error

	// UpdateLeadStage moves the user's lead to the given stage.
	UpdateLeadStage(userID int64, stage models.LeadStage) error

	// SetLeadInterest records the lead's interest level (1-5).
	SetLeadInterest(userID int64, level int) error

	// GetLead returns the lead record for a user, or models.ErrUserNotFound.
	GetLead(userID int64) (models.Lead, error)

	// GetHotLeads returns trial users ripe for a sales touch: at least 3
	// workouts, interest level >= 3, lead stage "engaged".
	GetHotLeads() ([]models.HotLead, error)

	// CountUsers returns the total number of registered users.
	CountUsers() (int, error)

	// Close releases backend resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType returns "postgres" for PostgreSQL-style DSNs and "sqlite"
// for anything else (treated as a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// truncateHistory drops the oldest turns so the log holds at most
// models.MaxConversationTurns entries.
func truncateHistory(history []models.ConversationTurn) []models.ConversationTurn {
	if len(history) > models.MaxConversationTurns {
		history = history[len(history)-models.MaxConversationTurns:]
	}
	return history
}

// InMemoryStore is a mutex-guarded map-backed store. Histories are kept
// independently of user records so appends always succeed and lookups for
// unknown users yield empty histories.
type InMemoryStore struct {
	mu        sync.RWMutex
	users     map[int64]models.User
	leads     map[int64]models.Lead
	histories map[int64][]models.ConversationTurn
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:     make(map[int64]models.User),
		leads:     make(map[int64]models.Lead),
		histories: make(map[int64][]models.ConversationTurn),
	}
}

func (s *InMemoryStore) AddUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return nil
	}
	if u.Subscription == "" {
		u.Subscription = models.SubscriptionTrial
	}
	if u.RegistrationDate.IsZero() {
		u.RegistrationDate = time.Now()
	}
	if u.SubscriptionEnd.IsZero() {
		u.SubscriptionEnd = u.RegistrationDate.AddDate(0, 0, models.TrialDays)
	}
	s.users[u.ID] = u
	s.leads[u.ID] = models.Lead{
		UserID:        u.ID,
		Stage:         models.LeadStageNew,
		InterestLevel: 1,
		CreatedDate:   time.Now(),
	}
	return nil
}

func (s *InMemoryStore) GetUser(userID int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (s *InMemoryStore) UpdateUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return models.ErrUserNotFound
	}
	existing.Goal = u.Goal
	existing.FitnessLevel = u.FitnessLevel
	existing.PreferredTime = u.PreferredTime
	existing.Subscription = u.Subscription
	existing.SubscriptionEnd = u.SubscriptionEnd
	s.users[u.ID] = existing
	return nil
}

func (s *InMemoryStore) IncrementWorkoutCount(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.WorkoutCount++
	u.LastWorkout = time.Now()
	s.users[userID] = u
	return nil
}

func (s *InMemoryStore) GetConversationHistory(userID int64) ([]models.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[userID]
	out := make([]models.ConversationTurn, len(history))
	copy(out, history)
	return out, nil
}

func (s *InMemoryStore) AppendConversationTurn(userID int64, turn models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[userID] = truncateHistory(append(s.histories[userID], turn))
	return nil
}

func (s *InMemoryStore) UpdateLeadStage(userID int64, stage models.LeadStage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	lead.Stage = stage
	lead.LastContact = time.Now()
	s.leads[userID] = lead
	return nil
}

func (s *InMemoryStore) SetLeadInterest(userID int64, level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	lead.InterestLevel = level
	s.leads[userID] = lead
	return nil
}

func (s *InMemoryStore) GetLead(userID int64) (models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lead, ok := s.leads[userID]
	if !ok {
		return models.Lead{}, models.ErrUserNotFound
	}
	return lead, nil
}

func (s *InMemoryStore) GetHotLeads() ([]models.HotLead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var hot []models.HotLead
	for id, u := range s.users {
		lead, ok := s.leads[id]
		if !ok {
			continue
		}
		if u.Subscription == models.SubscriptionTrial && u.WorkoutCount >= 3 &&
			lead.InterestLevel >= 3 && lead.Stage == models.LeadStageEngaged {
			hot = append(hot, models.HotLead{
				UserID:        id,
				FirstName:     u.FirstName,
				WorkoutCount:  u.WorkoutCount,
				InterestLevel: lead.InterestLevel,
			})
		}
	}
	return hot, nil
}

func (s *InMemoryStore) CountUsers() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *InMemoryStore) Close() error { return nil }
