// Package api provides the operator-facing HTTP surface of the FitFriends
// bot: health, usage stats and the hot-leads report.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

// DefaultAddr is the default listen address for the ops API.
const DefaultAddr = ":8080"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the handlers to an http.Server.
type Server struct {
	store  StatsStore
	server *http.Server
}

// StatsStore is the slice of the store the API reads from.
type StatsStore interface {
	CountUsers() (int, error)
	GetHotLeads() ([]models.HotLead, error)
}

// NewServer creates the ops API server.
func NewServer(store StatsStore, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{store: store}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/leads/hot", s.hotLeadsHandler)
	s.server = &http.Server{Addr: cfg.Addr, Handler: mux}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	slog.Info("API server starting", "addr", s.server.Addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server failed", "error", err)
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
