package api

import (
	"log/slog"
	"net/http"

	"github.com/Shadowkot11/FitFriends-bot/internal/models"
)

type healthResponse struct {
	Status string `json:"status"`
}

type statsResponse struct {
	Users    int `json:"users"`
	HotLeads int `json:"hot_leads"`
}

type hotLeadsResponse struct {
	Leads []models.HotLead `json:"leads"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	users, err := s.store.CountUsers()
	if err != nil {
		slog.Error("API statsHandler failed to count users", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse{Error: "failed to count users"})
		return
	}
	hot, err := s.store.GetHotLeads()
	if err != nil {
		slog.Error("API statsHandler failed to query hot leads", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse{Error: "failed to query hot leads"})
		return
	}
	writeJSONResponse(w, http.StatusOK, statsResponse{Users: users, HotLeads: len(hot)})
}

func (s *Server) hotLeadsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	hot, err := s.store.GetHotLeads()
	if err != nil {
		slog.Error("API hotLeadsHandler failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, errorResponse{Error: "failed to query hot leads"})
		return
	}
	if hot == nil {
		hot = []models.HotLead{}
	}
	writeJSONResponse(w, http.StatusOK, hotLeadsResponse{Leads: hot})
}
