package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/config"
)

// NewHTTPServer wires the full route table for the API service.
func NewHTTPServer(cfg *config.App, h *Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	// Multiplayer rooms
	mux.HandleFunc("POST /v1/rooms", h.CreateRoom)
	mux.HandleFunc("POST /v1/rooms/join", h.JoinRoom)
	mux.HandleFunc("POST /v1/rooms/{id}/start", h.StartGame)
	mux.HandleFunc("POST /v1/rooms/{id}/answers", h.SubmitAnswer)
	mux.HandleFunc("POST /v1/rooms/{id}/advance", h.AdvanceQuestion)
	mux.HandleFunc("GET /v1/rooms/{id}", h.GetRoom)
	mux.HandleFunc("GET /v1/rooms/{id}/question", h.GetCurrentQuestion)

	// Solo practice
	mux.HandleFunc("POST /v1/solo", h.CreateSoloPractice)
	mux.HandleFunc("POST /v1/solo/{id}/answers", h.SubmitSoloAnswer)

	// Profiles, leaderboard, history
	mux.HandleFunc("GET /v1/leaderboard", h.GetLeaderboard)
	mux.HandleFunc("GET /v1/users/{id}/rank", h.GetUserRank)
	mux.HandleFunc("GET /v1/history", h.GetHistory)

	// Sign dictionary
	mux.HandleFunc("GET /v1/dictionary/search", h.SearchDictionary)
	mux.HandleFunc("GET /v1/dictionary/suggest", h.SuggestSigns)
	mux.HandleFunc("GET /v1/dictionary/stats", h.GetDictionaryStats)

	// WebSocket room events
	mux.HandleFunc("GET /ws/rooms", h.HandleWebSocket)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}
