package feed

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Handler serves the feed's HTTP routes.
type Handler struct {
	connectionManager *ConnectionManager
}

func NewHandler(cm *ConnectionManager) *Handler {
	return &Handler{connectionManager: cm}
}

// Routes returns the router wrapped with CORS.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)
	r.Get("/ws/match", h.HandleMatchConnection)
	r.Get("/ws/stats", h.HandleConnectionStats)
	r.Get("/api/matches/{matchID}/state", h.HandleMatchState)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet, http.MethodOptions},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// HandleMatchConnection upgrades /ws/match?match_id=N.
func (h *Handler) HandleMatchConnection(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(r.URL.Query().Get("match_id"))
	if err != nil || matchID <= 0 {
		http.Error(w, "match_id is required", http.StatusBadRequest)
		return
	}

	if err := h.connectionManager.UpgradeConnection(w, r, matchID); err != nil {
		// the upgrader already wrote the error response
		log.Error().Err(err).Int("match_id", matchID).Msg("failed to upgrade feed connection")
	}
}

func (h *Handler) HandleMatchState(w http.ResponseWriter, r *http.Request) {
	matchID, err := strconv.Atoi(chi.URLParam(r, "matchID"))
	if err != nil {
		http.Error(w, "invalid match id", http.StatusBadRequest)
		return
	}
	snap, ok := h.connectionManager.Latest(matchID)
	if !ok {
		http.Error(w, "no state for match", http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

func (h *Handler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.connectionManager.Stats())
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// NewServer builds the feed HTTP server. h2c lets HTTP/2 clients connect without TLS.
func NewServer(addr string, h *Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(h.Routes(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
