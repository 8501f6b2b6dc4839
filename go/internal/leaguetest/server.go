// Package leaguetest runs an in-memory league backend over httptest for client and
// session tests. It implements just enough of the draft and match rules to drive a
// match from setup to finish.
package leaguetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mcdev12/rootleague/go/internal/models"
)

// Request is one call received by the server.
type Request struct {
	Method string
	Path   string
	Body   string
}

type failure struct {
	status  int
	message string
}

type Server struct {
	URL string

	mu        sync.Mutex
	httpSrv   *httptest.Server
	requests  []Request
	failures  map[string]failure
	matches   map[int]*models.MatchState
	drafts    map[int]*models.DraftState
	games     []models.Game
	groups    []models.Group
	players   []models.Player
	standings map[int][]models.Standing
	summaries map[int]*models.MatchSummary
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		failures:  make(map[string]failure),
		matches:   make(map[int]*models.MatchState),
		drafts:    make(map[int]*models.DraftState),
		standings: make(map[int][]models.Standing),
		summaries: make(map[int]*models.MatchSummary),
		games:     []models.Game{{Key: "ROOT", Name: "Root"}},
	}
	s.httpSrv = httptest.NewServer(s.routes())
	s.URL = s.httpSrv.URL
	t.Cleanup(s.httpSrv.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/api/games", s.handleGames)
	r.Route("/api/games/{game}", func(r chi.Router) {
		r.Get("/groups", s.handleGroups)
		r.Get("/players", s.handlePlayers)
		r.Get("/leagues/{leagueID}/standings", s.handleStandings)
		r.Get("/leagues/{leagueID}/matches", s.handleLeagueMatches)
		r.Get("/matches/active", s.handleActive)

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", s.handleGetMatch)
			r.Delete("/", s.handleDeleteMatch)
			r.Post("/start", s.handleStatus(models.MatchStatusInProgress))
			r.Post("/finish", s.handleStatus(models.MatchStatusFinished))
			r.Get("/summary", s.handleSummary)
			r.Post("/description", s.handleDescription)
			r.Post("/name", s.handleName)
			r.Post("/ranked", s.handleRanked)

			r.Post("/players/{playerID}/time", s.handleTimeDelta)
			r.Post("/players/{playerID}/set-time", s.handleSetTime)
			r.Post("/players/{playerID}/score", s.handleScore)

			r.Get("/draft", s.handleGetDraft)
			r.Post("/draft/bans", s.handleBans)
			r.Post("/draft/pick", s.handlePick)
			r.Post("/draft/reset-pick", s.handleResetPick)

			r.Post("/race-pick", s.handleRacePick)
			r.Post("/race-pick/reset", s.handleRacePickReset)

			r.Post("/landmarks/ban", s.handleLandmarkBan)
			r.Post("/landmarks/manual", s.handleLandmarksManual)
		})
	})
	return r
}

// record stores every request and answers with any failure registered for it.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if failing {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request with method and path answer with status. An empty message
// sends no body.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// RequestsTo returns the calls whose path ends with suffix.
func (s *Server) RequestsTo(method, suffix string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasSuffix(r.Path, suffix) {
			out = append(out, r)
		}
	}
	return out
}

// AddMatch registers a match. Drafted matches also get a fresh draft in the ban phase.
func (s *Server) AddMatch(match models.MatchState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if match.Status == "" {
		match.Status = models.MatchStatusSetup
	}
	m := match
	m.Players = slices.Clone(match.Players)
	s.matches[match.MatchID] = &m
	if match.RaceDraftEnabled {
		order := make([]int, 0, len(match.Players))
		assignments := make([]models.Assignment, 0, len(match.Players))
		for _, p := range match.Players {
			order = append(order, p.PlayerID)
			assignments = append(assignments, models.Assignment{PlayerID: p.PlayerID})
		}
		s.drafts[match.MatchID] = &models.DraftState{
			MatchID:     match.MatchID,
			Status:      models.DraftStatusDrafting,
			Phase:       models.DraftPhaseBan,
			PickOrder:   order,
			Pool:        slices.Clone(models.AllRaces),
			BannedRaces: []models.Race{},
			Assignments: assignments,
		}
	}
}

// Match returns a copy of the stored match.
func (s *Server) Match(matchID int) models.MatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.matches[matchID]
}

func (s *Server) Draft(matchID int) models.DraftState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.drafts[matchID]
}

func (s *Server) SetStandings(leagueID int, rows []models.Standing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.standings[leagueID] = rows
}

func (s *Server) SetSummary(summary models.MatchSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summary.MatchID] = &summary
}

func (s *Server) AddGroup(group models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, group)
}

func (s *Server) AddPlayer(player models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append(s.players, player)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"message": fmt.Sprintf(format, args...)})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func intParam(r *http.Request, name string) int {
	n, _ := strconv.Atoi(chi.URLParam(r, name))
	return n
}

// withMatch runs fn with the lock held and the match named in the path.
func (s *Server) withMatch(w http.ResponseWriter, r *http.Request, fn func(m *models.MatchState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[intParam(r, "matchID")]
	if !ok {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	fn(m)
}

func (s *Server) withPlayer(w http.ResponseWriter, r *http.Request, fn func(m *models.MatchState, p *models.MatchPlayerState)) {
	s.withMatch(w, r, func(m *models.MatchState) {
		id := intParam(r, "playerID")
		for i := range m.Players {
			if m.Players[i].PlayerID == id {
				fn(m, &m.Players[i])
				return
			}
		}
		writeError(w, http.StatusNotFound, "player not in match")
	})
}
