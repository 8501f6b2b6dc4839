package leaguetest

import (
	"net/http"
	"slices"

	"github.com/mcdev12/rootleague/go/internal/models"
)

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.games)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Group{}, s.groups...))
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Player{}, s.players...))
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]models.Standing{}, s.standings[intParam(r, "leagueID")]...))
}

func (s *Server) handleLeagueMatches(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	leagueID := intParam(r, "leagueID")
	out := []models.MatchState{}
	for _, m := range s.sortedMatchesLocked() {
		if m.LeagueID == leagueID {
			out = append(out, *m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.ActiveMatch{}
	for _, m := range s.sortedMatchesLocked() {
		if m.Status == models.MatchStatusFinished {
			continue
		}
		out = append(out, models.ActiveMatch{MatchID: m.MatchID, LeagueID: m.LeagueID, Name: m.Name, Status: m.Status})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) sortedMatchesLocked() []*models.MatchState {
	out := make([]*models.MatchState, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *models.MatchState) int { return a.MatchID - b.MatchID })
	return out
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	s.withMatch(w, r, func(m *models.MatchState) {
		writeJSON(w, http.StatusOK, m)
	})
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	s.withMatch(w, r, func(m *models.MatchState) {
		delete(s.matches, m.MatchID)
		delete(s.drafts, m.MatchID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleStatus(status models.MatchStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.withMatch(w, r, func(m *models.MatchState) {
			if status == models.MatchStatusInProgress && m.Status != models.MatchStatusSetup {
				writeError(w, http.StatusConflict, "match already started")
				return
			}
			m.Status = status
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.withMatch(w, r, func(m *models.MatchState) {
		if summary, ok := s.summaries[m.MatchID]; ok {
			writeJSON(w, http.StatusOK, summary)
			return
		}
		summary := models.MatchSummary{MatchID: m.MatchID, Name: m.Name, Description: m.Description, Ranked: m.Ranked}
		for _, p := range m.Players {
			summary.Rows = append(summary.Rows, models.SummaryRow{
				PlayerID:   p.PlayerID,
				PlayerName: p.PlayerName,
				Race:       p.Race,
				Score:      p.Score,
				TimeUsed:   m.TimerSecondsInitial - p.TimeLeftSeconds,
			})
		}
		writeJSON(w, http.StatusOK, summary)
	})
}

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withMatch(w, r, func(m *models.MatchState) {
		m.Description = req.Description
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withMatch(w, r, func(m *models.MatchState) {
		m.Name = req.Name
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleRanked(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ranked bool `json:"ranked"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withMatch(w, r, func(m *models.MatchState) {
		m.Ranked = req.Ranked
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleTimeDelta(w http.ResponseWriter, r *http.Request) {
	var req models.TimeDeltaRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withPlayer(w, r, func(_ *models.MatchState, p *models.MatchPlayerState) {
		p.TimeLeftSeconds = max(0, p.TimeLeftSeconds+req.DeltaSeconds)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleSetTime(w http.ResponseWriter, r *http.Request) {
	var req models.SetTimeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withPlayer(w, r, func(_ *models.MatchState, p *models.MatchPlayerState) {
		p.TimeLeftSeconds = max(0, req.TimeLeftSeconds)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withPlayer(w, r, func(_ *models.MatchState, p *models.MatchPlayerState) {
		p.Score = req.Score
		w.WriteHeader(http.StatusNoContent)
	})
}

// withDraft runs fn with the lock held, the match and its draft.
func (s *Server) withDraft(w http.ResponseWriter, r *http.Request, fn func(m *models.MatchState, d *models.DraftState)) {
	s.withMatch(w, r, func(m *models.MatchState) {
		d, ok := s.drafts[m.MatchID]
		if !ok {
			writeError(w, http.StatusNotFound, "match has no draft")
			return
		}
		fn(m, d)
	})
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, r, func(_ *models.MatchState, d *models.DraftState) {
		writeJSON(w, http.StatusOK, d)
	})
}

func (s *Server) handleBans(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitBansRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withDraft(w, r, func(m *models.MatchState, d *models.DraftState) {
		if d.Phase != models.DraftPhaseBan {
			writeError(w, http.StatusConflict, "draft is not in the ban phase")
			return
		}
		if len(req.Bans) > max(0, len(models.AllRaces)-(len(m.Players)+1)) {
			writeError(w, http.StatusBadRequest, "too many bans")
			return
		}
		d.BannedRaces = append([]models.Race{}, req.Bans...)
		d.Pool = slices.DeleteFunc(slices.Clone(models.AllRaces), func(r models.Race) bool {
			return slices.Contains(req.Bans, r)
		})
		d.Phase = models.DraftPhasePick
		d.CurrentPickIndex = 0
		if len(d.PickOrder) > 0 {
			d.CurrentPlayerID = d.PickOrder[0]
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var req models.PickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withDraft(w, r, func(m *models.MatchState, d *models.DraftState) {
		switch {
		case d.Status != models.DraftStatusDrafting || d.Phase != models.DraftPhasePick:
			writeError(w, http.StatusConflict, "draft is not in the pick phase")
			return
		case d.CurrentPlayerID != req.PlayerID:
			writeError(w, http.StatusConflict, "not your turn")
			return
		case !d.InPool(req.Race):
			writeError(w, http.StatusBadRequest, "race %s is not available", req.Race)
			return
		}

		picked := req.Race
		for i := range d.Assignments {
			if d.Assignments[i].PlayerID == req.PlayerID {
				d.Assignments[i].Race = &picked
			}
		}
		for i := range m.Players {
			if m.Players[i].PlayerID == req.PlayerID {
				m.Players[i].Race = &picked
			}
		}
		d.Pool = slices.DeleteFunc(d.Pool, func(r models.Race) bool { return r == req.Race })
		d.CurrentPickIndex++
		if d.CurrentPickIndex >= len(d.PickOrder) {
			d.Status = models.DraftStatusFinished
			d.CurrentPlayerID = 0
		} else {
			d.CurrentPlayerID = d.PickOrder[d.CurrentPickIndex]
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleResetPick(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withDraft(w, r, func(m *models.MatchState, d *models.DraftState) {
		for i := range d.Assignments {
			a := &d.Assignments[i]
			if a.PlayerID == req.PlayerID && a.Done() {
				d.Pool = append(d.Pool, *a.Race)
				a.Race = nil
			}
		}
		for i := range m.Players {
			if m.Players[i].PlayerID == req.PlayerID {
				m.Players[i].Race = nil
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleRacePick(w http.ResponseWriter, r *http.Request) {
	var req models.PickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withMatch(w, r, func(m *models.MatchState) {
		if m.RaceDraftEnabled {
			writeError(w, http.StatusConflict, "match uses the race draft")
			return
		}
		for i := range m.Players {
			if m.Players[i].PlayerID == req.PlayerID {
				picked := req.Race
				m.Players[i].Race = &picked
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeError(w, http.StatusNotFound, "player not in match")
	})
}

func (s *Server) handleRacePickReset(w http.ResponseWriter, r *http.Request) {
	s.withMatch(w, r, func(m *models.MatchState) {
		for i := range m.Players {
			m.Players[i].Race = nil
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// handleLandmarkBan draws the first drawCount landmarks other than the banned one.
func (s *Server) handleLandmarkBan(w http.ResponseWriter, r *http.Request) {
	var req models.LandmarkBanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withMatch(w, r, func(m *models.MatchState) {
		if !m.LandmarksEnabled {
			writeError(w, http.StatusConflict, "landmarks are disabled")
			return
		}
		if len(m.LandmarksDrawn) > 0 {
			writeError(w, http.StatusConflict, "landmarks already drawn")
			return
		}
		banned := req.Landmark
		m.LandmarkBanned = &banned
		m.LandmarksDrawn = nil
		for _, l := range models.AllLandmarks {
			if len(m.LandmarksDrawn) == req.DrawCount {
				break
			}
			if l != banned {
				m.LandmarksDrawn = append(m.LandmarksDrawn, l)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) handleLandmarksManual(w http.ResponseWriter, r *http.Request) {
	var req models.LandmarksManualRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.withMatch(w, r, func(m *models.MatchState) {
		m.LandmarksDrawn = slices.Clone(req.Landmarks)
		w.WriteHeader(http.StatusNoContent)
	})
}
