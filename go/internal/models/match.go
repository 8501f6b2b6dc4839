package models

import "time"

// MatchStatus defines the lifecycle state of a match.
type MatchStatus string

const (
	MatchStatusSetup      MatchStatus = "SETUP"
	MatchStatusInProgress MatchStatus = "IN_PROGRESS"
	MatchStatusFinished   MatchStatus = "FINISHED"
)

// MatchPlayerState is one participant of a match.
type MatchPlayerState struct {
	PlayerID        int    `json:"playerId"`
	PlayerName      string `json:"playerName"`
	Score           int    `json:"score"`
	TimeLeftSeconds int    `json:"timeLeftSeconds"`
	Race            *Race  `json:"race,omitempty"`
}

// HasRace reports whether a race has been assigned to the player.
func (p MatchPlayerState) HasRace() bool {
	return p.Race != nil && *p.Race != ""
}

// MatchState is the server view of a single match.
type MatchState struct {
	MatchID             int                `json:"matchId"`
	LeagueID            int                `json:"leagueId"`
	GroupID             int                `json:"groupId"`
	Name                string             `json:"name,omitempty"`
	Description         string             `json:"description,omitempty"`
	Ranked              bool               `json:"ranked"`
	Status              MatchStatus        `json:"status"`
	TimerSecondsInitial int                `json:"timerSecondsInitial"`
	RaceDraftEnabled    bool               `json:"raceDraftEnabled,omitempty"`
	LandmarksEnabled    bool               `json:"landmarksEnabled,omitempty"`
	LandmarkBanned      *Landmark          `json:"landmarkBanned,omitempty"`
	LandmarksDrawn      []Landmark         `json:"landmarksDrawn,omitempty"`
	Players             []MatchPlayerState `json:"players"`
}

// Player returns the participant with the given id.
func (m *MatchState) Player(playerID int) (MatchPlayerState, bool) {
	for _, p := range m.Players {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return MatchPlayerState{}, false
}

// AllPlayersHaveRace reports whether every participant has a race assigned.
func (m *MatchState) AllPlayersHaveRace() bool {
	if len(m.Players) == 0 {
		return false
	}
	for _, p := range m.Players {
		if !p.HasRace() {
			return false
		}
	}
	return true
}

// ActiveMatch is a row of the active matches listing.
type ActiveMatch struct {
	MatchID   int         `json:"matchId"`
	LeagueID  int         `json:"leagueId"`
	Name      string      `json:"name"`
	Status    MatchStatus `json:"status"`
	StartedAt *time.Time  `json:"startedAt,omitempty"`
}

// CreateMatchRequest is the body for creating a match within a league.
type CreateMatchRequest struct {
	Name                string `json:"name,omitempty"`
	PlayerIDs           []int  `json:"playerIds"`
	TimerSecondsInitial int    `json:"timerSecondsInitial"`
	RaceDraftEnabled    bool   `json:"raceDraftEnabled"`
	LandmarksEnabled    bool   `json:"landmarksEnabled"`
	Ranked              bool   `json:"ranked"`
}

// TimeDeltaRequest adjusts a player's clock relative to its current value.
type TimeDeltaRequest struct {
	DeltaSeconds int `json:"deltaSeconds"`
}

// SetTimeRequest overwrites a player's clock.
type SetTimeRequest struct {
	TimeLeftSeconds int `json:"timeLeftSeconds"`
}

// ScoreRequest overwrites a player's score.
type ScoreRequest struct {
	Score int `json:"score"`
}

// LandmarkBanRequest bans one landmark and asks the server to draw the rest.
type LandmarkBanRequest struct {
	Landmark  Landmark `json:"landmark"`
	DrawCount int      `json:"drawCount"`
}

// LandmarksManualRequest sets the drawn landmarks explicitly.
type LandmarksManualRequest struct {
	Landmarks []Landmark `json:"landmarks"`
}

// SummaryRow is one player's line of a finished match.
type SummaryRow struct {
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
	Race       *Race  `json:"race,omitempty"`
	Score      int    `json:"score"`
	Place      int    `json:"place"`
	TimeUsed   int    `json:"timeUsedSeconds"`
	Points     int    `json:"points"`
}

// MatchSummary is the post-match report.
type MatchSummary struct {
	MatchID     int          `json:"matchId"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Ranked      bool         `json:"ranked"`
	FinishedAt  *time.Time   `json:"finishedAt,omitempty"`
	Rows        []SummaryRow `json:"rows"`
}
