// Package flow decides which screen a match is on and runs the one-time setup steps
// that come with moving between screens.
package flow

import (
	"slices"

	"github.com/mcdev12/rootleague/go/internal/flagstore"
	"github.com/mcdev12/rootleague/go/internal/models"
)

// View is one of the full-page screens of a match.
type View string

const (
	ViewDraft    View = "draft"
	ViewRacePick View = "race-pick"
	ViewMatch    View = "match"
)

// Snapshot is the combined server and local state a single evaluation works from.
// Build it once per evaluation so every decision sees the same values.
type Snapshot struct {
	Match       *models.MatchState
	Draft       *models.DraftState
	ManualRaces map[int]models.Race
	ManualOrder []int

	allPicked bool
}

func NewSnapshot(match *models.MatchState, draft *models.DraftState, store flagstore.Store) Snapshot {
	snap := Snapshot{Match: match, Draft: draft}
	if match != nil {
		snap.allPicked = match.AllPlayersHaveRace()
		if store != nil {
			snap.ManualRaces = store.ManualRaces(match.MatchID)
			snap.ManualOrder = store.ManualOrder(match.MatchID)
		}
	}
	return snap
}

// AllPicked reports whether the server has a race for every participant.
func (s Snapshot) AllPicked() bool {
	return s.allPicked
}

func (s Snapshot) draftEnabled() bool {
	return s.Match != nil && s.Match.RaceDraftEnabled
}

func (s Snapshot) drafting() bool {
	return s.draftEnabled() && s.Draft != nil && s.Draft.Status == models.DraftStatusDrafting
}

func (s Snapshot) draftFinished() bool {
	return s.draftEnabled() && s.Draft != nil && s.Draft.Status == models.DraftStatusFinished
}

func (s Snapshot) landmarksReady() bool {
	return !s.Match.LandmarksEnabled || len(s.Match.LandmarksDrawn) > 0
}

// RaceFor returns the race shown for playerID, preferring the server value over a
// locally recorded manual pick.
func (s Snapshot) RaceFor(playerID int) (models.Race, bool) {
	if s.Match != nil {
		if p, ok := s.Match.Player(playerID); ok && p.HasRace() {
			return *p.Race, true
		}
	}
	r, ok := s.ManualRaces[playerID]
	return r, ok
}

// DecideView picks the screen for snap.
func DecideView(snap Snapshot) View {
	switch {
	case snap.drafting():
		return ViewDraft
	case snap.Match != nil && !snap.Match.RaceDraftEnabled && !snap.allPicked:
		return ViewRacePick
	default:
		return ViewMatch
	}
}

// DisplayOrder lists players first-to-act first. The draft pick order wins, then the
// manual pick order, then the server order; both recorded orders are reversed.
// Players missing from the chosen order are appended in server order.
func DisplayOrder(snap Snapshot) []models.MatchPlayerState {
	if snap.Match == nil {
		return nil
	}

	var order []int
	switch {
	case snap.Draft != nil && len(snap.Draft.PickOrder) > 0:
		order = reversed(snap.Draft.PickOrder)
	case len(snap.ManualOrder) > 0:
		order = reversed(snap.ManualOrder)
	}

	out := make([]models.MatchPlayerState, 0, len(snap.Match.Players))
	seen := make(map[int]bool, len(snap.Match.Players))
	for _, id := range order {
		if seen[id] {
			continue
		}
		if p, ok := snap.Match.Player(id); ok {
			out = append(out, p)
			seen[id] = true
		}
	}
	for _, p := range snap.Match.Players {
		if !seen[p.PlayerID] {
			out = append(out, p)
		}
	}
	return out
}

func reversed(ids []int) []int {
	out := slices.Clone(ids)
	slices.Reverse(out)
	return out
}
