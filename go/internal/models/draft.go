package models

// DraftStatus defines the status of a race draft.
type DraftStatus string

const (
	DraftStatusDrafting DraftStatus = "DRAFTING"
	DraftStatusFinished DraftStatus = "FINISHED"
)

// DraftPhase defines which step of the draft is active.
type DraftPhase string

const (
	DraftPhaseBan  DraftPhase = "BAN"
	DraftPhasePick DraftPhase = "PICK"
)

// Assignment binds a player to the race they drafted. Race is nil until picked.
type Assignment struct {
	PlayerID int   `json:"playerId"`
	Race     *Race `json:"race,omitempty"`
}

// Done reports whether the assignment already carries a race.
func (a Assignment) Done() bool {
	return a.Race != nil && *a.Race != ""
}

// DraftState is the server-authoritative snapshot of a race draft.
type DraftState struct {
	MatchID          int          `json:"matchId"`
	Status           DraftStatus  `json:"status"`
	Phase            DraftPhase   `json:"phase"`
	CurrentPickIndex int          `json:"currentPickIndex"`
	CurrentPlayerID  int          `json:"currentPlayerId"`
	PickOrder        []int        `json:"pickOrder"`
	Pool             []Race       `json:"pool"`
	BannedRaces      []Race       `json:"bannedRaces"`
	Assignments      []Assignment `json:"assignments"`
}

// InPool reports whether race is still available for picking.
func (d *DraftState) InPool(race Race) bool {
	for _, r := range d.Pool {
		if r == race {
			return true
		}
	}
	return false
}

// SubmitBansRequest is the body for the draft bans endpoint.
type SubmitBansRequest struct {
	Bans []Race `json:"bans"`
}

// PickRequest is the body for the draft pick and manual race-pick endpoints.
type PickRequest struct {
	PlayerID int  `json:"playerId"`
	Race     Race `json:"race"`
}

// ResetPickRequest is the body for the draft reset-pick endpoint.
type ResetPickRequest struct {
	PlayerID int `json:"playerId"`
}
