// Package flagstore keeps per-match UI bookkeeping that must survive a restart on one machine.
//
// Values are not synced anywhere and have no conflict resolution: the last writer wins.
// Nothing here is a durability guarantee; the backend stays the source of truth.
package flagstore

import (
	"errors"
	"fmt"

	"github.com/mcdev12/rootleague/go/internal/models"
)

// Kind names one piece of per-match bookkeeping.
type Kind string

const (
	KindSetupShown  Kind = "setup-shown"
	KindManualRaces Kind = "manual-races"
	KindManualOrder Kind = "manual-order"
	KindAutoStarted Kind = "auto-started"
)

var ErrWrongKind = errors.New("flagstore: value kind mismatch")

// Store is the typed view the flow sequencer depends on.
type Store interface {
	Flag(matchID int, kind Kind) bool
	SetFlag(matchID int, kind Kind, value bool) error

	ManualRaces(matchID int) map[int]models.Race
	SetManualRace(matchID, playerID int, race models.Race) error

	ManualOrder(matchID int) []int
	AppendManualOrder(matchID, playerID int) error

	// ClearManualPicks drops both the race map and the pick order of a match.
	ClearManualPicks(matchID int) error
}

// record is the persisted shape of everything stored for one match.
type record struct {
	Flags map[Kind]bool       `json:"flags,omitempty"`
	Races map[int]models.Race `json:"races,omitempty"`
	Order []int               `json:"order,omitempty"`
}

func (r *record) clone() *record {
	out := &record{
		Flags: make(map[Kind]bool, len(r.Flags)),
		Races: make(map[int]models.Race, len(r.Races)),
		Order: append([]int(nil), r.Order...),
	}
	for k, v := range r.Flags {
		out.Flags[k] = v
	}
	for k, v := range r.Races {
		out.Races[k] = v
	}
	return out
}

func checkKind(kind Kind) error {
	switch kind {
	case KindSetupShown, KindAutoStarted:
		return nil
	default:
		return fmt.Errorf("%w: %s is not a flag", ErrWrongKind, kind)
	}
}
