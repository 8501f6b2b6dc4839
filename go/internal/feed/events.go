// Package feed pushes live match snapshots to overlay clients over WebSocket and,
// optionally, to NATS.
package feed

import (
	"time"

	"github.com/mcdev12/rootleague/go/internal/session"
)

// EventType identifies the kind of feed message.
type EventType string

const (
	EventMatchState EventType = "match.state"
	EventWelcome    EventType = "feed.welcome"
)

// Event is the envelope of every message written to a feed connection.
type Event struct {
	Type         EventType         `json:"type"`
	MatchID      int               `json:"matchId"`
	ConnectionID string            `json:"connectionId,omitempty"`
	State        *session.Snapshot `json:"state,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

func newStateEvent(snap session.Snapshot) *Event {
	return &Event{
		Type:      EventMatchState,
		MatchID:   snap.MatchID,
		State:     &snap,
		Timestamp: time.Now().UTC(),
	}
}
