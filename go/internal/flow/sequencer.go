package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rootleague/go/internal/flagstore"
	"github.com/mcdev12/rootleague/go/internal/models"
)

var (
	ErrDraftEnabled = errors.New("race draft is enabled for this match")
	ErrUnknownRace  = errors.New("unknown race")
	ErrNotInMatch   = errors.New("player is not in this match")
)

// SetupHints are the pages of the setup modal, shown from index 0.
var SetupHints = []string{
	"Deal each player their faction board and starting pieces.",
	"Place landmarks and ruins as shown on the map.",
	"Set up factions in turn order, first to act last.",
	"Shuffle the shared deck and deal three cards to each player.",
}

// API is the slice of the league client the sequencer mutates the match with.
type API interface {
	StartMatch(ctx context.Context, matchID int) error
	RacePick(ctx context.Context, matchID, playerID int, race models.Race) error
	ResetRacePicks(ctx context.Context, matchID int) error
}

// Outcome is the result of one evaluation.
type Outcome struct {
	View View
	// SetupOpened is set when this evaluation opened the setup modal.
	SetupOpened bool
	// Started is set when the match was started automatically; the caller should reload.
	Started bool
}

// Sequencer owns the setup modal and the automatic start of a match. Every side
// effect is recorded in the flag store so it runs at most once per match on this
// machine. Not safe for concurrent use.
type Sequencer struct {
	api     API
	store   flagstore.Store
	matchID int

	modalOpen  bool
	modalIndex int
}

func NewSequencer(api API, store flagstore.Store, matchID int) *Sequencer {
	return &Sequencer{api: api, store: store, matchID: matchID}
}

// Evaluate decides the view for snap and runs any pending one-time step.
// A failed automatic start is returned and is not attempted again.
func (s *Sequencer) Evaluate(ctx context.Context, snap Snapshot) (Outcome, error) {
	out := Outcome{View: DecideView(snap)}
	if snap.Match == nil {
		return out, nil
	}

	if s.shouldOpenSetup(snap) {
		s.openSetup()
		out.SetupOpened = true
	}

	if !s.shouldAutoStart(snap) {
		return out, nil
	}
	s.setFlag(flagstore.KindAutoStarted)
	if err := s.api.StartMatch(ctx, s.matchID); err != nil {
		log.Error().Err(err).Int("match_id", s.matchID).Msg("automatic match start failed")
		return out, fmt.Errorf("start match: %w", err)
	}
	log.Info().Int("match_id", s.matchID).Msg("match started automatically")
	out.Started = true
	return out, nil
}

func (s *Sequencer) shouldOpenSetup(snap Snapshot) bool {
	if s.store.Flag(s.matchID, flagstore.KindSetupShown) {
		return false
	}
	if snap.draftFinished() {
		return true
	}
	return !snap.Match.RaceDraftEnabled && snap.AllPicked()
}

func (s *Sequencer) shouldAutoStart(snap Snapshot) bool {
	return !snap.Match.RaceDraftEnabled &&
		snap.Match.Status == models.MatchStatusSetup &&
		snap.AllPicked() &&
		snap.landmarksReady() &&
		!s.store.Flag(s.matchID, flagstore.KindAutoStarted)
}

func (s *Sequencer) openSetup() {
	s.setFlag(flagstore.KindSetupShown)
	s.modalOpen = true
	s.modalIndex = 0
}

func (s *Sequencer) setFlag(kind flagstore.Kind) {
	if err := s.store.SetFlag(s.matchID, kind, true); err != nil {
		log.Warn().Err(err).Int("match_id", s.matchID).Str("kind", string(kind)).Msg("failed to record flag")
	}
}

// SetupModal reports whether the setup modal is open and which page it shows.
func (s *Sequencer) SetupModal() (open bool, index int) {
	return s.modalOpen, s.modalIndex
}

// NextHint advances the modal and closes it after the last page.
func (s *Sequencer) NextHint() {
	if !s.modalOpen {
		return
	}
	if s.modalIndex+1 >= len(SetupHints) {
		s.CloseSetupModal()
		return
	}
	s.modalIndex++
}

func (s *Sequencer) PrevHint() {
	if s.modalOpen && s.modalIndex > 0 {
		s.modalIndex--
	}
}

func (s *Sequencer) CloseSetupModal() {
	s.modalOpen = false
	s.modalIndex = 0
}

// PickRace records a manual pick locally before sending it, so a restart before the
// server answers still shows it.
func (s *Sequencer) PickRace(ctx context.Context, snap Snapshot, playerID int, race models.Race) error {
	if snap.Match != nil && snap.Match.RaceDraftEnabled {
		return ErrDraftEnabled
	}
	if !models.ValidRace(race) {
		return fmt.Errorf("%w: %s", ErrUnknownRace, race)
	}
	if snap.Match != nil {
		if _, ok := snap.Match.Player(playerID); !ok {
			return fmt.Errorf("%w: %d", ErrNotInMatch, playerID)
		}
	}

	if err := s.store.SetManualRace(s.matchID, playerID, race); err != nil {
		log.Warn().Err(err).Int("match_id", s.matchID).Msg("failed to record manual race")
	}
	if err := s.store.AppendManualOrder(s.matchID, playerID); err != nil {
		log.Warn().Err(err).Int("match_id", s.matchID).Msg("failed to record manual pick order")
	}

	if err := s.api.RacePick(ctx, s.matchID, playerID, race); err != nil {
		return fmt.Errorf("race pick: %w", err)
	}
	log.Info().Int("match_id", s.matchID).Int("player_id", playerID).Str("race", string(race)).Msg("manual race picked")
	return nil
}

// ResetRacePicks clears the local manual picks and asks the server to clear its own.
func (s *Sequencer) ResetRacePicks(ctx context.Context) error {
	if err := s.store.ClearManualPicks(s.matchID); err != nil {
		log.Warn().Err(err).Int("match_id", s.matchID).Msg("failed to clear manual picks")
	}
	if err := s.api.ResetRacePicks(ctx, s.matchID); err != nil {
		return fmt.Errorf("reset race picks: %w", err)
	}
	return nil
}
