// Package session drives one match: it loads server state, feeds the timer
// controller, draft projector and flow sequencer, and keeps the user-visible error.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rootleague/go/clients"
	"github.com/mcdev12/rootleague/go/internal/draft"
	"github.com/mcdev12/rootleague/go/internal/flagstore"
	"github.com/mcdev12/rootleague/go/internal/flow"
	"github.com/mcdev12/rootleague/go/internal/models"
	"github.com/mcdev12/rootleague/go/internal/timer"
)

// Client is everything a session calls on the backend.
type Client interface {
	draft.API
	flow.API
	timer.TimeAPI
	FinishMatch(ctx context.Context, matchID int) error
	SetScore(ctx context.Context, matchID, playerID, score int) error
	SetDescription(ctx context.Context, matchID int, description string) error
	SetName(ctx context.Context, matchID int, name string) error
	SetRanked(ctx context.Context, matchID int, ranked bool) error
	SetLandmarksManual(ctx context.Context, matchID int, landmarks []models.Landmark) error
}

// Publisher receives a snapshot after every load and timer change.
type Publisher interface {
	Publish(ctx context.Context, snap Snapshot) error
}

// Snapshot is everything a screen needs to render the match.
type Snapshot struct {
	SessionID      string                    `json:"sessionId"`
	MatchID        int                       `json:"matchId"`
	View           flow.View                 `json:"view"`
	Match          *models.MatchState        `json:"match,omitempty"`
	Draft          *models.DraftState        `json:"draft,omitempty"`
	Order          []models.MatchPlayerState `json:"order"`
	Timers         timer.Snapshot            `json:"timers"`
	Staged         draft.StagedEdits         `json:"staged"`
	Limits         DraftLimits               `json:"limits"`
	DraftFinished  bool                      `json:"draftFinished"`
	SetupModalOpen bool                      `json:"setupModalOpen"`
	SetupHint      int                       `json:"setupHint"`
	Error          string                    `json:"error,omitempty"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}

type Options struct {
	Store flagstore.Store
	Alarm timer.Alarm
	Clock clockwork.Clock
	Timer timer.Config
}

// Session is safe for concurrent use. Timer calls are never made while mu is held
// because the timer reports changes back through publish.
type Session struct {
	id      string
	matchID int
	client  Client
	store   flagstore.Store
	clock   clockwork.Clock

	timers    *timer.Controller
	projector *draft.Projector
	sequencer *flow.Sequencer

	loading atomic.Bool

	mu         sync.Mutex
	match      *models.MatchState
	draft      *models.DraftState
	view       flow.View
	errMsg     string
	publishers []Publisher
}

func New(client Client, matchID int, opts Options) *Session {
	if opts.Store == nil {
		opts.Store = flagstore.NewMemoryStore()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Timer == (timer.Config{}) {
		opts.Timer = timer.DefaultConfig()
	}

	s := &Session{
		id:        uuid.New().String(),
		matchID:   matchID,
		client:    client,
		store:     opts.Store,
		clock:     opts.Clock,
		timers:    timer.NewController(client, opts.Alarm, opts.Clock, opts.Timer),
		projector: draft.NewProjector(client, matchID),
		sequencer: flow.NewSequencer(client, opts.Store, matchID),
	}
	s.timers.OnChange(func(timer.Snapshot) {
		s.publish(context.Background())
	})
	return s
}

func (s *Session) ID() string   { return s.id }
func (s *Session) MatchID() int { return s.matchID }

// Timers exposes the clock controls. Their failures never reach Err.
func (s *Session) Timers() *timer.Controller {
	return s.timers
}

func (s *Session) AddPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = append(s.publishers, p)
}

// Err is the message of the last failed user action, empty after a success.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Session) ClearErr() {
	s.setErr(nil)
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	s.errMsg = clients.ErrorMessage(err)
	s.mu.Unlock()
}

// Close stops the running clock and waits for pending timer writes.
func (s *Session) Close() {
	s.timers.Close()
}

// Load fetches the match and its draft and re-evaluates the flow. A call made while
// another load is running returns immediately without doing anything.
func (s *Session) Load(ctx context.Context) error {
	if !s.loading.CompareAndSwap(false, true) {
		log.Debug().Int("match_id", s.matchID).Msg("load already in progress")
		return nil
	}
	defer s.loading.Store(false)

	err := s.load(ctx)
	s.setErr(err)
	s.publish(ctx)
	return err
}

func (s *Session) load(ctx context.Context) error {
	// a successful automatic start is followed by exactly one reload
	for attempt := 0; attempt < 2; attempt++ {
		match, draftState, err := s.fetch(ctx)
		if err != nil {
			return err
		}

		s.timers.Seed(match)

		s.mu.Lock()
		s.match = match
		s.draft = draftState
		s.projector.Sync(draftState, match)
		snap := flow.NewSnapshot(match, draftState, s.store)
		out, err := s.sequencer.Evaluate(ctx, snap)
		s.view = out.View
		s.mu.Unlock()

		if err != nil {
			return err
		}
		if out.SetupOpened {
			log.Info().Int("match_id", s.matchID).Msg("setup hints opened")
		}
		if !out.Started {
			return nil
		}
	}
	return nil
}

func (s *Session) fetch(ctx context.Context) (*models.MatchState, *models.DraftState, error) {
	match, err := s.client.GetMatch(ctx, s.matchID)
	if err != nil {
		return nil, nil, err
	}
	if !match.RaceDraftEnabled {
		return match, nil, nil
	}
	draftState, err := s.client.GetDraft(ctx, s.matchID)
	if err != nil {
		return nil, nil, err
	}
	return match, draftState, nil
}

// Snapshot builds the current view of the session.
func (s *Session) Snapshot() Snapshot {
	timers := s.timers.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(timers)
}

func (s *Session) snapshotLocked(timers timer.Snapshot) Snapshot {
	open, hint := s.sequencer.SetupModal()
	snap := Snapshot{
		SessionID:      s.id,
		MatchID:        s.matchID,
		View:           s.view,
		Match:          s.match,
		Draft:          s.draft,
		Timers:         timers,
		Staged:         s.projector.Staged(),
		Limits:         s.limitsLocked(),
		DraftFinished:  s.projector.FinishedNotice(),
		SetupModalOpen: open,
		SetupHint:      hint,
		Error:          s.errMsg,
		UpdatedAt:      s.clock.Now(),
	}
	if s.match != nil {
		snap.Order = flow.DisplayOrder(flow.NewSnapshot(s.match, s.draft, s.store))
	}
	return snap
}

func (s *Session) publish(ctx context.Context) {
	timers := s.timers.Snapshot()

	s.mu.Lock()
	publishers := append([]Publisher(nil), s.publishers...)
	if len(publishers) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked(timers)
	s.mu.Unlock()

	for _, p := range publishers {
		if err := p.Publish(ctx, snap); err != nil {
			log.Warn().Err(err).Int("match_id", s.matchID).Msg("failed to publish snapshot")
		}
	}
}

// act runs a user action and reloads on success. Failures are kept for Err.
func (s *Session) act(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Int("match_id", s.matchID).Str("action", name).Msg("action failed")
		s.setErr(err)
		s.publish(ctx)
		return err
	}
	return s.Load(ctx)
}

// locked runs fn with mu held, for projector and sequencer calls.
func (s *Session) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
