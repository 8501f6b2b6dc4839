// Package draft projects the server-owned race draft and stages ban, pick and landmark edits.
package draft

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rootleague/go/internal/models"
)

var (
	ErrNoDraft            = errors.New("draft not loaded")
	ErrNotBanPhase        = errors.New("draft is not in the ban phase")
	ErrNotPickPhase       = errors.New("draft is not in the pick phase")
	ErrBanCapReached      = errors.New("no more bans allowed")
	ErrVagabondCapReached = errors.New("vagabond cannot be banned again")
	ErrUnknownRace        = errors.New("unknown race")
	ErrNotYourTurn        = errors.New("not this player's turn")
	ErrRaceUnavailable    = errors.New("race is not in the pool")
	ErrNoPendingPick      = errors.New("no pick awaiting confirmation")
	ErrLandmarksDisabled  = errors.New("landmarks are disabled for this match")
	ErrLandmarksLocked    = errors.New("landmarks already drawn")
	ErrUnknownLandmark    = errors.New("unknown landmark")
	ErrNoLandmarkSelected = errors.New("no landmark selected")
	ErrInvalidDrawCount   = errors.New("landmark draw count must be 1 or 2")
)

// API is what the projector needs from the league client.
type API interface {
	GetMatch(ctx context.Context, matchID int) (*models.MatchState, error)
	GetDraft(ctx context.Context, matchID int) (*models.DraftState, error)
	SubmitBans(ctx context.Context, matchID int, bans []models.Race) error
	Pick(ctx context.Context, matchID, playerID int, race models.Race) error
	ResetPick(ctx context.Context, matchID, playerID int) error
	BanLandmark(ctx context.Context, matchID int, landmark models.Landmark, drawCount int) error
}

// PendingPick is a last pick staged behind a confirmation step.
type PendingPick struct {
	PlayerID int         `json:"playerId"`
	Race     models.Race `json:"race"`
}

// StagedEdits are local, unsubmitted changes.
type StagedEdits struct {
	Bans              []models.Race   `json:"bans"`
	LandmarkBan       models.Landmark `json:"landmarkBan,omitempty"`
	LandmarkDrawCount int             `json:"landmarkDrawCount"`
	PendingPick       *PendingPick    `json:"pendingPick,omitempty"`
	ConfirmOpen       bool            `json:"confirmOpen"`
}

type syncKey struct {
	matchID int
	phase   models.DraftPhase
}

// Projector mirrors the server-owned draft and holds staged edits until they are
// submitted. It never advances the draft on its own: phase and status only change
// through a refresh after a successful submit. Not safe for concurrent use.
type Projector struct {
	api     API
	matchID int

	draft *models.DraftState
	match *models.MatchState

	key       syncKey
	hasSynced bool

	localBans         []models.Race
	landmarkBan       models.Landmark
	landmarkDrawCount int
	pendingPick       *PendingPick
	confirmOpen       bool

	finishedNotice      bool
	finishedNoticeShown bool
}

func NewProjector(api API, matchID int) *Projector {
	return &Projector{
		api:               api,
		matchID:           matchID,
		landmarkDrawCount: 1,
	}
}

// Sync replaces the snapshot. Staged bans and any pending pick are discarded when the
// match or the phase changed since the last sync.
func (p *Projector) Sync(draft *models.DraftState, match *models.MatchState) {
	p.draft = draft
	p.match = match
	if draft == nil {
		return
	}

	key := syncKey{matchID: draft.MatchID, phase: draft.Phase}
	if p.hasSynced && key == p.key {
		return
	}
	if p.hasSynced && key.matchID != p.key.matchID {
		p.finishedNotice = false
		p.finishedNoticeShown = false
		p.landmarkBan = ""
		p.landmarkDrawCount = 1
	}
	p.key = key
	p.hasSynced = true
	p.localBans = append([]models.Race(nil), draft.BannedRaces...)
	p.pendingPick = nil
	p.confirmOpen = false
}

// Refresh re-fetches the match and, when the race draft is enabled, its draft.
func (p *Projector) Refresh(ctx context.Context) error {
	match, err := p.api.GetMatch(ctx, p.matchID)
	if err != nil {
		return err
	}
	if !match.RaceDraftEnabled {
		p.Sync(nil, match)
		return nil
	}
	draft, err := p.api.GetDraft(ctx, p.matchID)
	if err != nil {
		return err
	}
	p.Sync(draft, match)
	return nil
}

// Snapshot returns the last server draft. Callers must treat it as read-only.
func (p *Projector) Snapshot() *models.DraftState {
	return p.draft
}

// Staged returns a copy of the local edits.
func (p *Projector) Staged() StagedEdits {
	staged := StagedEdits{
		Bans:              append([]models.Race{}, p.localBans...),
		LandmarkBan:       p.landmarkBan,
		LandmarkDrawCount: p.landmarkDrawCount,
		ConfirmOpen:       p.confirmOpen,
	}
	if p.pendingPick != nil {
		pending := *p.pendingPick
		staged.PendingPick = &pending
	}
	return staged
}

func (p *Projector) TotalPlayers() int {
	if p.match == nil {
		return 0
	}
	return len(p.match.Players)
}

// DrawCount is how many races are guaranteed to stay available for picking.
func (p *Projector) DrawCount() int {
	return p.TotalPlayers() + 1
}

func (p *Projector) MaxBans() int {
	return max(0, len(models.AllRaces)-p.DrawCount())
}

// MaxVagabondCopies is 2 only in six player games.
func (p *Projector) MaxVagabondCopies() int {
	if p.TotalPlayers() == 6 {
		return 2
	}
	return 1
}

func (p *Projector) CanAddMoreBans() bool {
	return len(p.localBans) < p.MaxBans()
}

// RemainingPicks counts assignments still without a race.
func (p *Projector) RemainingPicks() int {
	if p.draft == nil {
		return 0
	}
	if len(p.draft.Assignments) == 0 {
		return max(0, len(p.draft.PickOrder)-p.draft.CurrentPickIndex)
	}
	remaining := 0
	for _, a := range p.draft.Assignments {
		if !a.Done() {
			remaining++
		}
	}
	return remaining
}

// IsLastPick reports whether the next pick finalizes the draft.
func (p *Projector) IsLastPick() bool {
	return p.inPhase(models.DraftPhasePick) && p.RemainingPicks() == 1
}

// TurnOrder lists participants in the server's pick order.
func (p *Projector) TurnOrder() []models.MatchPlayerState {
	if p.draft == nil {
		return nil
	}
	order := make([]models.MatchPlayerState, 0, len(p.draft.PickOrder))
	for _, id := range p.draft.PickOrder {
		player := models.MatchPlayerState{PlayerID: id}
		if p.match != nil {
			if found, ok := p.match.Player(id); ok {
				player = found
			}
		}
		order = append(order, player)
	}
	return order
}

// ToggleBan stages or unstages a ban. Vagabond toggling removes one staged copy when
// any exist and otherwise adds one.
func (p *Projector) ToggleBan(race models.Race) error {
	if err := p.requirePhase(models.DraftPhaseBan, ErrNotBanPhase); err != nil {
		return err
	}
	if !models.ValidRace(race) {
		return fmt.Errorf("%w: %s", ErrUnknownRace, race)
	}

	if idx := indexOf(p.localBans, race); idx >= 0 {
		p.localBans = append(p.localBans[:idx], p.localBans[idx+1:]...)
		return nil
	}
	if !p.CanAddMoreBans() {
		return ErrBanCapReached
	}
	p.localBans = append(p.localBans, race)
	return nil
}

// AddSecondVagabondBan stages another Vagabond copy, allowed only in six player games.
func (p *Projector) AddSecondVagabondBan() error {
	if err := p.requirePhase(models.DraftPhaseBan, ErrNotBanPhase); err != nil {
		return err
	}
	if p.MaxVagabondCopies() < 2 || p.vagabondBans() >= 2 {
		return ErrVagabondCapReached
	}
	if !p.CanAddMoreBans() {
		return ErrBanCapReached
	}
	p.localBans = append(p.localBans, models.RaceVagabond)
	return nil
}

// Submit sends the staged bans and re-fetches the draft.
func (p *Projector) Submit(ctx context.Context) error {
	if err := p.requirePhase(models.DraftPhaseBan, ErrNotBanPhase); err != nil {
		return err
	}
	if len(p.localBans) > p.MaxBans() {
		return ErrBanCapReached
	}
	if p.vagabondBans() > p.MaxVagabondCopies() {
		return ErrVagabondCapReached
	}

	bans := append([]models.Race{}, p.localBans...)
	if err := p.api.SubmitBans(ctx, p.matchID, bans); err != nil {
		return err
	}
	log.Info().Int("match_id", p.matchID).Int("bans", len(bans)).Msg("draft bans submitted")
	return p.refreshAfter(ctx, "bans")
}

// LandmarksLocked reports whether the server already drew landmarks.
func (p *Projector) LandmarksLocked() bool {
	return p.match != nil && len(p.match.LandmarksDrawn) > 0
}

func (p *Projector) SelectLandmarkBan(landmark models.Landmark) error {
	if err := p.requireLandmarksEditable(); err != nil {
		return err
	}
	if !models.ValidLandmark(landmark) {
		return fmt.Errorf("%w: %s", ErrUnknownLandmark, landmark)
	}
	p.landmarkBan = landmark
	return nil
}

func (p *Projector) SetLandmarkDrawCount(count int) error {
	if err := p.requireLandmarksEditable(); err != nil {
		return err
	}
	if count != 1 && count != 2 {
		return ErrInvalidDrawCount
	}
	p.landmarkDrawCount = count
	return nil
}

// SubmitLandmarks sends the banned landmark and draw count in one call.
func (p *Projector) SubmitLandmarks(ctx context.Context) error {
	if err := p.requireLandmarksEditable(); err != nil {
		return err
	}
	if p.landmarkBan == "" {
		return ErrNoLandmarkSelected
	}
	if err := p.api.BanLandmark(ctx, p.matchID, p.landmarkBan, p.landmarkDrawCount); err != nil {
		return err
	}
	log.Info().
		Int("match_id", p.matchID).
		Str("landmark", string(p.landmarkBan)).
		Int("draw_count", p.landmarkDrawCount).
		Msg("landmark ban submitted")
	return p.refreshAfter(ctx, "landmarks")
}

// SelectRace picks race for playerID. The last pick of the draft is staged for
// confirmation instead of being sent; submitted reports whether a request went out.
func (p *Projector) SelectRace(ctx context.Context, playerID int, race models.Race) (submitted bool, err error) {
	if err := p.requirePhase(models.DraftPhasePick, ErrNotPickPhase); err != nil {
		return false, err
	}
	if p.draft.CurrentPlayerID != playerID {
		return false, ErrNotYourTurn
	}
	if !p.draft.InPool(race) {
		return false, fmt.Errorf("%w: %s", ErrRaceUnavailable, race)
	}

	if p.IsLastPick() {
		p.pendingPick = &PendingPick{PlayerID: playerID, Race: race}
		p.confirmOpen = true
		return false, nil
	}

	if err := p.api.Pick(ctx, p.matchID, playerID, race); err != nil {
		return true, err
	}
	log.Info().Int("match_id", p.matchID).Int("player_id", playerID).Str("race", string(race)).Msg("race picked")
	return true, p.refreshAfter(ctx, "pick")
}

// ConfirmPick sends the staged last pick. On failure the confirmation stays open.
func (p *Projector) ConfirmPick(ctx context.Context) error {
	if p.pendingPick == nil {
		return ErrNoPendingPick
	}
	pending := *p.pendingPick
	if err := p.api.Pick(ctx, p.matchID, pending.PlayerID, pending.Race); err != nil {
		return err
	}
	p.pendingPick = nil
	p.confirmOpen = false
	log.Info().
		Int("match_id", p.matchID).
		Int("player_id", pending.PlayerID).
		Str("race", string(pending.Race)).
		Msg("final race picked")

	if err := p.refreshAfter(ctx, "final pick"); err != nil {
		return err
	}
	if p.draft != nil && p.draft.Status == models.DraftStatusFinished && !p.finishedNoticeShown {
		p.finishedNoticeShown = true
		p.finishedNotice = true
	}
	return nil
}

func (p *Projector) CancelPick() {
	p.pendingPick = nil
	p.confirmOpen = false
}

// ResetPick asks the server to undo playerID's pick.
func (p *Projector) ResetPick(ctx context.Context, playerID int) error {
	if p.draft == nil {
		return ErrNoDraft
	}
	if err := p.api.ResetPick(ctx, p.matchID, playerID); err != nil {
		return err
	}
	return p.refreshAfter(ctx, "reset pick")
}

// FinishedNotice reports whether the one-time "draft finished" notice is showing.
func (p *Projector) FinishedNotice() bool {
	return p.finishedNotice
}

func (p *Projector) DismissFinishedNotice() {
	p.finishedNotice = false
}

func (p *Projector) refreshAfter(ctx context.Context, action string) error {
	if err := p.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh after %s: %w", action, err)
	}
	return nil
}

func (p *Projector) inPhase(phase models.DraftPhase) bool {
	return p.draft != nil && p.draft.Status == models.DraftStatusDrafting && p.draft.Phase == phase
}

func (p *Projector) requirePhase(phase models.DraftPhase, wrong error) error {
	if p.draft == nil {
		return ErrNoDraft
	}
	if !p.inPhase(phase) {
		return wrong
	}
	return nil
}

func (p *Projector) requireLandmarksEditable() error {
	if p.match == nil {
		return ErrNoDraft
	}
	if !p.match.LandmarksEnabled {
		return ErrLandmarksDisabled
	}
	if p.LandmarksLocked() {
		return ErrLandmarksLocked
	}
	return nil
}

func (p *Projector) vagabondBans() int {
	n := 0
	for _, r := range p.localBans {
		if r == models.RaceVagabond {
			n++
		}
	}
	return n
}

func indexOf(races []models.Race, race models.Race) int {
	for i, r := range races {
		if r == race {
			return i
		}
	}
	return -1
}
