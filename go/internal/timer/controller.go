// Package timer runs the per-player match clocks.
//
// Local values are optimistic: they tick and change immediately and are pushed to the
// backend on a best-effort basis. The backend value wins on the next reload.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rootleague/go/internal/models"
)

const (
	DefaultTickInterval = time.Second
	DefaultSaveThrottle = 500 * time.Millisecond
)

// TimeAPI is the slice of the league client the controller writes through.
type TimeAPI interface {
	AdjustTime(ctx context.Context, matchID, playerID, deltaSeconds int) error
	SetTime(ctx context.Context, matchID, playerID, seconds int) error
}

// Alarm is rung once when a player's clock first reaches zero.
type Alarm interface {
	Ring(playerID int)
}

// AlarmFunc adapts a function to Alarm.
type AlarmFunc func(playerID int)

func (f AlarmFunc) Ring(playerID int) { f(playerID) }

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Times     map[int]int  `json:"times"`
	RunningID int          `json:"runningId"`
	Running   bool         `json:"running"`
	TimeUp    map[int]bool `json:"timeUp"`
}

type Config struct {
	TickInterval time.Duration
	SaveThrottle time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickInterval: DefaultTickInterval,
		SaveThrottle: DefaultSaveThrottle,
	}
}

// Controller owns the local countdown of every player in one match.
// At most one player runs at a time and a single ticker drives it.
type Controller struct {
	api    TimeAPI
	alarm  Alarm
	clock  clockwork.Clock
	config Config

	mu             sync.Mutex
	matchID        int
	initialSeconds int
	times          map[int]int
	runningID      int
	running        bool
	alerted        map[int]bool
	lastSave       map[int]time.Time
	stopTick       chan struct{}
	onChange       func(Snapshot)

	background sync.WaitGroup
}

func NewController(api TimeAPI, alarm Alarm, clock clockwork.Clock, config Config) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	if config.SaveThrottle < 0 {
		config.SaveThrottle = 0
	}
	return &Controller{
		api:      api,
		alarm:    alarm,
		clock:    clock,
		config:   config,
		times:    make(map[int]int),
		alerted:  make(map[int]bool),
		lastSave: make(map[int]time.Time),
	}
}

// OnChange registers a callback invoked after every state change, outside the lock.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Seed replaces local times with the values from a freshly loaded match.
// A running clock keeps running if its player still has time left.
func (c *Controller) Seed(match *models.MatchState) {
	c.mu.Lock()
	c.matchID = match.MatchID
	c.initialSeconds = match.TimerSecondsInitial
	c.times = make(map[int]int, len(match.Players))
	for _, p := range match.Players {
		c.times[p.PlayerID] = max(0, p.TimeLeftSeconds)
	}
	if c.running && c.times[c.runningID] <= 0 {
		c.clearRunnerLocked()
	}
	ring := c.collectAlarmsLocked()
	c.mu.Unlock()

	c.afterChange(ring)
}

// SetRunning makes playerID the only running clock. The previous runner's time is
// flushed first; that write is best-effort. Players with no time left are ignored.
func (c *Controller) SetRunning(ctx context.Context, playerID int) {
	c.mu.Lock()
	if c.times[playerID] <= 0 {
		c.mu.Unlock()
		return
	}
	if c.running && c.runningID == playerID {
		c.mu.Unlock()
		return
	}
	prevID, hadPrev := c.runningID, c.running
	prevSeconds := c.times[prevID]
	c.clearRunnerLocked()
	c.mu.Unlock()

	if hadPrev {
		c.flush(ctx, prevID, prevSeconds)
	}

	c.mu.Lock()
	c.runningID = playerID
	c.running = true
	c.startTickerLocked(playerID)
	matchID := c.matchID
	c.mu.Unlock()

	log.Debug().Int("match_id", matchID).Int("player_id", playerID).Msg("clock started")
	c.afterChange(nil)
}

// StopRunning stops playerID's clock if it is the runner and flushes its time.
func (c *Controller) StopRunning(ctx context.Context, playerID int) {
	c.mu.Lock()
	if c.running && c.runningID == playerID {
		c.clearRunnerLocked()
	}
	seconds := c.times[playerID]
	c.mu.Unlock()

	c.flush(ctx, playerID, seconds)
	c.afterChange(nil)
}

func (c *Controller) AddMinute(ctx context.Context, playerID int)    { c.adjust(ctx, playerID, 60) }
func (c *Controller) RemoveMinute(ctx context.Context, playerID int) { c.adjust(ctx, playerID, -60) }
func (c *Controller) AddSecond(ctx context.Context, playerID int)    { c.adjust(ctx, playerID, 1) }
func (c *Controller) RemoveSecond(ctx context.Context, playerID int) { c.adjust(ctx, playerID, -1) }

// adjust applies delta locally, clamped at zero, then sends it in the background.
func (c *Controller) adjust(ctx context.Context, playerID, delta int) {
	c.mu.Lock()
	current, ok := c.times[playerID]
	if !ok {
		c.mu.Unlock()
		return
	}
	next := max(0, current+delta)
	c.times[playerID] = next
	if next == 0 && c.running && c.runningID == playerID {
		c.clearRunnerLocked()
	}
	matchID := c.matchID
	ring := c.collectAlarmsLocked()
	c.mu.Unlock()

	c.afterChange(ring)

	bgCtx := context.WithoutCancel(ctx)
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		if err := c.api.AdjustTime(bgCtx, matchID, playerID, delta); err != nil {
			log.Warn().Err(err).
				Int("match_id", matchID).
				Int("player_id", playerID).
				Int("delta", delta).
				Msg("time adjustment not saved")
		}
	}()
}

// SaveTime persists an absolute value unless the same player was saved less than the
// throttle interval ago. It reports whether a request was sent.
func (c *Controller) SaveTime(ctx context.Context, playerID, seconds int) (bool, error) {
	c.mu.Lock()
	now := c.clock.Now()
	if last, ok := c.lastSave[playerID]; ok && now.Sub(last) < c.config.SaveThrottle {
		c.mu.Unlock()
		return false, nil
	}
	c.lastSave[playerID] = now
	matchID := c.matchID
	c.mu.Unlock()

	if err := c.api.SetTime(ctx, matchID, playerID, seconds); err != nil {
		return true, err
	}
	return true, nil
}

// RefreshTimer resets playerID to the match's initial time and re-arms its alarm.
// Unknown players are ignored.
func (c *Controller) RefreshTimer(ctx context.Context, playerID int) error {
	c.mu.Lock()
	if _, ok := c.times[playerID]; !ok {
		c.mu.Unlock()
		return nil
	}
	if c.running && c.runningID == playerID {
		c.clearRunnerLocked()
	}
	delete(c.alerted, playerID)
	c.times[playerID] = c.initialSeconds
	c.lastSave[playerID] = c.clock.Now()
	matchID, seconds := c.matchID, c.initialSeconds
	c.mu.Unlock()

	c.afterChange(nil)

	return c.api.SetTime(ctx, matchID, playerID, seconds)
}

// Remaining returns the local seconds left for playerID.
func (c *Controller) Remaining(playerID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.times[playerID]
}

// Running returns the current runner, if any.
func (c *Controller) Running() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runningID, c.running
}

// TimeUp reports whether playerID has run out and the alarm already fired.
func (c *Controller) TimeUp(playerID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alerted[playerID] && c.times[playerID] <= 0
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until background time adjustments have returned.
func (c *Controller) Wait() {
	c.background.Wait()
}

// Close stops the ticker and waits for background writes.
func (c *Controller) Close() {
	c.mu.Lock()
	c.clearRunnerLocked()
	c.mu.Unlock()
	c.background.Wait()
}

func (c *Controller) flush(ctx context.Context, playerID, seconds int) {
	if _, err := c.SaveTime(ctx, playerID, seconds); err != nil {
		log.Warn().Err(err).
			Int("player_id", playerID).
			Int("seconds", seconds).
			Msg("time flush not saved")
	}
}

func (c *Controller) startTickerLocked(playerID int) {
	stop := make(chan struct{})
	c.stopTick = stop
	ticker := c.clock.NewTicker(c.config.TickInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				if !c.tick(playerID, stop) {
					return
				}
			}
		}
	}()
}

// tick decrements the runner by one second. It returns false when the ticker should exit.
func (c *Controller) tick(playerID int, stop chan struct{}) bool {
	c.mu.Lock()
	if c.stopTick != stop || !c.running || c.runningID != playerID {
		c.mu.Unlock()
		return false
	}
	left := max(0, c.times[playerID]-1)
	c.times[playerID] = left
	keepGoing := left > 0
	if !keepGoing {
		c.clearRunnerLocked()
	}
	ring := c.collectAlarmsLocked()
	c.mu.Unlock()

	c.afterChange(ring)
	return keepGoing
}

func (c *Controller) clearRunnerLocked() {
	c.running = false
	c.runningID = 0
	if c.stopTick != nil {
		close(c.stopTick)
		c.stopTick = nil
	}
}

// collectAlarmsLocked marks every newly expired player as alerted and returns them.
func (c *Controller) collectAlarmsLocked() []int {
	var ring []int
	for id, left := range c.times {
		if left <= 0 && !c.alerted[id] {
			c.alerted[id] = true
			ring = append(ring, id)
		}
	}
	return ring
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Times:     make(map[int]int, len(c.times)),
		RunningID: c.runningID,
		Running:   c.running,
		TimeUp:    make(map[int]bool),
	}
	for id, left := range c.times {
		snap.Times[id] = left
		if left <= 0 && c.alerted[id] {
			snap.TimeUp[id] = true
		}
	}
	return snap
}

func (c *Controller) afterChange(ring []int) {
	c.mu.Lock()
	matchID := c.matchID
	fn := c.onChange
	var snap Snapshot
	if fn != nil {
		snap = c.snapshotLocked()
	}
	c.mu.Unlock()

	for _, id := range ring {
		log.Warn().Int("match_id", matchID).Int("player_id", id).Msg("time is up")
		if c.alarm != nil {
			c.alarm.Ring(id)
		}
	}

	if fn != nil {
		fn(snap)
	}
}
