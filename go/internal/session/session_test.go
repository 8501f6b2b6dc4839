package session

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/rootleague/go/clients/league_client"
	"github.com/mcdev12/rootleague/go/internal/flagstore"
	"github.com/mcdev12/rootleague/go/internal/flow"
	"github.com/mcdev12/rootleague/go/internal/leaguetest"
	"github.com/mcdev12/rootleague/go/internal/models"
)

type alarmLog struct {
	mu    sync.Mutex
	rings []int
}

func (a *alarmLog) Ring(playerID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rings = append(a.rings, playerID)
}

func (a *alarmLog) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.rings)
}

type recordingPublisher struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (p *recordingPublisher) Publish(_ context.Context, snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snap)
	return nil
}

func (p *recordingPublisher) last() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snaps[len(p.snaps)-1]
}

type fixture struct {
	srv     *leaguetest.Server
	client  *league_client.LeagueClient
	store   *flagstore.MemoryStore
	alarm   *alarmLog
	session *Session
}

func newFixture(t *testing.T, match models.MatchState) *fixture {
	t.Helper()
	srv := leaguetest.New(t)
	srv.AddMatch(match)
	f := &fixture{
		srv:    srv,
		client: league_client.NewLeagueClient(srv.URL, "root"),
		store:  flagstore.NewMemoryStore(),
		alarm:  &alarmLog{},
	}
	f.session = New(f.client, match.MatchID, Options{
		Store: f.store,
		Alarm: f.alarm,
		Clock: clockwork.NewFakeClock(),
	})
	t.Cleanup(f.session.Close)
	return f
}

func players(times ...int) []models.MatchPlayerState {
	out := make([]models.MatchPlayerState, 0, len(times))
	for i, secs := range times {
		out = append(out, models.MatchPlayerState{
			PlayerID:        i + 1,
			PlayerName:      string(rune('A' + i)),
			TimeLeftSeconds: secs,
		})
	}
	return out
}

func TestLoad_TimeUpAlarmFiresOnce(t *testing.T) {
	cats, birds := models.RaceCats, models.RaceBirds
	ps := players(0, 900)
	ps[0].Race, ps[1].Race = &cats, &birds
	f := newFixture(t, models.MatchState{
		MatchID: 7, Status: models.MatchStatusInProgress, TimerSecondsInitial: 900, Players: ps,
	})
	ctx := context.Background()

	require.NoError(t, f.session.Load(ctx))
	require.NoError(t, f.session.Load(ctx))

	assert.Equal(t, 1, f.alarm.count())
	snap := f.session.Snapshot()
	assert.True(t, snap.Timers.TimeUp[1])
	assert.False(t, snap.Timers.TimeUp[2])
	assert.Equal(t, flow.ViewMatch, snap.View)
}

func TestLoad_ManualPicksAutoStartAndReload(t *testing.T) {
	f := newFixture(t, models.MatchState{MatchID: 7, TimerSecondsInitial: 900, Players: players(900, 900)})
	ctx := context.Background()

	require.NoError(t, f.session.Load(ctx))
	assert.Equal(t, flow.ViewRacePick, f.session.Snapshot().View)

	require.NoError(t, f.session.PickRace(ctx, 2, models.RaceLizards))
	assert.Empty(t, f.srv.RequestsTo(http.MethodPost, "/start"))

	require.NoError(t, f.session.PickRace(ctx, 1, models.RaceCrows))
	assert.Len(t, f.srv.RequestsTo(http.MethodPost, "/start"), 1)
	assert.Equal(t, models.MatchStatusInProgress, f.srv.Match(7).Status)

	snap := f.session.Snapshot()
	assert.Equal(t, flow.ViewMatch, snap.View)
	assert.Equal(t, models.MatchStatusInProgress, snap.Match.Status)
	assert.True(t, snap.SetupModalOpen)
	assert.Equal(t, 0, snap.SetupHint)
	// manual order reversed: last to pick shows first
	require.Len(t, snap.Order, 2)
	assert.Equal(t, 1, snap.Order[0].PlayerID)

	require.NoError(t, f.session.Load(ctx))
	assert.Len(t, f.srv.RequestsTo(http.MethodPost, "/start"), 1)
}

func TestDraftToMatch(t *testing.T) {
	f := newFixture(t, models.MatchState{
		MatchID: 7, TimerSecondsInitial: 900, RaceDraftEnabled: true, Players: players(900, 900),
	})
	ctx := context.Background()

	require.NoError(t, f.session.Load(ctx))
	snap := f.session.Snapshot()
	assert.Equal(t, flow.ViewDraft, snap.View)
	assert.Equal(t, 7, snap.Limits.MaxBans)

	require.NoError(t, f.session.ToggleBan(models.RaceCats))
	require.NoError(t, f.session.SubmitBans(ctx))
	assert.Equal(t, models.DraftPhasePick, f.session.Snapshot().Draft.Phase)

	require.NoError(t, f.session.SelectRace(ctx, 1, models.RaceMice))
	require.NoError(t, f.session.SelectRace(ctx, 2, models.RaceOtters))
	assert.Len(t, f.srv.RequestsTo(http.MethodPost, "/draft/pick"), 1)

	snap = f.session.Snapshot()
	assert.True(t, snap.Staged.ConfirmOpen)
	assert.True(t, snap.Limits.IsLastPick)

	require.NoError(t, f.session.ConfirmPick(ctx))
	snap = f.session.Snapshot()
	assert.Equal(t, models.DraftStatusFinished, snap.Draft.Status)
	assert.True(t, snap.DraftFinished)
	assert.True(t, snap.SetupModalOpen)
	assert.Equal(t, flow.ViewMatch, snap.View)
	// draft order reversed
	assert.Equal(t, []int{2, 1}, []int{snap.Order[0].PlayerID, snap.Order[1].PlayerID})

	f.session.DismissDraftFinished()
	f.session.CloseSetupModal()
	require.NoError(t, f.session.Load(ctx))
	snap = f.session.Snapshot()
	assert.False(t, snap.DraftFinished)
	assert.False(t, snap.SetupModalOpen)
}

func TestActionErrorsAreVisibleUntilNextSuccess(t *testing.T) {
	f := newFixture(t, models.MatchState{MatchID: 7, TimerSecondsInitial: 900, Players: players(900)})
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	f.srv.Fail(http.MethodPost, "/api/games/ROOT/matches/7/start", http.StatusConflict, "players must pick races")
	require.Error(t, f.session.StartMatch(ctx))
	assert.Equal(t, "players must pick races", f.session.Err())
	assert.Equal(t, "players must pick races", f.session.Snapshot().Error)

	f.srv.ClearFailures()
	require.NoError(t, f.session.StartMatch(ctx))
	assert.Empty(t, f.session.Err())
}

func TestRefreshTimerFailureIsVisible(t *testing.T) {
	f := newFixture(t, models.MatchState{
		MatchID: 7, Status: models.MatchStatusInProgress, TimerSecondsInitial: 900, Players: players(100),
	})
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	f.srv.Fail(http.MethodPost, "/api/games/ROOT/matches/7/players/1/set-time", http.StatusInternalServerError, "")
	require.Error(t, f.session.RefreshTimer(ctx, 1))
	assert.Equal(t, "500 Internal Server Error", f.session.Err())
	assert.Equal(t, 900, f.session.Timers().Remaining(1))
}

func TestBackgroundTimerFailuresStaySilent(t *testing.T) {
	f := newFixture(t, models.MatchState{
		MatchID: 7, Status: models.MatchStatusInProgress, TimerSecondsInitial: 900, Players: players(100),
	})
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	f.srv.Fail(http.MethodPost, "/api/games/ROOT/matches/7/players/1/time", http.StatusInternalServerError, "down")
	f.session.Timers().AddMinute(ctx, 1)
	f.session.Timers().Wait()

	assert.Equal(t, 160, f.session.Timers().Remaining(1))
	assert.Empty(t, f.session.Err())
}

func TestFinishMatchFlushesRunningClock(t *testing.T) {
	f := newFixture(t, models.MatchState{
		MatchID: 7, Status: models.MatchStatusInProgress, TimerSecondsInitial: 900, Players: players(300, 300),
	})
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	f.session.Timers().SetRunning(ctx, 2)
	require.NoError(t, f.session.FinishMatch(ctx))

	_, running := f.session.Timers().Running()
	assert.False(t, running)
	assert.Len(t, f.srv.RequestsTo(http.MethodPost, "/players/2/set-time"), 1)
	assert.Equal(t, models.MatchStatusFinished, f.session.Snapshot().Match.Status)
}

func TestScoreAndDetails(t *testing.T) {
	f := newFixture(t, models.MatchState{
		MatchID: 7, Status: models.MatchStatusInProgress, TimerSecondsInitial: 900, Players: players(300),
	})
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	require.NoError(t, f.session.SetScore(ctx, 1, 12))
	require.NoError(t, f.session.SaveDescription(ctx, "river folk won"))
	require.NoError(t, f.session.Rename(ctx, "Final"))
	require.NoError(t, f.session.SetRanked(ctx, true))

	m := f.session.Snapshot().Match
	assert.Equal(t, 12, m.Players[0].Score)
	assert.Equal(t, "river folk won", m.Description)
	assert.Equal(t, "Final", m.Name)
	assert.True(t, m.Ranked)
}

func TestLandmarksGateAutoStart(t *testing.T) {
	f := newFixture(t, models.MatchState{
		MatchID: 7, TimerSecondsInitial: 900, LandmarksEnabled: true, Players: players(900),
	})
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	require.NoError(t, f.session.PickRace(ctx, 1, models.RaceBadgers))
	assert.Empty(t, f.srv.RequestsTo(http.MethodPost, "/start"))

	require.NoError(t, f.session.SelectLandmarkBan(models.LandmarkTower))
	require.NoError(t, f.session.SubmitLandmarks(ctx))
	assert.Empty(t, f.session.Err())
	assert.Empty(t, f.srv.RequestsTo(http.MethodGet, "/draft"))
	assert.Len(t, f.srv.RequestsTo(http.MethodPost, "/start"), 1)
	assert.True(t, f.session.Snapshot().Limits.LandmarksLocked)
}

func TestManualLandmarksAutoStartOnce(t *testing.T) {
	f := newFixture(t, models.MatchState{
		MatchID: 7, TimerSecondsInitial: 900, LandmarksEnabled: true, Players: players(900, 900),
	})
	ctx := context.Background()
	require.NoError(t, f.session.Load(ctx))

	require.NoError(t, f.session.PickRace(ctx, 1, models.RaceCats))
	require.NoError(t, f.session.PickRace(ctx, 2, models.RaceBirds))
	assert.Empty(t, f.srv.RequestsTo(http.MethodPost, "/start"))

	require.NoError(t, f.session.SetLandmarksManual(ctx, []models.Landmark{models.LandmarkFerry, models.LandmarkTower}))
	require.NoError(t, f.session.Load(ctx))
	require.NoError(t, f.session.Load(ctx))

	assert.Len(t, f.srv.RequestsTo(http.MethodPost, "/start"), 1)
	assert.Equal(t, models.MatchStatusInProgress, f.srv.Match(7).Status)
	assert.True(t, f.store.Flag(7, flagstore.KindAutoStarted))

	snap := f.session.Snapshot()
	assert.Equal(t, flow.ViewMatch, snap.View)
	assert.Empty(t, snap.Error)
}

func TestPublishersSeeEveryLoad(t *testing.T) {
	f := newFixture(t, models.MatchState{
		MatchID: 7, Status: models.MatchStatusInProgress, TimerSecondsInitial: 900, Players: players(300),
	})
	pub := &recordingPublisher{}
	f.session.AddPublisher(pub)
	ctx := context.Background()

	require.NoError(t, f.session.Load(ctx))
	last := pub.last()
	assert.Equal(t, f.session.ID(), last.SessionID)
	assert.Equal(t, 300, last.Timers.Times[1])

	f.session.Timers().RemoveSecond(ctx, 1)
	assert.Equal(t, 299, pub.last().Timers.Times[1])
}

type blockingClient struct {
	*league_client.LeagueClient
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (c *blockingClient) GetMatch(ctx context.Context, matchID int) (*models.MatchState, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	c.entered <- struct{}{}
	<-c.release
	return c.LeagueClient.GetMatch(ctx, matchID)
}

func TestLoad_ConcurrentCallIsNoop(t *testing.T) {
	srv := leaguetest.New(t)
	srv.AddMatch(models.MatchState{MatchID: 7, Status: models.MatchStatusInProgress, Players: players(60)})
	client := &blockingClient{
		LeagueClient: league_client.NewLeagueClient(srv.URL, "root"),
		entered:      make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
	s := New(client, 7, Options{Clock: clockwork.NewFakeClock()})
	t.Cleanup(s.Close)

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	select {
	case <-client.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first load never reached the client")
	}

	require.NoError(t, s.Load(context.Background()))
	close(client.release)
	require.NoError(t, <-done)

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Equal(t, 1, client.calls)
}
