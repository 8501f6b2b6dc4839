package league_client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/rootleague/go/clients"
	"github.com/mcdev12/rootleague/go/internal/leaguetest"
	"github.com/mcdev12/rootleague/go/internal/models"
)

func newTestClient(t *testing.T) (*LeagueClient, *leaguetest.Server) {
	t.Helper()
	srv := leaguetest.New(t)
	return NewLeagueClient(srv.URL, ""), srv
}

func twoPlayerMatch(draft bool) models.MatchState {
	return models.MatchState{
		MatchID:             4,
		LeagueID:            2,
		Name:                "Week 3",
		TimerSecondsInitial: 1500,
		RaceDraftEnabled:    draft,
		Players: []models.MatchPlayerState{
			{PlayerID: 1, PlayerName: "Ana", TimeLeftSeconds: 1500},
			{PlayerID: 2, PlayerName: "Ben", TimeLeftSeconds: 1500},
		},
	}
}

func TestGameScopedPaths(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddMatch(twoPlayerMatch(false))
	ctx := context.Background()

	assert.Equal(t, DefaultGameKey, c.GameKey())

	_, err := c.GetMatch(ctx, 4)
	require.NoError(t, err)
	require.NoError(t, c.AdjustTime(ctx, 4, 2, -60))

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/games/ROOT/matches/4", reqs[0].Path)
	assert.Equal(t, "/api/games/ROOT/matches/4/players/2/time", reqs[1].Path)
	assert.JSONEq(t, `{"deltaSeconds":-60}`, reqs[1].Body)
}

func TestListings(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddMatch(twoPlayerMatch(false))
	srv.AddGroup(models.Group{ID: 1, Name: "Tuesday"})
	srv.AddPlayer(models.Player{ID: 1, Name: "Ana"})
	srv.SetStandings(2, []models.Standing{{PlayerID: 1, PlayerName: "Ana", Points: 9, Wins: 3, GamesPlayed: 4}})
	ctx := context.Background()

	games, err := c.ListGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Game{{Key: "ROOT", Name: "Root"}}, games)
	assert.Equal(t, "/api/games", srv.Requests()[0].Path)

	groups, err := c.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	players, err := c.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", players[0].Name)

	standings, err := c.GetStandings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, 9, standings[0].Points)

	matches, err := c.ListLeagueMatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Week 3", matches[0].Name)

	active, err := c.ListActiveMatches(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.MatchStatusSetup, active[0].Status)
}

func TestMatchLifecycle(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddMatch(twoPlayerMatch(false))
	ctx := context.Background()

	require.NoError(t, c.RacePick(ctx, 4, 1, models.RaceCats))
	require.NoError(t, c.RacePick(ctx, 4, 2, models.RaceBirds))
	require.NoError(t, c.StartMatch(ctx, 4))
	require.NoError(t, c.SetTime(ctx, 4, 1, 1200))
	require.NoError(t, c.SetScore(ctx, 4, 2, 30))
	require.NoError(t, c.SetDescription(ctx, 4, "close game"))
	require.NoError(t, c.SetRanked(ctx, 4, true))
	require.NoError(t, c.SetName(ctx, 4, "Week 3 final"))
	require.NoError(t, c.FinishMatch(ctx, 4))

	match, err := c.GetMatch(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, match.Status)
	assert.Equal(t, "close game", match.Description)
	assert.True(t, match.Ranked)
	assert.Equal(t, "Week 3 final", match.Name)
	assert.True(t, match.AllPlayersHaveRace())

	p1, _ := match.Player(1)
	p2, _ := match.Player(2)
	assert.Equal(t, 1200, p1.TimeLeftSeconds)
	assert.Equal(t, 30, p2.Score)

	summary, err := c.GetSummary(ctx, 4)
	require.NoError(t, err)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, 300, summary.Rows[0].TimeUsed)

	require.NoError(t, c.DeleteMatch(ctx, 4))
	_, err = c.GetMatch(ctx, 4)
	assert.Equal(t, "match not found", clients.ErrorMessage(err))
}

func TestDraftCalls(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddMatch(twoPlayerMatch(true))
	ctx := context.Background()

	require.NoError(t, c.SubmitBans(ctx, 4, nil))
	bans := srv.RequestsTo(http.MethodPost, "/draft/bans")
	require.Len(t, bans, 1)
	assert.JSONEq(t, `{"bans":[]}`, bans[0].Body)

	draft, err := c.GetDraft(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, models.DraftPhasePick, draft.Phase)
	assert.Equal(t, 1, draft.CurrentPlayerID)

	require.NoError(t, c.Pick(ctx, 4, 1, models.RaceMice))
	require.NoError(t, c.ResetPick(ctx, 4, 1))

	draft, err = c.GetDraft(ctx, 4)
	require.NoError(t, err)
	assert.True(t, draft.InPool(models.RaceMice))
}

func TestServerErrorsKeepMessage(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddMatch(twoPlayerMatch(true))
	ctx := context.Background()

	err := c.Pick(ctx, 4, 1, models.RaceCats)
	require.Error(t, err)
	assert.Equal(t, "draft is not in the pick phase", clients.ErrorMessage(err))
	assert.Contains(t, err.Error(), "failed to pick CATS for player 1")

	srv.Fail(http.MethodPost, "/api/games/ROOT/matches/4/start", http.StatusServiceUnavailable, "")
	err = c.StartMatch(ctx, 4)
	assert.Equal(t, "503 Service Unavailable", clients.ErrorMessage(err))
}

func TestLandmarks(t *testing.T) {
	c, srv := newTestClient(t)
	m := twoPlayerMatch(false)
	m.LandmarksEnabled = true
	srv.AddMatch(m)
	ctx := context.Background()

	require.NoError(t, c.BanLandmark(ctx, 4, models.LandmarkTower, 2))
	match, err := c.GetMatch(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []models.Landmark{models.LandmarkFerry, models.LandmarkLostCity}, match.LandmarksDrawn)

	require.NoError(t, c.SetLandmarksManual(ctx, 4, []models.Landmark{models.LandmarkBlackMarket}))
	assert.Equal(t, []models.Landmark{models.LandmarkBlackMarket}, srv.Match(4).LandmarksDrawn)
}
