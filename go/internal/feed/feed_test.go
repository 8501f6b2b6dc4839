package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/rootleague/go/internal/flow"
	"github.com/mcdev12/rootleague/go/internal/session"
)

func startFeed(t *testing.T) (*ConnectionManager, *httptest.Server) {
	t.Helper()
	cm := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go cm.Start(ctx)

	srv := httptest.NewServer(NewHandler(cm).Routes())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return cm, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/match?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestFeed_BroadcastsToMatchWatchers(t *testing.T) {
	cm, srv := startFeed(t)
	conn := dial(t, srv, "match_id=7")
	other := dial(t, srv, "match_id=8")

	welcome := readEvent(t, conn)
	assert.Equal(t, EventWelcome, welcome.Type)
	assert.NotEmpty(t, welcome.ConnectionID)
	_ = readEvent(t, other)

	require.Eventually(t, func() bool {
		return cm.Stats().TotalConnections == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, cm.Publish(context.Background(), session.Snapshot{MatchID: 7, View: flow.ViewDraft}))

	ev := readEvent(t, conn)
	assert.Equal(t, EventMatchState, ev.Type)
	assert.Equal(t, 7, ev.MatchID)
	require.NotNil(t, ev.State)
	assert.Equal(t, flow.ViewDraft, ev.State.View)

	// the other match sees nothing
	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestFeed_LateJoinerGetsLatestState(t *testing.T) {
	cm, srv := startFeed(t)
	require.NoError(t, cm.Publish(context.Background(), session.Snapshot{MatchID: 3, View: flow.ViewMatch, Error: "offline"}))

	conn := dial(t, srv, "match_id=3")
	assert.Equal(t, EventWelcome, readEvent(t, conn).Type)

	ev := readEvent(t, conn)
	assert.Equal(t, EventMatchState, ev.Type)
	assert.Equal(t, "offline", ev.State.Error)
}

func TestFeed_RejectsMissingMatchID(t *testing.T) {
	_, srv := startFeed(t)
	resp, err := http.Get(srv.URL + "/ws/match")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeed_StateEndpoint(t *testing.T) {
	cm, srv := startFeed(t)

	resp, err := http.Get(srv.URL + "/api/matches/5/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, cm.Publish(context.Background(), session.Snapshot{MatchID: 5, SessionID: "abc"}))

	resp, err = http.Get(srv.URL + "/api/matches/5/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap session.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "abc", snap.SessionID)
}

func TestFeed_HealthAndCORS(t *testing.T) {
	_, srv := startFeed(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://overlay.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestFeed_ConnectionsUnregisterOnClose(t *testing.T) {
	cm, srv := startFeed(t)
	conn := dial(t, srv, "match_id=9")
	_ = readEvent(t, conn)

	require.Eventually(t, func() bool { return cm.Stats().ActiveMatches == 1 }, 2*time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return cm.Stats().ActiveMatches == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "league.matches.12.state", Subject(DefaultSubjectPrefix, 12))
}
