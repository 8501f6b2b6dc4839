package league_client

import (
	"fmt"

	"github.com/mcdev12/rootleague/go/clients"
)

// LeagueClient talks to the league backend for a single game.
type LeagueClient struct {
	*clients.BaseClient
	gameKey string
}

func NewLeagueClient(baseURL, gameKey string) *LeagueClient {
	if gameKey == "" {
		gameKey = DefaultGameKey
	}
	client := &LeagueClient{
		BaseClient: clients.NewBaseClient(baseURL),
		gameKey:    gameKey,
	}

	client.SetHeader(AcceptHeader, JSONMimeType)

	return client
}

// GameKey returns the game this client is scoped to.
func (c *LeagueClient) GameKey() string {
	return c.gameKey
}

func (c *LeagueClient) path(format string, args ...any) string {
	return clients.GameAPIPath(c.gameKey, fmt.Sprintf(format, args...))
}

func (c *LeagueClient) matchPath(matchID int, sub string) string {
	return c.path("%s/%d%s", MatchesEndpoint, matchID, sub)
}

func (c *LeagueClient) playerPath(matchID, playerID int, sub string) string {
	return c.path("%s/%d/players/%d%s", MatchesEndpoint, matchID, playerID, sub)
}
