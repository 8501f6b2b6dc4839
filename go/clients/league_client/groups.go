package league_client

import (
	"context"
	"fmt"

	"github.com/mcdev12/rootleague/go/internal/models"
)

func (c *LeagueClient) ListGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := c.Get(ctx, GamesEndpoint, &games); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (c *LeagueClient) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := c.Get(ctx, c.path(GroupsEndpoint), &groups); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (c *LeagueClient) GetGroup(ctx context.Context, groupID int) (*models.Group, error) {
	var group models.Group
	if err := c.Get(ctx, c.path("%s/%d", GroupsEndpoint, groupID), &group); err != nil {
		return nil, fmt.Errorf("failed to get group %d: %w", groupID, err)
	}
	return &group, nil
}

func (c *LeagueClient) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	req := models.CreateGroupRequest{Name: name}
	if err := c.Post(ctx, c.path(GroupsEndpoint), req, &group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return &group, nil
}

func (c *LeagueClient) ListGroupLeagues(ctx context.Context, groupID int) ([]models.League, error) {
	var leagues []models.League
	if err := c.Get(ctx, c.path("%s/%d%s", GroupsEndpoint, groupID, LeaguesEndpoint), &leagues); err != nil {
		return nil, fmt.Errorf("failed to list leagues for group %d: %w", groupID, err)
	}
	return leagues, nil
}

func (c *LeagueClient) AddGroupMember(ctx context.Context, groupID, playerID int) error {
	if err := c.Post(ctx, c.path("%s/%d/members/%d", GroupsEndpoint, groupID, playerID), nil, nil); err != nil {
		return fmt.Errorf("failed to add player %d to group %d: %w", playerID, groupID, err)
	}
	return nil
}

func (c *LeagueClient) RemoveGroupMember(ctx context.Context, groupID, playerID int) error {
	if err := c.Delete(ctx, c.path("%s/%d/members/%d", GroupsEndpoint, groupID, playerID)); err != nil {
		return fmt.Errorf("failed to remove player %d from group %d: %w", playerID, groupID, err)
	}
	return nil
}

func (c *LeagueClient) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := c.Get(ctx, c.path(PlayersEndpoint), &players); err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (c *LeagueClient) CreatePlayer(ctx context.Context, name string) (*models.Player, error) {
	var player models.Player
	if err := c.Post(ctx, c.path(PlayersEndpoint), models.CreatePlayerRequest{Name: name}, &player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &player, nil
}

func (c *LeagueClient) GetStandings(ctx context.Context, leagueID int) ([]models.Standing, error) {
	var standings []models.Standing
	if err := c.Get(ctx, c.path("%s/%d%s", LeaguesEndpoint, leagueID, StandingsPath), &standings); err != nil {
		return nil, fmt.Errorf("failed to get standings for league %d: %w", leagueID, err)
	}
	return standings, nil
}

func (c *LeagueClient) ListLeagueMatches(ctx context.Context, leagueID int) ([]models.MatchState, error) {
	var matches []models.MatchState
	if err := c.Get(ctx, c.path("%s/%d%s", LeaguesEndpoint, leagueID, MatchesEndpoint), &matches); err != nil {
		return nil, fmt.Errorf("failed to list matches for league %d: %w", leagueID, err)
	}
	return matches, nil
}

func (c *LeagueClient) CreateMatch(ctx context.Context, leagueID int, req models.CreateMatchRequest) (*models.MatchState, error) {
	var match models.MatchState
	if err := c.Post(ctx, c.path("%s/%d%s", LeaguesEndpoint, leagueID, MatchesEndpoint), req, &match); err != nil {
		return nil, fmt.Errorf("failed to create match in league %d: %w", leagueID, err)
	}
	return &match, nil
}
