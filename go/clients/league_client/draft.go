package league_client

import (
	"context"
	"fmt"

	"github.com/mcdev12/rootleague/go/internal/models"
)

func (c *LeagueClient) GetDraft(ctx context.Context, matchID int) (*models.DraftState, error) {
	var draft models.DraftState
	if err := c.Get(ctx, c.matchPath(matchID, DraftPath), &draft); err != nil {
		return nil, fmt.Errorf("failed to get draft for match %d: %w", matchID, err)
	}
	return &draft, nil
}

func (c *LeagueClient) SubmitBans(ctx context.Context, matchID int, bans []models.Race) error {
	if bans == nil {
		bans = []models.Race{}
	}
	req := models.SubmitBansRequest{Bans: bans}
	if err := c.Post(ctx, c.matchPath(matchID, DraftBansPath), req, nil); err != nil {
		return fmt.Errorf("failed to submit bans for match %d: %w", matchID, err)
	}
	return nil
}

func (c *LeagueClient) Pick(ctx context.Context, matchID, playerID int, race models.Race) error {
	req := models.PickRequest{PlayerID: playerID, Race: race}
	if err := c.Post(ctx, c.matchPath(matchID, DraftPickPath), req, nil); err != nil {
		return fmt.Errorf("failed to pick %s for player %d: %w", race, playerID, err)
	}
	return nil
}

func (c *LeagueClient) ResetPick(ctx context.Context, matchID, playerID int) error {
	req := models.ResetPickRequest{PlayerID: playerID}
	if err := c.Post(ctx, c.matchPath(matchID, DraftResetPickPath), req, nil); err != nil {
		return fmt.Errorf("failed to reset pick for player %d: %w", playerID, err)
	}
	return nil
}

// RacePick records a manual race choice when the draft is disabled.
func (c *LeagueClient) RacePick(ctx context.Context, matchID, playerID int, race models.Race) error {
	req := models.PickRequest{PlayerID: playerID, Race: race}
	if err := c.Post(ctx, c.matchPath(matchID, RacePickPath), req, nil); err != nil {
		return fmt.Errorf("failed to record race %s for player %d: %w", race, playerID, err)
	}
	return nil
}

func (c *LeagueClient) ResetRacePicks(ctx context.Context, matchID int) error {
	if err := c.Post(ctx, c.matchPath(matchID, RacePickResetPath), nil, nil); err != nil {
		return fmt.Errorf("failed to reset race picks for match %d: %w", matchID, err)
	}
	return nil
}
