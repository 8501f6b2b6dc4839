package league_client

import (
	"context"
	"fmt"

	"github.com/mcdev12/rootleague/go/internal/models"
)

func (c *LeagueClient) ListActiveMatches(ctx context.Context) ([]models.ActiveMatch, error) {
	var matches []models.ActiveMatch
	if err := c.Get(ctx, c.path(ActiveMatchesEndpoint), &matches); err != nil {
		return nil, fmt.Errorf("failed to list active matches: %w", err)
	}
	return matches, nil
}

func (c *LeagueClient) GetMatch(ctx context.Context, matchID int) (*models.MatchState, error) {
	var match models.MatchState
	if err := c.Get(ctx, c.matchPath(matchID, ""), &match); err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", matchID, err)
	}
	return &match, nil
}

func (c *LeagueClient) DeleteMatch(ctx context.Context, matchID int) error {
	if err := c.Delete(ctx, c.matchPath(matchID, "")); err != nil {
		return fmt.Errorf("failed to delete match %d: %w", matchID, err)
	}
	return nil
}

func (c *LeagueClient) StartMatch(ctx context.Context, matchID int) error {
	if err := c.Post(ctx, c.matchPath(matchID, StartPath), nil, nil); err != nil {
		return fmt.Errorf("failed to start match %d: %w", matchID, err)
	}
	return nil
}

func (c *LeagueClient) FinishMatch(ctx context.Context, matchID int) error {
	if err := c.Post(ctx, c.matchPath(matchID, FinishPath), nil, nil); err != nil {
		return fmt.Errorf("failed to finish match %d: %w", matchID, err)
	}
	return nil
}

// AdjustTime moves a player's clock by deltaSeconds (negative to remove time).
func (c *LeagueClient) AdjustTime(ctx context.Context, matchID, playerID, deltaSeconds int) error {
	req := models.TimeDeltaRequest{DeltaSeconds: deltaSeconds}
	if err := c.Post(ctx, c.playerPath(matchID, playerID, PlayerTimePath), req, nil); err != nil {
		return fmt.Errorf("failed to adjust time for player %d: %w", playerID, err)
	}
	return nil
}

// SetTime overwrites a player's clock with an absolute value.
func (c *LeagueClient) SetTime(ctx context.Context, matchID, playerID, seconds int) error {
	req := models.SetTimeRequest{TimeLeftSeconds: seconds}
	if err := c.Post(ctx, c.playerPath(matchID, playerID, PlayerSetTimePath), req, nil); err != nil {
		return fmt.Errorf("failed to set time for player %d: %w", playerID, err)
	}
	return nil
}

func (c *LeagueClient) SetScore(ctx context.Context, matchID, playerID, score int) error {
	req := models.ScoreRequest{Score: score}
	if err := c.Post(ctx, c.playerPath(matchID, playerID, PlayerScorePath), req, nil); err != nil {
		return fmt.Errorf("failed to set score for player %d: %w", playerID, err)
	}
	return nil
}

func (c *LeagueClient) GetSummary(ctx context.Context, matchID int) (*models.MatchSummary, error) {
	var summary models.MatchSummary
	if err := c.Get(ctx, c.matchPath(matchID, SummaryPath), &summary); err != nil {
		return nil, fmt.Errorf("failed to get summary for match %d: %w", matchID, err)
	}
	return &summary, nil
}

func (c *LeagueClient) SetDescription(ctx context.Context, matchID int, description string) error {
	req := struct {
		Description string `json:"description"`
	}{Description: description}
	if err := c.Post(ctx, c.matchPath(matchID, DescriptionPath), req, nil); err != nil {
		return fmt.Errorf("failed to save description for match %d: %w", matchID, err)
	}
	return nil
}

func (c *LeagueClient) SetRanked(ctx context.Context, matchID int, ranked bool) error {
	req := struct {
		Ranked bool `json:"ranked"`
	}{Ranked: ranked}
	if err := c.Post(ctx, c.matchPath(matchID, RankedPath), req, nil); err != nil {
		return fmt.Errorf("failed to set ranked for match %d: %w", matchID, err)
	}
	return nil
}

func (c *LeagueClient) SetName(ctx context.Context, matchID int, name string) error {
	req := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := c.Post(ctx, c.matchPath(matchID, NamePath), req, nil); err != nil {
		return fmt.Errorf("failed to rename match %d: %w", matchID, err)
	}
	return nil
}

func (c *LeagueClient) BanLandmark(ctx context.Context, matchID int, landmark models.Landmark, drawCount int) error {
	req := models.LandmarkBanRequest{Landmark: landmark, DrawCount: drawCount}
	if err := c.Post(ctx, c.matchPath(matchID, LandmarksBanPath), req, nil); err != nil {
		return fmt.Errorf("failed to ban landmark for match %d: %w", matchID, err)
	}
	return nil
}

func (c *LeagueClient) SetLandmarksManual(ctx context.Context, matchID int, landmarks []models.Landmark) error {
	req := models.LandmarksManualRequest{Landmarks: landmarks}
	if err := c.Post(ctx, c.matchPath(matchID, LandmarksManPath), req, nil); err != nil {
		return fmt.Errorf("failed to set landmarks for match %d: %w", matchID, err)
	}
	return nil
}
