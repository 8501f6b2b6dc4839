package session

import (
	"context"

	"github.com/mcdev12/rootleague/go/internal/flow"
	"github.com/mcdev12/rootleague/go/internal/models"
)

func (s *Session) StartMatch(ctx context.Context) error {
	return s.act(ctx, "start match", func(ctx context.Context) error {
		return s.client.StartMatch(ctx, s.matchID)
	})
}

// FinishMatch stops the running clock, which flushes its time, before finishing.
func (s *Session) FinishMatch(ctx context.Context) error {
	if id, running := s.timers.Running(); running {
		s.timers.StopRunning(ctx, id)
	}
	return s.act(ctx, "finish match", func(ctx context.Context) error {
		return s.client.FinishMatch(ctx, s.matchID)
	})
}

func (s *Session) SetScore(ctx context.Context, playerID, score int) error {
	return s.act(ctx, "set score", func(ctx context.Context) error {
		return s.client.SetScore(ctx, s.matchID, playerID, score)
	})
}

func (s *Session) SaveDescription(ctx context.Context, description string) error {
	return s.act(ctx, "save description", func(ctx context.Context) error {
		return s.client.SetDescription(ctx, s.matchID, description)
	})
}

func (s *Session) Rename(ctx context.Context, name string) error {
	return s.act(ctx, "rename match", func(ctx context.Context) error {
		return s.client.SetName(ctx, s.matchID, name)
	})
}

func (s *Session) SetRanked(ctx context.Context, ranked bool) error {
	return s.act(ctx, "set ranked", func(ctx context.Context) error {
		return s.client.SetRanked(ctx, s.matchID, ranked)
	})
}

// RefreshTimer resets a player's clock to the match's initial time. Unlike the other
// clock controls its failure is shown to the user.
func (s *Session) RefreshTimer(ctx context.Context, playerID int) error {
	err := s.timers.RefreshTimer(ctx, playerID)
	s.setErr(err)
	if err != nil {
		s.publish(ctx)
	}
	return err
}

// ToggleBan and the other staging calls only touch local state.
func (s *Session) ToggleBan(race models.Race) error {
	return s.stage(func() error { return s.projector.ToggleBan(race) })
}

func (s *Session) AddSecondVagabondBan() error {
	return s.stage(s.projector.AddSecondVagabondBan)
}

func (s *Session) SelectLandmarkBan(landmark models.Landmark) error {
	return s.stage(func() error { return s.projector.SelectLandmarkBan(landmark) })
}

func (s *Session) SetLandmarkDrawCount(count int) error {
	return s.stage(func() error { return s.projector.SetLandmarkDrawCount(count) })
}

func (s *Session) CancelPick() {
	_ = s.stage(func() error {
		s.projector.CancelPick()
		return nil
	})
}

func (s *Session) DismissDraftFinished() {
	_ = s.stage(func() error {
		s.projector.DismissFinishedNotice()
		return nil
	})
}

func (s *Session) stage(fn func() error) error {
	err := s.locked(fn)
	s.publish(context.Background())
	return err
}

func (s *Session) SubmitBans(ctx context.Context) error {
	return s.act(ctx, "submit bans", func(ctx context.Context) error {
		return s.locked(func() error { return s.projector.Submit(ctx) })
	})
}

func (s *Session) SubmitLandmarks(ctx context.Context) error {
	return s.act(ctx, "submit landmarks", func(ctx context.Context) error {
		return s.locked(func() error { return s.projector.SubmitLandmarks(ctx) })
	})
}

func (s *Session) SetLandmarksManual(ctx context.Context, landmarks []models.Landmark) error {
	return s.act(ctx, "set landmarks", func(ctx context.Context) error {
		return s.client.SetLandmarksManual(ctx, s.matchID, landmarks)
	})
}

// SelectRace picks during the draft. The last pick only opens the confirmation and
// needs ConfirmPick to be sent.
func (s *Session) SelectRace(ctx context.Context, playerID int, race models.Race) error {
	var submitted bool
	err := s.locked(func() error {
		var err error
		submitted, err = s.projector.SelectRace(ctx, playerID, race)
		return err
	})
	if err != nil {
		s.setErr(err)
		s.publish(ctx)
		return err
	}
	if !submitted {
		s.publish(ctx)
		return nil
	}
	return s.Load(ctx)
}

func (s *Session) ConfirmPick(ctx context.Context) error {
	return s.act(ctx, "confirm pick", func(ctx context.Context) error {
		return s.locked(func() error { return s.projector.ConfirmPick(ctx) })
	})
}

func (s *Session) ResetPick(ctx context.Context, playerID int) error {
	return s.act(ctx, "reset pick", func(ctx context.Context) error {
		return s.locked(func() error { return s.projector.ResetPick(ctx, playerID) })
	})
}

// PickRace records a manual race when the draft is disabled.
func (s *Session) PickRace(ctx context.Context, playerID int, race models.Race) error {
	return s.act(ctx, "pick race", func(ctx context.Context) error {
		return s.locked(func() error {
			snap := flow.NewSnapshot(s.match, s.draft, s.store)
			return s.sequencer.PickRace(ctx, snap, playerID, race)
		})
	})
}

func (s *Session) ResetRacePicks(ctx context.Context) error {
	return s.act(ctx, "reset race picks", func(ctx context.Context) error {
		return s.locked(func() error { return s.sequencer.ResetRacePicks(ctx) })
	})
}

func (s *Session) NextHint() {
	_ = s.stage(func() error {
		s.sequencer.NextHint()
		return nil
	})
}

func (s *Session) PrevHint() {
	_ = s.stage(func() error {
		s.sequencer.PrevHint()
		return nil
	})
}

func (s *Session) CloseSetupModal() {
	_ = s.stage(func() error {
		s.sequencer.CloseSetupModal()
		return nil
	})
}

// DraftLimits are the derived draft values for the current state.
type DraftLimits struct {
	DrawCount         int  `json:"drawCount"`
	MaxBans           int  `json:"maxBans"`
	MaxVagabondCopies int  `json:"maxVagabondCopies"`
	RemainingPicks    int  `json:"remainingPicks"`
	CanAddMoreBans    bool `json:"canAddMoreBans"`
	IsLastPick        bool `json:"isLastPick"`
	LandmarksLocked   bool `json:"landmarksLocked"`
}

func (s *Session) limitsLocked() DraftLimits {
	p := s.projector
	return DraftLimits{
		DrawCount:         p.DrawCount(),
		MaxBans:           p.MaxBans(),
		MaxVagabondCopies: p.MaxVagabondCopies(),
		RemainingPicks:    p.RemainingPicks(),
		CanAddMoreBans:    p.CanAddMoreBans(),
		IsLastPick:        p.IsLastPick(),
		LandmarksLocked:   p.LandmarksLocked(),
	}
}
