package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcdev12/rootleague/go/internal/flow"
	"github.com/mcdev12/rootleague/go/internal/models"
	"github.com/mcdev12/rootleague/go/internal/session"
)

func render(out io.Writer, snap session.Snapshot) {
	if snap.Error != "" {
		fmt.Fprintf(out, "! %s\n", snap.Error)
	}
	if snap.Match == nil {
		fmt.Fprintln(out, "(match not loaded)")
		return
	}
	m := snap.Match
	fmt.Fprintf(out, "== %s [%s] %s ==\n", matchTitle(m), m.Status, snap.View)

	switch snap.View {
	case flow.ViewDraft:
		renderDraft(out, snap)
	case flow.ViewRacePick:
		renderRacePick(out, snap)
	default:
		renderMatch(out, snap)
	}

	if snap.DraftFinished {
		fmt.Fprintln(out, "Draft finished. (dismiss)")
	}
	if snap.SetupModalOpen && snap.SetupHint < len(flow.SetupHints) {
		fmt.Fprintf(out, "Setup %d/%d: %s (next, prev, close)\n",
			snap.SetupHint+1, len(flow.SetupHints), flow.SetupHints[snap.SetupHint])
	}
}

func matchTitle(m *models.MatchState) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("Match %d", m.MatchID)
}

func renderDraft(out io.Writer, snap session.Snapshot) {
	d := snap.Draft
	if d == nil {
		return
	}
	fmt.Fprintf(out, "phase %s, bans %d/%d, races kept %d\n",
		d.Phase, len(snap.Staged.Bans), snap.Limits.MaxBans, snap.Limits.DrawCount)
	if d.Phase == models.DraftPhaseBan {
		fmt.Fprintf(out, "staged bans: %s\n", joinRaces(snap.Staged.Bans))
	} else {
		fmt.Fprintf(out, "banned: %s\n", joinRaces(d.BannedRaces))
		fmt.Fprintf(out, "pool: %s\n", joinRaces(d.Pool))
		fmt.Fprintf(out, "picks left %d, player %d to pick\n", snap.Limits.RemainingPicks, d.CurrentPlayerID)
	}
	for _, a := range d.Assignments {
		fmt.Fprintf(out, "  player %d: %s\n", a.PlayerID, raceName(a.Race))
	}
	if p := snap.Staged.PendingPick; p != nil && snap.Staged.ConfirmOpen {
		fmt.Fprintf(out, "Last pick: player %d takes %s. This ends the draft. (confirm, cancel)\n", p.PlayerID, p.Race)
	}
	renderLandmarks(out, snap)
}

func renderRacePick(out io.Writer, snap session.Snapshot) {
	fmt.Fprintln(out, "pick a race for every player (pick PLAYER RACE)")
	for _, p := range snap.Order {
		fmt.Fprintf(out, "  %d %-12s %s\n", p.PlayerID, p.PlayerName, raceName(p.Race))
	}
	renderLandmarks(out, snap)
}

func renderMatch(out io.Writer, snap session.Snapshot) {
	for _, p := range snap.Order {
		marker := " "
		if snap.Timers.Running && snap.Timers.RunningID == p.PlayerID {
			marker = ">"
		}
		left := clock(snap.Timers.Times[p.PlayerID])
		if snap.Timers.TimeUp[p.PlayerID] {
			left = "TIME UP"
		}
		fmt.Fprintf(out, "%s %d %-12s %-9s %7s  score %d\n", marker, p.PlayerID, p.PlayerName, raceName(p.Race), left, p.Score)
	}
	if len(snap.Match.LandmarksDrawn) > 0 {
		fmt.Fprintf(out, "landmarks: %s\n", joinLandmarks(snap.Match.LandmarksDrawn))
	}
}

func renderLandmarks(out io.Writer, snap session.Snapshot) {
	m := snap.Match
	if !m.LandmarksEnabled {
		return
	}
	if snap.Limits.LandmarksLocked {
		fmt.Fprintf(out, "landmarks: %s\n", joinLandmarks(m.LandmarksDrawn))
		return
	}
	ban := string(snap.Staged.LandmarkBan)
	if ban == "" {
		ban = "-"
	}
	fmt.Fprintf(out, "landmark ban %s, draw %d (landmark, draw, landmarks)\n", ban, snap.Staged.LandmarkDrawCount)
}

func joinRaces(races []models.Race) string {
	if len(races) == 0 {
		return "-"
	}
	parts := make([]string, len(races))
	for i, r := range races {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

func joinLandmarks(landmarks []models.Landmark) string {
	parts := make([]string, len(landmarks))
	for i, l := range landmarks {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}
