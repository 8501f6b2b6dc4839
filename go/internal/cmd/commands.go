package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mcdev12/rootleague/go/internal/models"
)

// requiredID parses a single -name ID flag for a subcommand.
func requiredID(a *app, cmd, name string, args []string) (int, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.Int(name, 0, name+" id")
	if err := fs.Parse(args); err != nil {
		return 0, errUsage
	}
	if *id <= 0 {
		fmt.Fprintf(a.out, "%s: -%s is required\n", cmd, name)
		return 0, errUsage
	}
	return *id, nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func runGames(ctx context.Context, a *app, _ []string) error {
	games, err := a.client.ListGames(ctx)
	if err != nil {
		return err
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "KEY\tNAME")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\n", g.Key, g.Name)
	}
	return tw.Flush()
}

func runStandings(ctx context.Context, a *app, args []string) error {
	leagueID, err := requiredID(a, "standings", "league", args)
	if err != nil {
		return err
	}
	rows, err := a.client.GetStandings(ctx, leagueID)
	if err != nil {
		return err
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "#\tPLAYER\tPOINTS\tWINS\tPLAYED")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", i+1, r.PlayerName, r.Points, r.Wins, r.GamesPlayed)
	}
	return tw.Flush()
}

func runMatches(ctx context.Context, a *app, args []string) error {
	leagueID, err := requiredID(a, "matches", "league", args)
	if err != nil {
		return err
	}
	matches, err := a.client.ListLeagueMatches(ctx, leagueID)
	if err != nil {
		return err
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPLAYERS\tDRAFT")
	for _, m := range matches {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", m.MatchID, m.Name, m.Status, len(m.Players), yesNo(m.RaceDraftEnabled))
	}
	return tw.Flush()
}

func runActive(ctx context.Context, a *app, _ []string) error {
	matches, err := a.client.ListActiveMatches(ctx)
	if err != nil {
		return err
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tLEAGUE\tNAME\tSTATUS")
	for _, m := range matches {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", m.MatchID, m.LeagueID, m.Name, m.Status)
	}
	return tw.Flush()
}

func runSummary(ctx context.Context, a *app, args []string) error {
	matchID, err := requiredID(a, "summary", "match", args)
	if err != nil {
		return err
	}
	summary, err := a.client.GetSummary(ctx, matchID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (ranked: %s)\n", summary.Name, yesNo(summary.Ranked))
	if summary.Description != "" {
		fmt.Fprintln(a.out, summary.Description)
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "PLACE\tPLAYER\tRACE\tSCORE\tTIME USED\tPOINTS")
	for _, r := range summary.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%d\n",
			r.Place, r.PlayerName, raceName(r.Race), r.Score, clock(r.TimeUsed), r.Points)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func raceName(r *models.Race) string {
	if r == nil || *r == "" {
		return "-"
	}
	return string(*r)
}

// clock formats seconds as m:ss.
func clock(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign, seconds = "-", -seconds
	}
	return fmt.Sprintf("%s%d:%02d", sign, seconds/60, seconds%60)
}
