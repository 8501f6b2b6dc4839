package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rootleague/go/clients"
	"github.com/mcdev12/rootleague/go/internal/feed"
	"github.com/mcdev12/rootleague/go/internal/flow"
	"github.com/mcdev12/rootleague/go/internal/models"
	"github.com/mcdev12/rootleague/go/internal/session"
)

var errQuit = errors.New("quit")

// bellAlarm rings the terminal bell when a player runs out of time.
type bellAlarm struct {
	out io.Writer
}

func (b bellAlarm) Ring(playerID int) {
	fmt.Fprintf(b.out, "\a*** player %d is out of time ***\n", playerID)
}

func runPlay(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(a.out)
	matchID := fs.Int("match", 0, "match id")
	feedAddr := fs.String("feed", a.cfg.Feed.Addr, "serve the live feed on this address")
	natsURL := fs.String("nats", a.cfg.Feed.NATSURL, "also publish snapshots to this NATS server")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *matchID <= 0 {
		fmt.Fprintln(a.out, "play: -match is required")
		return errUsage
	}

	s := session.New(a.client, *matchID, session.Options{
		Store: openFlagStore(a.cfg),
		Alarm: bellAlarm{out: a.out},
	})
	defer s.Close()

	if *feedAddr != "" {
		shutdown := startFeed(ctx, s, *feedAddr)
		defer shutdown()
	}
	if *natsURL != "" {
		publisher, err := feed.NewNATSPublisher(feed.DefaultNATSConfig(*natsURL))
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, continuing without it")
		} else {
			s.AddPublisher(publisher)
			defer publisher.Close()
		}
	}

	log.Info().Int("match_id", *matchID).Str("session_id", s.ID()).Msg("session started")
	if err := s.Load(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %s\n", clients.ErrorMessage(err))
	}
	render(a.out, s.Snapshot())
	return playLoop(ctx, s, a.in, a.out)
}

func startFeed(ctx context.Context, s *session.Session, addr string) func() {
	cm := feed.NewConnectionManager(feed.DefaultConnectionConfig())
	feedCtx, cancel := context.WithCancel(ctx)
	go cm.Start(feedCtx)

	server := feed.NewServer(addr, feed.NewHandler(cm))
	go func() {
		log.Info().Str("addr", addr).Msg("live feed listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("live feed server failed")
		}
	}()
	s.AddPublisher(cm)

	return func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("live feed shutdown failed")
		}
		cancel()
	}
}

func playLoop(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := execute(ctx, s, out, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(out, "error: %s\n", clients.ErrorMessage(err))
			}
			render(out, s.Snapshot())
		}
	}
}

type playCommand struct {
	usage string
	args  int
	run   func(ctx context.Context, s *session.Session, args []string) error
}

func simple(fn func(s *session.Session)) func(context.Context, *session.Session, []string) error {
	return func(_ context.Context, s *session.Session, _ []string) error {
		fn(s)
		return nil
	}
}

// action adapts a session method expression such as (*session.Session).Load.
func action(fn func(s *session.Session, ctx context.Context) error) func(context.Context, *session.Session, []string) error {
	return func(ctx context.Context, s *session.Session, _ []string) error {
		return fn(s, ctx)
	}
}

func simpleErr(fn func(s *session.Session) error) func(context.Context, *session.Session, []string) error {
	return func(_ context.Context, s *session.Session, _ []string) error {
		return fn(s)
	}
}

func withPlayer(fn func(ctx context.Context, s *session.Session, playerID int) error) func(context.Context, *session.Session, []string) error {
	return func(ctx context.Context, s *session.Session, args []string) error {
		id, err := parseInt("player", args[0])
		if err != nil {
			return err
		}
		return fn(ctx, s, id)
	}
}

func timerControl(fn func(ctx context.Context, s *session.Session, playerID int)) func(context.Context, *session.Session, []string) error {
	return withPlayer(func(ctx context.Context, s *session.Session, id int) error {
		fn(ctx, s, id)
		return nil
	})
}

var playCommands = map[string]playCommand{
	"help":   {usage: "help", run: action(func(*session.Session, context.Context) error { return errHelp })},
	"quit":   {usage: "quit", run: action(func(*session.Session, context.Context) error { return errQuit })},
	"load":   {usage: "load", run: action((*session.Session).Load)},
	"start":  {usage: "start", run: action((*session.Session).StartMatch)},
	"finish": {usage: "finish", run: action((*session.Session).FinishMatch)},

	"run": {usage: "run PLAYER", args: 1, run: timerControl(func(ctx context.Context, s *session.Session, id int) {
		s.Timers().SetRunning(ctx, id)
	})},
	"stop": {usage: "stop", run: action(func(s *session.Session, ctx context.Context) error {
		if id, running := s.Timers().Running(); running {
			s.Timers().StopRunning(ctx, id)
		}
		return nil
	})},
	"+m": {usage: "+m PLAYER", args: 1, run: timerControl(func(ctx context.Context, s *session.Session, id int) {
		s.Timers().AddMinute(ctx, id)
	})},
	"-m": {usage: "-m PLAYER", args: 1, run: timerControl(func(ctx context.Context, s *session.Session, id int) {
		s.Timers().RemoveMinute(ctx, id)
	})},
	"+s": {usage: "+s PLAYER", args: 1, run: timerControl(func(ctx context.Context, s *session.Session, id int) {
		s.Timers().AddSecond(ctx, id)
	})},
	"-s": {usage: "-s PLAYER", args: 1, run: timerControl(func(ctx context.Context, s *session.Session, id int) {
		s.Timers().RemoveSecond(ctx, id)
	})},
	"refresh": {usage: "refresh PLAYER", args: 1, run: withPlayer(func(ctx context.Context, s *session.Session, id int) error {
		return s.RefreshTimer(ctx, id)
	})},

	"score": {usage: "score PLAYER POINTS", args: 2, run: func(ctx context.Context, s *session.Session, args []string) error {
		id, err := parseInt("player", args[0])
		if err != nil {
			return err
		}
		points, err := parseInt("score", args[1])
		if err != nil {
			return err
		}
		return s.SetScore(ctx, id, points)
	}},
	"desc": {usage: "desc TEXT...", args: 1, run: func(ctx context.Context, s *session.Session, args []string) error {
		return s.SaveDescription(ctx, strings.Join(args, " "))
	}},
	"name": {usage: "name TEXT...", args: 1, run: func(ctx context.Context, s *session.Session, args []string) error {
		return s.Rename(ctx, strings.Join(args, " "))
	}},
	"ranked": {usage: "ranked on|off", args: 1, run: func(ctx context.Context, s *session.Session, args []string) error {
		switch strings.ToLower(args[0]) {
		case "on", "yes", "true":
			return s.SetRanked(ctx, true)
		case "off", "no", "false":
			return s.SetRanked(ctx, false)
		}
		return fmt.Errorf("ranked takes on or off, got %q", args[0])
	}},

	"ban": {usage: "ban RACE", args: 1, run: func(_ context.Context, s *session.Session, args []string) error {
		return s.ToggleBan(parseRace(args[0]))
	}},
	"vagabond2": {usage: "vagabond2", run: simpleErr((*session.Session).AddSecondVagabondBan)},
	"submit": {usage: "submit", run: action((*session.Session).SubmitBans)},
	"pick": {usage: "pick PLAYER RACE", args: 2, run: func(ctx context.Context, s *session.Session, args []string) error {
		id, err := parseInt("player", args[0])
		if err != nil {
			return err
		}
		race := parseRace(args[1])
		if s.Snapshot().View == flow.ViewDraft {
			return s.SelectRace(ctx, id, race)
		}
		return s.PickRace(ctx, id, race)
	}},
	"confirm": {usage: "confirm", run: action((*session.Session).ConfirmPick)},
	"cancel":  {usage: "cancel", run: simple((*session.Session).CancelPick)},
	"reset": {usage: "reset PLAYER", args: 1, run: withPlayer(func(ctx context.Context, s *session.Session, id int) error {
		return s.ResetPick(ctx, id)
	})},
	"resetraces": {usage: "resetraces", run: action((*session.Session).ResetRacePicks)},
	"dismiss":    {usage: "dismiss", run: simple((*session.Session).DismissDraftFinished)},

	"landmark": {usage: "landmark LANDMARK", args: 1, run: func(_ context.Context, s *session.Session, args []string) error {
		return s.SelectLandmarkBan(parseLandmark(args[0]))
	}},
	"draw": {usage: "draw 1|2", args: 1, run: func(_ context.Context, s *session.Session, args []string) error {
		n, err := parseInt("draw count", args[0])
		if err != nil {
			return err
		}
		return s.SetLandmarkDrawCount(n)
	}},
	"landmarks": {usage: "landmarks", run: action((*session.Session).SubmitLandmarks)},
	"setlm": {usage: "setlm LANDMARK...", args: 1, run: func(ctx context.Context, s *session.Session, args []string) error {
		landmarks := make([]models.Landmark, 0, len(args))
		for _, arg := range args {
			l := parseLandmark(arg)
			if !models.ValidLandmark(l) {
				return fmt.Errorf("unknown landmark %q", arg)
			}
			landmarks = append(landmarks, l)
		}
		return s.SetLandmarksManual(ctx, landmarks)
	}},

	"next":  {usage: "next", run: simple((*session.Session).NextHint)},
	"prev":  {usage: "prev", run: simple((*session.Session).PrevHint)},
	"close": {usage: "close", run: simple((*session.Session).CloseSetupModal)},
}

var errHelp = errors.New("help")

// execute runs one line of input against the session.
func execute(ctx context.Context, s *session.Session, out io.Writer, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := playCommands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	args := fields[1:]
	if len(args) < cmd.args {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	err := cmd.run(ctx, s, args)
	if errors.Is(err, errHelp) {
		printPlayHelp(out)
		return nil
	}
	return err
}

func printPlayHelp(out io.Writer) {
	names := make([]string, 0, len(playCommands))
	for name := range playCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", playCommands[name].usage)
	}
}

func parseInt(what, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, value)
	}
	return n, nil
}

func parseRace(value string) models.Race {
	return models.Race(strings.ToUpper(value))
}

func parseLandmark(value string) models.Landmark {
	return models.Landmark(strings.ToUpper(strings.ReplaceAll(value, "-", "_")))
}
