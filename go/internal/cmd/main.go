package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rootleague/go/clients/league_client"
)

var errUsage = errors.New("usage")

// app is what every subcommand gets.
type app struct {
	cfg    *Config
	client *league_client.LeagueClient
	in     io.Reader
	out    io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"games":     {usage: "games", run: runGames},
	"standings": {usage: "standings -league ID", run: runStandings},
	"matches":   {usage: "matches -league ID", run: runMatches},
	"active":    {usage: "active", run: runActive},
	"summary":   {usage: "summary -match ID", run: runSummary},
	"play":      {usage: "play -match ID [-feed ADDR] [-nats URL]", run: runPlay},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("leaguectl failed")
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	global := flag.NewFlagSet("leaguectl", flag.ContinueOnError)
	global.SetOutput(out)
	configPath := global.String("config", getEnv("LEAGUECTL_CONFIG", defaultConfigPath), "path to the YAML config file")
	global.Usage = func() { printUsage(out, global) }
	if err := global.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	applyEnv(cfg)
	setLogLevel(cfg.LogLevel)

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(out, global)
		return errUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(out, "unknown command %q\n", rest[0])
		printUsage(out, global)
		return errUsage
	}

	log.Debug().Str("base_url", cfg.API.BaseURL).Str("game", cfg.API.GameKey).Str("command", rest[0]).Msg("running")
	return cmd.run(ctx, &app{cfg: cfg, client: newClient(cfg), in: in, out: out}, rest[1:])
}

func printUsage(out io.Writer, global *flag.FlagSet) {
	fmt.Fprintln(out, "usage: leaguectl [-config FILE] COMMAND [flags]")
	fmt.Fprintln(out, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(out, "\nglobal flags:")
	global.PrintDefaults()
}
