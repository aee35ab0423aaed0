package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"sherman/config"
	"sherman/experiments"
	"sherman/scenario"
)

func main() {
	configDir := pflag.String("config", ".", "directory holding sherman.cfg.yaml")
	compare := pflag.Bool("compare", false, "play every commander instead of the configured one")
	if err := config.BindFlags(pflag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	if err := config.Load(*configDir); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg, err := config.Get()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	def, err := scenario.Open(cfg.ScenarioPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load scenario")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiments.Config{
		Name:         "autoplay",
		Definition:   def,
		ScenarioName: def.Name,
		Commanders:   []string{cfg.Commander},
		Games:        cfg.Games,
		Seed:         cfg.Seed,
		MaxTurns:     cfg.MaxTurns,
		FiringArc:    cfg.FiringArc,
		OutputDir:    cfg.OutputDir,
	}
	run := experiments.Run
	if *compare {
		run = experiments.RunComparison
	}
	summary, err := run(ctx, exp)
	if err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
	log.Info().Msgf("%d games: %d victories, %d defeats, %d unfinished; records in %s",
		summary.Games, summary.Victories, summary.Defeats, summary.Unfinished, summary.Dir)
}
