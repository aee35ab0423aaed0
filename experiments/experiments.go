// Package experiments plays batches of autopilot games and stores the results
// as CSV records.
package experiments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"sherman/dice"
	"sherman/engine"
	"sherman/experiments/metrics"
	"sherman/game"
	"sherman/player"
	"sherman/scenario"
)

// Config is everything needed to replay an experiment.
type Config struct {
	Name         string
	Definition   game.Definition
	ScenarioName string
	Commanders   []string
	Games        int
	Seed         uint64
	MaxTurns     int
	FiringArc    game.ArcPolicy
	OutputDir    string
	// Collector defaults to one backed by the global otel meter.
	Collector metrics.Collector
}

// Summary counts outcomes over every game of an experiment.
type Summary struct {
	Games      int
	Victories  int
	Defeats    int
	Unfinished int
	Dir        string
}

// Run plays cfg.Games games per commander. Game i of every commander uses seed
// cfg.Seed+i, so commanders face the same spawns and the same first rolls.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	var summary Summary
	collector := cfg.Collector
	if collector == nil {
		var err error
		if collector, err = metrics.NewCollector(nil); err != nil {
			return summary, err
		}
	}

	count := 0
	configs := []metrics.RunConfig{}
	gameRecords := []metrics.GameRecord{}
	turnRecords := []metrics.TurnRecord{}

	log.Info().Msgf("starting %s experiment...", cfg.Name)

	for ci, name := range cfg.Commanders {
		configs = append(configs, metrics.RunConfig{
			ID:        ci + 1,
			Commander: name,
			Seed:      cfg.Seed,
			Games:     cfg.Games,
			MaxTurns:  cfg.MaxTurns,
			FiringArc: cfg.FiringArc.String(),
			Scenario:  cfg.ScenarioName,
		})
		log.Info().Msgf("starting run %d of %d with commander=%s...", ci+1, len(cfg.Commanders), name)

		for i := 0; i < cfg.Games; i++ {
			seed := cfg.Seed + uint64(i)
			gameMetric, turnMetrics, err := runGame(ctx, cfg, name, seed, collector)
			if err != nil {
				return summary, fmt.Errorf("%s game %d: %w", name, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{ID: count, Run: ci + 1, GameMetric: gameMetric})
			for _, tm := range turnMetrics {
				turnRecords = append(turnRecords, metrics.TurnRecord{Game: count, TurnMetric: tm})
			}

			summary.Games++
			switch gameMetric.Winner {
			case string(game.Player):
				summary.Victories++
			case string(game.Enemy):
				summary.Defeats++
			default:
				summary.Unfinished++
			}
			log.Info().Msgf("completed run %d game %d of %d with winner: %s after %d turns",
				ci+1, i+1, cfg.Games, winnerName(gameMetric.Winner), gameMetric.Turns)
		}
	}

	log.Info().Msgf("completed %s experiment: %d victories, %d defeats, %d unfinished",
		cfg.Name, summary.Victories, summary.Defeats, summary.Unfinished)

	dir, err := store(cfg, configs, gameRecords, turnRecords)
	summary.Dir = dir
	return summary, err
}

func runGame(ctx context.Context, cfg Config, commander string, seed uint64, collector metrics.Collector) (metrics.GameMetric, []metrics.TurnMetric, error) {
	c, err := player.New(commander, seed)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	rules := &game.StandardRules{Arc: cfg.FiringArc}
	state, err := scenario.New(cfg.Definition, rules, dice.NewRandom(seed))
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}

	collector.Start(ctx, c.Name(), seed)
	e := engine.New(state, engine.WithMaxTurns(cfg.MaxTurns), engine.WithObserver(collector.Observe))
	res, err := e.Run(ctx, c)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	gameMetric, turnMetrics := collector.Complete(res)
	return gameMetric, turnMetrics, nil
}

func store(cfg Config, configs []metrics.RunConfig, games []metrics.GameRecord, turns []metrics.TurnRecord) (string, error) {
	writer, err := metrics.NewWriter(cfg.OutputDir, cfg.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteRunConfigs(configs); err != nil {
		return writer.Dir(), fmt.Errorf("failed to store run configs: %w", err)
	}
	log.Info().Msg("stored run configs")

	if err := writer.WriteGameRecords(games); err != nil {
		return writer.Dir(), fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteTurnRecords(turns); err != nil {
		return writer.Dir(), fmt.Errorf("failed to write turn records: %w", err)
	}
	log.Info().Msgf("stored turn records in %s", writer.Dir())
	return writer.Dir(), nil
}

func winnerName(w string) string {
	if w == "" {
		return "none"
	}
	return w
}
