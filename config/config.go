// Package config holds the runtime settings, read from sherman.cfg.yaml and the
// command line through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sherman/game"
	"sherman/meta"
)

const FileName = "sherman.cfg"

type Config struct {
	LogLevel zerolog.Level

	FiringArc game.ArcPolicy
	Seed      uint64

	ScenarioPath string

	Games     int
	OutputDir string
	Commander string

	MaxTurns int
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("rules.firingArc", "front")
	viper.SetDefault("rules.seed", meta.SEED)

	// empty means the built-in scenario
	viper.SetDefault("scenario.path", "")

	viper.SetDefault("experiments.games", meta.GAMES)
	viper.SetDefault("experiments.outputDir", "./results")
	viper.SetDefault("experiments.commander", "aggressive")

	viper.SetDefault("engine.maxTurns", meta.MAX_TURNS)
}

// Load sets the defaults and reads sherman.cfg.yaml from dir if there is one.
// A missing file is not an error.
func Load(dir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// BindFlags registers the command-line overrides on fs and binds them into viper.
func BindFlags(fs *pflag.FlagSet) error {
	fs.String("log-level", "info", "trace, debug, info, warn or error")
	fs.String("firing-arc", "front", "firing arc policy: front or all")
	fs.Uint64("seed", meta.SEED, "dice seed")
	fs.String("scenario", "", "scenario file (yaml or json); empty uses the built-in one")
	fs.Int("games", meta.GAMES, "number of games to play")
	fs.String("output", "./results", "directory for experiment records")
	fs.String("commander", "aggressive", "autopilot commander")
	fs.Int("max-turns", meta.MAX_TURNS, "turn cap per game")

	for key, flag := range map[string]string{
		"logLevel":              "log-level",
		"rules.firingArc":       "firing-arc",
		"rules.seed":            "seed",
		"scenario.path":         "scenario",
		"experiments.games":     "games",
		"experiments.outputDir": "output",
		"experiments.commander": "commander",
		"engine.maxTurns":       "max-turns",
	} {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind %s: %w", flag, err)
		}
	}
	return nil
}

// Get reads the current settings.
func Get() (Config, error) {
	arc, err := game.ParseArcPolicy(viper.GetString("rules.firingArc"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		LogLevel:     ParseLevel(viper.GetString("logLevel")),
		FiringArc:    arc,
		Seed:         viper.GetUint64("rules.seed"),
		ScenarioPath: viper.GetString("scenario.path"),
		Games:        viper.GetInt("experiments.games"),
		OutputDir:    viper.GetString("experiments.outputDir"),
		Commander:    viper.GetString("experiments.commander"),
		MaxTurns:     viper.GetInt("engine.maxTurns"),
	}
	if cfg.Games < 1 {
		return Config{}, fmt.Errorf("experiments.games must be positive, got %d", cfg.Games)
	}
	return cfg, nil
}

// ParseLevel maps a level name to zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}
