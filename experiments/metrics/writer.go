package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// RunConfig describes one batch of games.
type RunConfig struct {
	ID        int
	Commander string
	Seed      uint64
	Games     int
	MaxTurns  int
	FiringArc string
	Scenario  string
}

type GameRecord struct {
	ID  int
	Run int // RunConfig.ID
	GameMetric
}

type TurnRecord struct {
	Game int // GameRecord.ID
	TurnMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates <outputDir>/<name>/<timestamp> for the records of one
// experiment.
func NewWriter(outputDir, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(outputDir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

// write creates name in the base directory and streams header plus rows into it.
func (w *Writer) write(name string, header []string, rows func(write func([]string) error) error) error {
	f, err := os.Create(filepath.Join(w.baseDir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := rows(writer.Write); err != nil {
		return fmt.Errorf("failed to write %s row: %w", name, err)
	}
	writer.Flush()
	return writer.Error()
}

func (w *Writer) WriteRunConfigs(configs []RunConfig) error {
	header := []string{"id", "commander", "seed", "games", "max_turns", "firing_arc", "scenario"}
	return w.write("run_configs.csv", header, func(write func([]string) error) error {
		for _, c := range configs {
			err := write([]string{
				strconv.Itoa(c.ID),
				c.Commander,
				strconv.FormatUint(c.Seed, 10),
				strconv.Itoa(c.Games),
				strconv.Itoa(c.MaxTurns),
				c.FiringArc,
				c.Scenario,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{
		"id", "run", "commander", "seed", "winner", "start_time", "end_time", "duration",
		"turns", "steps", "rejected", "shots", "hits", "kills", "casualties", "material",
	}
	return w.write("game_records.csv", header, func(write func([]string) error) error {
		for _, r := range records {
			err := write([]string{
				strconv.Itoa(r.ID),
				strconv.Itoa(r.Run),
				r.Commander,
				strconv.FormatUint(r.Seed, 10),
				r.Winner,
				r.StartTime.Format(time.RFC3339),
				r.EndTime.Format(time.RFC3339),
				r.Duration.String(),
				strconv.Itoa(r.Turns),
				strconv.Itoa(r.Steps),
				strconv.Itoa(r.Rejected),
				strconv.Itoa(r.Shots),
				strconv.Itoa(r.Hits),
				strconv.Itoa(r.Kills),
				strconv.Itoa(r.Casualties),
				strconv.FormatFloat(r.Material, 'f', 3, 64),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Writer) WriteTurnRecords(records []TurnRecord) error {
	header := []string{
		"game", "turn", "shots", "hits", "penetrations", "enemy_shots", "enemy_hits",
		"kills", "casualties", "enemies_left", "material",
	}
	return w.write("turn_records.csv", header, func(write func([]string) error) error {
		for _, r := range records {
			err := write([]string{
				strconv.Itoa(r.Game),
				strconv.Itoa(r.Turn),
				strconv.Itoa(r.Shots),
				strconv.Itoa(r.Hits),
				strconv.Itoa(r.Penetrations),
				strconv.Itoa(r.EnemyShots),
				strconv.Itoa(r.EnemyHits),
				strconv.Itoa(r.Kills),
				strconv.Itoa(r.Casualties),
				strconv.Itoa(r.EnemiesLeft),
				strconv.FormatFloat(r.Material, 'f', 3, 64),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
