package metrics

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"sherman/dice"
	"sherman/engine"
	"sherman/game"
	"sherman/hex"
)

func duel(roller dice.Roller) *game.GameState {
	var cells []hex.Cell
	for q := -3; q <= 3; q++ {
		for r := -3; r <= 3; r++ {
			cells = append(cells, hex.Cell{Coord: hex.Coord{Q: q, R: r}, Terrain: hex.Open})
		}
	}
	s := &game.Scenario{
		Name:  "duel",
		Board: hex.NewBoard(cells),
		Vehicles: []*game.Vehicle{
			{ID: "sherman", Faction: game.Player, Size: 1, ArmorPen: 2, MainGun: game.Loaded,
				Armor: game.Armor{Front: 6, FrontSide: 5, RearSide: 4, Rear: 3}, Crew: game.FullCrew()},
			{ID: "tiger", Faction: game.Enemy, Hex: hex.Coord{Q: 0, R: 2}, Facing: hex.South, Size: 2,
				ArmorPen: 3, Armor: game.Armor{Front: 5, FrontSide: 4, RearSide: 3, Rear: 2}, Crew: game.FullCrew()},
		},
	}
	return game.NewGameState(s, game.NewStandardRules(), roller)
}

func TestCollector(t *testing.T) {
	c, err := NewCollector(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	c.Start(context.Background(), "scripted", 9)

	roller := dice.NewSequence(
		2, 3, 4,
		5, 1, 1, 3,
		6, 6, 6, 5,
	)
	e := engine.New(duel(roller), engine.WithObserver(c.Observe))
	for _, in := range []game.Intent{
		{Type: game.StartTurn}, game.Posture(game.ButtonedUp),
		game.Roll(game.Maneuver), {Type: game.EndPool}, game.Roll(game.Attack),
		game.Select(0), game.FireAt(game.MainGun, "tiger"),
	} {
		_, err := e.Play(in)
		require.NoError(t, err)
	}

	g, turns := c.Complete(engine.Result{Winner: "player", Turns: 1, Steps: 7})
	require.Equal(t, []TurnMetric{{
		Turn: 1, Shots: 1, Hits: 1, Penetrations: 1, Kills: 1, EnemiesLeft: 0, Material: 1,
	}}, turns)
	require.Equal(t, "scripted", g.Commander)
	require.Equal(t, uint64(9), g.Seed)
	require.Equal(t, "player", g.Winner)
	require.Equal(t, 1, g.Kills)
	require.Equal(t, 1.0, g.Material)
	require.False(t, g.EndTime.Before(g.StartTime))
}

func TestDummyCollector(t *testing.T) {
	c := NewDummyCollector()
	c.Start(context.Background(), "none", 1)
	c.Observe(engine.Update{})
	g, turns := c.Complete(engine.Result{Winner: "enemy", Turns: 4})
	require.Equal(t, "enemy", g.Winner)
	require.Equal(t, 4, g.Turns)
	require.Nil(t, turns)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "smoke")
	require.NoError(t, err)
	require.DirExists(t, w.Dir())

	start := time.Date(1944, 6, 6, 6, 30, 0, 0, time.UTC)
	require.NoError(t, w.WriteRunConfigs([]RunConfig{
		{ID: 1, Commander: "aggressive", Seed: 1944, Games: 2, MaxTurns: 40, FiringArc: "front", Scenario: "default"},
	}))
	require.NoError(t, w.WriteGameRecords([]GameRecord{{
		ID: 1, Run: 1,
		GameMetric: GameMetric{
			Commander: "aggressive", Seed: 1944, Winner: "player",
			StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second,
			Turns: 3, Steps: 40, Shots: 2, Hits: 1, Kills: 1, Material: 0.25,
		},
	}}))
	require.NoError(t, w.WriteTurnRecords([]TurnRecord{
		{Game: 1, TurnMetric: TurnMetric{Turn: 1, Shots: 1, EnemiesLeft: 1, Material: 0}},
		{Game: 1, TurnMetric: TurnMetric{Turn: 2, Shots: 1, Hits: 1, Kills: 1, Material: 1}},
	}))

	runs := readCSV(t, filepath.Join(w.Dir(), "run_configs.csv"))
	require.Equal(t, []string{"1", "aggressive", "1944", "2", "40", "front", "default"}, runs[1])

	games := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Len(t, games, 2)
	require.Equal(t, "winner", games[0][4])
	require.Equal(t, []string{
		"1", "1", "aggressive", "1944", "player", "1944-06-06T06:30:00Z", "1944-06-06T06:30:01Z", "1s",
		"3", "40", "0", "2", "1", "1", "0", "0.250",
	}, games[1])

	turns := readCSV(t, filepath.Join(w.Dir(), "turn_records.csv"))
	require.Len(t, turns, 3)
	require.Equal(t, []string{"1", "2", "1", "1", "0", "0", "0", "1", "0", "0", "1.000"}, turns[2])
}
