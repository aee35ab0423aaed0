package experiments

import (
	"context"

	"sherman/player"
)

// RunComparison pits every registered commander against the same scenario and
// seeds.
func RunComparison(ctx context.Context, cfg Config) (Summary, error) {
	cfg.Name = "comparison"
	cfg.Commanders = player.Names()
	return Run(ctx, cfg)
}
