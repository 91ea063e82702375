package game

import (
	"log/slog"
	"time"
)

// logSummary logs the final state of the run.
func (g *Game) logSummary() {
	perf := g.perfCollector.Stats()

	attrs := []any{
		"frames", g.frame,
		"steps", g.sim.Steps(),
		"sim_time", g.sim.SimTime(),
		"particles", g.sim.Len(),
		"avg_frame", perf.AvgTickDuration.Round(time.Microsecond).String(),
		"steps_per_sec", perf.StepsPerSecond,
	}
	if g.failed != nil {
		attrs = append(attrs, "error", g.failed)
	}
	slog.Info("simulation finished", attrs...)
}
