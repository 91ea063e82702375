package game

import (
	"log/slog"

	"github.com/pthm-cable/snowfall/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.frame) {
		return
	}

	stats := g.collector.Flush(g.frame, g.sim)
	g.lastStats = stats
	perfStats := g.perfCollector.Stats()

	// Log stats if enabled (console output)
	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.opts.LogStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// handleInstability pauses the game the first time the simulation fails.
func (g *Game) handleInstability(err error) {
	if g.failed != nil {
		return
	}
	g.failed = err
	g.paused = true

	slog.Error("simulation unstable, pausing",
		"frame", g.frame,
		"steps", g.sim.Steps(),
		"sim_time", g.sim.SimTime(),
		"error", err,
	)
	if err := g.outputManager.WriteBookmark(telemetry.Bookmark{
		Type:        telemetry.BookmarkUnstable,
		Frame:       g.frame,
		SimTimeSec:  g.sim.SimTime(),
		Description: err.Error(),
	}); err != nil {
		slog.Error("failed to write bookmark", "error", err)
	}
}
