// Package game drives a snow simulation frame by frame and wires it to
// telemetry output. It has no graphics dependency so the same loop runs
// in the window, headless and behind the frame stream.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/mpm"
	"github.com/pthm-cable/snowfall/telemetry"
)

// MaxSpeed bounds the number of frames simulated per Update.
const MaxSpeed = 16

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed        int64
	OutputDir   string // empty disables CSV output
	StatsWindow int    // frames per stats window, 0 = telemetry.stats_window
	LogStats    bool
	Workers     int // overrides sim.workers when positive
}

// Game owns the simulation and its telemetry.
type Game struct {
	cfg  *config.Config
	opts Options

	sim   *mpm.Sim
	blobs []mpm.Blob

	frame  int32
	paused bool
	speed  int

	// Set once the simulation reported an instability.
	failed error

	// Most recent flushed stats window
	lastStats telemetry.WindowStats

	// Called after every simulated frame, timed as the broadcast phase.
	frameHook func(*Game)

	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
}

// New builds the simulation described by cfg.
func New(cfg *config.Config, opts Options) (*Game, error) {
	simCfg := cfg.MPMConfig()
	if opts.Workers > 0 {
		simCfg.Workers = opts.Workers
	}
	if opts.StatsWindow <= 0 {
		opts.StatsWindow = cfg.Telemetry.StatsWindow
	}

	blobs, err := cfg.MPMBlobs()
	if err != nil {
		return nil, fmt.Errorf("building blobs: %w", err)
	}

	sim, err := mpm.New(simCfg, blobs, newSampler(opts.Seed))
	if err != nil {
		return nil, fmt.Errorf("building simulation: %w", err)
	}

	g := &Game{
		cfg:              cfg,
		opts:             opts,
		sim:              sim,
		blobs:            blobs,
		speed:            1,
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:        telemetry.NewCollector(opts.StatsWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Bookmarks, cfg.Physics.Boundary),
	}
	sim.SetPhaseTimer(g.perfCollector)

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		sim.Close()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	slog.Info("simulation ready",
		"seed", opts.Seed,
		"resolution", simCfg.Resolution,
		"particles", sim.Len(),
		"workers", simCfg.Workers,
		"output_dir", g.outputManager.Dir(),
	)
	return g, nil
}

func newSampler(seed int64) mpm.Sampler {
	return mpm.UniformSampler(rand.New(rand.NewSource(seed)))
}

// Update advances the simulation by one rendered frame of length frameDt,
// or by Speed frames when fast-forwarding. Frames longer than
// sim.max_frame_dt are dropped.
func (g *Game) Update(frameDt float32) {
	if frameDt > g.cfg.Derived.MaxFrameDT32 {
		g.collector.RecordDroppedFrame()
		return
	}
	if g.paused {
		return
	}

	for i := 0; i < g.speed && !g.paused; i++ {
		g.simulationFrame(frameDt)
	}
}

// UpdateHeadless advances by one frame of the configured sim.frame_dt.
func (g *Game) UpdateHeadless() {
	g.Update(g.cfg.Derived.FrameDT32)
}

// simulationFrame steps the simulation once and handles telemetry.
func (g *Game) simulationFrame(frameDt float32) {
	g.perfCollector.StartTick()

	substeps, err := g.sim.Step(frameDt)
	g.perfCollector.AddSubsteps(substeps)
	g.collector.RecordFrame(substeps)
	g.frame++

	if err != nil {
		g.handleInstability(err)
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	if g.frameHook != nil {
		g.perfCollector.StartPhase(telemetry.PhaseBroadcast)
		g.frameHook(g)
	}
	g.perfCollector.EndTick()
}

// SetFrameHook registers fn to run after every simulated frame.
func (g *Game) SetFrameHook(fn func(*Game)) {
	g.frameHook = fn
}

// Reset rebuilds the particles from the configured blobs and resumes.
// The placement matches a fresh game with the same seed.
func (g *Game) Reset() error {
	if err := g.sim.Reset(g.blobs, newSampler(g.opts.Seed)); err != nil {
		return fmt.Errorf("resetting simulation: %w", err)
	}
	g.frame = 0
	g.failed = nil
	g.paused = false
	g.collector.Reset(0)
	g.lastStats = telemetry.WindowStats{}
	g.bookmarkDetector = telemetry.NewBookmarkDetector(g.cfg.Bookmarks, g.cfg.Physics.Boundary)
	slog.Info("simulation reset", "particles", g.sim.Len())
	return nil
}

// TogglePause pauses or resumes. An unstable simulation stays paused.
func (g *Game) TogglePause() {
	if g.failed != nil {
		return
	}
	g.paused = !g.paused
}

// SetSpeed sets the frames simulated per Update, clamped to [1, MaxSpeed].
func (g *Game) SetSpeed(n int) {
	g.speed = max(1, min(n, MaxSpeed))
}

// Speed returns the frames simulated per Update.
func (g *Game) Speed() int { return g.speed }

// Paused reports whether Update is currently a no-op.
func (g *Game) Paused() bool { return g.paused }

// Failed returns the instability that stopped the simulation, or nil.
func (g *Game) Failed() error { return g.failed }

// Frame returns the number of frames simulated since start or reset.
func (g *Game) Frame() int32 { return g.frame }

// Sim returns the underlying simulation.
func (g *Game) Sim() *mpm.Sim { return g.sim }

// Config returns the configuration the game was built from.
func (g *Game) Config() *config.Config { return g.cfg }

// Seed returns the seed used for particle placement.
func (g *Game) Seed() int64 { return g.opts.Seed }

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.WindowStats { return g.lastStats }

// Perf returns the rolling performance statistics.
func (g *Game) Perf() telemetry.PerfStats { return g.perfCollector.Stats() }

// PerfCollector returns the collector so frontends can time their own
// phases.
func (g *Game) PerfCollector() *telemetry.PerfCollector { return g.perfCollector }

// Close stops the simulation workers and closes output files.
func (g *Game) Close() {
	g.logSummary()
	g.sim.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
