package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/game"
	"github.com/pthm-cable/snowfall/telemetry"
)

// Target is the pile the calibration aims for once the run ends.
type Target struct {
	HeightMean float64 // mean particle height
	JpMedian   float64 // median tracked volume ratio
	Tolerance  float64 // deviation that costs 1
}

// unstablePenalty is the fitness floor for runs that blew up. Runs that
// survive longer score lower within the band above it.
const unstablePenalty = 1e3

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int32
	seeds      []int64
	baseConfig *config.Config
	target     Target

	mu        sync.Mutex
	lastStats telemetry.WindowStats // first seed of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int32, seeds []int64, baseCfg *config.Config, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		frames:     frames,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
	}
}

// LastStats returns the final stats window of the most recent evaluation.
func (fe *FitnessEvaluator) LastStats() telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// runResult holds the results from a single simulation run.
type runResult struct {
	frames int32
	failed bool
	stats  telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better),
// averaged over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, r := range results {
		total += score(r, fe.frames, fe.target)
	}

	fe.mu.Lock()
	fe.lastStats = results[0].stats
	fe.mu.Unlock()

	return total / float64(len(results))
}

// runSimulation executes a single headless simulation run.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	g, err := game.New(cfg, game.Options{Seed: seed, StatsWindow: int(fe.frames)})
	if err != nil {
		slog.Warn("rejected parameters", "error", err)
		return runResult{failed: true}
	}
	defer g.Close()

	for g.Frame() < fe.frames && g.Failed() == nil {
		g.UpdateHeadless()
	}

	return runResult{
		frames: g.Frame(),
		failed: g.Failed() != nil,
		stats:  g.LastStats(),
	}
}

// copyConfig returns a copy of the base config that runs can modify.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Blobs = append([]config.BlobConfig(nil), fe.baseConfig.Blobs...)
	return &cfg
}

// score turns one run into a fitness value.
func score(r runResult, frames int32, target Target) float64 {
	if r.failed {
		survived := float64(r.frames) / float64(max(frames, 1))
		return unstablePenalty * (2 - survived)
	}

	tol := target.Tolerance
	if tol <= 0 {
		tol = 0.05
	}
	dh := (r.stats.HeightMean - target.HeightMean) / tol
	dj := (r.stats.JpP50 - target.JpMedian) / tol
	return math.Sqrt(dh*dh + dj*dj)
}
