package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/mpm"
	"github.com/pthm-cable/snowfall/telemetry"
)

// smallConfig returns the defaults shrunk to a single small blob on a
// coarse grid.
func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Sim.Resolution = 32
	cfg.Blobs = []config.BlobConfig{
		{Center: [2]float64{0.5, 0.5}, Radius: 0.1, Count: 50, Colour: 0x068587},
	}
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	g, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return g
}

func TestNew(t *testing.T) {
	g := newTestGame(t, smallConfig(t), Options{Seed: 7})

	assert.Equal(t, int32(0), g.Frame())
	assert.Equal(t, 50, g.Sim().Len())
	assert.Equal(t, 1, g.Speed())
	assert.False(t, g.Paused())
	assert.NoError(t, g.Failed())
	assert.Equal(t, int64(7), g.Seed())
}

func TestNewRejectsBadBlob(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Blobs[0].Center = [2]float64{0.02, 0.5}

	_, err := New(cfg, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mpm.ErrInvalidBlob), "got %v", err)
}

func TestSameSeedSameParticles(t *testing.T) {
	a := newTestGame(t, smallConfig(t), Options{Seed: 42})
	b := newTestGame(t, smallConfig(t), Options{Seed: 42})
	c := newTestGame(t, smallConfig(t), Options{Seed: 43})

	assert.Equal(t, a.Sim().Particles(), b.Sim().Particles())
	assert.NotEqual(t, a.Sim().Particles(), c.Sim().Particles())
}

func TestUpdateHeadless(t *testing.T) {
	g := newTestGame(t, smallConfig(t), Options{Seed: 1})

	g.UpdateHeadless()
	assert.Equal(t, int32(1), g.Frame())
	assert.Equal(t, uint64(167), g.Sim().Steps(), "1/60 s in substeps of 1e-4 s")

	g.UpdateHeadless()
	assert.Equal(t, int32(2), g.Frame())
	assert.Equal(t, uint64(334), g.Sim().Steps())
}

func TestUpdateDropsLongFrames(t *testing.T) {
	g := newTestGame(t, smallConfig(t), Options{Seed: 1})

	g.Update(1.0)
	assert.Equal(t, int32(0), g.Frame())
	assert.Zero(t, g.Sim().Steps())

	g.Update(0.001)
	assert.Equal(t, int32(1), g.Frame())
	assert.Positive(t, g.Sim().Steps())
}

func TestPause(t *testing.T) {
	g := newTestGame(t, smallConfig(t), Options{Seed: 1})

	g.TogglePause()
	require.True(t, g.Paused())
	g.Update(0.001)
	assert.Equal(t, int32(0), g.Frame())

	g.TogglePause()
	g.Update(0.001)
	assert.Equal(t, int32(1), g.Frame())
}

func TestSetSpeed(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"normal", 3, 3},
		{"zero", 0, 1},
		{"negative", -4, 1},
		{"too fast", 100, MaxSpeed},
	}

	g := newTestGame(t, smallConfig(t), Options{Seed: 1})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.SetSpeed(tt.in)
			assert.Equal(t, tt.want, g.Speed())
		})
	}

	g.SetSpeed(3)
	before := g.Frame()
	g.Update(0.001)
	assert.Equal(t, before+3, g.Frame())
}

func TestFrameHook(t *testing.T) {
	g := newTestGame(t, smallConfig(t), Options{Seed: 1})

	var frames []int32
	g.SetFrameHook(func(g *Game) { frames = append(frames, g.Frame()) })
	g.SetSpeed(2)
	g.Update(0.001)

	assert.Equal(t, []int32{1, 2}, frames)
	assert.Contains(t, g.Perf().PhaseAvg, telemetry.PhaseBroadcast)
}

func TestReset(t *testing.T) {
	g := newTestGame(t, smallConfig(t), Options{Seed: 1})
	initial := append([]mpm.Particle(nil), g.Sim().Particles()...)

	g.UpdateHeadless()
	require.NotEqual(t, initial, g.Sim().Particles())

	require.NoError(t, g.Reset())
	assert.Equal(t, int32(0), g.Frame())
	assert.Zero(t, g.Sim().Steps())
	assert.Equal(t, initial, g.Sim().Particles(), "reset replays the seeded placement")

	g.UpdateHeadless()
	afterFirst := append([]mpm.Particle(nil), g.Sim().Particles()...)
	require.NoError(t, g.Reset())
	g.UpdateHeadless()
	assert.Equal(t, afterFirst, g.Sim().Particles(), "runs after reset are reproducible")
}

func TestInstabilityPauses(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Blobs[0].Velocity = [2]float64{1e6, 0}
	dir := t.TempDir()
	g := newTestGame(t, cfg, Options{Seed: 1, OutputDir: dir})

	g.UpdateHeadless()
	require.Error(t, g.Failed())
	assert.True(t, errors.Is(g.Failed(), mpm.ErrUnstable))
	assert.True(t, g.Paused())

	g.TogglePause()
	assert.True(t, g.Paused(), "an unstable simulation cannot be resumed")

	g.UpdateHeadless()
	assert.Equal(t, int32(1), g.Frame())

	bookmarks, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(bookmarks)), "\n")
	require.Len(t, lines, 2, "header plus the instability")
	assert.True(t, strings.HasPrefix(lines[1], "unstable,1,"), "row: %s", lines[1])

	require.NoError(t, g.Reset())
	assert.NoError(t, g.Failed())
	assert.False(t, g.Paused())
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()
	g, err := New(smallConfig(t), Options{Seed: 1, OutputDir: dir, StatsWindow: 2})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		g.Update(0.001)
	}
	g.Close()

	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dir, "bookmarks.csv"))

	stats, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(stats)), "\n")
	require.Len(t, lines, 3, "header plus one row per window")
	assert.True(t, strings.HasPrefix(lines[0], "window_end,"), "header: %s", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2,"), "row: %s", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "4,"), "row: %s", lines[2])

	assert.Equal(t, int32(4), g.LastStats().WindowEndFrame)
	assert.Equal(t, 2, g.LastStats().Frames)

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(perf)), "\n"), 3)
}
