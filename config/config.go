// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/snowfall/linalg"
	"github.com/pthm-cable/snowfall/mpm"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Sim       SimConfig       `yaml:"sim"`
	Material  MaterialConfig  `yaml:"material"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Blobs     []BlobConfig    `yaml:"blobs"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`
	Stream    StreamConfig    `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	TargetFPS      int     `yaml:"target_fps"`
	Title          string  `yaml:"title"`
	ParticleRadius float64 `yaml:"particle_radius"` // pixels at zoom 1
	Background     Colour  `yaml:"background"`
}

// SimConfig holds the grid and time stepping parameters.
type SimConfig struct {
	Resolution       int     `yaml:"resolution"`         // grid cells per axis
	ParticlesPerBlob int     `yaml:"particles_per_blob"` // default count for blobs that leave it unset
	FrameDT          float64 `yaml:"frame_dt"`           // headless frame length in seconds
	MaxFrameDT       float64 `yaml:"max_frame_dt"`       // longer frames are dropped (window hidden)
	MaxSubstep       float64 `yaml:"max_substep"`        // 0 = one step per frame
	Workers          int     `yaml:"workers"`            // transfer worker pool size, 0 = serial
}

// MaterialConfig holds the snow constitutive constants.
type MaterialConfig struct {
	ParticleMass     float64 `yaml:"particle_mass"`
	ParticleVolume   float64 `yaml:"particle_volume"`
	Hardening        float64 `yaml:"hardening"`
	YoungsModulus    float64 `yaml:"youngs_modulus"`
	PoissonRatio     float64 `yaml:"poisson_ratio"`
	Plastic          bool    `yaml:"plastic"`
	CompressionLimit float64 `yaml:"compression_limit"`
	StretchLimit     float64 `yaml:"stretch_limit"`
	DiagonalLambda   bool    `yaml:"diagonal_lambda"` // textbook λ(J-1)J on the diagonal only
}

// PhysicsConfig holds gravity and wall parameters.
type PhysicsConfig struct {
	Gravity        float64 `yaml:"gravity"`
	Boundary       float64 `yaml:"boundary"` // wall band thickness, normalized
	MinVolumeRatio float64 `yaml:"min_volume_ratio"`
	MaxVolumeRatio float64 `yaml:"max_volume_ratio"`
}

// BlobConfig describes one initial batch of particles.
type BlobConfig struct {
	Center   [2]float64 `yaml:"center"`
	Radius   float64    `yaml:"radius"`
	Count    int        `yaml:"count"` // 0 = sim.particles_per_blob
	Colour   Colour     `yaml:"colour"`
	Velocity [2]float64 `yaml:"velocity"`
	Shape    string     `yaml:"shape"` // disc or square
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // frames per stats row
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	HistorySize          int     `yaml:"history_size"`     // windows of rolling history
	SettleSpeed          float64 `yaml:"settle_speed"`     // mean speed below which the pile counts as at rest
	SettleWindows        int     `yaml:"settle_windows"`   // consecutive resting windows before "settled"
	SpikeMultiplier      float64 `yaml:"spike_multiplier"` // max speed vs rolling average
	MinSpikeSpeed        float64 `yaml:"min_spike_speed"`
	CompactionMultiplier float64 `yaml:"compaction_multiplier"` // particles at min Jp vs rolling average
	MinCompacted         int     `yaml:"min_compacted"`
}

// StreamConfig holds the websocket frame stream parameters.
type StreamConfig struct {
	Path           string  `yaml:"path"`
	BroadcastEvery int     `yaml:"broadcast_every"` // frames between broadcasts
	WriteTimeout   float64 `yaml:"write_timeout"`   // seconds
	ReadBuffer     int     `yaml:"read_buffer"`
	WriteBuffer    int     `yaml:"write_buffer"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DX            float32 // 1 / Sim.Resolution
	FrameDT32     float32 // Sim.FrameDT as float32
	MaxFrameDT32  float32 // Sim.MaxFrameDT as float32
	ScreenW32     float32 // Screen.Width as float32
	ScreenH32     float32 // Screen.Height as float32
	ParticleCount int     // total over all blobs
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Parse(cfg, data); err != nil {
			return nil, err
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse unmarshals data over cfg. Only fields present in data are
// overwritten, except lists, which are replaced whole.
func Parse(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Sim.Resolution > 0 {
		c.Derived.DX = 1 / float32(c.Sim.Resolution)
	}
	c.Derived.FrameDT32 = float32(c.Sim.FrameDT)
	c.Derived.MaxFrameDT32 = float32(c.Sim.MaxFrameDT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.ParticleCount = 0
	for _, b := range c.Blobs {
		c.Derived.ParticleCount += c.blobCount(b)
	}
}

func (c *Config) blobCount(b BlobConfig) int {
	if b.Count > 0 {
		return b.Count
	}
	return c.Sim.ParticlesPerBlob
}

// Validate checks the settings the simulation core does not check itself.
// Blob placement is validated when the simulation is built.
func (c *Config) Validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, c.Screen.Width, c.Screen.Height)
	case c.Screen.TargetFPS <= 0:
		return fmt.Errorf("%w: screen.target_fps must be positive, got %d", ErrInvalid, c.Screen.TargetFPS)
	case c.Sim.FrameDT <= 0:
		return fmt.Errorf("%w: sim.frame_dt must be positive, got %g", ErrInvalid, c.Sim.FrameDT)
	case c.Sim.MaxFrameDT < c.Sim.FrameDT:
		return fmt.Errorf("%w: sim.max_frame_dt %g is below sim.frame_dt %g", ErrInvalid, c.Sim.MaxFrameDT, c.Sim.FrameDT)
	case len(c.Blobs) == 0:
		return fmt.Errorf("%w: no blobs", ErrInvalid)
	case c.Telemetry.StatsWindow <= 0:
		return fmt.Errorf("%w: telemetry.stats_window must be positive, got %d", ErrInvalid, c.Telemetry.StatsWindow)
	case c.Stream.BroadcastEvery <= 0:
		return fmt.Errorf("%w: stream.broadcast_every must be positive, got %d", ErrInvalid, c.Stream.BroadcastEvery)
	}

	for i, b := range c.Blobs {
		if c.blobCount(b) <= 0 {
			return fmt.Errorf("%w: blob %d has no particles", ErrInvalid, i)
		}
		if _, err := mpm.ParseShape(b.Shape); err != nil {
			return fmt.Errorf("%w: blob %d: %v", ErrInvalid, i, err)
		}
	}

	if err := c.MPMConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// MPMConfig converts the loaded settings into a simulation config.
func (c *Config) MPMConfig() mpm.Config {
	m := c.Material
	return mpm.Config{
		Resolution: c.Sim.Resolution,
		Material: mpm.Material{
			ParticleMass:     float32(m.ParticleMass),
			ParticleVolume:   float32(m.ParticleVolume),
			Hardening:        float32(m.Hardening),
			YoungsModulus:    float32(m.YoungsModulus),
			PoissonRatio:     float32(m.PoissonRatio),
			Plastic:          m.Plastic,
			CompressionLimit: float32(m.CompressionLimit),
			StretchLimit:     float32(m.StretchLimit),
			DiagonalLambda:   m.DiagonalLambda,
		},
		Gravity:        float32(c.Physics.Gravity),
		Boundary:       float32(c.Physics.Boundary),
		MinVolumeRatio: float32(c.Physics.MinVolumeRatio),
		MaxVolumeRatio: float32(c.Physics.MaxVolumeRatio),
		MaxSubstep:     float32(c.Sim.MaxSubstep),
		Workers:        c.Sim.Workers,
	}
}

// MPMBlobs converts the blob list into simulation blobs.
func (c *Config) MPMBlobs() ([]mpm.Blob, error) {
	blobs := make([]mpm.Blob, 0, len(c.Blobs))
	for i, b := range c.Blobs {
		shape, err := mpm.ParseShape(b.Shape)
		if err != nil {
			return nil, fmt.Errorf("blob %d: %w", i, err)
		}
		blobs = append(blobs, mpm.Blob{
			Center:   linalg.V2(float32(b.Center[0]), float32(b.Center[1])),
			Count:    c.blobCount(b),
			Radius:   float32(b.Radius),
			Tag:      uint32(b.Colour),
			Velocity: linalg.V2(float32(b.Velocity[0]), float32(b.Velocity[1])),
			Shape:    shape,
		})
	}
	return blobs, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
