package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/snowfall/mpm"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sim.Resolution != 80 {
		t.Errorf("expected resolution 80, got %d", cfg.Sim.Resolution)
	}
	if len(cfg.Blobs) != 3 {
		t.Fatalf("expected 3 default blobs, got %d", len(cfg.Blobs))
	}
	if cfg.Derived.ParticleCount != 3000 {
		t.Errorf("expected 3000 particles, got %d", cfg.Derived.ParticleCount)
	}
	if cfg.Derived.DX != 1.0/80 {
		t.Errorf("expected dx 1/80, got %f", cfg.Derived.DX)
	}
	if cfg.Blobs[0].Colour != 0xed553b {
		t.Errorf("expected first blob colour #ed553b, got %s", cfg.Blobs[0].Colour)
	}
}

func TestDefaultsMatchMPMDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := cfg.MPMConfig()
	want := mpm.DefaultConfig(80)
	if got != want {
		t.Errorf("MPMConfig() = %+v, want %+v", got, want)
	}

	blobs, err := cfg.MPMBlobs()
	if err != nil {
		t.Fatalf("MPMBlobs: %v", err)
	}
	ref := mpm.DefaultBlobs(1000)
	for i := range ref {
		if blobs[i] != ref[i] {
			t.Errorf("blob %d = %+v, want %+v", i, blobs[i], ref[i])
		}
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	user := `
sim:
  resolution: 64
  workers: 4
blobs:
  - center: [0.5, 0.5]
    radius: 0.1
    count: 250
    colour: "0x112233"
    velocity: [1, 0]
    shape: square
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sim.Resolution != 64 || cfg.Sim.Workers != 4 {
		t.Errorf("sim overrides not applied: %+v", cfg.Sim)
	}
	if cfg.Sim.ParticlesPerBlob != 1000 {
		t.Errorf("unset field should keep default, got %d", cfg.Sim.ParticlesPerBlob)
	}
	if cfg.Material.YoungsModulus != 1e4 {
		t.Errorf("material should keep defaults, got E=%f", cfg.Material.YoungsModulus)
	}
	if len(cfg.Blobs) != 1 {
		t.Fatalf("blob list should be replaced, got %d blobs", len(cfg.Blobs))
	}
	if cfg.Derived.ParticleCount != 250 {
		t.Errorf("expected 250 particles, got %d", cfg.Derived.ParticleCount)
	}

	blobs, err := cfg.MPMBlobs()
	if err != nil {
		t.Fatalf("MPMBlobs: %v", err)
	}
	b := blobs[0]
	if b.Tag != 0x112233 || b.Shape != mpm.ShapeSquare || b.Velocity.X != 1 || b.Count != 250 {
		t.Errorf("unexpected blob %+v", b)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool // wraps ErrInvalid rather than a parse error
	}{
		{"bad yaml", "sim: [", false},
		{"bad colour", "blobs:\n  - center: [0.5, 0.5]\n    radius: 0.1\n    colour: \"#12\"\n", false},
		{"colour not a string", "screen:\n  background: [1, 2]\n", false},
		{"zero frame dt", "sim:\n  frame_dt: 0\n", true},
		{"max frame dt below frame dt", "sim:\n  max_frame_dt: 0.001\n", true},
		{"no blobs", "blobs: []\n", true},
		{"unknown shape", "blobs:\n  - center: [0.5, 0.5]\n    radius: 0.1\n    shape: star\n", true},
		{"resolution too small", "sim:\n  resolution: 2\n", true},
		{"poisson ratio", "material:\n  poisson_ratio: 0.5\n", true},
		{"stats window", "telemetry:\n  stats_window: 0\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "user.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (err: %v)", got, tt.invalid, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseColour(t *testing.T) {
	tests := []struct {
		in   string
		want Colour
		ok   bool
	}{
		{"#ed553b", 0xed553b, true},
		{"0xF2B134", 0xf2b134, true},
		{" 068587 ", 0x068587, true},
		{"#fff", 0, false},
		{"#gggggg", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseColour(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColour(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColour(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	r, g, b := Colour(0xed553b).RGB()
	if r != 0xed || g != 0x55 || b != 0x3b {
		t.Errorf("RGB() = %x %x %x", r, g, b)
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"#ed553b"`) && !strings.Contains(string(data), "'#ed553b'") {
		t.Errorf("colours should be written as hex strings:\n%s", data)
	}
	if strings.Contains(string(data), "derived") {
		t.Error("derived values should not be written")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if reloaded.MPMConfig() != cfg.MPMConfig() {
		t.Errorf("roundtrip changed sim config: %+v vs %+v", reloaded.MPMConfig(), cfg.MPMConfig())
	}
	if reloaded.Derived != cfg.Derived {
		t.Errorf("roundtrip changed derived values: %+v vs %+v", reloaded.Derived, cfg.Derived)
	}
}

func TestMustInitAndCfg(t *testing.T) {
	old := global
	defer func() { global = old }()

	global = nil
	func() {
		defer func() {
			if recover() == nil {
				t.Error("Cfg() before Init should panic")
			}
		}()
		Cfg()
	}()

	MustInit("")
	if Cfg().Screen.Width != 800 {
		t.Errorf("expected default width 800, got %d", Cfg().Screen.Width)
	}
}
