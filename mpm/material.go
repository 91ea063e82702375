package mpm

import (
	"fmt"

	"github.com/pthm-cable/snowfall/linalg"
)

// Default snow constants.
const (
	DefaultGravity        = -200.0
	DefaultBoundary       = 0.05
	DefaultMinVolumeRatio = 0.6
	DefaultMaxVolumeRatio = 20.0
	DefaultBlobRadius     = 0.08

	minResolution = 4
)

// Material holds the constitutive constants shared by every particle.
type Material struct {
	ParticleMass   float32
	ParticleVolume float32
	Hardening      float32 // snow hardening coefficient
	YoungsModulus  float32
	PoissonRatio   float32

	// Plastic enables clamping of the deformation gradient's singular
	// values to [1-CompressionLimit, 1+StretchLimit].
	Plastic          bool
	CompressionLimit float32
	StretchLimit     float32

	// DiagonalLambda adds the volumetric λ(J-1)J stress term to the
	// diagonal only, as in the textbook fixed-corotated model. When false
	// the term is added to every entry of the stress matrix.
	DiagonalLambda bool
}

// DefaultMaterial returns the standard snow material.
func DefaultMaterial() Material {
	return Material{
		ParticleMass:     1,
		ParticleVolume:   1,
		Hardening:        10,
		YoungsModulus:    1e4,
		PoissonRatio:     0.2,
		Plastic:          true,
		CompressionLimit: 2.5e-2,
		StretchLimit:     7.5e-3,
	}
}

// Lame returns the initial Lamé parameters (mu0, lambda0) derived from
// Young's modulus and the Poisson ratio.
func (m Material) Lame() (mu0, lambda0 float32) {
	e, nu := m.YoungsModulus, m.PoissonRatio
	mu0 = e / (2 * (1 + nu))
	lambda0 = e * nu / ((1 + nu) * (1 - 2*nu))
	return mu0, lambda0
}

// projectPlastic clamps the singular values on the diagonal of sig.
func (m Material) projectPlastic(sig linalg.Mat2) linalg.Mat2 {
	lo, hi := 1-m.CompressionLimit, 1+m.StretchLimit
	return linalg.Diag(clamp(sig.A, lo, hi), clamp(sig.D, lo, hi))
}

// Config is the immutable configuration of a simulation run.
type Config struct {
	Resolution int // grid cells per axis; the grid has Resolution+1 nodes per axis
	Material   Material

	Gravity  float32 // vertical grid acceleration
	Boundary float32 // wall band thickness in normalized coordinates

	// Bounds of the tracked volume ratio Jp.
	MinVolumeRatio float32
	MaxVolumeRatio float32

	// MaxSubstep bounds the step size used by Step. Zero disables
	// substepping.
	MaxSubstep float32

	// Workers is the size of the transfer worker pool. Values below 2
	// run every pass on the calling goroutine.
	Workers int
}

// DefaultConfig returns the standard configuration at the given resolution.
func DefaultConfig(resolution int) Config {
	return Config{
		Resolution:     resolution,
		Material:       DefaultMaterial(),
		Gravity:        DefaultGravity,
		Boundary:       DefaultBoundary,
		MinVolumeRatio: DefaultMinVolumeRatio,
		MaxVolumeRatio: DefaultMaxVolumeRatio,
		MaxSubstep:     1e-4,
	}
}

// DX returns the grid spacing.
func (c Config) DX() float32 {
	return 1 / float32(c.Resolution)
}

// Validate reports the first configuration error, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	m := c.Material
	switch {
	case c.Resolution < minResolution:
		return fmt.Errorf("%w: resolution %d is below %d", ErrInvalidConfig, c.Resolution, minResolution)
	case m.ParticleMass <= 0:
		return fmt.Errorf("%w: particle mass must be positive, got %g", ErrInvalidConfig, m.ParticleMass)
	case m.ParticleVolume <= 0:
		return fmt.Errorf("%w: particle volume must be positive, got %g", ErrInvalidConfig, m.ParticleVolume)
	case m.YoungsModulus < 0:
		return fmt.Errorf("%w: Young's modulus must not be negative, got %g", ErrInvalidConfig, m.YoungsModulus)
	case m.PoissonRatio < 0 || m.PoissonRatio >= 0.5:
		return fmt.Errorf("%w: Poisson ratio must be in [0, 0.5), got %g", ErrInvalidConfig, m.PoissonRatio)
	case m.Plastic && (m.CompressionLimit < 0 || m.CompressionLimit >= 1 || m.StretchLimit < 0):
		return fmt.Errorf("%w: plasticity limits out of range (compression %g, stretch %g)",
			ErrInvalidConfig, m.CompressionLimit, m.StretchLimit)
	case c.Boundary < 0 || c.Boundary >= 0.5:
		return fmt.Errorf("%w: boundary must be in [0, 0.5), got %g", ErrInvalidConfig, c.Boundary)
	case c.MinVolumeRatio <= 0 || c.MinVolumeRatio > c.MaxVolumeRatio:
		return fmt.Errorf("%w: volume ratio bounds [%g, %g] are inverted or non-positive",
			ErrInvalidConfig, c.MinVolumeRatio, c.MaxVolumeRatio)
	case c.MaxSubstep < 0:
		return fmt.Errorf("%w: max substep must not be negative, got %g", ErrInvalidConfig, c.MaxSubstep)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}
