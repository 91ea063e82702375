// Package mpm implements a 2D snow simulation with the Moving Least Squares
// Material Point Method and APIC transfers.
//
// A Sim owns the particle store and a background grid that is rebuilt on
// every step. Each call to Advance performs one particle-to-grid transfer,
// a grid update (gravity and walls), a grid-to-particle transfer with
// advection, and the plastic deformation-gradient update.
package mpm

import (
	"fmt"
	"math"
)

// Phase names reported to a PhaseTimer.
const (
	PhaseP2G  = "p2g"
	PhaseGrid = "grid"
	PhaseG2P  = "g2p"
)

// PhaseTimer receives a call at the start of each step phase.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Sim is a running simulation. It is not safe for concurrent use.
type Sim struct {
	cfg         Config
	mu0         float32
	lambda0     float32
	particles   []Particle
	grid        *Grid
	timer       PhaseTimer
	steps       uint64
	simTime     float64
	transferred float64 // grid mass after the last P2G
	unstable    *InstabilityError

	pool    *workerPool
	scratch []*Grid // per-chunk private grids for parallel P2G
}

// New validates cfg, scatters the blobs using sample and returns a Sim
// ready to Advance.
func New(cfg Config, blobs []Blob, sample Sampler) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	particles, err := buildParticles(blobs, sample, cfg.DX())
	if err != nil {
		return nil, err
	}

	mu0, lambda0 := cfg.Material.Lame()
	s := &Sim{
		cfg:       cfg,
		mu0:       mu0,
		lambda0:   lambda0,
		particles: particles,
		grid:      NewGrid(cfg.Resolution),
	}

	if cfg.Workers > 1 {
		s.pool = newWorkerPool(cfg.Workers)
		s.scratch = make([]*Grid, cfg.Workers)
		for i := range s.scratch {
			s.scratch[i] = NewGrid(cfg.Resolution)
		}
	}

	return s, nil
}

// Reset replaces the particle store with freshly scattered blobs and clears
// the step counters and any instability.
func (s *Sim) Reset(blobs []Blob, sample Sampler) error {
	particles, err := buildParticles(blobs, sample, s.cfg.DX())
	if err != nil {
		return err
	}
	s.particles = particles
	s.grid.Reset()
	s.steps = 0
	s.simTime = 0
	s.transferred = 0
	s.unstable = nil
	return nil
}

// Close stops the worker pool, if any.
func (s *Sim) Close() {
	if s.pool != nil {
		s.pool.stop()
	}
}

// SetPhaseTimer installs t to be notified at each phase of Advance.
// A nil t disables notifications.
func (s *Sim) SetPhaseTimer(t PhaseTimer) {
	s.timer = t
}

// Config returns the configuration the Sim was built with.
func (s *Sim) Config() Config { return s.cfg }

// Particles returns the particle store. Callers must not modify it.
func (s *Sim) Particles() []Particle { return s.particles }

// Len returns the number of particles.
func (s *Sim) Len() int { return len(s.particles) }

// Steps returns the number of completed Advance calls.
func (s *Sim) Steps() uint64 { return s.steps }

// SimTime returns the simulated time in seconds.
func (s *Sim) SimTime() float64 { return s.simTime }

// Grid returns the grid as left by the last step.
func (s *Sim) Grid() *Grid { return s.grid }

// TransferredMass returns the total grid mass after the last
// particle-to-grid transfer.
func (s *Sim) TransferredMass() float64 { return s.transferred }

// Unstable returns the instability that stopped the simulation, or nil.
func (s *Sim) Unstable() error {
	if s.unstable == nil {
		return nil
	}
	return s.unstable
}

// Advance performs one full simulation step of length dt. dt is used as
// given: callers clamp unreasonable frame deltas themselves.
//
// Particles are checked before and after the step. If any is non-finite
// or outside the grid, the returned error wraps ErrUnstable and every
// later call returns it without stepping. A store found bad before the
// step is left untouched.
func (s *Sim) Advance(dt float32) error {
	if s.unstable != nil {
		return s.unstable
	}
	if bad := s.countUnstable(); bad > 0 {
		s.unstable = &InstabilityError{Step: s.steps, Particles: bad}
		return s.unstable
	}

	s.grid.Reset()

	s.phase(PhaseP2G)
	s.particlesToGrid(dt)
	s.transferred = s.grid.TotalMass()

	s.phase(PhaseGrid)
	s.updateGrid(dt)

	s.phase(PhaseG2P)
	s.gridToParticles(dt)

	s.steps++
	s.simTime += float64(dt)

	if bad := s.countUnstable(); bad > 0 {
		s.unstable = &InstabilityError{Step: s.steps, Particles: bad}
		return s.unstable
	}
	return nil
}

// Step advances by frameDt, split into equal substeps no longer than
// the configured MaxSubstep. Returns the number of substeps taken.
func (s *Sim) Step(frameDt float32) (int, error) {
	if frameDt <= 0 {
		return 0, nil
	}

	n := 1
	dt := frameDt
	if limit := s.cfg.MaxSubstep; limit > 0 && frameDt > limit {
		n = int(math.Ceil(float64(frameDt / limit)))
		dt = frameDt / float32(n)
	}

	for i := 0; i < n; i++ {
		if err := s.Advance(dt); err != nil {
			return i, fmt.Errorf("substep %d of %d: %w", i+1, n, err)
		}
	}
	return n, nil
}

func (s *Sim) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

func (s *Sim) parallel() bool {
	return s.pool != nil && len(s.particles) >= parallelThreshold
}

func (s *Sim) particlesToGrid(dt float32) {
	if !s.parallel() {
		for i := range s.particles {
			s.scatter(s.grid, &s.particles[i], dt)
		}
		return
	}

	used := s.pool.run(len(s.particles), func(chunk, lo, hi int) {
		g := s.scratch[chunk]
		g.Reset()
		for i := lo; i < hi; i++ {
			s.scatter(g, &s.particles[i], dt)
		}
	})

	// Reduce in chunk order so results only depend on the worker count.
	private := s.scratch[:used]
	s.pool.run(len(s.grid.Nodes), func(_, lo, hi int) {
		for _, g := range private {
			s.grid.addFrom(g, lo, hi)
		}
	})
}

func (s *Sim) updateGrid(dt float32) {
	if !s.parallel() {
		s.updateNodes(s.grid, 0, len(s.grid.Nodes), dt)
		return
	}
	s.pool.run(len(s.grid.Nodes), func(_, lo, hi int) {
		s.updateNodes(s.grid, lo, hi, dt)
	})
}

func (s *Sim) gridToParticles(dt float32) {
	if !s.parallel() {
		for i := range s.particles {
			s.gather(s.grid, &s.particles[i], dt)
		}
		return
	}
	s.pool.run(len(s.particles), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			s.gather(s.grid, &s.particles[i], dt)
		}
	})
}

func (s *Sim) countUnstable() int {
	bad := 0
	for i := range s.particles {
		if !s.stable(&s.particles[i]) {
			bad++
		}
	}
	return bad
}
