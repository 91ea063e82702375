package mpm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by New when the simulation configuration
	// cannot produce a usable grid or material.
	ErrInvalidConfig = errors.New("mpm: invalid config")

	// ErrInvalidBlob is returned when a particle blob is degenerate or
	// does not fit inside the simulation domain.
	ErrInvalidBlob = errors.New("mpm: invalid blob")

	// ErrUnstable is returned once particle state has stopped being finite
	// or has left the region the transfer stencil can address.
	ErrUnstable = errors.New("mpm: simulation unstable")
)

// InstabilityError describes the step at which the simulation blew up.
// It unwraps to ErrUnstable.
type InstabilityError struct {
	Step      uint64 // steps completed when the instability was detected
	Particles int    // particles with non-finite state or an out-of-grid stencil
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("mpm: simulation unstable after step %d: %d particles non-finite or outside the grid",
		e.Step, e.Particles)
}

func (e *InstabilityError) Unwrap() error {
	return ErrUnstable
}
