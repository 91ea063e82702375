package telemetry

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/snowfall/mpm"
)

// newTestSim builds the default three-blob scene with perBlob particles
// in each blob.
func newTestSim(t *testing.T, resolution, perBlob int) *mpm.Sim {
	t.Helper()
	s, err := mpm.New(mpm.DefaultConfig(resolution), mpm.DefaultBlobs(perBlob), mpm.UniformSampler(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("building simulation: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}
