package mpm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/snowfall/linalg"
)

func TestGridIndexing(t *testing.T) {
	g := NewGrid(8)
	require.Equal(t, 9, g.Size())
	require.Len(t, g.Nodes, 81)

	for i := 0; i <= 8; i++ {
		for j := 0; j <= 8; j++ {
			idx := g.Index(i, j)
			gi, gj := g.Coords(idx)
			assert.Equal(t, i, gi)
			assert.Equal(t, j, gj)
			assert.Same(t, &g.Nodes[idx], g.At(i, j))
		}
	}

	assert.Equal(t, linalg.V2(0.25, 1), g.NodePosition(2, 8))
}

func TestGridMassAndReset(t *testing.T) {
	g := NewGrid(4)
	g.At(1, 1).Mass = 0.5
	g.At(2, 3).Mass = 1.5
	g.At(2, 3).Velocity = linalg.V2(1, 2)

	assert.InDelta(t, 2.0, g.TotalMass(), 1e-9)
	assert.Equal(t, 2, g.ActiveNodes())

	g.Reset()
	assert.Zero(t, g.TotalMass())
	assert.Zero(t, g.ActiveNodes())
	assert.Equal(t, linalg.Vec2{}, g.At(2, 3).Velocity)
}

func TestGridAddFrom(t *testing.T) {
	dst, src := NewGrid(4), NewGrid(4)
	for i := range src.Nodes {
		src.Nodes[i] = Node{Velocity: linalg.V2(1, 2), Mass: 1}
		dst.Nodes[i] = Node{Velocity: linalg.V2(1, 1), Mass: 2}
	}

	dst.addFrom(src, 5, 10)
	for i, n := range dst.Nodes {
		if i >= 5 && i < 10 {
			assert.Equal(t, Node{Velocity: linalg.V2(2, 3), Mass: 3}, n, "node %d", i)
		} else {
			assert.Equal(t, Node{Velocity: linalg.V2(1, 1), Mass: 2}, n, "node %d", i)
		}
	}
}

func TestWorkerPoolCoversRange(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		n       int
		chunks  int
	}{
		{"even split", 4, 100, 4},
		{"uneven split", 4, 10, 4},
		{"fewer items than workers", 8, 3, 3},
		{"empty", 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newWorkerPool(tt.workers)
			defer p.stop()

			var mu sync.Mutex
			seen := make([]int, tt.n)
			chunkStart := map[int]int{}

			used := p.run(tt.n, func(chunk, start, end int) {
				mu.Lock()
				defer mu.Unlock()
				chunkStart[chunk] = start
				for i := start; i < end; i++ {
					seen[i]++
				}
			})

			assert.Equal(t, tt.chunks, used)
			for i, c := range seen {
				assert.Equal(t, 1, c, "index %d", i)
			}
			for c := 1; c < used; c++ {
				assert.Greater(t, chunkStart[c], chunkStart[c-1], "chunks are ordered")
			}
		})
	}
}

func TestWorkerPoolReusable(t *testing.T) {
	p := newWorkerPool(3)
	defer p.stop()

	for round := 0; round < 5; round++ {
		var mu sync.Mutex
		total := 0
		p.run(30, func(_, start, end int) {
			mu.Lock()
			total += end - start
			mu.Unlock()
		})
		assert.Equal(t, 30, total, "round %d", round)
	}

	p.stop()
	p.stop()
}
