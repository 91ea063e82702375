package mpm

import "github.com/pthm-cable/snowfall/linalg"

// Node is one background grid node.
type Node struct {
	Velocity linalg.Vec2
	Mass     float32
}

// Grid is the per-step Eulerian scratch grid: (Resolution+1)² nodes spaced
// 1/Resolution apart over the unit square, stored x-major.
type Grid struct {
	Resolution int
	Nodes      []Node
}

// NewGrid allocates a zeroed grid.
func NewGrid(resolution int) *Grid {
	n := resolution + 1
	return &Grid{
		Resolution: resolution,
		Nodes:      make([]Node, n*n),
	}
}

// Size returns the number of nodes per axis.
func (g *Grid) Size() int {
	return g.Resolution + 1
}

// Index returns the flat index of node (i, j).
func (g *Grid) Index(i, j int) int {
	return i*(g.Resolution+1) + j
}

// At returns node (i, j).
func (g *Grid) At(i, j int) *Node {
	return &g.Nodes[i*(g.Resolution+1)+j]
}

// Coords returns the integer coordinates of the node at flat index idx.
func (g *Grid) Coords(idx int) (i, j int) {
	n := g.Resolution + 1
	return idx / n, idx % n
}

// NodePosition returns the normalized position of node (i, j).
func (g *Grid) NodePosition(i, j int) linalg.Vec2 {
	inv := 1 / float32(g.Resolution)
	return linalg.V2(float32(i)*inv, float32(j)*inv)
}

// Reset zeroes every node.
func (g *Grid) Reset() {
	clear(g.Nodes)
}

// TotalMass sums node mass.
func (g *Grid) TotalMass() float64 {
	var total float64
	for i := range g.Nodes {
		total += float64(g.Nodes[i].Mass)
	}
	return total
}

// ActiveNodes counts nodes carrying mass.
func (g *Grid) ActiveNodes() int {
	n := 0
	for i := range g.Nodes {
		if g.Nodes[i].Mass > 0 {
			n++
		}
	}
	return n
}

// addFrom accumulates the nodes in [lo, hi) of src into g.
func (g *Grid) addFrom(src *Grid, lo, hi int) {
	dst := g.Nodes[lo:hi]
	for k, n := range src.Nodes[lo:hi] {
		dst[k].Velocity = dst[k].Velocity.Add(n.Velocity)
		dst[k].Mass += n.Mass
	}
}
