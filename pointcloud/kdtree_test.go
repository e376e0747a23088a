package pointcloud

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestKDTreeNearest(t *testing.T) {
	positions := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
		{X: 0, Y: 10, Z: 0},
		{X: 5, Y: 5, Z: 5},
	}
	tree := NewKDTree(positions)

	idx, dist := tree.Nearest(r3.Vector{X: 9, Y: 1, Z: 0})
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, dist, test.ShouldAlmostEqual, math.Sqrt(2), 1e-12)

	// querying a stored position returns it at distance zero
	idx, dist = tree.Nearest(positions[3])
	test.That(t, idx, test.ShouldEqual, 3)
	test.That(t, dist, test.ShouldAlmostEqual, 0, 1e-12)
}

func TestKDTreeMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	positions := make([]r3.Vector, 200)
	for i := range positions {
		positions[i] = r3.Vector{X: r.Float64() * 10, Y: r.Float64() * 10, Z: r.Float64() * 10}
	}
	tree := NewKDTree(positions)

	for i := 0; i < 50; i++ {
		q := r3.Vector{X: r.Float64() * 10, Y: r.Float64() * 10, Z: r.Float64() * 10}

		bestDist := math.Inf(1)
		for _, p := range positions {
			if d := q.Distance(p); d < bestDist {
				bestDist = d
			}
		}

		idx, dist := tree.Nearest(q)
		test.That(t, dist, test.ShouldAlmostEqual, bestDist, 1e-12)
		test.That(t, q.Distance(positions[idx]), test.ShouldAlmostEqual, bestDist, 1e-12)
	}
}

func TestKDTreeSinglePoint(t *testing.T) {
	tree := NewKDTree([]r3.Vector{{X: 1, Y: 2, Z: 3}})
	idx, dist := tree.Nearest(r3.Vector{X: 1, Y: 2, Z: 7})
	test.That(t, idx, test.ShouldEqual, 0)
	test.That(t, dist, test.ShouldAlmostEqual, 4, 1e-12)
}
