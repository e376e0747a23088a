package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// KDTree is an exact nearest neighbor index over a fixed set of positions,
// backed by gonum's k-d tree. Neighbors are reported by their offset into
// the slice the tree was built from.
type KDTree struct {
	tree *kdtree.Tree
}

// NewKDTree builds an index over the given positions.
func NewKDTree(positions []r3.Vector) *KDTree {
	pts := make(treePoints, len(positions))
	for i, p := range positions {
		pts[i] = treePoint{pos: p, idx: i}
	}
	return &KDTree{tree: kdtree.New(pts, false)}
}

// Nearest returns the offset of the position closest to q and the Euclidean
// distance to it. The offset is -1 if the tree is empty.
func (t *KDTree) Nearest(q r3.Vector) (int, float64) {
	got, dist := t.tree.Nearest(treePoint{pos: q, idx: -1})
	if got == nil {
		return -1, math.Inf(1)
	}
	return got.(treePoint).idx, math.Sqrt(dist)
}

// treePoint adapts one indexed position to gonum's kdtree.Comparable.
type treePoint struct {
	pos r3.Vector
	idx int
}

func (p treePoint) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return p.pos.X
	case 1:
		return p.pos.Y
	default:
		return p.pos.Z
	}
}

// Compare returns the signed distance from the plane through c along
// dimension d.
func (p treePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(treePoint)
	return p.coord(d) - q.coord(d)
}

// Dims returns the number of dimensions being indexed.
func (p treePoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance, per the kdtree contract.
func (p treePoint) Distance(c kdtree.Comparable) float64 {
	diff := p.pos.Sub(c.(treePoint).pos)
	return diff.Dot(diff)
}

// treePoints implements kdtree.Interface for tree construction.
type treePoints []treePoint

func (ps treePoints) Index(i int) kdtree.Comparable { return ps[i] }

func (ps treePoints) Len() int { return len(ps) }

func (ps treePoints) Pivot(d kdtree.Dim) int {
	return treePlane{Dim: d, treePoints: ps}.Pivot()
}

func (ps treePoints) Slice(start, end int) kdtree.Interface { return ps[start:end] }

// treePlane sorts treePoints along a single dimension.
type treePlane struct {
	kdtree.Dim
	treePoints
}

func (p treePlane) Less(i, j int) bool {
	return p.treePoints[i].coord(p.Dim) < p.treePoints[j].coord(p.Dim)
}

func (p treePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p treePlane) Slice(start, end int) kdtree.SortSlicer {
	p.treePoints = p.treePoints[start:end]
	return p
}

func (p treePlane) Swap(i, j int) {
	p.treePoints[i], p.treePoints[j] = p.treePoints[j], p.treePoints[i]
}
