package segmentation

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/scanline-labs/lidarseg/utils"
)

// ErrDegeneratePlane is returned when the input points are coincident or
// collinear, so no unique plane fits them.
var ErrDegeneratePlane = errors.New("points are rank deficient, no unique plane fit")

// rankTol is the relative eigenvalue ratio below which the covariance of the
// input is treated as rank deficient.
const rankTol = 1e-9

// Plane is a planar model Normal.Dot(p) + Offset = 0. The normal is not
// required to be unit length; Distance normalizes.
type Plane struct {
	Normal r3.Vector
	Offset float64
}

// Distance returns the perpendicular distance from pt to the plane.
func (p *Plane) Distance(pt r3.Vector) float64 {
	return math.Abs(p.Normal.Dot(pt)+p.Offset) / p.Normal.Norm()
}

// PlaneFitter estimates a plane from a set of positions.
type PlaneFitter func(positions []r3.Vector) (*Plane, error)

// FitPlane fits a plane to the given positions by principal component
// analysis: the normal is the eigenvector of the covariance matrix with the
// smallest eigenvalue, and the plane passes through the centroid.
func FitPlane(positions []r3.Vector) (*Plane, error) {
	if len(positions) < 3 {
		return nil, errors.Wrapf(ErrDegeneratePlane, "have %d points, need at least 3", len(positions))
	}
	data := mat.NewDense(len(positions), 3, nil)
	centroid := r3.Vector{}
	for i, p := range positions {
		data.SetRow(i, []float64{p.X, p.Y, p.Z})
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(len(positions)))

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return nil, errors.New("eigendecomposition of covariance matrix failed")
	}
	// Eigenvalues come back in ascending order. A vanishing second eigenvalue
	// means all points lie on a line (or a single point).
	vals := eig.Values(nil)
	if vals[2] <= 0 || vals[1] <= rankTol*vals[2] {
		return nil, ErrDegeneratePlane
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	normal := r3.Vector{X: vecs.At(0, 0), Y: vecs.At(1, 0), Z: vecs.At(2, 0)}

	return &Plane{Normal: normal, Offset: -normal.Dot(centroid)}, nil
}

// FitPlaneRANSAC estimates a plane by repeatedly sampling three points and
// keeping the candidate with the most inliers within distThresh. Unlike
// FitPlane it tolerates gross outliers, at the cost of a coarser fit. The
// sampling is deterministic across calls.
func FitPlaneRANSAC(positions []r3.Vector, nIterations int, distThresh float64) (*Plane, error) {
	if len(positions) < 3 {
		return nil, errors.Wrapf(ErrDegeneratePlane, "have %d points, need at least 3", len(positions))
	}
	if nIterations <= 0 {
		return nil, errors.Errorf("n_iterations must be greater than 0, got %d", nIterations)
	}
	r := rand.New(rand.NewSource(1))

	var best *Plane
	bestInliers := -1
	for i := 0; i < nIterations; i++ {
		n1 := utils.SampleRandomIntRange(0, len(positions)-1, r)
		n2 := utils.SampleRandomIntRange(0, len(positions)-1, r)
		n3 := utils.SampleRandomIntRange(0, len(positions)-1, r)
		p1, p2, p3 := positions[n1], positions[n2], positions[n3]

		cross := p2.Sub(p1).Cross(p3.Sub(p1))
		if cross.Norm() == 0 {
			// sampled points are collinear, try again
			continue
		}
		normal := cross.Normalize()
		candidate := &Plane{Normal: normal, Offset: -normal.Dot(p1)}

		inliers := 0
		for _, pt := range positions {
			if candidate.Distance(pt) < distThresh {
				inliers++
			}
		}
		if inliers > bestInliers {
			best, bestInliers = candidate, inliers
		}
	}
	if best == nil {
		return nil, ErrDegeneratePlane
	}
	return best, nil
}

// RANSACFitter adapts FitPlaneRANSAC into a PlaneFitter with the given
// sampling budget and inlier threshold.
func RANSACFitter(nIterations int, distThresh float64) PlaneFitter {
	return func(positions []r3.Vector) (*Plane, error) {
		return FitPlaneRANSAC(positions, nIterations, distThresh)
	}
}
