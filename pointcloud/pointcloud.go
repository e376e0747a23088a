// Package pointcloud defines labeled scan clouds and spatial lookups over them.
//
// A Cloud keeps its points in scan order: points of one scanline appear in
// the order the sensor produced them. Segmentation relies on that ordering.
package pointcloud

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Cloud is an ordered collection of labeled scan points.
type Cloud []Point

// NewWithPrealloc returns an empty cloud with capacity for size points.
func NewWithPrealloc(size int) Cloud {
	return make(Cloud, 0, size)
}

// Size returns the number of points in the cloud.
func (c Cloud) Size() int {
	return len(c)
}

// Unclassified returns the indices of all points still carrying
// LabelUnclassified, in their original order.
func (c Cloud) Unclassified() []int {
	var indices []int
	for i := range c {
		if c[i].Label == LabelUnclassified {
			indices = append(indices, i)
		}
	}
	return indices
}

// FromMatrix converts an N x 6 matrix laid out as
// [x y z true_label predicted_label scanline_id] into a Cloud. Row order is
// preserved.
func FromMatrix(m mat.Matrix) (Cloud, error) {
	rows, cols := m.Dims()
	if cols != 6 {
		return nil, errors.Errorf("expected 6 columns [x y z true_label predicted_label scanline_id], got %d", cols)
	}
	cloud := make(Cloud, rows)
	for i := 0; i < rows; i++ {
		pt := NewPoint(m.At(i, 0), m.At(i, 1), m.At(i, 2), int(m.At(i, 5)))
		pt.TrueLabel = int(m.At(i, 3))
		pt.Label = int(m.At(i, 4))
		cloud[i] = pt
	}
	return cloud, nil
}

// Matrix converts the cloud back into the N x 6 layout accepted by FromMatrix.
func (c Cloud) Matrix() *mat.Dense {
	if len(c) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(c), 6, nil)
	for i, pt := range c {
		m.SetRow(i, []float64{
			pt.Position.X, pt.Position.Y, pt.Position.Z,
			float64(pt.TrueLabel), float64(pt.Label), float64(pt.Scanline),
		})
	}
	return m
}

// MetaData reports the axis-aligned bounds of a cloud.
type MetaData struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// NewMetaData returns bounds that any merged point will tighten.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64, MaxX: -math.MaxFloat64,
		MinY: math.MaxFloat64, MaxY: -math.MaxFloat64,
		MinZ: math.MaxFloat64, MaxZ: -math.MaxFloat64,
	}
}

// Merge expands the bounds to include the given point.
func (meta *MetaData) Merge(pt Point) {
	v := pt.Position
	meta.MinX = math.Min(meta.MinX, v.X)
	meta.MaxX = math.Max(meta.MaxX, v.X)
	meta.MinY = math.Min(meta.MinY, v.Y)
	meta.MaxY = math.Max(meta.MaxY, v.Y)
	meta.MinZ = math.Min(meta.MinZ, v.Z)
	meta.MaxZ = math.Max(meta.MaxZ, v.Z)
}

// MetaData computes the bounds of the cloud.
func (c Cloud) MetaData() MetaData {
	meta := NewMetaData()
	for i := range c {
		meta.Merge(c[i])
	}
	return meta
}
