package pointcloud

import (
	"github.com/golang/geo/r3"
)

// Reserved values of the predicted label column.
const (
	// LabelUnclassified marks a point no stage has labeled yet.
	LabelUnclassified = 0
	// LabelGround marks a point classified as ground surface. The value is
	// reserved: cluster ids skip it.
	LabelGround = 9
)

// Point is one record of a labeled scan. Positions are sensor-frame
// coordinates; the bookkeeping fields mirror the columns of the
// [x y z true_label predicted_label scanline_id] record this library
// exchanges with its callers.
type Point struct {
	Position r3.Vector

	// TrueLabel is an externally supplied ground-truth tag. It is carried
	// through segmentation unmodified.
	TrueLabel int

	// Label is the predicted label and the only field this library mutates:
	// LabelUnclassified, LabelGround, or a positive cluster id.
	Label int

	// Scanline identifies the sensor sweep (row) that produced the point.
	Scanline int
}

// NewPoint returns an unclassified point at the given position.
func NewPoint(x, y, z float64, scanline int) Point {
	return Point{Position: r3.Vector{X: x, Y: y, Z: z}, Scanline: scanline}
}
