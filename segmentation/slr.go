package segmentation

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/scanline-labs/lidarseg/pointcloud"
)

// ErrInputExhausted is returned when clustering is handed a cloud with no
// unclassified points left, either because it was already clustered or
// because ground fitting labeled everything.
var ErrInputExhausted = errors.New("no unclassified points, cloud is already fully labeled")

// SpatialIndex answers exact nearest neighbor queries against the fixed set
// of positions it was built over. Nearest returns the offset of the closest
// position and the Euclidean distance to it.
type SpatialIndex interface {
	Nearest(q r3.Vector) (int, float64)
}

// SpatialIndexBuilder constructs a SpatialIndex over the given positions.
// Clustering correctness depends only on exact 1-NN semantics, not on the
// index's internals.
type SpatialIndexBuilder func(positions []r3.Vector) SpatialIndex

func kdTreeBuilder(positions []r3.Vector) SpatialIndex {
	return pointcloud.NewKDTree(positions)
}

// ClusterConfig specifies the parameters for scan line run clustering.
type ClusterConfig struct {
	// RunDistanceThresh is the within-scanline gap between consecutive points
	// that splits a run.
	RunDistanceThresh float64
	// MergeThresh is the maximum cross-scanline distance at which a run
	// connects to the previous scanline's points.
	MergeThresh float64
	// IndexBuilder constructs the nearest neighbor index used for
	// cross-scanline queries. Nil means a k-d tree.
	IndexBuilder SpatialIndexBuilder
}

// DefaultClusterConfig returns the commonly used clustering parameters.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{RunDistanceThresh: 0.5, MergeThresh: 1.0}
}

// CheckValid checks that the config has valid inputs.
func (cc *ClusterConfig) CheckValid() error {
	if cc.RunDistanceThresh <= 0 {
		return errors.Errorf("run_distance_threshold must be greater than 0, got %v", cc.RunDistanceThresh)
	}
	if cc.MergeThresh <= 0 {
		return errors.Errorf("merge_threshold must be greater than 0, got %v", cc.MergeThresh)
	}
	return nil
}

// labeledRun is a run of cloud indices carrying its provisional label.
type labeledRun struct {
	pts   []int
	label int
}

// ClusterScanLineRuns groups every unclassified point of the cloud into a
// cluster. Scanlines are processed in ascending id order: each scanline is
// split into runs, and every run inherits the smallest canonical label among
// the previous scanline's points within MergeThresh of it, merging all such
// labels into one class; a run with no close neighbor starts a new label.
// Labels stay provisional until every scanline has been seen, then each
// point's label is resolved to its canonical root and written back into the
// cloud. Ground points are untouched.
func ClusterScanLineRuns(ctx context.Context, cloud pointcloud.Cloud, cfg ClusterConfig, logger golog.Logger) error {
	if err := cfg.CheckValid(); err != nil {
		return errors.Wrap(err, "invalid cluster config")
	}
	builder := cfg.IndexBuilder
	if builder == nil {
		builder = kdTreeBuilder
	}

	unclassified := cloud.Unclassified()
	if len(unclassified) == 0 {
		return ErrInputExhausted
	}
	scanlines := groupByScanline(cloud, unclassified)
	labels := NewLabelSet()

	// baseline: every run of the first scanline is its own cluster
	firstRuns, err := findRuns(cloud, scanlines[0], cfg.RunDistanceThresh)
	if err != nil {
		return err
	}
	prev := make([]labeledRun, 0, len(firstRuns))
	for _, run := range firstRuns {
		prev = append(prev, labeledRun{pts: run, label: labels.NewLabel()})
	}
	all := append([]labeledRun(nil), prev...)

	for _, scanline := range scanlines[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		runs, err := findRuns(cloud, scanline, cfg.RunDistanceThresh)
		if err != nil {
			return err
		}

		// one index per scanline pair, over all of the previous scanline's points
		var positions []r3.Vector
		var pointLabels []int
		for _, lr := range prev {
			for _, idx := range lr.pts {
				positions = append(positions, cloud[idx].Position)
				pointLabels = append(pointLabels, lr.label)
			}
		}
		index := builder(positions)

		next := make([]labeledRun, 0, len(runs))
		for _, run := range runs {
			neighbors := make(map[int]struct{})
			for _, idx := range run {
				nearest, dist := index.Nearest(cloud[idx].Position)
				if dist < cfg.MergeThresh {
					neighbors[labels.Resolve(pointLabels[nearest])] = struct{}{}
				}
			}
			var label int
			if len(neighbors) == 0 {
				label = labels.NewLabel()
			} else {
				// the run bridges every neighboring cluster into one class
				set := make([]int, 0, len(neighbors))
				for l := range neighbors {
					set = append(set, l)
				}
				label = labels.Union(set)
			}
			lr := labeledRun{pts: run, label: label}
			next = append(next, lr)
			all = append(all, lr)
		}
		prev = next
	}

	// single write-back point: canonical labels into the original cloud
	for _, lr := range all {
		root := labels.Resolve(lr.label)
		for _, idx := range lr.pts {
			cloud[idx].Label = root
		}
	}
	logger.Debugf("scan line run clustering labeled %d points across %d scanlines into %d provisional labels",
		len(unclassified), len(scanlines), labels.Len())
	return nil
}
