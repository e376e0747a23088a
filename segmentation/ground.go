package segmentation

import (
	"context"
	"sort"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/scanline-labs/lidarseg/pointcloud"
	"github.com/scanline-labs/lidarseg/utils"
)

// GroundConfig specifies the parameters for ground plane fitting.
type GroundConfig struct {
	// NumSeedPoints is how many of the lowest points are averaged into the
	// lowest point representative (LPR). Clamped to the cloud size.
	NumSeedPoints int
	// SeedHeightThresh is the height above the LPR within which a point is an
	// initial seed.
	SeedHeightThresh float64
	// DistanceThresh is the maximum point-to-plane distance for a point to be
	// classified as ground.
	DistanceThresh float64
	// NumIterations is the fixed number of refinement iterations. There is no
	// convergence check.
	NumIterations int
	// Fitter estimates the plane each iteration. Nil means FitPlane.
	Fitter PlaneFitter
}

// DefaultGroundConfig returns the parameters commonly used for automotive
// scans: a 1000-point LPR, 0.4 seed height, 0.2 ground distance, 5 iterations.
func DefaultGroundConfig() GroundConfig {
	return GroundConfig{
		NumSeedPoints:    1000,
		SeedHeightThresh: 0.4,
		DistanceThresh:   0.2,
		NumIterations:    5,
	}
}

// CheckValid checks that the config has valid inputs.
func (gc *GroundConfig) CheckValid() error {
	if gc.NumSeedPoints <= 0 {
		return errors.Errorf("num_seed_points must be greater than 0, got %d", gc.NumSeedPoints)
	}
	if gc.SeedHeightThresh < 0 {
		return errors.Errorf("seed_height_threshold cannot be less than 0, got %v", gc.SeedHeightThresh)
	}
	if gc.DistanceThresh <= 0 {
		return errors.Errorf("ground_distance_threshold must be greater than 0, got %v", gc.DistanceThresh)
	}
	if gc.NumIterations <= 0 {
		return errors.Errorf("num_iterations must be greater than 0, got %d", gc.NumIterations)
	}
	return nil
}

// SeedIndices selects the initial ground seeds: the mean height of the
// numPoints lowest points forms the lowest point representative (LPR), and
// every point below LPR + heightThresh is a seed. Indices come back in
// ascending height order.
func SeedIndices(cloud pointcloud.Cloud, numPoints int, heightThresh float64) []int {
	order := make([]int, cloud.Size())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return cloud[order[i]].Position.Z < cloud[order[j]].Position.Z
	})

	n := utils.MinInt(numPoints, len(order))
	if n == 0 {
		return nil
	}
	var lpr float64
	for _, idx := range order[:n] {
		lpr += cloud[idx].Position.Z
	}
	lpr /= float64(n)

	var seeds []int
	for _, idx := range order {
		if cloud[idx].Position.Z >= lpr+heightThresh {
			break
		}
		seeds = append(seeds, idx)
	}
	return seeds
}

// SegmentGround runs ground plane fitting over the cloud: starting from the
// LPR seeds, each iteration fits a plane to the current seed set and
// reclassifies every point within DistanceThresh of it as the next seed set.
// After the final iteration the surviving seeds are labeled ground in place;
// every other point keeps its label. The final plane is returned for
// diagnostics.
func SegmentGround(ctx context.Context, cloud pointcloud.Cloud, cfg GroundConfig, logger golog.Logger) (*Plane, error) {
	if err := cfg.CheckValid(); err != nil {
		return nil, errors.Wrap(err, "invalid ground config")
	}
	if cloud.Size() == 0 {
		return nil, errors.New("cannot fit a ground plane to an empty cloud")
	}
	fitter := cfg.Fitter
	if fitter == nil {
		fitter = FitPlane
	}

	seeds := SeedIndices(cloud, cfg.NumSeedPoints, cfg.SeedHeightThresh)
	var plane *Plane
	for i := 0; i < cfg.NumIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		positions := make([]r3.Vector, len(seeds))
		for j, idx := range seeds {
			positions[j] = cloud[idx].Position
		}
		var err error
		plane, err = fitter(positions)
		if err != nil {
			return nil, errors.Wrapf(err, "ground plane fit failed on iteration %d", i)
		}

		next := make([]int, 0, len(seeds))
		for idx := range cloud {
			if plane.Distance(cloud[idx].Position) < cfg.DistanceThresh {
				next = append(next, idx)
			}
		}
		seeds = next
	}

	for _, idx := range seeds {
		cloud[idx].Label = pointcloud.LabelGround
	}
	logger.Debugf("ground plane fit labeled %d of %d points as ground", len(seeds), cloud.Size())
	return plane, nil
}
