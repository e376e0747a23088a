// Package segmentation splits labeled lidar clouds into a ground surface and
// discrete object clusters.
//
// The pipeline has two stages. Ground plane fitting iteratively estimates a
// planar ground model from low-height seed points and labels everything near
// the final plane as ground. Scan line run clustering then groups the
// remaining points into connected components by walking each scanline in
// sweep order and merging runs across neighboring scanlines.
package segmentation

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/scanline-labs/lidarseg/pointcloud"
)

// Config bundles the parameters of the full segmentation pipeline.
type Config struct {
	Ground  GroundConfig
	Cluster ClusterConfig
}

// DefaultConfig returns the default parameters for both stages.
func DefaultConfig() Config {
	return Config{Ground: DefaultGroundConfig(), Cluster: DefaultClusterConfig()}
}

// CheckValid checks that both stage configs have valid inputs.
func (c *Config) CheckValid() error {
	return multierr.Combine(c.Ground.CheckValid(), c.Cluster.CheckValid())
}

// Segmentation is the outcome of a full ground and cluster pass over a cloud.
type Segmentation struct {
	// Plane is the ground plane from the final fitting iteration.
	Plane *Plane
	// NumGround is how many points were labeled ground.
	NumGround int
	// Clusters indexes the object clusters found among non-ground points.
	Clusters *Clusters
}

// SegmentGroundAndClusters labels the cloud in place: ground points get the
// ground sentinel and every remaining point gets its cluster's canonical
// label. There is no partial success; on error the cloud's labels must not
// be trusted.
func SegmentGroundAndClusters(ctx context.Context, cloud pointcloud.Cloud, cfg Config, logger golog.Logger) (*Segmentation, error) {
	if err := cfg.CheckValid(); err != nil {
		return nil, errors.Wrap(err, "invalid segmentation config")
	}
	meta := cloud.MetaData()
	logger.Debugf("segmenting %d points, bounds x [%v, %v] y [%v, %v] z [%v, %v]",
		cloud.Size(), meta.MinX, meta.MaxX, meta.MinY, meta.MaxY, meta.MinZ, meta.MaxZ)

	plane, err := SegmentGround(ctx, cloud, cfg.Ground, logger)
	if err != nil {
		return nil, err
	}
	if err := ClusterScanLineRuns(ctx, cloud, cfg.Cluster, logger); err != nil {
		return nil, err
	}

	seg := &Segmentation{Plane: plane, Clusters: NewClustersFromCloud(cloud)}
	for i := range cloud {
		if cloud[i].Label == pointcloud.LabelGround {
			seg.NumGround++
		}
	}
	return seg, nil
}
