package segmentation

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/scanline-labs/lidarseg/pointcloud"
)

func TestConfigCheckValid(t *testing.T) {
	cfg := Config{}
	err := cfg.CheckValid()
	// both stage errors are reported together
	test.That(t, err.Error(), test.ShouldContainSubstring, "num_seed_points")
	test.That(t, err.Error(), test.ShouldContainSubstring, "run_distance_threshold")

	defaults := DefaultConfig()
	test.That(t, defaults.CheckValid(), test.ShouldBeNil)
}

// twoObjectScene is a flat ground slab at z = 0 swept by two scanlines, with
// two separate objects raised at z = 1 crossing both scanlines.
func twoObjectScene() pointcloud.Cloud {
	var cloud pointcloud.Cloud
	for line := 0; line < 2; line++ {
		for i := 0; i < 20; i++ {
			pt := pointcloud.NewPoint(0.5*float64(i), 0.5*float64(line), 0, line)
			pt.TrueLabel = 1
			cloud = append(cloud, pt)
		}
	}
	for line := 0; line < 2; line++ {
		for i := 0; i < 3; i++ {
			pt := pointcloud.NewPoint(2+0.1*float64(i), 0.5*float64(line), 1, line)
			pt.TrueLabel = 2
			cloud = append(cloud, pt)
		}
		for i := 0; i < 3; i++ {
			pt := pointcloud.NewPoint(8+0.1*float64(i), 0.5*float64(line), 1, line)
			pt.TrueLabel = 3
			cloud = append(cloud, pt)
		}
	}
	return cloud
}

func TestSegmentGroundAndClusters(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cloud := twoObjectScene()

	cfg := DefaultConfig()
	cfg.Ground.NumSeedPoints = 30
	seg, err := SegmentGroundAndClusters(context.Background(), cloud, cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, seg.Plane, test.ShouldNotBeNil)
	test.That(t, seg.NumGround, test.ShouldEqual, 40)
	test.That(t, seg.Clusters.N(), test.ShouldEqual, 2)

	// all ground labeled, each object one consistent cluster id
	objectLabels := make(map[int]map[int]bool)
	for i := range cloud {
		pt := cloud[i]
		switch pt.TrueLabel {
		case 1:
			test.That(t, pt.Label, test.ShouldEqual, pointcloud.LabelGround)
		default:
			test.That(t, pt.Label, test.ShouldNotEqual, pointcloud.LabelGround)
			test.That(t, pt.Label, test.ShouldNotEqual, pointcloud.LabelUnclassified)
			if objectLabels[pt.TrueLabel] == nil {
				objectLabels[pt.TrueLabel] = make(map[int]bool)
			}
			objectLabels[pt.TrueLabel][pt.Label] = true
		}
	}
	test.That(t, objectLabels[2], test.ShouldHaveLength, 1)
	test.That(t, objectLabels[3], test.ShouldHaveLength, 1)
	// the two objects are distinct clusters
	for label := range objectLabels[2] {
		test.That(t, objectLabels[3][label], test.ShouldBeFalse)
	}

	// cluster summary agrees with the labels in the cloud
	for _, label := range seg.Clusters.Labels() {
		clusterCloud := seg.Clusters.Cloud(cloud, label)
		test.That(t, clusterCloud.Size(), test.ShouldEqual, 6)
		for _, pt := range clusterCloud {
			test.That(t, pt.Label, test.ShouldEqual, label)
		}
	}
}

func TestSegmentGroundAndClustersExhausted(t *testing.T) {
	logger := golog.NewTestLogger(t)
	// ground-only scene: everything gets labeled ground, clustering has
	// nothing left to work with
	var cloud pointcloud.Cloud
	for line := 0; line < 2; line++ {
		for i := 0; i < 10; i++ {
			cloud = append(cloud, pointcloud.NewPoint(float64(i), float64(line), 0, line))
		}
	}
	cfg := DefaultConfig()
	cfg.Ground.NumSeedPoints = 10
	_, err := SegmentGroundAndClusters(context.Background(), cloud, cfg, logger)
	test.That(t, errors.Is(err, ErrInputExhausted), test.ShouldBeTrue)
}

func TestSegmentGroundAndClustersInvalidConfig(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := SegmentGroundAndClusters(context.Background(), twoObjectScene(), Config{}, logger)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid segmentation config")
}

func TestClustersFromCloud(t *testing.T) {
	cloud := pointcloud.Cloud{
		pointcloud.NewPoint(0, 0, 0, 0),
		pointcloud.NewPoint(1, 0, 0, 0),
		pointcloud.NewPoint(2, 0, 0, 0),
		pointcloud.NewPoint(3, 0, 0, 0),
	}
	cloud[0].Label = 3
	cloud[1].Label = pointcloud.LabelGround
	cloud[2].Label = 1
	cloud[3].Label = 3

	clusters := NewClustersFromCloud(cloud)
	test.That(t, clusters.N(), test.ShouldEqual, 2)
	test.That(t, clusters.Labels(), test.ShouldResemble, []int{1, 3})
	test.That(t, clusters.Indices[3], test.ShouldResemble, []int{0, 3})
	test.That(t, clusters.Cloud(cloud, 1).Size(), test.ShouldEqual, 1)
}
