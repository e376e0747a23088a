package segmentation

import (
	"sort"

	"github.com/scanline-labs/lidarseg/pointcloud"
)

// Clusters indexes the points of a labeled cloud by canonical cluster label.
// Indices maps each cluster label to the positions of its points in the
// source cloud.
type Clusters struct {
	Indices map[int][]int
}

// NewClusters creates an empty Clusters.
func NewClusters() *Clusters {
	return &Clusters{Indices: make(map[int][]int)}
}

// NewClustersFromCloud collects the cluster membership of a cloud that has
// been through clustering. Ground and unclassified points are skipped.
func NewClustersFromCloud(cloud pointcloud.Cloud) *Clusters {
	clusters := NewClusters()
	for i := range cloud {
		label := cloud[i].Label
		if label == pointcloud.LabelGround || label == pointcloud.LabelUnclassified {
			continue
		}
		clusters.Assign(i, label)
	}
	return clusters
}

// Assign adds the point at the given cloud index to the cluster with the
// given label.
func (c *Clusters) Assign(index, label int) {
	c.Indices[label] = append(c.Indices[label], index)
}

// N gives the number of clusters.
func (c *Clusters) N() int {
	return len(c.Indices)
}

// Labels returns the cluster labels in ascending order.
func (c *Clusters) Labels() []int {
	labels := make([]int, 0, len(c.Indices))
	for label := range c.Indices {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}

// Cloud extracts the points of one cluster as their own cloud, in the
// original scan order.
func (c *Clusters) Cloud(source pointcloud.Cloud, label int) pointcloud.Cloud {
	indices := c.Indices[label]
	out := pointcloud.NewWithPrealloc(len(indices))
	for _, idx := range indices {
		out = append(out, source[idx])
	}
	return out
}
