package segmentation

import (
	"github.com/scanline-labs/lidarseg/pointcloud"
	"github.com/scanline-labs/lidarseg/utils"
)

// LabelSet tracks equivalences between provisional cluster labels as a
// union-find forest with map-backed parent pointers. The canonical label of
// a class is always its numerically smallest member. The ground sentinel is
// never allocated and never appears in the mapping. Classes only ever merge;
// they never split.
type LabelSet struct {
	parent map[int]int
	next   int
}

// NewLabelSet returns an empty label set.
func NewLabelSet() *LabelSet {
	return &LabelSet{parent: make(map[int]int), next: 1}
}

// NewLabel allocates the smallest unused positive label, skipping the ground
// sentinel, and registers it as its own root.
func (ls *LabelSet) NewLabel() int {
	for {
		_, taken := ls.parent[ls.next]
		if !taken && ls.next != pointcloud.LabelGround {
			break
		}
		ls.next++
	}
	label := ls.next
	ls.parent[label] = label
	ls.next++
	return label
}

// Resolve follows parent pointers to the canonical label, compressing the
// path behind it. An unregistered label resolves to itself.
func (ls *LabelSet) Resolve(label int) int {
	root := label
	for {
		parent, ok := ls.parent[root]
		if !ok || parent == root {
			break
		}
		root = parent
	}
	for label != root {
		parent := ls.parent[label]
		ls.parent[label] = root
		label = parent
	}
	return root
}

// Union merges the classes of all given labels and returns the new root, the
// smallest canonical label among them.
func (ls *LabelSet) Union(labels []int) int {
	if len(labels) == 0 {
		return 0
	}
	root := ls.Resolve(labels[0])
	for _, label := range labels[1:] {
		root = utils.MinInt(root, ls.Resolve(label))
	}
	for _, label := range labels {
		ls.parent[ls.Resolve(label)] = root
		ls.parent[label] = root
	}
	return root
}

// Len returns the number of labels registered so far.
func (ls *LabelSet) Len() int {
	return len(ls.parent)
}
