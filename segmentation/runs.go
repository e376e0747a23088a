package segmentation

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/scanline-labs/lidarseg/pointcloud"
)

// groupByScanline buckets the given point indices by scanline id, ascending,
// preserving each point's original relative order within its scanline.
func groupByScanline(cloud pointcloud.Cloud, indices []int) [][]int {
	byID := make(map[int][]int)
	for _, idx := range indices {
		id := cloud[idx].Scanline
		byID[id] = append(byID[id], idx)
	}
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	scanlines := make([][]int, 0, len(ids))
	for _, id := range ids {
		scanlines = append(scanlines, byID[id])
	}
	return scanlines
}

// findRuns splits one scanline's points (given as cloud indices in scan
// order) into spatially contiguous runs: consecutive points closer than
// distThresh extend the current run, a larger gap starts a new one. A
// scanline whose first and last points are within the threshold is treated
// as circular, and the trailing run is folded in front of the first.
func findRuns(cloud pointcloud.Cloud, scanline []int, distThresh float64) ([][]int, error) {
	if len(scanline) == 0 {
		return nil, errors.New("scanline has no points")
	}
	var runs [][]int
	current := []int{scanline[0]}
	for i := 1; i < len(scanline); i++ {
		prev := cloud[scanline[i-1]].Position
		cur := cloud[scanline[i]].Position
		if cur.Distance(prev) < distThresh {
			current = append(current, scanline[i])
		} else {
			runs = append(runs, current)
			current = []int{scanline[i]}
		}
	}
	runs = append(runs, current)

	first := cloud[scanline[0]].Position
	last := cloud[scanline[len(scanline)-1]].Position
	if len(runs) > 1 && first.Distance(last) < distThresh {
		// the sweep closed a loop: last run and first run are one
		runs[0] = append(runs[len(runs)-1], runs[0]...)
		runs = runs[:len(runs)-1]
	}
	return runs, nil
}
