package usecase

import (
	"errors"
	"math"
	"sort"

	"AssetCast/internal/domain/models"
)

var errNoCompleteRows = errors.New("no complete rows available for knn imputation")

// knnImpute fills missing cells from the K nearest complete rows, measured by
// Euclidean distance over the columns both rows observe. Imputing across all
// numeric columns jointly captures cross-series correlation that per-column
// interpolation misses. K adapts as max(1, min(5, completeRows-1)).
func knnImpute(f *models.Frame) error {
	n := f.NumRows()
	cols := f.Columns
	if n == 0 || len(cols) == 0 {
		return nil
	}

	complete := make([]int, 0, n)
	incomplete := make([]int, 0)
	for i := 0; i < n; i++ {
		missing := false
		for _, c := range cols {
			if math.IsNaN(f.Values[c][i]) {
				missing = true
				break
			}
		}
		if missing {
			incomplete = append(incomplete, i)
		} else {
			complete = append(complete, i)
		}
	}
	if len(incomplete) == 0 {
		return nil
	}
	if len(complete) == 0 {
		return errNoCompleteRows
	}

	k := len(complete) - 1
	if k > 5 {
		k = 5
	}
	if k < 1 {
		k = 1
	}

	type neighbor struct {
		row  int
		dist float64
	}
	for _, row := range incomplete {
		neighbors := make([]neighbor, 0, len(complete))
		for _, donor := range complete {
			var sum float64
			shared := 0
			for _, c := range cols {
				v := f.Values[c][row]
				if math.IsNaN(v) {
					continue
				}
				d := v - f.Values[c][donor]
				sum += d * d
				shared++
			}
			var dist float64
			if shared > 0 {
				dist = math.Sqrt(sum / float64(shared))
			} else {
				// Nothing observed in this row; fall back to time proximity.
				dist = math.Abs(float64(row - donor))
			}
			neighbors = append(neighbors, neighbor{row: donor, dist: dist})
		}
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })
		if len(neighbors) > k {
			neighbors = neighbors[:k]
		}
		for _, c := range cols {
			if !math.IsNaN(f.Values[c][row]) {
				continue
			}
			var sum float64
			for _, nb := range neighbors {
				sum += f.Values[c][nb.row]
			}
			f.Values[c][row] = sum / float64(len(neighbors))
		}
	}
	return nil
}
