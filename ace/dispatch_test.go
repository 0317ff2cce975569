package ace

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		workers int
		want    []RowRange
	}{
		{"even", 8, 4, []RowRange{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"remainder goes first", 10, 3, []RowRange{{0, 4}, {4, 7}, {7, 10}}},
		{"single worker", 5, 1, []RowRange{{0, 5}}},
		{"zero workers clamped", 5, 0, []RowRange{{0, 5}}},
		{"negative workers clamped", 5, -2, []RowRange{{0, 5}}},
		{"more workers than rows", 3, 8, []RowRange{{0, 1}, {1, 2}, {2, 3}}},
		{"no rows", 0, 4, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(tt.rows, tt.workers))
		})
	}
}

func TestPartitionCoversRowsOnce(t *testing.T) {
	for rows := 1; rows < 40; rows++ {
		for workers := 1; workers < 12; workers++ {
			ranges := Partition(rows, workers)
			next := 0
			for _, r := range ranges {
				assert.Equal(t, next, r.Start)
				assert.Greater(t, r.End, r.Start, "every worker owns at least one row")
				next = r.End
			}
			assert.Equal(t, rows, next)

			// Sizes differ by at most one.
			minSize, maxSize := rows, 0
			for _, r := range ranges {
				size := r.End - r.Start
				minSize = min(minSize, size)
				maxSize = max(maxSize, size)
			}
			assert.LessOrEqual(t, maxSize-minSize, 1)
		}
	}
}

func TestParallelVisitsEveryRange(t *testing.T) {
	ranges := Partition(100, 7)
	visited := make([]int32, 100)
	var calls atomic.Int32
	Parallel(ranges, func(worker int, r RowRange) {
		calls.Add(1)
		assert.Equal(t, ranges[worker], r)
		for y := r.Start; y < r.End; y++ {
			visited[y]++
		}
	})
	assert.EqualValues(t, 7, calls.Load())
	for y, n := range visited {
		assert.EqualValues(t, 1, n, "row %d", y)
	}
}
