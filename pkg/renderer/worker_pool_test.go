package renderer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionRows_CoversEveryRowOnce(t *testing.T) {
	for height := 1; height <= 40; height++ {
		for workers := -1; workers <= 50; workers++ {
			ranges := PartitionRows(height, workers)
			require.NotEmpty(t, ranges)
			require.LessOrEqual(t, len(ranges), height)

			next := 0
			for _, r := range ranges {
				require.Equal(t, next, r.Start, "height=%d workers=%d: gap or overlap", height, workers)
				require.Greater(t, r.End, r.Start, "height=%d workers=%d: empty range", height, workers)
				next = r.End
			}
			require.Equal(t, height, next, "height=%d workers=%d", height, workers)
		}
	}
}

func TestPartitionRows_RemainderGoesToLast(t *testing.T) {
	ranges := PartitionRows(10, 3)
	assert.Equal(t, []RowRange{{0, 3}, {3, 6}, {6, 10}}, ranges)

	assert.Len(t, PartitionRows(3, 8), 3, "workers are clamped to the row count")
	assert.Nil(t, PartitionRows(0, 4))
}

func TestDefaultWorkers(t *testing.T) {
	assert.Greater(t, DefaultWorkers(), 0)
}

func TestRunWorkers_CollectsBlocksInOrder(t *testing.T) {
	ranges := PartitionRows(9, 3)
	task := func(ctx context.Context, worker int, rows RowRange) (*BlockJob, error) {
		return &BlockJob{RowStart: rows.Start, RowEnd: rows.End}, nil
	}

	blocks, err := runWorkers(context.Background(), ranges, task, nil)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	for i, block := range blocks {
		assert.Equal(t, ranges[i].Start, block.RowStart)
		assert.Equal(t, ranges[i].End, block.RowEnd)
	}
}

func TestRunWorkers_ErrorsAndPanics(t *testing.T) {
	ranges := PartitionRows(4, 2)
	boom := errors.New("boom")

	t.Run("returned error", func(t *testing.T) {
		task := func(ctx context.Context, worker int, rows RowRange) (*BlockJob, error) {
			if worker == 1 {
				return nil, boom
			}
			return &BlockJob{}, nil
		}
		_, err := runWorkers(context.Background(), ranges, task, nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("panic with error value unwraps", func(t *testing.T) {
		task := func(ctx context.Context, worker int, rows RowRange) (*BlockJob, error) {
			if worker == 1 {
				panic(fmt.Errorf("wrapped: %w", boom))
			}
			return &BlockJob{}, nil
		}
		_, err := runWorkers(context.Background(), ranges, task, nil)

		var workerErr *WorkerError
		require.ErrorAs(t, err, &workerErr)
		assert.Equal(t, 1, workerErr.Worker)
		assert.Equal(t, RowRange{2, 4}, workerErr.Rows)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "rows 2-4")
	})
}
