package renderer

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/shirou/gopsutil/v3/cpu"
	"golang.org/x/sync/errgroup"
)

// RowRange is a half-open range of image rows [Start, End)
type RowRange struct {
	Start, End int
}

// Len returns the number of rows in the range
func (r RowRange) Len() int { return r.End - r.Start }

// PartitionRows splits [0, height) into contiguous ranges, one per worker.
// Every range gets height/workers rows and the remainder goes to the last one.
// The worker count is clamped to [1, height] so no range is empty.
func PartitionRows(height, workers int) []RowRange {
	if height <= 0 {
		return nil
	}
	workers = max(1, min(workers, height))

	rowsPerWorker := height / workers
	ranges := make([]RowRange, workers)
	for i := range ranges {
		ranges[i] = RowRange{Start: i * rowsPerWorker, End: (i + 1) * rowsPerWorker}
	}
	ranges[workers-1].End = height
	return ranges
}

// DefaultWorkers returns the number of logical CPUs
func DefaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// WorkerError reports a panic recovered inside a render worker
type WorkerError struct {
	Worker int
	Rows   RowRange
	Value  any // The recovered panic value
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("render worker %d (rows %d-%d) failed: %v", e.Worker, e.Rows.Start, e.Rows.End, e.Value)
}

// Unwrap exposes the panic value when it was an error
func (e *WorkerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ProgressFunc is called once per finished block with the number of finished
// blocks and the total. It is called from worker goroutines.
type ProgressFunc func(done, total int)

// workerTask renders one row range into a block
type workerTask func(ctx context.Context, worker int, rows RowRange) (*BlockJob, error)

// runWorkers runs one goroutine per row range and waits for all of them.
// The first error cancels the others; panics are returned as *WorkerError.
func runWorkers(ctx context.Context, ranges []RowRange, task workerTask, progress ProgressFunc) ([]*BlockJob, error) {
	blocks := make([]*BlockJob, len(ranges))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i, rows := range ranges {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &WorkerError{Worker: i, Rows: rows, Value: r}
				}
			}()

			block, err := task(gctx, i, rows)
			if err != nil {
				return err
			}
			blocks[i] = block

			finished := done.Add(1)
			if progress != nil {
				progress(int(finished), len(ranges))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}
