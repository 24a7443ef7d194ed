// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/pdiddy/formatflip/pkg/types"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int

	// Results has one entry per task, in task order.
	Results []types.Result

	// Workers is the pool size actually used.
	Workers int

	// Elapsed is the wall time of the whole batch.
	Elapsed time.Duration
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Summary formats the counts as a single line.
func (r BatchResult) Summary() string {
	return fmt.Sprintf("Batch summary: %d converted, %d skipped, %d failed (total: %d)",
		r.Converted, r.Skipped, r.Failed, r.Total())
}

// Observer is called once per finished task. Calls are serialized.
type Observer func(types.Result)

// Batch converts every task using at most workers concurrent conversions
// (zero means one per CPU) and returns after all tasks have finished. A
// panic inside one task is recovered and recorded as that task's failure.
func (c *Converter) Batch(ctx context.Context, tasks types.TaskSet, workers int, observe Observer) BatchResult {
	start := time.Now()
	result := BatchResult{Results: make([]types.Result, len(tasks))}
	if len(tasks) == 0 {
		return result
	}
	result.Workers = min(types.ResolveWorkers(workers), len(tasks))

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(result.Workers)
	for i, task := range tasks {
		i, task := i, task
		p.Go(func() {
			res := c.isolated(ctx, task)
			result.Results[i] = res

			log.Debug().
				Str("input", task.InputPath).
				Str("output", task.OutputPath()).
				Str("outcome", string(res.Outcome)).
				Dur("duration", res.Duration).
				Msg("task finished")

			if observe != nil {
				mu.Lock()
				observe(res)
				mu.Unlock()
			}
		})
	}
	p.Wait()

	for _, res := range result.Results {
		switch res.Outcome {
		case types.OutcomeSuccess:
			result.Converted++
		case types.OutcomeSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}
	result.Elapsed = time.Since(start)
	return result
}

// isolated runs ConvertFile, turning a panic into a failure result.
func (c *Converter) isolated(ctx context.Context, task types.Task) (res types.Result) {
	start := time.Now()
	var pc panics.Catcher
	pc.Try(func() { res = c.ConvertFile(ctx, task) })
	if r := pc.Recovered(); r != nil {
		return types.Failed(task, fmt.Errorf("internal fault: %v", r.Value), time.Since(start))
	}
	return res
}
