// Package worker provides the bounded fan-out pool used for per-team and
// per-game feed work inside a batch.
package worker

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/cameronntaylor/nba-watchability/pkg/logger"
	"github.com/cameronntaylor/nba-watchability/pkg/metrics"
)

// defaultWorkerMultiplier scales runtime.NumCPU() when no size is given.
const defaultWorkerMultiplier = 4

// Task is one unit of batch work. A failing task is logged and counted but
// never aborts its siblings; callers fall back to neutral inputs for the
// keys that failed.
type Task struct {
	Key string
	Run func(ctx context.Context) error
}

// Pool fans tasks out over a fixed number of goroutines and joins on all of
// them before returning.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool with the given concurrency. A size below one falls
// back to a CPU-derived default.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		size:   size,
		name:   "worker",
		logger: logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(p)
	}
	metrics.UpdateWorkerCount(p.name, p.size)
	return p
}

// Size returns the pool concurrency.
func (p *Pool) Size() int {
	return p.size
}

// Run executes all tasks and blocks until every one has finished or the
// context is canceled. It returns the number of failed tasks; context
// cancellation counts the undone remainder as failures.
func (p *Pool) Run(ctx context.Context, tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}

	feed := make(chan Task)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range feed {
				if err := p.runOne(ctx, task); err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			break dispatch
		case feed <- task:
			dispatched++
		}
	}
	close(feed)
	wg.Wait()

	failed += len(tasks) - dispatched
	return failed
}

func (p *Pool) runOne(ctx context.Context, task Task) error {
	start := time.Now()
	err := task.Run(ctx)
	metrics.RecordTaskLatency(p.name, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordTaskFailure(p.name)
		p.logger.Warn(ctx, "task failed, continuing batch",
			logger.String("pool", p.name),
			logger.String("key", task.Key),
			logger.Error(err),
		)
	}
	return err
}
