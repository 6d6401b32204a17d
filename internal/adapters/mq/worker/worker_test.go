package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cameronntaylor/nba-watchability/internal/adapters/mq/worker"
	"github.com/cameronntaylor/nba-watchability/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestPoolRun(t *testing.T) {
	Convey("Given a pool of four workers", t, func() {
		p := worker.NewPool(4, worker.WithName("test-pool"))
		ctx := context.Background()

		Convey("All tasks run exactly once and Run joins on completion", func() {
			var mu sync.Mutex
			seen := map[string]int{}

			tasks := make([]worker.Task, 0, 20)
			for _, key := range []string{"bos", "lal", "den", "okc", "nyk"} {
				key := key
				for i := 0; i < 4; i++ {
					k := key
					tasks = append(tasks, worker.Task{Key: k, Run: func(context.Context) error {
						mu.Lock()
						seen[k]++
						mu.Unlock()
						return nil
					}})
				}
			}

			failed := p.Run(ctx, tasks)
			So(failed, ShouldEqual, 0)
			total := 0
			for _, n := range seen {
				total += n
			}
			So(total, ShouldEqual, 20)
		})

		Convey("One failing task does not stop its siblings", func() {
			var ran atomic.Int64
			tasks := []worker.Task{
				{Key: "ok-1", Run: func(context.Context) error { ran.Add(1); return nil }},
				{Key: "boom", Run: func(context.Context) error { return errors.New("feed 500") }},
				{Key: "ok-2", Run: func(context.Context) error { ran.Add(1); return nil }},
			}
			failed := p.Run(ctx, tasks)
			So(failed, ShouldEqual, 1)
			So(ran.Load(), ShouldEqual, 2)
		})

		Convey("Cancellation counts undispatched tasks as failures", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			release := make(chan struct{})

			tasks := make([]worker.Task, 0, 16)
			for i := 0; i < 16; i++ {
				tasks = append(tasks, worker.Task{Key: "slow", Run: func(c context.Context) error {
					select {
					case <-release:
					case <-c.Done():
					}
					return nil
				}})
			}

			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
				close(release)
			}()

			failed := p.Run(cancelCtx, tasks)
			So(failed, ShouldBeGreaterThan, 0)
		})

		Convey("An empty task list returns immediately", func() {
			So(p.Run(ctx, nil), ShouldEqual, 0)
		})
	})

	Convey("Given a pool with a non-positive size", t, func() {
		p := worker.NewPool(0)
		So(p.Size(), ShouldBeGreaterThan, 0)
	})
}
