package worker

import (
	"context"
	"fmt"
	"sync"

	"backup-archiver/internal/config"
	"backup-archiver/internal/summary"

	"go.uber.org/zap"
)

// Pool fans server tasks out across a bounded set of workers.
type Pool struct {
	size      int
	processor *Processor
	logger    *zap.Logger
}

// NewPool creates a worker pool of the given size.
func NewPool(size int, processor *Processor, logger *zap.Logger) *Pool {
	return &Pool{
		size:      size,
		processor: processor,
		logger:    logger,
	}
}

// ProcessGroup archives one backup group: one task per configured server,
// at most p.size running concurrently. Results are folded in as tasks
// complete; a task that fails as a whole is logged with its server
// identity and contributes nothing to the returned counts.
func (p *Pool) ProcessGroup(ctx context.Context, group config.Group) summary.GroupCounts {
	tasks := make(chan Task, len(group.Servers))
	results := make(chan Result, len(group.Servers))

	var wg sync.WaitGroup
	p.Start(ctx, tasks, results, &wg)

	for _, server := range group.Servers {
		tasks <- Task{Group: group, Server: server}
	}
	close(tasks)

	go func() {
		wg.Wait()
		close(results)
	}()

	var counts summary.GroupCounts
	for res := range results {
		if res.Err != nil {
			p.logger.Error("Server task failed",
				zap.String("group", res.Group),
				zap.String("server", res.Server),
				zap.Error(res.Err),
			)
			continue
		}
		counts.Processed += res.Counts.Processed
		counts.Moved += res.Counts.Moved
		counts.Failed += res.Counts.Failed
	}

	return counts
}

// Start starts the worker pool
func (p *Pool) Start(ctx context.Context, tasks <-chan Task, results chan<- Result, wg *sync.WaitGroup) {
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go p.worker(ctx, i, tasks, results, wg)
	}
}

func (p *Pool) worker(ctx context.Context, id int, tasks <-chan Task, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()

	logger := p.logger.With(zap.Int("worker_id", id))
	logger.Debug("Worker started")

	for {
		select {
		case task, ok := <-tasks:
			if !ok {
				logger.Debug("Worker finished - no more tasks")
				return
			}

			results <- p.runTask(ctx, task)

		case <-ctx.Done():
			logger.Debug("Worker stopped - context cancelled")
			return
		}
	}
}

// runTask executes one server task, converting a panic into an error
// result so a misbehaving task never takes its siblings down.
func (p *Pool) runTask(ctx context.Context, task Task) (res Result) {
	res = Result{Group: task.Group.Name, Server: task.Server}

	defer func() {
		if r := recover(); r != nil {
			res.Counts = summary.GroupCounts{}
			res.Err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	res.Counts, res.Err = p.processor.ProcessServer(ctx, task)
	return res
}
