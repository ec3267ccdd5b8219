package execution

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/bryanwahyu/interpretlab/internal/domain/analyses"
	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

var (
	ErrQueueFull   = errors.New("execution queue is full")
	ErrQueueClosed = errors.New("execution queue is closed")
)

// Executor is what the queue workers call for each job.
type Executor interface {
	Execute(ctx context.Context, id core.ID) (*analyses.Analysis, error)
}

// Queue runs analyses in the background on a fixed set of workers.
type Queue struct {
	exec    Executor
	log     *zap.Logger
	jobs    chan core.ID
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(exec Executor, workers, depth int, log *zap.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if depth < 1 {
		depth = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{exec: exec, log: log, jobs: make(chan core.ID, depth), workers: workers}
}

// Enqueue never blocks; a full buffer is reported as ErrQueueFull.
func (q *Queue) Enqueue(id core.ID) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- id:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the workers. They stop when ctx is cancelled or the queue
// is closed and drained.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case id, ok := <-q.jobs:
					if !ok {
						return
					}
					if _, err := q.exec.Execute(ctx, id); err != nil {
						q.log.Error("background analysis failed", zap.Int64("analysis_id", int64(id)), zap.Error(err))
					}
				}
			}
		}()
	}
}

// Close stops accepting work and waits for the workers to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
