package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
	"github.com/joseph-ayodele/topiclm-experiments/internal/experiment"
	"github.com/joseph-ayodele/topiclm-experiments/internal/results"
)

// JobRunner executes one job.
type JobRunner interface {
	RunJob(ctx context.Context, job experiment.Job) (*results.Record, error)
}

// Outcome is what one job produced.
type Outcome struct {
	Job      experiment.Job
	Record   *results.Record
	Err      error
	Duration time.Duration
}

type task struct {
	ctx  context.Context
	slot int
	job  experiment.Job
}

// JobQueue runs jobs on a fixed number of workers. Outcomes are returned
// in submission order regardless of completion order.
type JobQueue struct {
	runner  JobRunner
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  func(Outcome)

	ch   chan task
	wg   sync.WaitGroup
	once sync.Once

	mu        sync.Mutex
	closed    bool
	submitted int

	resMu    sync.Mutex
	outcomes map[int]Outcome
}

type Option func(*JobQueue)

func WithWorkers(n int) Option {
	return func(q *JobQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *JobQueue) {
		if n > 0 {
			q.ch = make(chan task, n)
		}
	}
}

// WithJobTimeout bounds each job; zero leaves jobs unbounded.
func WithJobTimeout(d time.Duration) Option {
	return func(q *JobQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithOnDone registers a callback invoked from the worker after each job.
func WithOnDone(fn func(Outcome)) Option {
	return func(q *JobQueue) {
		q.onDone = fn
	}
}

func NewJobQueue(runner JobRunner, logger *slog.Logger, opts ...Option) *JobQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &JobQueue{
		runner:   runner,
		logger:   logger,
		workers:  4,
		ch:       make(chan task, 256),
		outcomes: make(map[int]Outcome),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *JobQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for t := range q.ch {
					out := q.run(t)
					if out.Err != nil {
						q.logger.Error("job failed", "worker_id", workerID, "model_id", out.Job.ModelID(), "error", out.Err)
					} else {
						q.logger.Debug("job succeeded", "worker_id", workerID, "model_id", out.Job.ModelID())
					}

					q.resMu.Lock()
					q.outcomes[t.slot] = out
					q.resMu.Unlock()
					if q.onDone != nil {
						q.onDone(out)
					}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// run executes one task; a panic is contained to the job that raised it.
func (q *JobQueue) run(t task) (out Outcome) {
	out.Job = t.job
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Record = nil
			out.Err = fmt.Errorf("job panicked: %v", r)
		}
		out.Duration = time.Since(start)
	}()

	if err := t.ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	ctx, cancel := common.WithTimeout(t.ctx, q.timeout)
	defer cancel()
	out.Record, out.Err = q.runner.RunJob(ctx, t.job)
	return out
}

// Enqueue submits a job. It blocks while the buffer is full.
func (q *JobQueue) Enqueue(ctx context.Context, job experiment.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "model_id", job.ModelID())
		return fmt.Errorf("%w: queue closed", common.ErrInvalidInput)
	}
	t := task{ctx: ctx, slot: q.submitted, job: job}
	q.submitted++
	select {
	case q.ch <- t:
		q.logger.Debug("queued job", "model_id", job.ModelID())
	default:
		q.logger.Debug("queue full, applying backpressure", "model_id", job.ModelID())
		q.ch <- t
	}
	return nil
}

// Wait closes the queue, blocks until every submitted job has finished and
// returns the outcomes in submission order.
func (q *JobQueue) Wait() []Outcome {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	n := q.submitted
	q.mu.Unlock()

	q.wg.Wait()

	q.resMu.Lock()
	defer q.resMu.Unlock()
	outs := make([]Outcome, n)
	for i := range outs {
		outs[i] = q.outcomes[i]
	}
	return outs
}
