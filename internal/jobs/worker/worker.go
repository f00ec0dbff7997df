package worker

import (
	"context"
	"fmt"
	"sync"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/jobs/runtime"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

type Options struct {
	Concurrency int
	QueueSize   int
}

// Worker runs submitted jobs on a bounded goroutine pool fed by a buffered
// in-memory queue. Queued jobs are lost on restart.
type Worker struct {
	log      *logger.Logger
	registry *runtime.Registry
	queue    chan *runtime.Job
	opts     Options

	startOnce sync.Once
	wg        sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, registry *runtime.Registry, opts Options) *Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	return &Worker{
		log:      baseLog.With("component", "JobWorker"),
		registry: registry,
		queue:    make(chan *runtime.Job, opts.QueueSize),
		opts:     opts,
	}
}

// Submit enqueues job without blocking. It fails with ErrQueueFull when the
// buffer is exhausted.
func (w *Worker) Submit(job *runtime.Job) error {
	if job == nil {
		return fmt.Errorf("nil job")
	}
	select {
	case w.queue <- job:
		return nil
	default:
		w.log.Warn("Job queue full", "job_type", job.Type, "call_id", job.CallID)
		return types.ErrQueueFull
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		w.log.Info("Starting job worker pool", "concurrency", w.opts.Concurrency, "queue_size", w.opts.QueueSize)
		for i := 0; i < w.opts.Concurrency; i++ {
			workerID := i + 1
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.runLoop(ctx, workerID)
			}()
		}
	})
}

// Wait blocks until every loop has returned after ctx cancellation.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case job := <-w.queue:
			w.dispatch(ctx, workerID, job)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, workerID int, job *runtime.Job) {
	jc := runtime.NewContext(ctx, job)
	h, ok := w.registry.Get(job.Type)
	if !ok {
		w.log.Warn("No handler registered for job_type",
			"worker_id", workerID,
			"job_type", job.Type,
			"job_id", job.ID,
		)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Job handler panic",
				"worker_id", workerID,
				"job_id", job.ID,
				"job_type", job.Type,
				"call_id", job.CallID,
				"panic", r,
			)
			w.fail(jc, h, errFromRecover(r))
		}
	}()

	if runErr := h.Run(jc); runErr != nil {
		jc.Fail("run", runErr)
	}
	if stage, err := jc.Failure(); err != nil {
		w.log.Warn("Job failed",
			"worker_id", workerID,
			"job_id", job.ID,
			"job_type", job.Type,
			"call_id", job.CallID,
			"stage", stage,
			"error", err,
		)
		w.fail(jc, h, err)
	}
}

func (w *Worker) fail(jc *runtime.Context, h runtime.Handler, err error) {
	if fh, ok := h.(runtime.FailureHandler); ok {
		fh.OnFailure(jc, err)
	}
}

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
