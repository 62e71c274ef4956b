// Package worker moves accepted-callback delivery off the request path.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/events"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
)

type job struct {
	ctx  context.Context
	info models.OrderStateInfo
}

// WorkerPool is an events.Sink that queues CallbackValidated for next and
// ignores every other event.
type WorkerPool struct {
	events.Nop

	jobs    chan job
	workers int
	next    events.Sink
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewWorkerPool(next events.Sink, workers, queue int, logger *zap.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 5
	}
	if queue <= 0 {
		queue = 1000
	}

	return &WorkerPool{
		jobs:    make(chan job, queue),
		workers: workers,
		next:    next,
		logger:  logging.OrNop(logger),
	}
}

// Start launches the workers. When ctx ends they drain what is already
// queued and exit; Wait blocks until then.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) Wait() { wp.wg.Wait() }

// CallbackValidated never blocks; a full queue drops the event with a warning.
func (wp *WorkerPool) CallbackValidated(ctx context.Context, info models.OrderStateInfo) {
	task := job{ctx: context.WithoutCancel(ctx), info: info}
	select {
	case wp.jobs <- task:
	default:
		wp.logger.Warn("monoparts.dispatch.queue_full", append(logging.FieldsFromContext(ctx),
			zap.Int("capacity", cap(wp.jobs)),
		)...)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.logger.Debug("worker iniciado", zap.Int("id", id))

	for {
		select {
		case <-ctx.Done():
			wp.drain()
			wp.logger.Debug("worker apagado", zap.Int("id", id))
			return

		case task := <-wp.jobs:
			wp.run(task)
		}
	}
}

func (wp *WorkerPool) drain() {
	for {
		select {
		case task := <-wp.jobs:
			wp.run(task)
		default:
			return
		}
	}
}

func (wp *WorkerPool) run(task job) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("monoparts.dispatch.panic", append(logging.FieldsFromContext(task.ctx),
				zap.Any("panic", r),
			)...)
		}
	}()
	wp.next.CallbackValidated(task.ctx, task.info)
}
