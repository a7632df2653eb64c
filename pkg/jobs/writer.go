package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrWriterStopped is returned when a task is submitted to a writer that is not running.
var ErrWriterStopped = errors.New("writer not running")

// Task is a unit of work executed on the writer goroutine.
type Task func(ctx context.Context) error

// WriterConfig configures writer behaviour.
type WriterConfig struct {
	BufferSize int
	Logger     *zap.Logger
}

type request struct {
	ctx      context.Context
	task     Task
	done     chan error
	enqueued time.Time
}

// Writer runs submitted tasks one at a time on a single goroutine, in
// submission order. Callers block until their task has run.
type Writer struct {
	name       string
	bufferSize int
	logger     *zap.Logger

	tasks   chan request
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewWriter builds a writer. It must be started before use.
func NewWriter(name string, cfg WriterConfig) *Writer {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Writer{
		name:       name,
		bufferSize: cfg.BufferSize,
		logger:     cfg.Logger,
		tasks:      make(chan request, cfg.BufferSize),
		stopped:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. Safe to call once.
func (w *Writer) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.worker()
	w.started = true
	w.logger.Sugar().Infow("writer started", "writer", w.name, "buffer", w.bufferSize)
}

// Stop cancels the worker and waits for the in-flight task to finish.
func (w *Writer) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.cancel()
	w.mu.Unlock()
	w.wg.Wait()
	w.logger.Sugar().Infow("writer stopped", "writer", w.name)
}

// Do submits task and waits for its result. A task whose context is done by
// the time it reaches the front of the queue is skipped.
func (w *Writer) Do(ctx context.Context, task Task) error {
	w.mu.Lock()
	wctx := w.ctx
	started := w.started
	w.mu.Unlock()

	if !started {
		return fmt.Errorf("writer %s: %w", w.name, ErrWriterStopped)
	}

	req := request{ctx: ctx, task: task, done: make(chan error, 1), enqueued: time.Now()}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wctx.Done():
		return fmt.Errorf("writer %s: %w", w.name, ErrWriterStopped)
	case w.tasks <- req:
	}

	select {
	case err := <-req.done:
		return err
	case <-w.stopped:
		select {
		case err := <-req.done:
			return err
		default:
			return fmt.Errorf("writer %s: %w", w.name, ErrWriterStopped)
		}
	}
}

func (w *Writer) worker() {
	defer w.wg.Done()
	defer close(w.stopped)
	for {
		select {
		case <-w.ctx.Done():
			return
		case req := <-w.tasks:
			req.done <- w.run(req)
		}
	}
}

func (w *Writer) run(req request) (err error) {
	if err := req.ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Sugar().Errorw("writer task panicked", "writer", w.name, "panic", r)
			err = fmt.Errorf("writer %s: task panicked: %v", w.name, r)
		}
	}()
	if wait := time.Since(req.enqueued); wait > time.Second {
		w.logger.Sugar().Warnw("writer task waited long", "writer", w.name, "wait", wait)
	}
	return req.task(req.ctx)
}
