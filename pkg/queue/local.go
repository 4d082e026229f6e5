package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

type localTask struct {
	id    string
	task  string
	jobID string
}

// Local is a fixed-size in-process worker pool over an unbounded backlog.
// Tasks still in the backlog when Close is called are dropped.
type Local struct {
	workers int
	timeout time.Duration

	lock     sync.Mutex
	cond     *sync.Cond
	backlog  []*localTask
	handlers map[string]Handler
	closed   bool
	started  bool

	// wg tracks active workers to ensure graceful shutdown.
	wg   sync.WaitGroup
	done chan struct{}
}

var _ Queue = (*Local)(nil)

func NewLocalQueue(opts *Options) *Local {
	opts.SetDefaults()
	l := &Local{
		workers:  opts.Workers,
		timeout:  opts.Timeout,
		handlers: map[string]Handler{},
		done:     make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.lock)
	return l
}

func (l *Local) Register(task string, handler Handler) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.started {
		return fmt.Errorf("%w cannot register %s, queue already running", errors.ErrInvalidState, task)
	}
	l.handlers[task] = handler
	return nil
}

// Run spawns the workers and blocks until Close is called.
func (l *Local) Run() error {
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return errors.ErrQueueClosed
	}
	if l.started {
		l.lock.Unlock()
		return fmt.Errorf("%w queue already running", errors.ErrInvalidState)
	}
	l.started = true
	l.lock.Unlock()

	slog.Info("Starting worker pool", "concurrency", l.workers)
	for i := 0; i < l.workers; i++ {
		l.wg.Add(1)
		go l.worker(i)
	}

	<-l.done
	return nil
}

func (l *Local) Enqueue(ctx context.Context, task, jobID string) (string, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.closed {
		return "", errors.ErrQueueClosed
	}
	t := &localTask{id: uuid.NewString(), task: task, jobID: jobID}
	l.backlog = append(l.backlog, t)
	l.cond.Signal()
	return t.id, nil
}

func (l *Local) Shared() bool {
	return false
}

// Close stops the workers, waiting for in-flight tasks to finish.
func (l *Local) Close() error {
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return nil
	}
	l.closed = true
	dropped := len(l.backlog)
	l.backlog = nil
	l.cond.Broadcast()
	l.lock.Unlock()

	slog.Info("Stopping worker pool, waiting for tasks to drain...", "dropped", dropped)
	l.wg.Wait()
	close(l.done)
	slog.Info("Worker pool stopped")
	return nil
}

// next blocks until there's a task or the queue is closed.
func (l *Local) next() (*localTask, Handler, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for len(l.backlog) == 0 && !l.closed {
		l.cond.Wait()
	}
	if l.closed {
		return nil, nil, false
	}
	t := l.backlog[0]
	l.backlog[0] = nil
	l.backlog = l.backlog[1:]
	return t, l.handlers[t.task], true
}

func (l *Local) worker(id int) {
	defer l.wg.Done()
	slog.Debug("Worker started", "workerID", id)

	for {
		t, handler, ok := l.next()
		if !ok {
			break
		}
		if handler == nil {
			slog.Error("No handler registered for task", "task", t.task, "jobID", t.jobID)
			continue
		}
		slog.Debug("Processing task", "workerID", id, "task", t.task, "jobID", t.jobID)
		l.handle(handler, t, id)
	}

	slog.Debug("Worker stopped", "workerID", id)
}

// handle runs one task, bounded by the queue's timeout if there is one.
func (l *Local) handle(handler Handler, t *localTask, workerID int) {
	ctx := context.Background()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	if err := handler(ctx, t.jobID); err != nil {
		slog.Error("Task handler failed", "workerID", workerID, "task", t.task, "jobID", t.jobID, "error", err)
	}
}
