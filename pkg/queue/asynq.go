package queue

import (
	"context"
	stderrs "errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

const (
	asyncWorkQueue = "wasmbuild:builds"
)

// Asynq is a Queue over redis, shared by every process pointed at the same
// redis. The task id is the job id, so a job can only be enqueued once.
type Asynq struct {
	opts *Options
	conn asynq.RedisConnOpt

	cli *asynq.Client

	// if register is called we're intended to start a server
	lock sync.Mutex
	mux  *asynq.ServeMux
	srv  *asynq.Server

	closeOnce sync.Once
	done      chan struct{}
}

var _ Queue = (*Asynq)(nil)

func NewAsynqQueue(opts *Options) (*Asynq, error) {
	opts.SetDefaults()
	conn, err := redisConnOpt(opts)
	if err != nil {
		return nil, err
	}
	return &Asynq{
		opts: opts,
		conn: conn,
		cli:  asynq.NewClient(conn),
		done: make(chan struct{}),
	}, nil
}

func (a *Asynq) Close() error {
	a.closeOnce.Do(func() {
		a.lock.Lock()
		srv := a.srv
		a.lock.Unlock()
		if srv != nil {
			srv.Shutdown()
		}
		close(a.done)
	})
	return a.cli.Close()
}

func (a *Asynq) Register(task string, handler Handler) error {
	a.buildServer()
	a.lock.Lock()
	mux := a.mux
	a.lock.Unlock()

	mux.HandleFunc(task, func(ctx context.Context, t *asynq.Task) error {
		jobID := string(t.Payload())
		if jobID == "" {
			return fmt.Errorf("%w task %s without job id", errors.ErrInvalidArg, t.Type())
		}
		return handler(ctx, jobID)
	})
	return nil
}

// Run starts processing and blocks until Close is called.
func (a *Asynq) Run() error {
	a.lock.Lock()
	srv, mux := a.srv, a.mux
	a.lock.Unlock()
	if srv == nil {
		return fmt.Errorf("%w no handlers registered", errors.ErrInvalidState)
	}
	if err := srv.Start(mux); err != nil {
		return err
	}
	<-a.done
	return nil
}

func (a *Asynq) Enqueue(ctx context.Context, task, jobID string) (string, error) {
	opts := []asynq.Option{
		asynq.Queue(asyncWorkQueue),
		asynq.TaskID(jobID),
		asynq.MaxRetry(0),
	}
	if a.opts.Timeout > 0 {
		opts = append(opts, asynq.Timeout(a.opts.Timeout))
	}
	info, err := a.cli.EnqueueContext(ctx, asynq.NewTask(task, []byte(jobID)), opts...)
	if stderrs.Is(err, asynq.ErrTaskIDConflict) {
		return "", fmt.Errorf("%w job %s already enqueued", errors.ErrInvalidState, jobID)
	} else if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (a *Asynq) Shared() bool {
	return true
}

func (a *Asynq) buildServer() {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.mux != nil {
		// someone locked and set this first
		return
	}
	srv := asynq.NewServer(
		a.conn,
		asynq.Config{
			Concurrency: a.opts.Workers,
			Queues:      map[string]int{asyncWorkQueue: 1},
			Logger:      &asynqLogger{log: slog.Default().With("component", "asynq")},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
				slog.Error("Task failed", "task", t.Type(), "jobID", string(t.Payload()), "error", err)
			}),
		},
	)
	a.srv = srv
	a.mux = asynq.NewServeMux()
}

// redisConnOpt parses opts.URL, adding opts.TLSConfig if set.
func redisConnOpt(opts *Options) (asynq.RedisConnOpt, error) {
	conn, err := asynq.ParseRedisURI(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("%w %v", errors.ErrInvalidArg, err)
	}
	if opts.TLSConfig == nil {
		return conn, nil
	}
	switch o := conn.(type) {
	case asynq.RedisClientOpt:
		o.TLSConfig = opts.TLSConfig
		return o, nil
	case asynq.RedisFailoverClientOpt:
		o.TLSConfig = opts.TLSConfig
		return o, nil
	}
	return conn, nil
}

// asynqLogger routes asynq's logging through slog.
type asynqLogger struct {
	log *slog.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) {
	l.log.Error(fmt.Sprint(args...))
	os.Exit(1)
}
