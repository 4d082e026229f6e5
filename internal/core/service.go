package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/voidshard/wasmbuild/pkg/database"
	ie "github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/metrics"
	"github.com/voidshard/wasmbuild/pkg/pipeline"
	"github.com/voidshard/wasmbuild/pkg/queue"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

var (
	// timeNow returns the current time in unix seconds
	timeNow = func() int64 { return time.Now().Unix() }
)

// Service accepts build requests, runs them on the queue's workers & answers
// status polls.
//
// A Service without a Builder only submits & polls; some other process
// (pointed at the same queue & database) has to run the builds.
type Service struct {
	db   database.Database
	qu   queue.Queue
	qdb  *QueueDB
	bld  pipeline.Builder
	rec  metrics.Recorder
	opts *structs.Options

	lock  sync.Mutex
	sched gocron.Scheduler
}

func NewService(db database.Database, qu queue.Queue, bld pipeline.Builder, rec metrics.Recorder, opts *structs.Options) (*Service, error) {
	if db == nil || qu == nil {
		return nil, fmt.Errorf("%w database and queue are required", ie.ErrInvalidArg)
	}
	if opts == nil {
		opts = structs.ServerDefaults()
	}
	opts.SetDefaults()
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Service{
		db:   db,
		qu:   qu,
		qdb:  NewQueueDB(db),
		bld:  bld,
		rec:  rec,
		opts: opts,
	}, nil
}

// Start begins background work: the tidy routine (if TidyFrequency is set)
// and, if we have a Builder, the queue's workers. It does not block.
func (c *Service) Start() error {
	if c.opts.TidyFrequency > 0 {
		if err := c.startTidy(); err != nil {
			return err
		}
	}
	if c.bld == nil {
		return nil
	}

	if !c.qu.Shared() {
		if err := c.reapOrphans(); err != nil {
			return err
		}
	}

	if err := c.qu.Register(queue.TaskBuild, c.Process); err != nil {
		return err
	}
	go func() {
		if err := c.qu.Run(); err != nil {
			slog.Error("Queue stopped", "error", err)
		}
	}()
	return nil
}

// reapOrphans fails every job an in-process queue left behind. Such a queue
// died with its last process, so nothing can still be working on a RUNNING
// job and nothing will ever dequeue a QUEUED one.
func (c *Service) reapOrphans() error {
	ctx := context.Background()
	before := timeNow() + 1

	running, err := c.db.ReapRunning(ctx, before, structs.NewFailed(msgAbandoned, "worker restarted while the job was running"))
	if err != nil {
		return err
	}
	queued, err := c.db.ReapQueued(ctx, before, structs.NewFailed(msgAbandoned, "worker restarted before the job was started"))
	if err != nil {
		return err
	}

	count := len(running) + len(queued)
	if count > 0 {
		slog.Warn("Failed jobs left behind by a previous process", "running", len(running), "queued", len(queued))
		c.rec.IncReaped(count)
	}
	return nil
}

func (c *Service) Close() error {
	c.lock.Lock()
	sched := c.sched
	c.lock.Unlock()
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			slog.Error("Failed to stop tidy scheduler", "error", err)
		}
	}
	c.qu.Close()
	c.db.Close()
	return nil
}

// Submit validates & stores a new job, then queues it. It returns as soon as
// the job is queued.
func (c *Service) Submit(ctx context.Context, req *structs.BuildRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	j := &structs.Job{
		ID:        uuid.NewString(),
		Request:   *req,
		State:     structs.QUEUED,
		CreatedAt: timeNow(),
	}
	if err := c.db.InsertJob(ctx, j); err != nil {
		return "", err
	}

	_, err := c.qu.Enqueue(ctx, queue.TaskBuild, j.ID)
	if err != nil {
		// nobody will ever pick this job up; don't leave it QUEUED
		slog.Error("Failed to enqueue job", "jobID", j.ID, "error", err)
		if _, ferr := c.db.SetJobResult(context.WithoutCancel(ctx), j.ID, structs.NewFailed(msgEnqueueFailed, err.Error())); ferr != nil {
			slog.Error("Failed to fail unqueued job", "jobID", j.ID, "error", ferr)
		}
		return "", err
	}

	c.rec.IncSubmitted(string(req.Language))
	slog.Debug("Job submitted", "jobID", j.ID, "language", req.Language)
	return j.ID, nil
}

// Job returns a snapshot of the job, or ErrNotFound.
func (c *Service) Job(ctx context.Context, id string) (*structs.Job, error) {
	return c.db.Job(ctx, id)
}

// Poll tells a client what to make of a job id. Unknown ids are not an error.
func (c *Service) Poll(ctx context.Context, id string) (*structs.PollResponse, error) {
	j, err := c.db.Job(ctx, id)
	if errors.Is(err, ie.ErrNotFound) {
		return structs.NewPollResponse(id, nil), nil
	} else if err != nil {
		return nil, err
	}
	return structs.NewPollResponse(id, j), nil
}

// Process runs one job: QUEUED -> RUNNING, build, -> FINISHED. Whatever
// happens during the build, the job is finished with some result.
func (c *Service) Process(ctx context.Context, jobID string) error {
	if c.bld == nil {
		return fmt.Errorf("%w service has no builder", ie.ErrInvalidState)
	}
	log := slog.With("jobID", jobID)

	job, err := c.qdb.Start(ctx, jobID)
	if errors.Is(err, ie.ErrInvalidState) || errors.Is(err, ie.ErrNotFound) {
		// someone else got here first, or the job was reaped / evicted
		log.Warn("Skipping job that is not queued", "error", err)
		return nil
	} else if err != nil {
		// the queue may never hand this job to us again
		log.Error("Failed to start job", "error", err)
		if _, ferr := c.db.SetJobResult(context.WithoutCancel(ctx), jobID, structs.NewFailed(msgStartFailed, err.Error())); ferr != nil {
			log.Error("Failed to fail unstarted job", "error", ferr)
		}
		return err
	}

	start := time.Now()
	log.Info("Build started", "language", job.Request.Language)

	result := c.build(ctx, job)

	elapsed := time.Since(start)
	c.rec.ObserveBuildDuration(elapsed)
	c.rec.IncBuildOutcome(strings.ToLower(string(result.Status)))
	if result.Completed() {
		log.Info("Build completed", "duration", elapsed)
	} else {
		log.Info("Build failed", "message", result.Message, "duration", elapsed)
	}

	// the task's context may have expired; the result must be stored anyway
	return c.qdb.Finish(context.WithoutCancel(ctx), jobID, result)
}

// build runs the builder, turning a panic or a missing result into a
// FAILED result.
func (c *Service) build(ctx context.Context, job *structs.Job) (result *structs.BuildResult) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		slog.Error("Recovered panic processing job", "jobID", job.ID, "panic", r, "stack", string(debug.Stack()))
		result = structs.NewFailed(msgUnexpected, fmt.Sprint(r))
	}()

	result = c.bld.Build(ctx, job.ID, &job.Request)
	if result == nil {
		return structs.NewFailed(msgUnexpected, "builder returned no result")
	}
	return result
}
