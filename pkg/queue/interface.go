package queue

import (
	"context"
)

const (
	// TaskBuild is the task name for running one build job.
	TaskBuild = "wasmbuild:build"
)

// Handler processes one queued job, given its id.
//
// An error is logged by the queue but never retried: the handler is
// expected to record failures against the job itself.
type Handler func(ctx context.Context, jobID string) error

type Queue interface {
	// Register a task handler. This is a function that will be called when a task is enqueued.
	Register(task string, handler Handler) error

	// Run the queue & process tasks (via Register funcs). This should block until Close() is called.
	Run() error

	// Enqueue a task for the given job id. Returns the queue's id for the queued task.
	//
	// Enqueue never waits for a worker.
	Enqueue(ctx context.Context, task, jobID string) (string, error)

	// Shared is true if workers in other processes may pick up our tasks.
	Shared() bool

	// Close & shutdown the queue. Tasks already being processed are allowed to finish.
	Close() error
}
