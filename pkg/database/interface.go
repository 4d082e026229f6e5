package database

import (
	"context"

	"github.com/voidshard/wasmbuild/pkg/structs"
)

// Database is the job store. Implementations must make each transition
// atomic per job, and must hand out copies so readers never share memory
// with the store.
type Database interface {
	// InsertJob stores a new job. The job must be QUEUED. Inserting an id
	// that already exists is an ErrInvalidState.
	InsertJob(ctx context.Context, j *structs.Job) error

	// SetJobRunning moves a job QUEUED -> RUNNING, recording StartedAt, and
	// returns the updated job.
	SetJobRunning(ctx context.Context, id string) (*structs.Job, error)

	// SetJobResult moves a QUEUED or RUNNING job to FINISHED with the given
	// result, recording FinishedAt. A FINISHED job is never overwritten
	// (ErrInvalidState).
	SetJobResult(ctx context.Context, id string, result *structs.BuildResult) (*structs.Job, error)

	// Job returns a snapshot of the job, or ErrNotFound.
	Job(ctx context.Context, id string) (*structs.Job, error)

	// ReapRunning finishes every job that has been RUNNING since before
	// `before` (unix seconds) with the given result, returning their ids.
	ReapRunning(ctx context.Context, before int64, result *structs.BuildResult) ([]string, error)

	// ReapQueued finishes every job that has been QUEUED since before `before`
	// (unix seconds, compared to CreatedAt) with the given result, returning
	// their ids.
	ReapQueued(ctx context.Context, before int64, result *structs.BuildResult) ([]string, error)

	// DeleteFinished removes FINISHED jobs that finished before `before` (unix
	// seconds) and returns how many went.
	DeleteFinished(ctx context.Context, before int64) (int64, error)

	Close() error
}
