package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/voidshard/wasmbuild/pkg/database"
	ie "github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

// QueueDB is a cut down view of the database for the worker side; it can only
// start a queued job & finish a started one.
type QueueDB struct {
	db database.Database
}

// NewQueueDB returns a new QueueDB
func NewQueueDB(db database.Database) *QueueDB {
	return &QueueDB{db: db}
}

// Start claims a QUEUED job, returning it as RUNNING. If the job was already
// claimed (or finished) this is an ErrInvalidState.
func (q *QueueDB) Start(ctx context.Context, id string) (*structs.Job, error) {
	return q.db.SetJobRunning(ctx, id)
}

// Finish stores the job's result. If the store refuses the result for any
// reason other than the job's state, we try once more with a FAILED result
// so the job doesn't stay RUNNING.
func (q *QueueDB) Finish(ctx context.Context, id string, result *structs.BuildResult) error {
	_, err := q.db.SetJobResult(ctx, id, result)
	if err == nil || errors.Is(err, ie.ErrInvalidState) || errors.Is(err, ie.ErrNotFound) {
		return err
	}
	slog.Error("Failed to store build result", "jobID", id, "error", err)

	_, ferr := q.db.SetJobResult(ctx, id, structs.NewFailed(msgStoreFailed, err.Error()))
	if ferr != nil {
		return fmt.Errorf("failed to store result (%v) or failure: %w", err, ferr)
	}
	return nil
}
