package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

// newETag returns a fresh etag for an updated job.
func newETag() string {
	return uuid.NewString()
}

// checkNewJob is applied by every store before inserting.
func checkNewJob(j *structs.Job) error {
	if j == nil {
		return fmt.Errorf("%w nil job", errors.ErrInvalidArg)
	}
	if j.ID == "" {
		return fmt.Errorf("%w job id required", errors.ErrInvalidArg)
	}
	if j.State != structs.QUEUED {
		return fmt.Errorf("%w new job %s must be %s, got %s", errors.ErrInvalidState, j.ID, structs.QUEUED, j.State)
	}
	if j.Result != nil {
		return fmt.Errorf("%w new job %s has a result", errors.ErrInvalidState, j.ID)
	}
	return nil
}

// prepareNewJob fills in what the store owns on insert.
func prepareNewJob(j *structs.Job) *structs.Job {
	out := j.Copy()
	if out.ETag == "" {
		out.ETag = newETag()
	}
	if out.CreatedAt == 0 {
		out.CreatedAt = timeNow()
	}
	return out
}

// startJob moves j to RUNNING in place.
func startJob(j *structs.Job, now int64) error {
	if !structs.CanTransition(j.State, structs.RUNNING) {
		return fmt.Errorf("%w job %s is %s, cannot start", errors.ErrInvalidState, j.ID, j.State)
	}
	j.State = structs.RUNNING
	j.StartedAt = now
	j.ETag = newETag()
	return nil
}

// finishJob moves j to FINISHED in place, storing a copy of result.
func finishJob(j *structs.Job, result *structs.BuildResult, now int64) error {
	if err := result.Validate(); err != nil {
		return err
	}
	if !structs.CanTransition(j.State, structs.FINISHED) {
		return fmt.Errorf("%w job %s is %s, cannot set result", errors.ErrInvalidState, j.ID, j.State)
	}
	j.State = structs.FINISHED
	j.Result = result.Copy()
	j.FinishedAt = now
	j.ETag = newETag()
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("%w job %s", errors.ErrNotFound, id)
}
