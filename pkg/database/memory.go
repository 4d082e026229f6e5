package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

// Memory is an in-process Database. Everything is lost when the process exits.
type Memory struct {
	lock sync.RWMutex
	jobs map[string]*structs.Job
}

var _ Database = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{jobs: map[string]*structs.Job{}}
}

func (m *Memory) InsertJob(ctx context.Context, j *structs.Job) error {
	if err := checkNewJob(j); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.jobs[j.ID]; ok {
		return fmt.Errorf("%w job %s already exists", errors.ErrInvalidState, j.ID)
	}
	m.jobs[j.ID] = prepareNewJob(j)
	return nil
}

func (m *Memory) SetJobRunning(ctx context.Context, id string) (*structs.Job, error) {
	return m.update(id, func(j *structs.Job) error {
		return startJob(j, timeNow())
	})
}

func (m *Memory) SetJobResult(ctx context.Context, id string, result *structs.BuildResult) (*structs.Job, error) {
	return m.update(id, func(j *structs.Job) error {
		return finishJob(j, result, timeNow())
	})
}

func (m *Memory) Job(ctx context.Context, id string) (*structs.Job, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, notFound(id)
	}
	return j.Copy(), nil
}

func (m *Memory) ReapRunning(ctx context.Context, before int64, result *structs.BuildResult) ([]string, error) {
	return m.reap(result, func(j *structs.Job) bool {
		return j.State == structs.RUNNING && j.StartedAt < before
	})
}

func (m *Memory) ReapQueued(ctx context.Context, before int64, result *structs.BuildResult) ([]string, error) {
	return m.reap(result, func(j *structs.Job) bool {
		return j.State == structs.QUEUED && j.CreatedAt < before
	})
}

// reap finishes every job matching stuck with result.
func (m *Memory) reap(result *structs.BuildResult, stuck func(j *structs.Job) bool) ([]string, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}
	now := timeNow()

	m.lock.Lock()
	defer m.lock.Unlock()
	reaped := []string{}
	for id, j := range m.jobs {
		if !stuck(j) {
			continue
		}
		// apply to a copy so a failed transition leaves the stored job alone
		updated := j.Copy()
		if err := finishJob(updated, result, now); err != nil {
			return reaped, err
		}
		m.jobs[id] = updated
		reaped = append(reaped, id)
	}
	sort.Strings(reaped)
	return reaped, nil
}

func (m *Memory) DeleteFinished(ctx context.Context, before int64) (int64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	var count int64
	for id, j := range m.jobs {
		if structs.IsFinalState(j.State) && j.FinishedAt < before {
			delete(m.jobs, id)
			count++
		}
	}
	return count, nil
}

func (m *Memory) Close() error {
	return nil
}

// update applies fn to a copy of the job under the write lock, storing the
// copy only if fn succeeds.
func (m *Memory) update(id string, fn func(j *structs.Job) error) (*structs.Job, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, notFound(id)
	}
	updated := j.Copy()
	if err := fn(updated); err != nil {
		return nil, err
	}
	m.jobs[id] = updated
	return updated.Copy(), nil
}
