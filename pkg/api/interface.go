package api

import (
	"context"

	"github.com/voidshard/wasmbuild/pkg/structs"
)

// API represents the functions wasmbuild servers should expose.
type API interface {
	// Implemented in wasmbuild/internal/core.Service

	// Submit queues a build and returns its job id straight away.
	Submit(ctx context.Context, req *structs.BuildRequest) (string, error)

	// Job returns a snapshot of a job, or ErrNotFound.
	Job(ctx context.Context, id string) (*structs.Job, error)

	// Poll maps a job id to what a polling client should do next. Unknown ids
	// are a PollUnknown response, not an error.
	Poll(ctx context.Context, id string) (*structs.PollResponse, error)

	// Close stops any background work & releases the queue and database.
	Close() error
}

type Server interface {
	ServeForever(api API) error
	Close() error
}
