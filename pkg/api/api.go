// Package api wires a build service together from its parts.
package api

import (
	"fmt"
	"log/slog"

	"github.com/voidshard/wasmbuild/internal/core"
	"github.com/voidshard/wasmbuild/pkg/database"
	"github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/pipeline"
	"github.com/voidshard/wasmbuild/pkg/queue"
	"github.com/voidshard/wasmbuild/pkg/toolchain"
	"github.com/voidshard/wasmbuild/pkg/workspace"
)

// New connects to the database & queue and starts a service. The service's
// background work (workers, tidy routine) is already running on return.
func New(dbOpts *database.Options, quOpts *queue.Options, opts *Options) (API, error) {
	if dbOpts == nil {
		dbOpts = &database.Options{}
	}
	if quOpts == nil {
		quOpts = &queue.Options{}
	}
	if opts == nil {
		opts = OptionsServerDefault()
	}
	opts.setDefaults()

	if !opts.RunWorkers && !queue.IsShared(quOpts.URL) {
		return nil, fmt.Errorf("%w an in-process queue needs workers in the same process", errors.ErrInvalidArg)
	}
	if queue.IsShared(quOpts.URL) && !database.IsShared(dbOpts.URL) {
		return nil, fmt.Errorf("%w a shared queue needs a shared database", errors.ErrInvalidArg)
	}

	dbOpts.ResultTTL = opts.Build.ResultTTL
	quOpts.Workers = opts.Build.Workers
	quOpts.Timeout = opts.Build.MaxJobRuntime

	var bld pipeline.Builder
	if opts.RunWorkers {
		ws, err := workspace.NewManager(opts.Build.BuildRoot)
		if err != nil {
			return nil, err
		}
		inv, err := newInvoker(opts)
		if err != nil {
			return nil, err
		}
		bld = pipeline.New(ws, inv, opts.Recorder, opts.Build)
	}

	db, err := database.New(dbOpts)
	if err != nil {
		return nil, err
	}
	qu, err := queue.New(quOpts)
	if err != nil {
		db.Close()
		return nil, err
	}

	svc, err := core.NewService(db, qu, bld, opts.Recorder, opts.Build)
	if err != nil {
		qu.Close()
		db.Close()
		return nil, err
	}
	if err := svc.Start(); err != nil {
		svc.Close()
		return nil, err
	}
	slog.Info("Build service started", "workers", opts.RunWorkers, "buildRoot", opts.Build.BuildRoot, "sharedQueue", qu.Shared())
	return svc, nil
}

func newInvoker(opts *Options) (toolchain.Invoker, error) {
	if opts.Docker == nil || opts.Docker.Image == "" {
		return toolchain.NewLocal(), nil
	}
	return toolchain.NewDocker(opts.Docker)
}
