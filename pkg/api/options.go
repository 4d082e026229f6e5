package api

import (
	"github.com/voidshard/wasmbuild/pkg/metrics"
	"github.com/voidshard/wasmbuild/pkg/structs"
	"github.com/voidshard/wasmbuild/pkg/toolchain"
)

// Options passed to the API on creation
type Options struct {
	// Build configures the pipeline, workers & tidy routine.
	Build *structs.Options

	// RunWorkers runs builds in this process. Without it the API only queues
	// jobs & answers polls, so some worker must share its queue & database.
	RunWorkers bool

	// Docker, if set, runs toolchain steps in containers instead of directly
	// on this host.
	Docker *toolchain.DockerOptions

	// Recorder receives metrics. Defaults to a no-op.
	Recorder metrics.Recorder
}

// OptionsClientDefault runs a service that runs no backend worker routines.
// This is intended for processes that only serve the API.
func OptionsClientDefault() *Options {
	build := structs.OptionsDefault()
	build.TidyFrequency = 0
	return &Options{Build: build}
}

// OptionsServerDefault runs a service that processes builds and tidies up
// stuck & expired jobs.
func OptionsServerDefault() *Options {
	return &Options{
		Build:      structs.ServerDefaults(),
		RunWorkers: true,
	}
}

func (o *Options) setDefaults() {
	if o.Build == nil {
		o.Build = structs.OptionsDefault()
	}
	o.Build.SetDefaults()
	if o.Recorder == nil {
		o.Recorder = metrics.NoopRecorder{}
	}
}
