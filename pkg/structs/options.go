package structs

import (
	"os"
	"path/filepath"
	"time"
)

const (
	defCompileTimeout = 300 * time.Second
	defBindgenTimeout = 60 * time.Second
	defWorkers        = 2
	defResultTTL      = 24 * time.Hour
	defTidyFrequency  = 5 * time.Minute
	defMaxQueueAge    = time.Hour
	defCargoBin       = "cargo"
	defBindgenBin     = "wasm-bindgen"
	defWasmTarget     = "wasm32-unknown-unknown"
	defBindgenTarget  = "web"

	// jobSlack is added on top of the step timeouts to get the longest time a
	// job may reasonably sit in RUNNING.
	jobSlack = 2 * time.Minute
)

// Options configure the build service. They're passed explicitly into the
// constructors of the workspace manager, pipeline, queue and service.
type Options struct {
	// BuildRoot is the directory under which per-job workspaces are created.
	BuildRoot string `yaml:"build_root"`

	// CompileTimeout bounds the compiler step.
	CompileTimeout time.Duration `yaml:"compile_timeout"`

	// BindgenTimeout bounds the binding generation step.
	BindgenTimeout time.Duration `yaml:"bindgen_timeout"`

	// CargoBin & BindgenBin are the toolchain executables.
	CargoBin   string `yaml:"cargo_bin"`
	BindgenBin string `yaml:"bindgen_bin"`

	// WasmTarget is the rustc target triple.
	WasmTarget string `yaml:"wasm_target"`

	// BindgenTarget is the wasm-bindgen --target value (web, bundler, nodejs ..)
	BindgenTarget string `yaml:"bindgen_target"`

	// CargoHome, if set, is exported as CARGO_HOME to every build. It holds the
	// registry cache and may be shared between jobs (cargo locks it itself).
	CargoHome string `yaml:"cargo_home"`

	// Workers is how many pipelines may run at once in this process.
	Workers int `yaml:"workers"`

	// ResultTTL is how long finished jobs are kept. Zero keeps them forever.
	ResultTTL time.Duration `yaml:"result_ttl"`

	// MaxJobRuntime is how long a job may sit in RUNNING before the tidy routine
	// decides its worker died and fails it. Zero derives it from the step timeouts.
	MaxJobRuntime time.Duration `yaml:"max_job_runtime"`

	// MaxQueueAge is how long a job may sit in QUEUED before the tidy routine
	// decides it was lost and fails it.
	MaxQueueAge time.Duration `yaml:"max_queue_age"`

	// TidyFrequency is how often we reap stuck jobs & evict expired ones.
	// Zero disables the tidy routine.
	TidyFrequency time.Duration `yaml:"tidy_frequency"`
}

// OptionsDefault returns options matching the reference deployment.
func OptionsDefault() *Options {
	o := &Options{}
	o.SetDefaults()
	return o
}

// SetDefaults fills in any zero values, except ResultTTL & TidyFrequency where
// zero is meaningful.
func (o *Options) SetDefaults() {
	if o.BuildRoot == "" {
		o.BuildRoot = filepath.Join(os.TempDir(), "builds")
	}
	if o.CompileTimeout <= 0 {
		o.CompileTimeout = defCompileTimeout
	}
	if o.BindgenTimeout <= 0 {
		o.BindgenTimeout = defBindgenTimeout
	}
	if o.CargoBin == "" {
		o.CargoBin = defCargoBin
	}
	if o.BindgenBin == "" {
		o.BindgenBin = defBindgenBin
	}
	if o.WasmTarget == "" {
		o.WasmTarget = defWasmTarget
	}
	if o.BindgenTarget == "" {
		o.BindgenTarget = defBindgenTarget
	}
	if o.Workers <= 0 {
		o.Workers = defWorkers
	}
	if o.MaxJobRuntime <= 0 {
		o.MaxJobRuntime = o.CompileTimeout + o.BindgenTimeout + jobSlack
	}
	if o.MaxQueueAge <= 0 {
		o.MaxQueueAge = defMaxQueueAge
	}
}

// ServerDefaults are OptionsDefault plus result eviction & tidying.
func ServerDefaults() *Options {
	o := OptionsDefault()
	o.ResultTTL = defResultTTL
	o.TidyFrequency = defTidyFrequency
	return o
}
