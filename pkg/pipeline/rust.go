package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	ie "github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/manifest"
	"github.com/voidshard/wasmbuild/pkg/metrics"
	"github.com/voidshard/wasmbuild/pkg/structs"
	"github.com/voidshard/wasmbuild/pkg/toolchain"
	"github.com/voidshard/wasmbuild/pkg/workspace"
)

const (
	fileSource   = "src/lib.rs"
	fileManifest = "Cargo.toml"
	dirTarget    = "target"
	dirPkg       = "pkg"
)

// Rust compiles a crate to wasm with cargo, then generates JS bindings with
// wasm-bindgen.
type Rust struct {
	ws   *workspace.Manager
	inv  toolchain.Invoker
	rec  metrics.Recorder
	opts *structs.Options
}

var _ Builder = (*Rust)(nil)

func NewRust(ws *workspace.Manager, inv toolchain.Invoker, rec metrics.Recorder, opts *structs.Options) *Rust {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if opts == nil {
		opts = structs.OptionsDefault()
	}
	return &Rust{ws: ws, inv: inv, rec: rec, opts: opts}
}

// Build runs the whole pipeline in a fresh workspace, which is always removed
// before Build returns.
func (r *Rust) Build(ctx context.Context, jobID string, req *structs.BuildRequest) *structs.BuildResult {
	var result *structs.BuildResult
	err := r.ws.With(jobID, func(ws *workspace.Workspace) error {
		result = r.build(ctx, ws, req)
		return nil
	})
	if err != nil {
		// either we never got a workspace, or we couldn't clean it up
		return structs.NewFailed(msgWorkspace, err.Error())
	}
	return result
}

func (r *Rust) build(ctx context.Context, ws *workspace.Workspace, req *structs.BuildRequest) *structs.BuildResult {
	text := req.Manifest
	if text == "" {
		text = manifest.DefaultRust
	}

	err := ws.WriteFile(fileSource, req.Source)
	if err != nil {
		return structs.NewFailed(msgWorkspace, err.Error())
	}
	err = ws.WriteFile(fileManifest, text)
	if err != nil {
		return structs.NewFailed(msgWorkspace, err.Error())
	}

	cargo, err := manifest.Parse(text)
	if err != nil {
		return structs.NewFailed(msgInvalidManifest, err.Error())
	}
	if !cargo.IsCdylib() {
		// wasm-bindgen has nothing to bind without one
		return structs.NewFailed(msgInvalidManifest, `[lib] crate-type must include "cdylib"`)
	}
	crate := cargo.CrateName()

	manifestPath, _ := ws.Path(fileManifest)
	targetDir, _ := ws.Path(dirTarget)
	pkgDir, _ := ws.Path(dirPkg)

	fail := r.step(ctx, ws, StepCompile, &toolchain.Command{
		Name: r.opts.CargoBin,
		Args: []string{
			"build",
			"--target", r.opts.WasmTarget,
			"--release",
			"--manifest-path", manifestPath,
		},
		Dir:     ws.Root,
		Env:     r.env(targetDir),
		Timeout: r.opts.CompileTimeout,
	})
	if fail != nil {
		return fail
	}

	module := filepath.Join(dirTarget, cargo.ArtifactName(r.opts.WasmTarget))
	if !ws.Exists(module) {
		return structs.NewFailed(msgArtifactsMissing, fmt.Sprintf("module: %s not found", module))
	}
	modulePath, _ := ws.Path(module)

	fail = r.step(ctx, ws, StepBindgen, &toolchain.Command{
		Name: r.opts.BindgenBin,
		Args: []string{
			modulePath,
			"--out-dir", pkgDir,
			"--target", r.opts.BindgenTarget,
		},
		Dir:     ws.Root,
		Env:     r.env(targetDir),
		Timeout: r.opts.BindgenTimeout,
	})
	if fail != nil {
		return fail
	}

	wasmFile := filepath.Join(dirPkg, crate+"_bg.wasm")
	jsFile := filepath.Join(dirPkg, crate+".js")
	hasWasm, hasJS := ws.Exists(wasmFile), ws.Exists(jsFile)
	if !hasWasm || !hasJS {
		return structs.NewFailed(msgArtifactsMissing, fmt.Sprintf("wasm: %t, js: %t", hasWasm, hasJS))
	}

	wasm, err := ws.ReadFile(wasmFile)
	if err != nil {
		return structs.NewFailed(msgWorkspace, err.Error())
	}
	glue, err := ws.ReadFile(jsFile)
	if err != nil {
		return structs.NewFailed(msgWorkspace, err.Error())
	}
	if len(wasm) == 0 || len(glue) == 0 {
		return structs.NewFailed(msgArtifactsMissing, fmt.Sprintf("wasm: %t, js: %t", len(wasm) > 0, len(glue) > 0))
	}

	return structs.NewCompleted(msgRustCompleted, string(glue), wasm)
}

// step runs one toolchain command and returns a FAILED result if it didn't
// succeed, nil otherwise.
func (r *Rust) step(ctx context.Context, ws *workspace.Workspace, name string, cmd *toolchain.Command) *structs.BuildResult {
	log := slog.With("jobID", ws.JobID, "step", name)
	log.Debug("Running build step", "cmd", cmd.Name, "args", cmd.Args)

	res, err := r.inv.Run(ctx, cmd)
	if err != nil {
		r.rec.IncStepResult(name, metrics.ResultError)
		log.Error("Build step could not run", "error", err)
		if errors.Is(err, ie.ErrToolStart) {
			return structs.NewFailed(msgToolStart, err.Error())
		}
		return structs.NewFailed(msgUnexpected, err.Error())
	}
	r.rec.ObserveStepDuration(name, res.Duration)

	switch {
	case res.TimedOut:
		r.rec.IncStepResult(name, metrics.ResultTimeout)
		log.Warn("Build step timed out", "timeout", cmd.Timeout)
		return structs.NewFailed(timeoutMsg[name], "")
	case res.ExitCode != 0:
		r.rec.IncStepResult(name, metrics.ResultFailed)
		log.Debug("Build step failed", "exitCode", res.ExitCode, "duration", res.Duration)
		return structs.NewFailed(failedMsg[name], res.Stderr)
	}

	r.rec.IncStepResult(name, metrics.ResultSuccess)
	log.Debug("Build step succeeded", "duration", res.Duration)
	return nil
}

func (r *Rust) env(targetDir string) []string {
	env := []string{
		"CARGO_TARGET_DIR=" + targetDir,
		"CARGO_TERM_COLOR=never",
	}
	if r.opts.CargoHome != "" {
		env = append(env, "CARGO_HOME="+r.opts.CargoHome)
	}
	return env
}
