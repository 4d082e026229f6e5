// Package pipeline turns a build request into a build result.
package pipeline

import (
	"context"

	"github.com/voidshard/wasmbuild/pkg/structs"
)

const (
	StepCompile = "compile"
	StepBindgen = "bindgen"
)

// Builder runs a build to completion.
//
// Build never returns an error: every failure, including panics and
// workspace trouble, is reported as a FAILED result.
type Builder interface {
	Build(ctx context.Context, jobID string, req *structs.BuildRequest) *structs.BuildResult
}
