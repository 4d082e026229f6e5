package structs

import (
	"fmt"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

// BuildResult is the terminal outcome of a pipeline run.
//
// It holds exactly one variant, tagged by Status:
//   - COMPLETED: Message, JSGlue and Wasm are set, Details is empty
//   - FAILED: Message and (optionally) Details are set, JSGlue and Wasm are empty
//
// Wasm marshals to base64 in JSON.
type BuildResult struct {
	Status  ResultStatus `json:"status"`
	Message string       `json:"message"`

	JSGlue string `json:"js_glue,omitempty"`
	Wasm   []byte `json:"wasm,omitempty"`

	Details string `json:"details,omitempty"`
}

// NewCompleted returns a COMPLETED result.
func NewCompleted(msg, jsGlue string, wasm []byte) *BuildResult {
	return &BuildResult{Status: COMPLETED, Message: msg, JSGlue: jsGlue, Wasm: wasm}
}

// NewFailed returns a FAILED result.
func NewFailed(msg, details string) *BuildResult {
	return &BuildResult{Status: FAILED, Message: msg, Details: details}
}

func (r *BuildResult) Completed() bool {
	return r != nil && r.Status == COMPLETED
}

// Validate enforces that exactly one variant is populated.
func (r *BuildResult) Validate() error {
	if r == nil {
		return fmt.Errorf("%w nil result", errors.ErrInvalidArg)
	}
	switch r.Status {
	case COMPLETED:
		if r.Details != "" {
			return fmt.Errorf("%w completed result carries failure details", errors.ErrInvalidArg)
		}
		if len(r.Wasm) == 0 || r.JSGlue == "" {
			return fmt.Errorf("%w completed result without artifacts", errors.ErrInvalidArg)
		}
	case FAILED:
		if len(r.Wasm) > 0 || r.JSGlue != "" {
			return fmt.Errorf("%w failed result carries artifacts", errors.ErrInvalidArg)
		}
	default:
		return fmt.Errorf("%w result status %q", errors.ErrInvalidArg, r.Status)
	}
	return nil
}

// Copy returns a deep copy, so callers can't mutate a stored result.
func (r *BuildResult) Copy() *BuildResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Wasm != nil {
		out.Wasm = append([]byte(nil), r.Wasm...)
	}
	return &out
}
