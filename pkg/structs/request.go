package structs

import (
	"fmt"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

// Language is the source language of a build request.
type Language string

const (
	LangRust Language = "rust"
	LangCpp  Language = "c-cpp"
)

// BuildRequest is what a client submits. It is never modified after Submit.
type BuildRequest struct {
	// Source is the user source text. Required.
	Source string `json:"source"`

	// Manifest is the package manifest (Cargo.toml for Rust). Optional; when empty
	// the pipeline writes the default manifest.
	Manifest string `json:"manifest,omitempty"`

	// Language selects the pipeline. Required.
	Language Language `json:"language"`
}

// Validate checks the request can be accepted onto the queue.
func (r *BuildRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w nil request", errors.ErrInvalidArg)
	}
	if r.Source == "" {
		return errors.ErrNoSource
	}
	switch r.Language {
	case LangRust, LangCpp:
		return nil
	default:
		return fmt.Errorf("%w language %q", errors.ErrNotSupported, r.Language)
	}
}
