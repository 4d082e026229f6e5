package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/voidshard/wasmbuild/pkg/metrics"
	"github.com/voidshard/wasmbuild/pkg/structs"
	"github.com/voidshard/wasmbuild/pkg/toolchain"
	"github.com/voidshard/wasmbuild/pkg/workspace"
)

// Pipeline picks a Builder by request language and guarantees a valid
// result comes back, whatever the builder does.
type Pipeline struct {
	builders map[structs.Language]Builder
}

var _ Builder = (*Pipeline)(nil)

// New returns a Pipeline with the standard Rust & C/C++ builders.
func New(ws *workspace.Manager, inv toolchain.Invoker, rec metrics.Recorder, opts *structs.Options) *Pipeline {
	return NewWithBuilders(map[structs.Language]Builder{
		structs.LangRust: NewRust(ws, inv, rec, opts),
		structs.LangCpp:  Cpp{},
	})
}

func NewWithBuilders(builders map[structs.Language]Builder) *Pipeline {
	return &Pipeline{builders: builders}
}

// Build dispatches to the language's builder. Panics and malformed results
// are turned into FAILED results.
func (p *Pipeline) Build(ctx context.Context, jobID string, req *structs.BuildRequest) (result *structs.BuildResult) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		slog.Error("Recovered panic in build", "jobID", jobID, "panic", r, "stack", string(debug.Stack()))
		result = structs.NewFailed(msgUnexpected, fmt.Sprint(r))
	}()

	if req == nil {
		return structs.NewFailed(msgUnexpected, "no build request")
	}
	b, ok := p.builders[req.Language]
	if !ok {
		return structs.NewFailed(msgUnexpected, fmt.Sprintf("no builder for language %q", req.Language))
	}

	result = b.Build(ctx, jobID, req)
	if err := result.Validate(); err != nil {
		slog.Error("Builder returned invalid result", "jobID", jobID, "error", err)
		return structs.NewFailed(msgUnexpected, err.Error())
	}
	return result
}
