package pipeline

import (
	"context"

	"github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

// Cpp accepts C/C++ requests but cannot build them yet.
type Cpp struct{}

var _ Builder = Cpp{}

func (Cpp) Build(ctx context.Context, jobID string, req *structs.BuildRequest) *structs.BuildResult {
	return structs.NewFailed(msgCppNotImpl, errors.ErrNotImplemented.Error())
}
