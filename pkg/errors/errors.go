package errors

import (
	"fmt"
)

var (
	ErrInvalidArg       = fmt.Errorf("invalid arg")
	ErrNoSource         = fmt.Errorf("no source code given")
	ErrNotFound         = fmt.Errorf("not found")
	ErrInvalidState     = fmt.Errorf("invalid state")
	ErrNotSupported     = fmt.Errorf("not supported")
	ErrNotImplemented   = fmt.Errorf("not implemented")
	ErrInvalidManifest  = fmt.Errorf("invalid manifest")
	ErrWorkspaceCreate  = fmt.Errorf("workspace creation failed")
	ErrWorkspaceWrite   = fmt.Errorf("workspace write failed")
	ErrWorkspaceDestroy = fmt.Errorf("workspace destroy failed")
	ErrToolStart        = fmt.Errorf("toolchain failed to start")
	ErrQueueClosed      = fmt.Errorf("queue closed")
)
