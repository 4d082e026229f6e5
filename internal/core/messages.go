package core

const (
	msgEnqueueFailed = "failed to enqueue build"
	msgStoreFailed   = "failed to store build result"
	msgUnexpected    = "unexpected error during build"
	msgAbandoned     = "build abandoned"
	msgStartFailed   = "failed to start build"
)
