package queue

import (
	"crypto/tls"
	"time"
)

const (
	defWorkers = 2
)

// Options are options for the queue.
type Options struct {
	// URL encodes how we'll connect to the queue. Empty (or "memory://") runs
	// an in-process worker pool; "redis://" and "rediss://" use asynq.
	URL string

	// TLSConfig needed to connect to the queue (optional).
	TLSConfig *tls.Config

	// Workers is how many tasks are processed at once by this process.
	Workers int

	// Timeout bounds a whole task; past it the task's context is cancelled.
	// Zero means no limit.
	Timeout time.Duration
}

func (o *Options) SetDefaults() {
	if o.Workers <= 0 {
		o.Workers = defWorkers
	}
}
