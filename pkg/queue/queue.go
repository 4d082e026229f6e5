// Package queue hands build jobs to workers.
package queue

import (
	"fmt"
	"strings"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

// New returns a Queue picked by the scheme of opts.URL.
func New(opts *Options) (Queue, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()

	scheme, _, _ := strings.Cut(opts.URL, "://")
	switch scheme {
	case "", "memory", "mem":
		return NewLocalQueue(opts), nil
	case "redis", "rediss":
		return NewAsynqQueue(opts)
	}
	return nil, fmt.Errorf("%w queue url %q", errors.ErrNotSupported, opts.URL)
}

// IsShared reports whether a queue at url can be consumed by other processes.
func IsShared(url string) bool {
	scheme, _, _ := strings.Cut(url, "://")
	return scheme == "redis" || scheme == "rediss"
}
