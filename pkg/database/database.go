// Package database holds build jobs & their results.
package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

// New returns a Database picked by the scheme of opts.URL.
func New(opts *Options) (Database, error) {
	if opts == nil {
		opts = &Options{}
	}
	opts.SetDefaults()

	scheme, _, found := strings.Cut(opts.URL, "://")
	if !found && opts.URL != "" {
		return nil, fmt.Errorf("%w database url %q has no scheme", errors.ErrInvalidArg, opts.URL)
	}
	switch scheme {
	case "", "memory", "mem":
		return NewMemory(), nil
	case "redis", "rediss":
		return NewRedis(opts)
	case "postgres", "postgresql":
		return NewPostgres(opts)
	}
	return nil, fmt.Errorf("%w database scheme %q", errors.ErrNotSupported, scheme)
}

// IsShared reports whether the store at url can be seen by other processes.
func IsShared(url string) bool {
	scheme, _, _ := strings.Cut(url, "://")
	switch scheme {
	case "redis", "rediss", "postgres", "postgresql":
		return true
	}
	return false
}

// timeNow returns the current time in unix seconds
var timeNow = func() int64 {
	return time.Now().Unix()
}
