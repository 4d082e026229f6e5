package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/voidshard/wasmbuild/pkg/api/http/common"
	"github.com/voidshard/wasmbuild/pkg/errors"
)

const (
	defPollInterval = 2 * time.Second
)

type Client struct {
	url *url.URL

	// PollInterval is how long Wait sleeps between status checks
	PollInterval time.Duration
}

func New(address string) (*Client, error) {
	u, err := url.Parse(address)
	return &Client{url: u, PollInterval: defPollInterval}, err
}

// SubmitRust queues a Rust build. manifest may be empty, in which case the
// server writes a default Cargo.toml.
func (c *Client) SubmitRust(ctx context.Context, source, manifest string) (*common.SubmitResponse, error) {
	addr := c.addr(common.API_RUST)
	var out common.SubmitResponse
	return &out, genericPost(ctx, addr, &common.RustRequest{Source: source, Manifest: manifest}, &out)
}

// SubmitCpp queues a C/C++ build.
func (c *Client) SubmitCpp(ctx context.Context, source string) (*common.SubmitResponse, error) {
	addr := c.addr(common.API_CPP)
	var out common.SubmitResponse
	return &out, genericPost(ctx, addr, &common.CppRequest{Source: source}, &out)
}

// Status returns the status of a build. Failed builds are not errors here,
// check the returned Status.
func (c *Client) Status(ctx context.Context, taskID string) (*common.StatusResponse, error) {
	addr := c.addr(common.API_STATUS)
	addr.RawQuery = url.Values{common.QUERY_TASKID: []string{taskID}}.Encode()
	var out common.StatusResponse
	return &out, genericGet(ctx, addr, &out)
}

// Wait polls the status of a build until it is no longer queued or started,
// or ctx is done.
func (c *Client) Wait(ctx context.Context, taskID string) (*common.StatusResponse, error) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = defPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := c.Status(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if st.Terminal() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Wasm decodes the module of a completed build.
func Wasm(st *common.StatusResponse) ([]byte, error) {
	if st == nil || st.Status != common.STATUS_COMPLETED {
		return nil, fmt.Errorf("%w build not completed", errors.ErrInvalidState)
	}
	return base64.StdEncoding.DecodeString(st.WasmBase64)
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
