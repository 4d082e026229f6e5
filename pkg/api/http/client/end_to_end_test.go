package client

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/wasmbuild/pkg/api"
	"github.com/voidshard/wasmbuild/pkg/api/http/common"
	"github.com/voidshard/wasmbuild/pkg/api/http/server"
)

// startService runs a real in-process service behind a test http server.
func startService(t *testing.T) *Client {
	opts := api.OptionsServerDefault()
	opts.Build.BuildRoot = t.TempDir()

	svc, err := api.New(nil, nil, opts)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	ts := httptest.NewServer(server.NewServer(":0", "", false, nil).Router(svc))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL)
	require.NoError(t, err)
	c.PollInterval = 10 * time.Millisecond
	return c
}

func TestEndToEndCpp(t *testing.T) {
	c := startService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ack, err := c.SubmitCpp(ctx, "int main() { return 0; }")
	require.NoError(t, err)
	assert.NotEmpty(t, ack.TaskID)

	st, err := c.Wait(ctx, ack.TaskID)
	require.NoError(t, err)
	assert.Equal(t, common.STATUS_FAILED, st.Status)
	assert.Equal(t, "C/C++ build is not implemented", st.Message)

	again, err := c.Status(ctx, ack.TaskID)
	require.NoError(t, err)
	assert.Equal(t, st, again)
}

func TestEndToEndUnknown(t *testing.T) {
	c := startService(t)

	st, err := c.Status(context.Background(), "no-such-task")

	require.NoError(t, err)
	assert.Equal(t, common.STATUS_ERROR, st.Status)
	assert.True(t, st.Terminal())
}

func TestEndToEndRust(t *testing.T) {
	if os.Getenv("WASMBUILD_TEST_TOOLCHAIN") == "" {
		t.Skip("WASMBUILD_TEST_TOOLCHAIN not set, skipping test that needs cargo & wasm-bindgen")
	}
	c := startService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	src := `use wasm_bindgen::prelude::*;

#[wasm_bindgen]
pub fn add(a: i32, b: i32) -> i32 { a + b }
`
	manifest := `[package]
name = "user_code"
version = "0.1.0"
edition = "2021"

[lib]
crate-type = ["cdylib"]

[dependencies]
wasm-bindgen = "0.2"
`
	ack, err := c.SubmitRust(ctx, src, manifest)
	require.NoError(t, err)

	st, err := c.Wait(ctx, ack.TaskID)
	require.NoError(t, err)
	require.Equal(t, common.STATUS_COMPLETED, st.Status, st.Details)
	assert.NotEmpty(t, st.JSCode)

	wasm, err := Wasm(st)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x00asm"), wasm[:4])
}
