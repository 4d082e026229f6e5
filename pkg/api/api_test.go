package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/wasmbuild/pkg/database"
	"github.com/voidshard/wasmbuild/pkg/errors"
	"github.com/voidshard/wasmbuild/pkg/queue"
	"github.com/voidshard/wasmbuild/pkg/structs"
	"github.com/voidshard/wasmbuild/pkg/toolchain"
)

func TestNewInvalidRoles(t *testing.T) {
	cases := []struct {
		Name   string
		DB     string
		Queue  string
		Opts   *Options
		Expect error
	}{
		{"ApiOnlyLocalQueue", "", "", OptionsClientDefault(), errors.ErrInvalidArg},
		{"SharedQueueLocalDB", "memory://", "redis://localhost:6379/0", OptionsServerDefault(), errors.ErrInvalidArg},
		{"BadDatabase", "mysql://localhost", "", OptionsServerDefault(), errors.ErrNotSupported},
		{"BadQueue", "", "amqp://localhost", OptionsServerDefault(), errors.ErrNotSupported},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			c.Opts.Build.BuildRoot = t.TempDir()

			svc, err := New(&database.Options{URL: c.DB}, &queue.Options{URL: c.Queue}, c.Opts)

			assert.Nil(t, svc)
			assert.ErrorIs(t, err, c.Expect)
		})
	}
}

func TestNewInvoker(t *testing.T) {
	inv, err := newInvoker(&Options{})
	assert.NoError(t, err)
	assert.IsType(t, &toolchain.Local{}, inv)

	inv, err = newInvoker(&Options{Docker: &toolchain.DockerOptions{}})
	assert.NoError(t, err)
	assert.IsType(t, &toolchain.Local{}, inv)
}

func TestOptionsDefaults(t *testing.T) {
	cli := OptionsClientDefault()
	assert.False(t, cli.RunWorkers)
	assert.Equal(t, time.Duration(0), cli.Build.TidyFrequency)

	srv := OptionsServerDefault()
	assert.True(t, srv.RunWorkers)
	assert.Greater(t, srv.Build.TidyFrequency, time.Duration(0))

	o := &Options{}
	o.setDefaults()
	assert.NotNil(t, o.Build)
	assert.NotNil(t, o.Recorder)
}

func TestNewEndToEnd(t *testing.T) {
	opts := OptionsServerDefault()
	opts.Build.BuildRoot = t.TempDir()

	svc, err := New(nil, nil, opts)
	require.NoError(t, err)
	defer svc.Close()

	ctx := context.Background()
	id, err := svc.Submit(ctx, &structs.BuildRequest{Language: structs.LangCpp, Source: "int main() { return 0; }"})
	require.NoError(t, err)

	var resp *structs.PollResponse
	require.Eventually(t, func() bool {
		resp, err = svc.Poll(ctx, id)
		return err == nil && !resp.InProgress()
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, structs.PollFailed, resp.Kind)
	assert.Equal(t, "C/C++ build is not implemented", resp.Result.Message)
	assert.Equal(t, "not implemented", resp.Result.Details)

	unknown, err := svc.Poll(ctx, "no-such-job")
	assert.NoError(t, err)
	assert.Equal(t, structs.PollUnknown, unknown.Kind)
}
