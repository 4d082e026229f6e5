package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/wasmbuild/pkg/structs"
)

func TestBuildOptions(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "build.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
build_root: /srv/builds
compile_timeout: 120s
workers: 8
cargo_home: /srv/cargo
`), 0600))

	c := &optsBuild{Config: cfg, Workers: 3, BindgenTimeout: 10 * time.Second}

	opts, err := c.options(structs.ServerDefaults())

	require.NoError(t, err)
	assert.Equal(t, "/srv/builds", opts.BuildRoot)
	assert.Equal(t, 120*time.Second, opts.CompileTimeout)
	assert.Equal(t, 10*time.Second, opts.BindgenTimeout)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, "/srv/cargo", opts.CargoHome)
	assert.Equal(t, 24*time.Hour, opts.ResultTTL)
}

func TestBuildOptionsBadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "build.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("no_such_option: 1\n"), 0600))

	_, err := (&optsBuild{Config: cfg}).options(structs.OptionsDefault())
	assert.Error(t, err)

	_, err = (&optsBuild{Config: filepath.Join(t.TempDir(), "missing.yaml")}).options(structs.OptionsDefault())
	assert.Error(t, err)
}

func TestDockerOptions(t *testing.T) {
	assert.Nil(t, (&optsBuild{}).docker())

	d := (&optsBuild{DockerImage: "rust:1.77", DockerMemory: 1 << 30}).docker()
	assert.Equal(t, "rust:1.77", d.Image)
	assert.Equal(t, int64(1<<30), d.Memory)
}
