package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

func TestCreateAndDestroy(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.Nil(t, err)
	id := uuid.NewString()

	ws, err := mgr.Create(id)

	require.Nil(t, err)
	assert.Equal(t, id, ws.JobID)
	assert.Equal(t, filepath.Join(mgr.Root(), id), ws.Root)
	assert.DirExists(t, ws.Root)

	err = mgr.Destroy(ws)

	assert.Nil(t, err)
	assert.NoDirExists(t, ws.Root)
}

func TestCreateExisting(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.Nil(t, err)
	id := uuid.NewString()
	_, err = mgr.Create(id)
	require.Nil(t, err)

	_, err = mgr.Create(id)

	assert.ErrorIs(t, err, errors.ErrWorkspaceCreate)
}

func TestCreateBadID(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.Nil(t, err)

	for _, id := range []string{"", "../escape", "not-a-uuid"} {
		t.Run(id, func(t *testing.T) {
			_, err := mgr.Create(id)
			assert.ErrorIs(t, err, errors.ErrWorkspaceCreate)
		})
	}
}

func TestDestroyOutsideRoot(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.Nil(t, err)
	other := t.TempDir()

	err = mgr.Destroy(&Workspace{Root: other, JobID: "x"})

	assert.ErrorIs(t, err, errors.ErrWorkspaceDestroy)
	assert.DirExists(t, other)
}

func TestWriteFile(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.Nil(t, err)
	ws, err := mgr.Create(uuid.NewString())
	require.Nil(t, err)

	err = ws.WriteFile("src/lib.rs", "pub fn f() {}")

	assert.Nil(t, err)
	assert.True(t, ws.Exists("src/lib.rs"))
	data, err := ws.ReadFile("src/lib.rs")
	assert.Nil(t, err)
	assert.Equal(t, "pub fn f() {}", string(data))
}

func TestWriteFileEscapes(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.Nil(t, err)
	ws, err := mgr.Create(uuid.NewString())
	require.Nil(t, err)

	cases := []string{"../x", "/etc/passwd", "a/../../x"}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			err := ws.WriteFile(c, "x")
			assert.ErrorIs(t, err, errors.ErrWorkspaceWrite)
		})
	}
}

func TestExists(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.Nil(t, err)
	ws, err := mgr.Create(uuid.NewString())
	require.Nil(t, err)
	require.Nil(t, os.Mkdir(filepath.Join(ws.Root, "dir"), 0o750))

	assert.False(t, ws.Exists("nope"))
	assert.False(t, ws.Exists("dir"))
	assert.False(t, ws.Exists("../.."))
}

func TestWithAlwaysDestroys(t *testing.T) {
	mgr, err := NewManager(t.TempDir())
	require.Nil(t, err)

	cases := []struct {
		Name string
		Fn   func(ws *Workspace) error
	}{
		{"Success", func(ws *Workspace) error { return ws.WriteFile("a", "b") }},
		{"Error", func(ws *Workspace) error { return fmt.Errorf("boom") }},
		{"Panic", func(ws *Workspace) error { panic("boom") }},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			id := uuid.NewString()

			func() {
				defer func() { recover() }()
				mgr.With(id, c.Fn)
			}()

			assert.NoDirExists(t, filepath.Join(mgr.Root(), id))
		})
	}
}
