// Package workspace owns the per-job directories builds run in.
//
// Each job gets <root>/<jobID>. The path is derived from the job ID so two
// concurrent jobs can never share a workspace, and Create refuses to reuse an
// existing directory.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

const (
	dirMode  = 0o750
	fileMode = 0o640
)

// Workspace is one job's build directory.
type Workspace struct {
	Root  string
	JobID string
}

// Manager creates and destroys workspaces under a single build root.
type Manager struct {
	root string
}

// NewManager returns a Manager rooted at the given directory, creating it if needed.
func NewManager(root string) (*Manager, error) {
	if root == "" {
		return nil, fmt.Errorf("%w build root not set", errors.ErrInvalidArg)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w %v", errors.ErrInvalidArg, err)
	}
	if err := os.MkdirAll(abs, dirMode); err != nil {
		return nil, fmt.Errorf("%w build root %s: %v", errors.ErrWorkspaceCreate, abs, err)
	}
	return &Manager{root: abs}, nil
}

// Root returns the absolute build root.
func (m *Manager) Root() string {
	return m.root
}

// Create allocates a fresh, empty workspace for the job.
func (m *Manager) Create(jobID string) (*Workspace, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("%w job id %q", errors.ErrWorkspaceCreate, jobID)
	}
	root := filepath.Join(m.root, jobID)

	// Mkdir (not MkdirAll) so an existing directory is an error
	if err := os.Mkdir(root, dirMode); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errors.ErrWorkspaceCreate, root, err)
	}

	slog.Debug("Created workspace", "jobID", jobID, "path", root)
	return &Workspace{Root: root, JobID: jobID}, nil
}

// Destroy removes the workspace and everything in it.
func (m *Manager) Destroy(ws *Workspace) error {
	if ws == nil || ws.Root == "" {
		return nil
	}
	if filepath.Dir(ws.Root) != m.root {
		return fmt.Errorf("%w %s is not under %s", errors.ErrWorkspaceDestroy, ws.Root, m.root)
	}
	if err := os.RemoveAll(ws.Root); err != nil {
		return fmt.Errorf("%w %s: %v", errors.ErrWorkspaceDestroy, ws.Root, err)
	}
	slog.Debug("Destroyed workspace", "jobID", ws.JobID, "path", ws.Root)
	return nil
}

// With creates a workspace, hands it to fn and destroys it afterwards, even if
// fn panics. A destroy error is returned only if fn itself succeeded.
func (m *Manager) With(jobID string, fn func(ws *Workspace) error) (err error) {
	ws, err := m.Create(jobID)
	if err != nil {
		return err
	}
	defer func() {
		derr := m.Destroy(ws)
		if derr != nil {
			slog.Error("Failed to destroy workspace", "jobID", jobID, "error", derr)
			if err == nil {
				err = derr
			}
		}
	}()
	return fn(ws)
}

// Path resolves a path relative to the workspace root. Paths escaping the
// root are rejected.
func (ws *Workspace) Path(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w path %q escapes workspace", errors.ErrInvalidArg, rel)
	}
	return filepath.Join(ws.Root, clean), nil
}

// WriteFile writes contents to rel, creating intermediate directories.
func (ws *Workspace) WriteFile(rel, contents string) error {
	abs, err := ws.Path(rel)
	if err != nil {
		return fmt.Errorf("%w %v", errors.ErrWorkspaceWrite, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), dirMode); err != nil {
		return fmt.Errorf("%w %s: %v", errors.ErrWorkspaceWrite, rel, err)
	}
	if err := os.WriteFile(abs, []byte(contents), fileMode); err != nil {
		return fmt.Errorf("%w %s: %v", errors.ErrWorkspaceWrite, rel, err)
	}
	return nil
}

// ReadFile returns the contents of rel.
func (ws *Workspace) ReadFile(rel string) ([]byte, error) {
	abs, err := ws.Path(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

// Exists reports whether rel exists as a regular file.
func (ws *Workspace) Exists(rel string) bool {
	abs, err := ws.Path(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}
