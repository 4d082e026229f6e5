//go:build linux

package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// processGone reports whether pid has exited. A zombie waiting to be reaped by
// init counts as gone.
func processGone(pid int) bool {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return true
	}
	// format: pid (comm) state ...
	stat := string(data)
	idx := strings.LastIndex(stat, ")")
	if idx < 0 || idx+2 >= len(stat) {
		return true
	}
	state := stat[idx+2]
	return state == 'Z' || state == 'X'
}

func TestLocalRunTimeoutKillsChildren(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "child.pid")
	inv := NewLocal()

	result, err := inv.Run(context.Background(), &Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 60 & echo $! > " + pidfile + "; wait"},
		Timeout: 500 * time.Millisecond,
	})

	require.Nil(t, err)
	assert.True(t, result.TimedOut)

	data, err := os.ReadFile(pidfile)
	require.Nil(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.Nil(t, err)

	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 50*time.Millisecond)
}

func TestLocalRunKillsLeftovers(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "child.pid")
	inv := NewLocal()

	// the leader exits straight away, leaving a background child behind
	result, err := inv.Run(context.Background(), &Command{
		Name:    "sh",
		Args:    []string{"-c", "sleep 60 >/dev/null 2>&1 & echo $! > " + pidfile},
		Timeout: 10 * time.Second,
	})

	require.Nil(t, err)
	assert.True(t, result.Success())

	data, err := os.ReadFile(pidfile)
	require.Nil(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.Nil(t, err)

	assert.Eventually(t, func() bool { return processGone(pid) }, 5*time.Second, 50*time.Millisecond)
}
