//go:build !windows

package registry

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastRemovesDeadProcess(t *testing.T) {
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Skipf("cannot spawn helper: %v", err)
	}
	dead := cmd.Process.Pid

	r := New(t.TempDir())
	require.NoError(t, os.MkdirAll(r.Dir(), 0755))
	stale := filepath.Join(r.Dir(), strconv.Itoa(dead))
	require.NoError(t, os.WriteFile(stale, []byte(strconv.Itoa(dead)), 0644))

	assert.Equal(t, 0, r.Broadcast(0))
	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestBroadcastCountsLiveProcess(t *testing.T) {
	cmd := exec.Command("sleep", "5")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot spawn helper: %v", err)
	}
	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
	})
	pid := cmd.Process.Pid

	r := New(t.TempDir())
	require.NoError(t, os.MkdirAll(r.Dir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), strconv.Itoa(pid)), []byte(strconv.Itoa(pid)), 0644))

	// signal 0 probes without delivering anything
	assert.Equal(t, 1, r.Broadcast(0))
	assert.Equal(t, []int{pid}, r.List())
}
