package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, sw *SpoolWatcher, timeout time.Duration) (FileEvent, bool) {
	t.Helper()
	select {
	case ev := <-sw.Events():
		return ev, true
	case <-time.After(timeout):
		return FileEvent{}, false
	}
}

func TestSpoolWatcher(t *testing.T) {
	base := t.TempDir()
	projectDir := filepath.Join(base, "alpha")
	require.NoError(t, os.MkdirAll(projectDir, 0755))

	sw, err := NewSpoolWatcher([]string{base})
	require.NoError(t, err)
	defer sw.Close()

	t.Run("reports_spool_writes", func(t *testing.T) {
		path := filepath.Join(projectDir, "2026-03-10.jsonl")
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

		ev, ok := waitForEvent(t, sw, 2*time.Second)
		require.True(t, ok, "no event within timeout")
		assert.Equal(t, path, ev.Path)
	})

	t.Run("ignores_non_spool_files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(projectDir, "notes.txt"), []byte("x"), 0644))

		// Drain anything pending; no .jsonl event should arrive for the txt
		deadline := time.After(500 * time.Millisecond)
		for {
			select {
			case ev := <-sw.Events():
				assert.Equal(t, ".jsonl", filepath.Ext(ev.Path))
			case <-deadline:
				return
			}
		}
	})

	t.Run("watches_new_subdirectories", func(t *testing.T) {
		newDir := filepath.Join(base, "beta")
		require.NoError(t, os.MkdirAll(newDir, 0755))
		// Give the watcher a moment to pick up the new directory
		time.Sleep(200 * time.Millisecond)

		path := filepath.Join(newDir, "2026-03-10.jsonl")
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

		ev, ok := waitForEvent(t, sw, 2*time.Second)
		require.True(t, ok, "no event within timeout")
		assert.Equal(t, path, ev.Path)
	})
}
