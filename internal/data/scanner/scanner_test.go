package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
}

func TestScan(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "alpha", "2026-03-10.jsonl"))
	writeFile(t, filepath.Join(base, "alpha", "2026-03-11.jsonl"))
	writeFile(t, filepath.Join(base, "beta", "nested", "2026-03-10.jsonl"))
	writeFile(t, filepath.Join(base, "beta", "notes.txt"))

	s := NewSpoolScanner(base)
	files, err := s.Scan()
	require.NoError(t, err)

	require.Len(t, files, 3)
	// Sorted for deterministic parse order
	assert.True(t, sortedStrings(files))
	for _, f := range files {
		assert.Equal(t, ".jsonl", filepath.Ext(f))
	}
}

func TestScanForDate(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "alpha", "2026-03-10.jsonl"))
	writeFile(t, filepath.Join(base, "alpha", "2026-03-11.jsonl"))

	s := NewSpoolScanner(base)

	t.Run("matching_date", func(t *testing.T) {
		files, err := s.ScanForDate("2026-03-10")
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Contains(t, files[0], "2026-03-10")
	})

	t.Run("empty_date_returns_all", func(t *testing.T) {
		files, err := s.ScanForDate("")
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("no_match_falls_back_to_all", func(t *testing.T) {
		files, err := s.ScanForDate("2026-01-01")
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})
}

func TestScanEmptyDir(t *testing.T) {
	s := NewSpoolScanner(t.TempDir())
	files, err := s.Scan()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func sortedStrings(ss []string) bool {
	for i := 1; i < len(ss); i++ {
		if ss[i-1] > ss[i] {
			return false
		}
	}
	return true
}
