package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ibare/baden/internal/util"
)

// SpoolScanner finds event spool files (.jsonl) under a base directory.
// Agents append one JSON event per line to per-day spool files; the scanner
// feeds the parser with every spool it can find.
type SpoolScanner struct {
	baseDir string
}

// NewSpoolScanner creates a new SpoolScanner instance.
func NewSpoolScanner(baseDir string) *SpoolScanner {
	return &SpoolScanner{baseDir: baseDir}
}

// Scan walks the spool directory and returns all .jsonl file paths, sorted
// for deterministic parse order.
func (s *SpoolScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	util.LogDebug(fmt.Sprintf("Start scanning spool directory: %s", s.baseDir))

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip path (error): %s - %v", path, err))
			return nil
		}

		if info.IsDir() {
			dirCount++
			return nil
		}

		totalCount++
		if strings.HasSuffix(strings.ToLower(path), ".jsonl") {
			files = append(files, path)
		}

		return nil
	})

	sort.Strings(files)

	util.LogDebug(fmt.Sprintf("Spool scan completed: duration %v, scanned %d directories, %d files, found %d spools",
		time.Since(start), dirCount, totalCount, len(files)))

	return files, err
}

// ScanForDate returns spool files whose name contains the given day
// ("2006-01-02"), falling back to all spools when none match.
func (s *SpoolScanner) ScanForDate(date string) ([]string, error) {
	files, err := s.Scan()
	if err != nil {
		return nil, err
	}
	if date == "" {
		return files, nil
	}

	var matched []string
	for _, f := range files {
		if strings.Contains(filepath.Base(f), date) {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return files, nil
	}
	return matched, nil
}
