package watcher

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ibare/baden/internal/util"
)

// FileEvent is a change notification for one spool file.
type FileEvent struct {
	Path      string
	Operation string
}

// SpoolWatcher watches event spool directories and reports changes to
// .jsonl files, so the monitor can trigger a full layout recompute on every
// appended event.
type SpoolWatcher struct {
	watcher *fsnotify.Watcher
	paths   []string
	events  chan FileEvent
}

// NewSpoolWatcher watches the given directories recursively.
func NewSpoolWatcher(paths []string) (*SpoolWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &SpoolWatcher{
		watcher: watcher,
		paths:   paths,
		events:  make(chan FileEvent, 100),
	}

	for _, path := range paths {
		if err := sw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go sw.processEvents()

	return sw, nil
}

func (sw *SpoolWatcher) addPath(path string) error {
	// Recursively add directories
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return sw.watcher.Add(p)
		}
		return nil
	})
}

func (sw *SpoolWatcher) processEvents() {
	for {
		select {
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			// New subdirectories need watching too
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = sw.watcher.Add(ev.Name)
					continue
				}
			}
			if filepath.Ext(ev.Name) == ".jsonl" {
				sw.events <- FileEvent{
					Path:      ev.Name,
					Operation: ev.Op.String(),
				}
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			// Log error but keep watching
			util.LogError("Spool watch error: " + err.Error())
		}
	}
}

// Events returns the change notification channel.
func (sw *SpoolWatcher) Events() <-chan FileEvent {
	return sw.events
}

// Close stops watching.
func (sw *SpoolWatcher) Close() error {
	return sw.watcher.Close()
}
