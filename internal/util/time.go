package util

import (
	"fmt"
	"sync"
	"time"
)

// ResolveLocation parses a timezone name ("Local", "UTC", "Asia/Seoul"...)
// into a location.
func ResolveLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Asia/Seoul, Europe/London", timezone, err)
	}
	return loc, nil
}

// TimeProvider is a timezone-aware time utility shared across the process.
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	timeProviderMu     sync.Mutex
)

// InitializeTimeProvider initializes the global time provider with the
// specified timezone.
func InitializeTimeProvider(timezone string) error {
	timeProviderMu.Lock()
	defer timeProviderMu.Unlock()

	loc, err := ResolveLocation(timezone)
	if err != nil {
		return err
	}
	globalTimeProvider = &TimeProvider{location: loc}
	return nil
}

// GetTimeProvider returns the global time provider, defaulting to the local
// timezone when never initialized.
func GetTimeProvider() *TimeProvider {
	timeProviderMu.Lock()
	defer timeProviderMu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local}
	}
	return globalTimeProvider
}

// Location returns the configured timezone.
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the configured timezone.
func (tp *TimeProvider) Now() time.Time {
	return time.Now().In(tp.Location())
}

// In converts a time to the configured timezone.
func (tp *TimeProvider) In(t time.Time) time.Time {
	return t.In(tp.Location())
}

// Format formats a time according to the layout in the configured timezone.
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return t.In(tp.Location()).Format(layout)
}
