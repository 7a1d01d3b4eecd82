package parser

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/util"
)

// Parser reads event spool files (one JSON event record per line).
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string][]event.Record
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File   string
	Events []event.Record
	Error  error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string][]event.Record),
	}
}

// ParseFile parses the spool file at the specified path. Invalid lines are
// skipped, not fatal; a spool written concurrently by an agent may have a
// torn last line.
func (p *Parser) ParseFile(filepath string) ([]event.Record, error) {
	p.mu.Lock()
	if cached, ok := p.cache[filepath]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	util.LogDebug(fmt.Sprintf("Start parsing spool: %s", filepath))

	file, err := os.Open(filepath)
	if err != nil {
		util.LogDebug(fmt.Sprintf("Failed to open spool: %s - %v", filepath, err))
		return nil, err
	}
	defer file.Close()

	var events []event.Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
		var rec event.Record
		if err := sonic.Unmarshal(scanner.Bytes(), &rec); err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %s:%d - %v", filepath, lineCount, err))
			continue
		}
		if rec.Id == "" || rec.Type == "" {
			util.LogDebug(fmt.Sprintf("Skip incomplete event %s:%d", filepath, lineCount))
			continue
		}
		events = append(events, rec)
	}

	if err := scanner.Err(); err != nil {
		util.LogDebug(fmt.Sprintf("Error scanning spool: %s - %v", filepath, err))
		return nil, err
	}

	p.mu.Lock()
	p.cache[filepath] = events
	p.mu.Unlock()

	return events, nil
}

// Invalidate drops the cached parse of a file, forcing a re-read on the
// next ParseFile. The watcher calls this when a spool changes on disk.
func (p *Parser) Invalidate(filepath string) {
	p.mu.Lock()
	delete(p.cache, filepath)
	p.mu.Unlock()
}

// ParseFiles parses multiple files concurrently and returns a channel of
// ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebug(fmt.Sprintf("Start concurrent parsing of %d spools, concurrency: %d", len(files), p.concurrency))

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			events, err := p.ParseFile(f)
			if err != nil {
				util.LogDebug(fmt.Sprintf("Spool parsing failed: %s - %v", f, err))
			}

			results <- ParseResult{
				File:   f,
				Events: events,
				Error:  err,
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug(fmt.Sprintf("Concurrent parsing completed, total duration %v", time.Since(start)))
	}()

	return results
}

// ParseAll parses the given files and returns all events merged, in file
// order then line order.
func (p *Parser) ParseAll(files []string) ([]event.Record, error) {
	byFile := make(map[string][]event.Record, len(files))
	var firstErr error
	for result := range p.ParseFiles(files) {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to parse %s: %w", result.File, result.Error)
		}
		byFile[result.File] = result.Events
	}

	var all []event.Record
	for _, f := range files {
		all = append(all, byFile[f]...)
	}
	return all, firstErr
}
