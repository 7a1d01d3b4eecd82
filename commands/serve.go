package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ibare/baden/internal/application/monitor"
	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/registry"
	"github.com/ibare/baden/internal/core/timeline"
	"github.com/ibare/baden/internal/data/parser"
	"github.com/ibare/baden/internal/data/scanner"
	"github.com/ibare/baden/internal/data/store"
	"github.com/ibare/baden/internal/data/watcher"
	"github.com/ibare/baden/internal/server"
	"github.com/ibare/baden/internal/util"
)

var (
	servePort           int
	serveDBPath         string
	serveWatch          bool
	serveZoomSec        int
	serveViewportWidth  int
	serveViewportHeight int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the activity ingestion daemon",
	Long: `Runs the HTTP ingestion server: agents POST activity events, dashboards
read them back (raw, or as a computed timeline layout) and follow live
updates over SSE.

With --watch the daemon also tails the event spool directory and keeps a
live layout of today's spool activity at GET /api/layout/live.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", server.DefaultPort,
		"Listen port")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "",
		"SQLite database path (empty = ~/.baden/events.db)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true,
		"Watch the spool directory and maintain a live layout")
	serveCmd.Flags().IntVar(&serveZoomSec, "zoom", timeline.DefaultZoomSec,
		"Seconds per ruler tick for the live layout (1-60)")
	serveCmd.Flags().IntVar(&serveViewportWidth, "viewport-width", 1200,
		"Viewport width in pixels for the live layout")
	serveCmd.Flags().IntVar(&serveViewportHeight, "viewport-height", 600,
		"Viewport height in pixels for the live layout")
}

func runServe(cmd *cobra.Command, args []string) error {
	initLogging()

	loc, err := util.ResolveLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	resolver, err := loadResolver()
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(serveDBPath)
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	srv := server.NewServer(st, resolver, version, servePort)

	if serveWatch {
		orch, sw, err := startSpoolMonitor(ctx, loc, resolver, srv)
		if err != nil {
			return err
		}
		defer sw.Close()
		srv.SetLayoutSource(orch)
	}

	srv.Start(ctx)

	// Block until interrupted
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	util.LogInfo("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

// startSpoolMonitor tails the spool directory, recomputing the live layout
// and notifying SSE clients whenever an agent appends an event.
func startSpoolMonitor(ctx context.Context, loc *time.Location, resolver registry.Resolver, srv *server.Server) (*monitor.Orchestrator, *watcher.SpoolWatcher, error) {
	dir := expandPath(dataDir)
	if err := ensureDir(dir); err != nil {
		return nil, nil, fmt.Errorf("failed to create spool directory: %w", err)
	}

	p := parser.NewParser(runtime.NumCPU())
	today := time.Now().In(loc).Format("2006-01-02")
	events, err := loadSpool(p, dir, today)
	if err != nil {
		util.LogWarnf("Initial spool load failed: %v", err)
	}

	orch := monitor.NewOrchestrator(timeline.LayoutInput{
		Events:         events,
		SelectedDate:   today,
		ZoomSec:        monitor.ClampZoom(serveZoomSec),
		ViewportWidth:  serveViewportWidth,
		ViewportHeight: serveViewportHeight,
		Resolver:       resolver,
		Timezone:       loc,
	})

	sw, err := watcher.NewSpoolWatcher([]string{dir})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch spool directory: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case fe, ok := <-sw.Events():
				if !ok {
					return
				}
				util.LogDebugf("Spool changed: %s (%s)", fe.Path, fe.Operation)
				p.Invalidate(fe.Path)
				day := time.Now().In(loc).Format("2006-01-02")
				events, err := loadSpool(p, dir, day)
				if err != nil {
					util.LogWarnf("Spool reload failed: %v", err)
					continue
				}
				orch.SetEvents(events)
				srv.Broadcaster().Broadcast(server.SSEEvent{
					Type: "spool",
					Data: map[string]any{"path": fe.Path, "events": len(events)},
				})
			}
		}
	}()

	return orch, sw, nil
}

// loadSpool parses one day's spool files through a shared parser, so
// unchanged files come from cache.
func loadSpool(p *parser.Parser, dir, date string) ([]event.Record, error) {
	files, err := scanner.NewSpoolScanner(dir).ScanForDate(date)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return p.ParseAll(files)
}
