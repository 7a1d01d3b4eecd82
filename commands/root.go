package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/registry"
	"github.com/ibare/baden/internal/core/timeline"
	"github.com/ibare/baden/internal/data/parser"
	"github.com/ibare/baden/internal/data/scanner"
	"github.com/ibare/baden/internal/presentation/formatter"
	"github.com/ibare/baden/internal/util"
)

var (
	// Logging related
	debug   bool
	logFile string

	// Data path
	dataDir      string
	registryFile string

	// Layout controls
	date           string
	zoomSec        int
	viewportWidth  int
	viewportHeight int
	expandLevel    int
	categories     string

	// Output related
	outputFormat string
	timezone     string

	rootCmd = &cobra.Command{
		Use:   "baden [flags]",
		Short: "Development activity timeline tool",
		Long: `baden turns agent activity event spools into a laid-out timeline:
lanes per activity category, idle gaps compressed out of the time axis, and
inferred connections between related events.

Examples:
  baden                                      # Today's timeline as a lane table
  baden --date 2026-08-30 --output json      # One day's full layout as JSON
  baden --zoom 10 --categories debugging     # Coarser axis, one lane only
  baden --output summary                     # Aggregate report
  baden serve                                # Run the ingestion daemon`,
		RunE: runRender,
	}
)

const (
	defaultLogFile = "~/.baden/logs/app.log"
	defaultDataDir = "~/.baden/events"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDataDir,
		"Event spool directory path")
	rootCmd.PersistentFlags().StringVar(&registryFile, "registry", "",
		"Action registry YAML file (empty = built-in table)")

	rootCmd.Flags().StringVar(&date, "date", "",
		"Day to render (2006-01-02, empty = today)")
	rootCmd.Flags().IntVar(&zoomSec, "zoom", timeline.DefaultZoomSec,
		"Seconds per ruler tick (1-60)")
	rootCmd.Flags().IntVar(&viewportWidth, "viewport-width", 0,
		"Viewport width in pixels (0 = derive from terminal)")
	rootCmd.Flags().IntVar(&viewportHeight, "viewport-height", 600,
		"Viewport height in pixels")
	rootCmd.Flags().IntVar(&expandLevel, "expand", 0,
		"Inline detail level (0-2)")
	rootCmd.Flags().StringVar(&categories, "categories", "",
		"Comma-separated category filter (empty = all)")

	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone setting (e.g., Asia/Seoul, UTC)")

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"Log file path")
}

func runRender(cmd *cobra.Command, args []string) error {
	initLogging()

	loc, err := util.ResolveLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	if date == "" {
		date = time.Now().In(loc).Format("2006-01-02")
	}

	resolver, err := loadResolver()
	if err != nil {
		return err
	}

	events, err := loadEvents(date)
	if err != nil {
		return err
	}

	in := timeline.LayoutInput{
		Events:         events,
		SelectedDate:   date,
		ZoomSec:        zoomSec,
		ViewportWidth:  resolveViewportWidth(),
		ViewportHeight: viewportHeight,
		ExpandLevel:    expandLevel,
		Resolver:       resolver,
		Timezone:       loc,
	}
	if filter := parseCategories(categories); filter != nil {
		in.ActiveCategories = filter
	}

	layout := timeline.Build(in)

	f, err := newFormatter(outputFormat, loc)
	if err != nil {
		return err
	}
	return f.Format(layout)
}

// loadEvents scans the spool directory and parses the selected day's files.
func loadEvents(date string) ([]event.Record, error) {
	dir := expandPath(dataDir)
	files, err := scanner.NewSpoolScanner(dir).ScanForDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	return parser.NewParser(runtime.NumCPU()).ParseAll(files)
}

func loadResolver() (registry.Resolver, error) {
	if registryFile == "" {
		return registry.NewDefault().ResolverFunc(), nil
	}
	reg, err := registry.LoadFile(expandPath(registryFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg.ResolverFunc(), nil
}

func newFormatter(format string, loc *time.Location) (formatter.Formatter, error) {
	switch format {
	case "json":
		return formatter.NewJSONFormatter(os.Stdout), nil
	case "table":
		return formatter.NewTableFormatter(os.Stdout), nil
	case "csv":
		return formatter.NewCSVFormatter(os.Stdout, loc), nil
	case "summary":
		return formatter.NewSummaryFormatter(os.Stdout, loc), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

func parseCategories(raw string) map[event.Category]bool {
	if raw == "" {
		return nil
	}
	filter := make(map[event.Category]bool)
	for _, c := range strings.Split(raw, ",") {
		name := strings.TrimSpace(c)
		if event.ValidCategory(name) {
			filter[event.Category(name)] = true
		}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

// resolveViewportWidth derives a pixel width from the terminal when no
// explicit width was given. One terminal column stands in for 8px.
func resolveViewportWidth() int {
	if viewportWidth > 0 {
		return viewportWidth
	}
	if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
		return cols * 8
	}
	return 1200
}

func initLogging() {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	path := expandPath(logFile)
	ensureDir(filepath.Dir(path))
	util.InitLogger(logLevel, path, debug)
	_ = util.InitializeTimeProvider(timezone)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
