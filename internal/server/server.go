// Package server implements the activity ingestion daemon: agents POST
// event records, dashboards read them back (raw or as a computed timeline
// layout) and follow live updates over SSE.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/core/registry"
	"github.com/ibare/baden/internal/core/timeline"
	"github.com/ibare/baden/internal/data/store"
	"github.com/ibare/baden/internal/util"
)

// DefaultPort is the ingestion server's default listen port.
const DefaultPort = 4725

// LayoutSource provides the current live layout; the monitor orchestrator
// implements it.
type LayoutSource interface {
	Layout() *timeline.Layout
}

// Server is the ingestion HTTP server.
type Server struct {
	httpServer  *http.Server
	store       store.EventStore
	resolver    registry.Resolver
	broadcaster *SSEBroadcaster
	metrics     *Metrics
	version     string
	port        int

	mu     sync.RWMutex
	source LayoutSource
}

// NewServer wires the API around an event store. A nil resolver falls back
// to the static type table for layout requests.
func NewServer(st store.EventStore, resolver registry.Resolver, version string, port int) *Server {
	if port == 0 {
		port = DefaultPort
	}

	metrics := NewMetrics()
	s := &Server{
		store:       st,
		resolver:    resolver,
		broadcaster: NewSSEBroadcaster(metrics),
		metrics:     metrics,
		version:     version,
		port:        port,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/events", s.handlePostEvent)
	mux.HandleFunc("GET /api/events", s.handleGetEvents)
	mux.HandleFunc("GET /api/projects", s.handleGetProjects)
	mux.HandleFunc("GET /api/layout", s.handleGetLayout)
	mux.HandleFunc("GET /api/layout/live", s.handleGetLiveLayout)
	mux.HandleFunc("GET /sse/events", s.broadcaster.ServeHTTP)
	mux.Handle("GET /metrics", metrics.Handler())

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           corsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving. It returns immediately; errors from the listener are
// logged, not returned.
func (s *Server) Start(ctx context.Context) {
	s.broadcaster.Start(ctx)

	util.LogInfof("Ingestion server listening on http://127.0.0.1:%d", s.port)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.LogError("Server error: " + err.Error())
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.broadcaster.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Port returns the listen port.
func (s *Server) Port() int {
	return s.port
}

// Broadcaster exposes the SSE broadcaster so a co-resident watcher can push
// spool-derived events onto the same stream.
func (s *Server) Broadcaster() *SSEBroadcaster {
	return s.broadcaster
}

// SetLayoutSource attaches a live layout provider served at
// GET /api/layout/live.
func (s *Server) SetLayoutSource(source LayoutSource) {
	s.mu.Lock()
	s.source = source
	s.mu.Unlock()
}

func (s *Server) handleGetLiveLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	source := s.source
	s.mu.RUnlock()
	if source == nil {
		s.writeError(w, "layout", http.StatusNotFound, "no live layout source")
		return
	}
	s.writeJSON(w, "layout", http.StatusOK, source.Layout())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "health", http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"clients": s.broadcaster.ClientCount(),
	})
}

func (s *Server) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	var in event.Input
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&in); err != nil {
		s.metrics.IngestRejected.Inc()
		s.writeError(w, "events", http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Type == "" || in.ProjectId == "" {
		s.metrics.IngestRejected.Inc()
		s.writeError(w, "events", http.StatusBadRequest, "type and projectId are required")
		return
	}

	rec := event.Record{
		Id:         uuid.NewString(),
		Timestamp:  store.NowTimestamp(),
		Type:       in.Type,
		ProjectId:  in.ProjectId,
		RuleId:     in.RuleId,
		Severity:   in.Severity,
		File:       in.File,
		Line:       in.Line,
		Message:    in.Message,
		Detail:     in.Detail,
		Action:     in.Action,
		Agent:      in.Agent,
		Step:       in.Step,
		DurationMs: in.DurationMs,
		Prompt:     in.Prompt,
		Summary:    in.Summary,
		Result:     in.Result,
		TaskId:     in.TaskId,
	}

	if err := s.store.EnsureProject(rec.ProjectId, rec.ProjectId); err != nil {
		s.writeError(w, "events", http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.StoreEvent(&rec); err != nil {
		s.writeError(w, "events", http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.EventsIngested.WithLabelValues(rec.Type).Inc()
	s.broadcaster.Broadcast(SSEEvent{Type: SSEEventNew, Data: rec})

	s.writeJSON(w, "events", http.StatusCreated, rec)
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		s.writeError(w, "events", http.StatusBadRequest, "project is required")
		return
	}
	date := r.URL.Query().Get("date")

	var (
		events []event.Record
		err    error
	)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, convErr := strconv.Atoi(limitStr)
		if convErr != nil || limit < 1 {
			s.writeError(w, "events", http.StatusBadRequest, "invalid limit")
			return
		}
		events, err = s.store.GetRecentEvents(project, limit)
	} else {
		events, err = s.store.GetEvents(project, date)
	}
	if err != nil {
		s.writeError(w, "events", http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []event.Record{}
	}
	s.writeJSON(w, "events", http.StatusOK, events)
}

func (s *Server) handleGetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects()
	if err != nil {
		s.writeError(w, "projects", http.StatusInternalServerError, err.Error())
		return
	}
	if projects == nil {
		projects = []store.Project{}
	}
	s.writeJSON(w, "projects", http.StatusOK, projects)
}

// handleGetLayout computes a timeline layout server side. Query parameters:
// project (required), date, zoom, width, height, expand, tz, categories
// (comma-separated).
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	project := q.Get("project")
	if project == "" {
		s.writeError(w, "layout", http.StatusBadRequest, "project is required")
		return
	}

	loc, err := util.ResolveLocation(q.Get("tz"))
	if err != nil {
		s.writeError(w, "layout", http.StatusBadRequest, "unknown timezone")
		return
	}
	date := q.Get("date")
	if date == "" {
		date = time.Now().In(loc).Format("2006-01-02")
	}

	in := timeline.LayoutInput{
		SelectedDate:   date,
		ZoomSec:        timeline.DefaultZoomSec,
		ViewportWidth:  1200,
		ViewportHeight: 600,
		Resolver:       s.resolver,
		Timezone:       loc,
	}
	if v, ok := intParam(q.Get("zoom")); ok {
		in.ZoomSec = v
	}
	if v, ok := intParam(q.Get("width")); ok {
		in.ViewportWidth = v
	}
	if v, ok := intParam(q.Get("height")); ok {
		in.ViewportHeight = v
	}
	if v, ok := intParam(q.Get("expand")); ok {
		in.ExpandLevel = v
	}
	if cats := q.Get("categories"); cats != "" {
		in.ActiveCategories = make(map[event.Category]bool)
		for _, c := range strings.Split(cats, ",") {
			name := strings.TrimSpace(c)
			if event.ValidCategory(name) {
				in.ActiveCategories[event.Category(name)] = true
			}
		}
	}

	events, err := s.store.GetEvents(project, date)
	if err != nil {
		s.writeError(w, "layout", http.StatusInternalServerError, err.Error())
		return
	}
	in.Events = events

	start := time.Now()
	layout := timeline.Build(in)
	s.metrics.RecomputeDuration.Observe(time.Since(start).Seconds())

	s.writeJSON(w, "layout", http.StatusOK, layout)
}

func intParam(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (s *Server) writeJSON(w http.ResponseWriter, route string, status int, payload any) {
	s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, err := sonic.Marshal(payload)
	if err != nil {
		util.LogError("Failed to encode response: " + err.Error())
		return
	}
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, route string, status int, message string) {
	s.writeJSON(w, route, status, map[string]string{"error": message})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
