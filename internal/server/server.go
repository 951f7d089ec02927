// Package server provides the development server: it serves the build output
// over HTTP with a live-reload script injected into every HTML response,
// watches the source tree, funnels change batches into an externally supplied
// rebuild callback, and pushes reload notifications to connected browsers over
// a server-sent-event channel.
//
// Rebuilds are single-flight. Change batches arriving while a rebuild is in
// flight merge into one pending batch that runs immediately after the current
// rebuild completes, so the served output always converges on the latest
// observed source state.
package server

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/forgeline/pagesmith/internal/config"
	"github.com/forgeline/pagesmith/internal/logging"
	"github.com/forgeline/pagesmith/internal/watcher"
)

// RebuildFunc is the rebuild callback supplied by the caller. It receives the
// batch of changed paths; nil means rebuild everything. The mapping from
// changed paths to a rebuild scope is the caller's policy, not the server's.
type RebuildFunc func(ctx context.Context, changed []string) error

// DevServer serves built pages with live reload
type DevServer struct {
	cfg     *config.Config
	logger  logging.Logger
	rebuild RebuildFunc
	hub     *ReloadHub
	watcher *watcher.FileWatcher

	httpServer *http.Server
	serverMu   sync.RWMutex

	// Single-flight rebuild state. pending holds at most one merged batch of
	// changes observed while a rebuild was in flight.
	stateMu    sync.Mutex
	rebuilding bool
	hasPending bool
	pending    []string

	shutdownOnce sync.Once
}

// New creates a development server. The rebuild callback is required; the
// server performs no builds of its own.
func New(cfg *config.Config, rebuild RebuildFunc, logger logging.Logger) (*DevServer, error) {
	if rebuild == nil {
		return nil, fmt.Errorf("rebuild callback is required")
	}
	if logger == nil {
		logger = logging.NewLogger(nil)
	}

	debounce := time.Duration(cfg.Development.DebounceMs) * time.Millisecond
	fw, err := watcher.NewFileWatcher(debounce, logger)
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &DevServer{
		cfg:     cfg,
		logger:  logger.WithComponent("server"),
		rebuild: rebuild,
		hub:     NewReloadHub(),
		watcher: fw,
	}, nil
}

// Start watches the source tree and serves the output root until the listener
// stops or ctx is cancelled.
func (s *DevServer) Start(ctx context.Context) error {
	s.watcher.AddFilter(watcher.NoDotfileFilter)
	s.watcher.AddHandler(s.onChanges)
	if err := s.watcher.AddRecursive(s.cfg.Site.SourceDir); err != nil {
		return fmt.Errorf("watching %s: %w", s.cfg.Site.SourceDir, err)
	}
	s.watcher.Start(ctx)

	mux := http.NewServeMux()
	if s.cfg.Development.LiveReload {
		mux.HandleFunc(ReloadPath, s.handleReload)
	}
	mux.HandleFunc("/", s.handleStatic)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	s.serverMu.Lock()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	srv := s.httpServer
	s.serverMu.Unlock()

	s.logger.Info(ctx, "development server listening", "addr", addr, "output", s.cfg.Site.OutputDir)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the listener and the file watcher. An in-flight rebuild is
// allowed to finish; it just has nobody left to notify.
func (s *DevServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down")

		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn(ctx, err, "stopping watcher")
		}

		s.hub.Close()

		s.serverMu.RLock()
		srv := s.httpServer
		s.serverMu.RUnlock()

		if srv != nil {
			shutdownErr = srv.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// handleReload upgrades the connection to a server-sent-event stream and
// keeps it registered until the client goes away.
func (s *DevServer) handleReload(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.hub.Register()
	defer s.hub.Unregister(ch)

	s.logger.Debug(r.Context(), "reload client connected", "clients", s.hub.Count())

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// handleStatic serves files from the output root. Directories resolve to
// their index.html, and HTML responses carry the reload observer script.
func (s *DevServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	// Clean the URL path rooted at "/" so traversal cannot escape the output
	// root.
	rel := path.Clean("/" + r.URL.Path)
	fp := filepath.Join(s.cfg.Site.OutputDir, filepath.FromSlash(rel))

	info, err := os.Stat(fp)
	if err == nil && info.IsDir() {
		fp = filepath.Join(fp, "index.html")
		info, err = os.Stat(fp)
	}
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(fp)
	if err != nil {
		s.logger.Error(r.Context(), err, "reading static file", "path", fp)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ext := strings.ToLower(filepath.Ext(fp))
	if ctype := mime.TypeByExtension(ext); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if s.cfg.Development.LiveReload && (ext == ".html" || ext == ".htm") {
		data = injectReloadScript(data)
	}

	if _, err := w.Write(data); err != nil {
		s.logger.Debug(r.Context(), "writing response", "error", err.Error())
	}
}

// onChanges is the watcher handler. It either starts a rebuild or, when one
// is already in flight, merges the batch into the single pending slot.
func (s *DevServer) onChanges(events []watcher.ChangeEvent) error {
	changed := make([]string, 0, len(events))
	for _, ev := range events {
		changed = append(changed, ev.Path)
	}

	s.stateMu.Lock()
	if s.rebuilding {
		s.pending = append(s.pending, changed...)
		s.hasPending = true
		s.stateMu.Unlock()
		return nil
	}
	s.rebuilding = true
	s.stateMu.Unlock()

	go s.rebuildLoop(changed)
	return nil
}

// rebuildLoop runs the current batch and then any batch that accumulated
// while it was running, broadcasting a reload after each success. A failed
// rebuild is logged and the server returns to idle.
func (s *DevServer) rebuildLoop(changed []string) {
	ctx := context.Background()

	for {
		if err := s.rebuild(ctx, changed); err != nil {
			s.logger.Error(ctx, err, "rebuild failed")
		} else {
			s.hub.Broadcast("reload")
			s.logger.Debug(ctx, "reload broadcast", "clients", s.hub.Count())
		}

		s.stateMu.Lock()
		if !s.hasPending {
			s.rebuilding = false
			s.stateMu.Unlock()
			return
		}
		changed = s.pending
		s.pending = nil
		s.hasPending = false
		s.stateMu.Unlock()
	}
}
