// Package preview serves the output of a generation run over HTTP from an
// in-memory filesystem, so generated code can be inspected without
// touching the project tree.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/koustreak/automodel/internal/emit"
	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/filestore"
	"github.com/koustreak/automodel/internal/logger"
	"github.com/spf13/afero"
)

const outputDir = "/models"

// BuildFunc runs one generation into target.
type BuildFunc func(ctx context.Context, target emit.Target) error

// FileInfo describes one generated file.
type FileInfo struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Snapshot is the result of the latest successful build.
type Snapshot struct {
	ID      string     `json:"id"`
	BuiltAt time.Time  `json:"built_at"`
	Files   []FileInfo `json:"files"`

	fs afero.Fs
}

// Server holds the latest snapshot and regenerates it on demand.
type Server struct {
	build  BuildFunc
	log    *logger.Logger
	router chi.Router

	// building serialises builds; mu guards current.
	building sync.Mutex
	mu       sync.RWMutex
	current  *Snapshot
}

// New creates a server. No build runs until Regenerate is called.
func New(build BuildFunc, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{build: build, log: log.With().Str("component", "preview").Logger()}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/files", s.handleList)
	r.Get("/files/{name}", s.handleFile)
	r.Post("/regenerate", s.handleRegenerate)
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Current returns the latest snapshot, or nil before the first build.
func (s *Server) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Regenerate builds into a fresh in-memory filesystem and swaps it in on
// success. A failed build keeps the previous snapshot.
func (s *Server) Regenerate(ctx context.Context) (*Snapshot, error) {
	s.building.Lock()
	defer s.building.Unlock()

	fs := afero.NewMemMapFs()
	start := time.Now()
	if err := s.build(ctx, emit.NewFSTarget(fs, outputDir)); err != nil {
		s.log.ErrorWith("regeneration failed", err, nil)
		return nil, err
	}

	files, err := listFiles(fs)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{ID: uuid.NewString(), BuiltAt: time.Now().UTC(), Files: files, fs: fs}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	s.log.InfoWith("regenerated", logger.Fields{
		"build":   snap.ID,
		"files":   len(files),
		"elapsed": time.Since(start).String(),
	})
	return snap, nil
}

func listFiles(fs afero.Fs) ([]FileInfo, error) {
	entries, err := afero.ReadDir(fs, outputDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "list generated files", err)
	}
	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Name:        e.Name(),
			Size:        e.Size(),
			ContentType: filestore.ContentTypeFor(e.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// --- handlers ---

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	snap := s.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no build yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	snap := s.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no build yet")
		return
	}
	name := path.Base(chi.URLParam(r, "name"))
	data, err := afero.ReadFile(snap.fs, path.Join(outputDir, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "no such file: "+name)
		return
	}
	w.Header().Set("Content-Type", filestore.ContentTypeFor(name))
	w.Header().Set("X-Build-Id", snap.ID)
	_, _ = w.Write(data)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Debug("regeneration requested")
	snap, err := s.Regenerate(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errs.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errs.IsInvalidInput(err):
		return http.StatusBadRequest
	case errs.IsConnectionFailed(err), errs.IsPermissionDenied(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(s.log.WithContext(r.Context())))
		s.log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("elapsed", time.Since(start).String()).
			Logger().Debug("request")
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("preview listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errs.Wrap(errs.ErrKindConnectionFailed, "preview server", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
