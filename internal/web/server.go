package web

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vbonduro/hgdesk/internal/domain"
	"github.com/vbonduro/hgdesk/internal/hgweb"
	"github.com/vbonduro/hgdesk/internal/service"
)

// RepoAdmin is the subset of hgweb.Adapter the admin endpoints require.
type RepoAdmin interface {
	InitRepo(ctx context.Context, name string) (hgweb.Outcome, error)
	RemoveRepo(ctx context.Context, name string) (hgweb.Outcome, error)
	Repos() []string
}

// Observer receives events worth counting. *metrics.Metrics implements it.
type Observer interface {
	ObserveUpload(err error)
	ObserveRepoAdmin(op, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveUpload(error)             {}
func (nopObserver) ObserveRepoAdmin(string, string) {}

// Server is the main application: projects and tasks as HTML pages, items
// as a JSON API and the repository admin endpoints.
type Server struct {
	projects *service.ProjectService
	items    *service.ItemService
	repos    RepoAdmin
	observer Observer
	mux      *http.ServeMux
	logger   *slog.Logger
	renderer
}

func NewServer(projects *service.ProjectService, items *service.ItemService, repos RepoAdmin, tmpl fs.FS, obs Observer, logger *slog.Logger) *Server {
	if obs == nil {
		obs = nopObserver{}
	}
	s := &Server{
		projects: projects,
		items:    items,
		repos:    repos,
		observer: obs,
		mux:      http.NewServeMux(),
		logger:   logger,
		renderer: newRenderer(tmpl),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleListProjects)
	s.mux.HandleFunc("POST /add_project", s.handleAddProject)
	s.mux.HandleFunc("GET /delete_project/{id}", s.handleDeleteProject)
	s.mux.HandleFunc("GET /project/{id}", s.handleProject)

	s.mux.HandleFunc("POST /add_task/{id}", s.handleAddTask)
	s.mux.HandleFunc("GET /task/{id}", s.handleTask)
	s.mux.HandleFunc("POST /update_task/{id}", s.handleUpdateTask)
	s.mux.HandleFunc("GET /toggle_task/{id}", s.handleToggleTask)
	s.mux.HandleFunc("GET /delete_task/{id}", s.handleDeleteTask)

	s.mux.HandleFunc("GET /items", s.handleListItems)
	s.mux.HandleFunc("POST /items", s.handleCreateItem)
	s.mux.HandleFunc("GET /items/{id}", s.handleGetItem)
	s.mux.HandleFunc("POST /items/{id}", s.handleUpdateItem)
	s.mux.HandleFunc("DELETE /items/{id}", s.handleDeleteItem)

	s.mux.HandleFunc("GET /api/repos", s.handleListRepos)
	s.mux.HandleFunc("GET /api/hginit/{name}", s.handleInitRepo)
	s.mux.HandleFunc("POST /api/hginit/{name}", s.handleInitRepo)
	s.mux.HandleFunc("GET /api/rm/{name}", s.handleRemoveRepo)
	s.mux.HandleFunc("POST /api/rm/{name}", s.handleRemoveRepo)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	securityHeaders(s.mux).ServeHTTP(w, r)
}

// fail answers err with 404 for missing rows and 500 otherwise.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	s.logger.Error(action+" failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "failed to "+action, http.StatusInternalServerError)
}

// securityHeaders adds hardening HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; "+
				"style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; "+
				"img-src 'self' data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// RequestObserver records one finished request. *metrics.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(method, mount string, status int, d time.Duration)
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestLogger logs every request and reports it to obs, labelled with the
// mount that mountOf assigns to the path; an empty mount means the main
// app. obs and mountOf may be nil.
func RequestLogger(logger *slog.Logger, obs RequestObserver, mountOf func(string) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		mount := "/"
		if mountOf != nil {
			if m := mountOf(r.URL.Path); m != "" {
				mount = m
			}
		}
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"mount", mount,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
		if obs != nil {
			obs.ObserveRequest(r.Method, mount, rec.status, elapsed)
		}
	})
}

// renderer parses page templates on demand from an fs.FS.
type renderer struct {
	templates fs.FS
	tmplFuncs template.FuncMap
}

func newRenderer(tmpl fs.FS) renderer {
	return renderer{
		templates: tmpl,
		tmplFuncs: template.FuncMap{
			"bytes": func(n int64) string {
				if n < 0 {
					n = 0
				}
				return humanize.IBytes(uint64(n))
			},
		},
	}
}

// renderPage parses and executes a full-page template set.
func (rd renderer) renderPage(w http.ResponseWriter, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(rd.tmplFuncs).ParseFS(rd.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
