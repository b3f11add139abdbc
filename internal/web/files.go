package web

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/vbonduro/hgdesk/internal/domain"
	"github.com/vbonduro/hgdesk/internal/storage"
)

// maxMemory bounds how much of a multipart upload is buffered in memory
// before spilling to temporary files.
const maxMemory = 32 << 20

// FilesHandler is the file storage viewer. It expects to be mounted with
// its prefix stripped; base is that prefix and is used to build links.
type FilesHandler struct {
	storage   *storage.Storage
	base      string
	maxUpload int64
	observer  Observer
	mux       *http.ServeMux
	logger    *slog.Logger
	renderer
}

func NewFilesHandler(st *storage.Storage, tmpl fs.FS, base string, maxUpload int64, obs Observer, logger *slog.Logger) *FilesHandler {
	if obs == nil {
		obs = nopObserver{}
	}
	h := &FilesHandler{
		storage:   st,
		base:      "/" + strings.Trim(base, "/"),
		maxUpload: maxUpload,
		observer:  obs,
		mux:       http.NewServeMux(),
		logger:    logger,
		renderer:  newRenderer(tmpl),
	}
	h.mux.HandleFunc("GET /{$}", h.handleList)
	h.mux.HandleFunc("POST /upload", h.handleUpload)
	h.mux.HandleFunc("GET /view/{name}", h.handleView)
	h.mux.HandleFunc("GET /raw/{name}", h.handleRaw)
	h.mux.HandleFunc("GET /download/{name}", h.handleDownload)
	h.mux.HandleFunc("GET /s/{code}", h.handleShort)
	return h
}

func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	securityHeaders(h.mux).ServeHTTP(w, r)
}

func (h *FilesHandler) viewPath(name string) string {
	return h.base + "/view/" + url.PathEscape(name)
}

func (h *FilesHandler) fail(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	h.logger.Error(action+" failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "failed to "+action, http.StatusInternalServerError)
}

func (h *FilesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	objects, err := h.storage.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "list files")
		return
	}

	if err := h.renderPage(w,
		map[string]any{"Title": "Files", "Objects": objects, "Base": h.base},
		"base.html", "pages/files.html",
	); err != nil {
		h.logger.Error("render page error", "error", err)
	}
}

func (h *FilesHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || (h.maxUpload > 0 && r.ContentLength > h.maxUpload) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	obj, err := h.storage.Upload(r.Context(), header.Filename, file)
	h.observer.ObserveUpload(err)
	if err != nil {
		h.logger.Error("upload failed", "filename", header.Filename, "error", err)
		http.Error(w, "upload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.viewPath(obj.Name), http.StatusSeeOther)
}

func (h *FilesHandler) handleView(w http.ResponseWriter, r *http.Request) {
	obj, err := h.storage.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		h.fail(w, r, err, "get file")
		return
	}

	if err := h.renderPage(w,
		map[string]any{"Title": obj.Name, "Object": obj, "Base": h.base},
		"base.html", "pages/file_view.html",
	); err != nil {
		h.logger.Error("render page error", "error", err)
	}
}

func (h *FilesHandler) handleRaw(w http.ResponseWriter, r *http.Request) {
	h.serveObject(w, r, false)
}

func (h *FilesHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	h.serveObject(w, r, true)
}

func (h *FilesHandler) serveObject(w http.ResponseWriter, r *http.Request, attachment bool) {
	rc, obj, err := h.storage.Open(r.Context(), r.PathValue("name"))
	if err != nil {
		h.fail(w, r, err, "open file")
		return
	}
	defer func() { _ = rc.Close() }()

	// Uploaded HTML must not run scripts in this origin.
	w.Header().Set("Content-Security-Policy", "sandbox")
	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": obj.Name}))
	}

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, obj.Name, obj.CreatedAt, rs)
		return
	}
	if ct := mime.TypeByExtension(path.Ext(obj.Name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("file copy interrupted", "name", obj.Name, "error", err)
	}
}

func (h *FilesHandler) handleShort(w http.ResponseWriter, r *http.Request) {
	obj, err := h.storage.Resolve(r.Context(), r.PathValue("code"))
	if err != nil {
		h.fail(w, r, err, "resolve short url")
		return
	}
	http.Redirect(w, r, h.viewPath(obj.Name), http.StatusFound)
}
