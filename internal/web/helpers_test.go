package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/hgdesk/internal/blobstore"
	"github.com/vbonduro/hgdesk/internal/blobstore/local"
	"github.com/vbonduro/hgdesk/internal/db"
	"github.com/vbonduro/hgdesk/internal/dispatch"
	"github.com/vbonduro/hgdesk/internal/hgweb"
	"github.com/vbonduro/hgdesk/internal/service"
	"github.com/vbonduro/hgdesk/internal/storage"
	"github.com/vbonduro/hgdesk/internal/store"
	"github.com/vbonduro/hgdesk/internal/web"
	"github.com/vbonduro/hgdesk/internal/web/templates"
)

// fakeRunner stands in for `hg init` by creating the .hg directory.
type fakeRunner struct{}

func (fakeRunner) Init(_ context.Context, path string) error {
	return os.MkdirAll(filepath.Join(path, ".hg"), 0755)
}

// recordingObserver counts the events handlers report.
type recordingObserver struct {
	mu        sync.Mutex
	uploads   map[bool]int
	repoAdmin []string
	requests  []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{uploads: make(map[bool]int)}
}

func (o *recordingObserver) ObserveUpload(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.uploads[err == nil]++
}

func (o *recordingObserver) ObserveRepoAdmin(op, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.repoAdmin = append(o.repoAdmin, op+":"+outcome)
}

func (o *recordingObserver) ObserveRequest(method, mount string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, method+" "+mount+" "+http.StatusText(status))
}

type testEnv struct {
	handler  http.Handler
	projects *service.ProjectService
	items    *service.ItemService
	adapter  *hgweb.Adapter
	observer *recordingObserver
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires the main app and the files viewer behind a dispatcher,
// the same way the service is assembled at startup.
func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithBlobs(t, nil, 0)
}

func newTestEnvWithBlobs(t *testing.T, blobs blobstore.Store, maxUpload int64) *testEnv {
	t.Helper()
	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	root := t.TempDir()
	if blobs == nil {
		ls, err := local.NewLocalStore(filepath.Join(root, "_files"))
		require.NoError(t, err)
		blobs = ls
	}

	adapter, err := hgweb.NewAdapter(filepath.Join(root, "_hg"), "/hg", fakeRunner{}, nil, discardLogger())
	require.NoError(t, err)

	logger := discardLogger()
	obs := newRecordingObserver()
	projects := service.NewProjectService(store.NewProjectStore(database), store.NewTaskStore(database), logger)
	items := service.NewItemService(store.NewItemStore(database))
	st := storage.New(store.NewObjectStore(database), blobs, "/files", logger)

	app := web.NewServer(projects, items, adapter, templates.FS, obs, logger)
	files := web.NewFilesHandler(st, templates.FS, "/files", maxUpload, obs, logger)

	d := dispatch.New(app)
	d.Mount("/files", files, true)
	d.Mount("/hg", adapter, false)

	return &testEnv{
		handler:  d,
		projects: projects,
		items:    items,
		adapter:  adapter,
		observer: obs,
	}
}

func (e *testEnv) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, status int, location string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	assert.Equal(t, location, rec.Header().Get("Location"))
}
