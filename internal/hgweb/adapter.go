// Package hgweb fronts a Mercurial hgweb server: it writes the hgweb config,
// proxies /hg traffic to hgweb, and creates or removes repositories under
// the repository root while keeping its own table of known repositories.
package hgweb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrInvalidName is returned for names that are not a single safe path
	// segment or that collide with hgweb's own paths.
	ErrInvalidName = errors.New("invalid repository name")

	// ErrRepoExists is returned by InitRepo when the directory is taken.
	ErrRepoExists = errors.New("repository already exists")
)

// Outcome tells a caller what an admin operation actually did.
type Outcome string

// Outcomes reported by InitRepo and RemoveRepo. OutcomeNoop means there was
// nothing to remove.
const (
	OutcomeCreated Outcome = "created"
	OutcomeRemoved Outcome = "removed"
	OutcomeNoop    Outcome = "noop"
)

var repoNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,99}$`)

// reserved names collide with hgweb's own top-level paths.
var reserved = map[string]bool{"static": true}

// ValidateName reports whether name can be used as a repository directory.
func ValidateName(name string) error {
	if !repoNameRe.MatchString(name) || reserved[name] {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Adapter fronts hgweb at a URL prefix and owns the repository root: it
// proxies known repositories and creates or removes them on request.
type Adapter struct {
	repoDir string
	prefix  string
	runner  Runner
	proxy   http.Handler
	logger  *slog.Logger

	mu    sync.RWMutex
	repos map[string]struct{}
}

// NewAdapter builds an adapter for the repositories under repoDir, mounted at
// prefix. upstream is the hgweb base URL; when nil every proxied request is
// answered with 503. The route table is loaded before returning.
func NewAdapter(repoDir, prefix string, runner Runner, upstream *url.URL, logger *slog.Logger) (*Adapter, error) {
	a := &Adapter{
		repoDir: repoDir,
		prefix:  "/" + strings.Trim(prefix, "/"),
		runner:  runner,
		logger:  logger,
		repos:   make(map[string]struct{}),
	}

	if upstream != nil {
		a.proxy = &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.SetURL(upstream)
				pr.SetXForwarded()
			},
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				logger.Error("hgweb upstream error", "path", r.URL.Path, "error", err)
				http.Error(w, "repository browser unavailable", http.StatusBadGateway)
			},
		}
	} else {
		a.proxy = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "repository browser not configured", http.StatusServiceUnavailable)
		})
	}

	if err := a.Refresh(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adapter) RepoDir() string {
	return a.repoDir
}

// Refresh rebuilds the route table from the directories under repoDir that
// contain a .hg directory. A missing repoDir yields an empty table.
func (a *Adapter) Refresh() error {
	entries, err := os.ReadDir(a.repoDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to scan %s: %w", a.repoDir, err)
	}

	repos := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if fi, err := os.Stat(filepath.Join(a.repoDir, e.Name(), ".hg")); err == nil && fi.IsDir() {
			repos[e.Name()] = struct{}{}
		}
	}

	a.mu.Lock()
	a.repos = repos
	a.mu.Unlock()

	a.logger.Debug("hgweb route table refreshed", "repos", len(repos))
	return nil
}

// Repos returns the known repository names, sorted.
func (a *Adapter) Repos() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.repos))
	for name := range a.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Adapter) Has(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.repos[name]
	return ok
}

// InitRepo creates a new repository called name and refreshes the route
// table.
func (a *Adapter) InitRepo(ctx context.Context, name string) (Outcome, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(a.repoDir, name)
	if _, err := os.Lstat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrRepoExists, name)
	}
	if err := os.MkdirAll(a.repoDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", a.repoDir, err)
	}

	if err := a.runner.Init(ctx, path); err != nil {
		return "", err
	}
	a.logger.Info("repository created", "name", name)

	return OutcomeCreated, a.Refresh()
}

// RemoveRepo deletes the repository called name recursively. Removing a
// repository that does not exist is a no-op, not an error.
func (a *Adapter) RemoveRepo(ctx context.Context, name string) (Outcome, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(a.repoDir, name)
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return OutcomeNoop, a.Refresh()
	}

	if err := os.RemoveAll(path); err != nil {
		return "", fmt.Errorf("failed to remove %s: %w", path, err)
	}
	a.logger.Info("repository removed", "name", name)

	return OutcomeRemoved, a.Refresh()
}

// ServeHTTP forwards requests for the index, static assets and known
// repositories to hgweb. Anything else is 404 without reaching hgweb.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, a.prefix), "/")
	seg, _, _ := strings.Cut(rel, "/")

	if seg != "" && !reserved[seg] && !a.Has(seg) {
		http.NotFound(w, r)
		return
	}
	a.proxy.ServeHTTP(w, r)
}
