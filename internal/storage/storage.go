// Package storage maps named objects to bytes plus metadata. Bytes go to a
// blobstore.Store; name, size and short code go to the objects table.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vbonduro/hgdesk/internal/blobstore"
	"github.com/vbonduro/hgdesk/internal/domain"
)

const maxNameLen = 120

// objectRepository is the subset of store.ObjectStore that Storage requires.
type objectRepository interface {
	Create(ctx context.Context, name string, size int64, shortCode string) (*domain.Object, error)
	GetByName(ctx context.Context, name string) (*domain.Object, error)
	GetByShortCode(ctx context.Context, code string) (*domain.Object, error)
	List(ctx context.Context) ([]*domain.Object, error)
}

// Object is a stored object with the URLs it is reachable under.
type Object struct {
	*domain.Object
	URL      string
	ShortURL string

	baseURL string
}

func (o *Object) DownloadURL() string {
	return o.baseURL + "/download/" + url.PathEscape(o.Name)
}

type Storage struct {
	objects objectRepository
	blobs   blobstore.Store
	baseURL string
	logger  *slog.Logger
}

// New returns a Storage whose URLs are rooted at baseURL, the path the file
// viewer is mounted under (for example "/files").
func New(objects objectRepository, blobs blobstore.Store, baseURL string, logger *slog.Logger) *Storage {
	return &Storage{
		objects: objects,
		blobs:   blobs,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Upload assigns a fresh name derived from filename, persists r under it and
// records its metadata.
func (s *Storage) Upload(ctx context.Context, filename string, r io.Reader) (*Object, error) {
	name := assignName(filename)

	size, err := s.blobs.Put(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store %q: %w", name, err)
	}

	obj, err := s.objects.Create(ctx, name, size, newShortCode())
	if err != nil {
		if derr := s.blobs.Delete(ctx, name); derr != nil {
			s.logger.Error("failed to remove blob after metadata error", "name", name, "error", derr)
		}
		return nil, fmt.Errorf("failed to record %q: %w", name, err)
	}

	s.logger.Info("object stored", "name", name, "size", size)
	return s.wrap(obj), nil
}

// Get returns domain.ErrNotFound when name is unknown.
func (s *Storage) Get(ctx context.Context, name string) (*Object, error) {
	obj, err := s.objects.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("object %q: %w", name, domain.ErrNotFound)
	}
	return s.wrap(obj), nil
}

// Resolve maps a short code back to its object.
func (s *Storage) Resolve(ctx context.Context, code string) (*Object, error) {
	obj, err := s.objects.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("short code %q: %w", code, domain.ErrNotFound)
	}
	return s.wrap(obj), nil
}

func (s *Storage) List(ctx context.Context) ([]*Object, error) {
	objs, err := s.objects.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Object, 0, len(objs))
	for _, o := range objs {
		out = append(out, s.wrap(o))
	}
	return out, nil
}

// Open returns the object's bytes. A blob missing behind existing metadata
// is reported as domain.ErrNotFound as well.
func (s *Storage) Open(ctx context.Context, name string) (io.ReadCloser, *Object, error) {
	obj, err := s.Get(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, name)
	if errors.Is(err, blobstore.ErrNotFound) {
		s.logger.Warn("object metadata without blob", "name", name)
		return nil, nil, fmt.Errorf("object %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return rc, obj, nil
}

func (s *Storage) wrap(o *domain.Object) *Object {
	return &Object{
		Object:   o,
		URL:      s.baseURL + "/raw/" + url.PathEscape(o.Name),
		ShortURL: s.baseURL + "/s/" + o.ShortCode,
		baseURL:  s.baseURL,
	}
}

func assignName(filename string) string {
	return uuid.NewString()[:8] + "-" + secureFilename(filename)
}

func newShortCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// secureFilename reduces an uploaded file name to a safe base name made of
// letters, digits, '.', '-' and '_'.
func secureFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	name := strings.TrimLeft(b.String(), "._")
	if len(name) > maxNameLen {
		name = name[len(name)-maxNameLen:]
	}
	if name == "" {
		return "file"
	}
	return name
}
