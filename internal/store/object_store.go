package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vbonduro/hgdesk/internal/db"
	"github.com/vbonduro/hgdesk/internal/domain"
)

// ObjectStore keeps the metadata of uploaded files. The bytes themselves are
// held by a blobstore.Store.
type ObjectStore struct {
	db *db.DB
}

func NewObjectStore(d *db.DB) *ObjectStore {
	return &ObjectStore{db: d}
}

func (s *ObjectStore) Create(ctx context.Context, name string, size int64, shortCode string) (*domain.Object, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO objects (name, size, short_code, created) VALUES (?, ?, ?, ?)
	`), name, size, shortCode, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create object: %w", err)
	}

	return s.GetByName(ctx, name)
}

// GetByName returns nil, nil when no object has that name.
func (s *ObjectStore) GetByName(ctx context.Context, name string) (*domain.Object, error) {
	return s.getOne(ctx, `
		SELECT name, size, short_code, created FROM objects WHERE name = ?
	`, name)
}

// GetByShortCode returns nil, nil when the code is unknown.
func (s *ObjectStore) GetByShortCode(ctx context.Context, code string) (*domain.Object, error) {
	return s.getOne(ctx, `
		SELECT name, size, short_code, created FROM objects WHERE short_code = ?
	`, code)
}

func (s *ObjectStore) getOne(ctx context.Context, query string, arg any) (*domain.Object, error) {
	o := &domain.Object{}
	err := s.db.QueryRowContext(ctx, s.db.Rebind(query), arg).
		Scan(&o.Name, &o.Size, &o.ShortCode, &o.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	return o, nil
}

func (s *ObjectStore) List(ctx context.Context) ([]*domain.Object, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, size, short_code, created FROM objects ORDER BY created DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer rows.Close()

	var objects []*domain.Object
	for rows.Next() {
		o := &domain.Object{}
		if err := rows.Scan(&o.Name, &o.Size, &o.ShortCode, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		objects = append(objects, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating objects: %w", err)
	}

	return objects, nil
}
