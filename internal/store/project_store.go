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

type ProjectStore struct {
	db *db.DB
}

func NewProjectStore(d *db.DB) *ProjectStore {
	return &ProjectStore{db: d}
}

func (s *ProjectStore) Create(ctx context.Context, name string) (*domain.Project, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		INSERT INTO projects (name, created) VALUES (?, ?) RETURNING id
	`), name, time.Now().UTC()).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns nil, nil when the project does not exist.
func (s *ProjectStore) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	p := &domain.Project{}
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, name, created FROM projects WHERE id = ?
	`), id).Scan(&p.ID, &p.Name, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

// List returns every project, most recently created first.
func (s *ProjectStore) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created FROM projects ORDER BY created DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p := &domain.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// Delete removes the project and all of its tasks in one transaction. Tasks
// are deleted explicitly as well as by the schema's cascade, so connections
// without foreign key enforcement behave the same.
func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM tasks WHERE project_id = ?
	`), id); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM projects WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project delete: %w", err)
	}
	return nil
}
