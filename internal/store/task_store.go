package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/hgdesk/internal/db"
	"github.com/vbonduro/hgdesk/internal/domain"
)

type TaskStore struct {
	db *db.DB
}

func NewTaskStore(d *db.DB) *TaskStore {
	return &TaskStore{db: d}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	t := &domain.Task{}
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Content, &t.Done, &t.CreatedAt)
	return t, err
}

func (s *TaskStore) Create(ctx context.Context, projectID int64, title string) (*domain.Task, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		INSERT INTO tasks (project_id, title, content, done, created) VALUES (?, ?, '', ?, ?) RETURNING id
	`), projectID, title, false, time.Now().UTC()).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns nil, nil when the task does not exist.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, project_id, title, content, done, created FROM tasks WHERE id = ?
	`), id))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

func (s *TaskStore) ListByProjectID(ctx context.Context, projectID int64) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT id, project_id, title, content, done, created FROM tasks
		WHERE project_id = ? ORDER BY created DESC, id DESC
	`), projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Update replaces every mutable field of the task.
func (s *TaskStore) Update(ctx context.Context, id int64, title, content string, done bool) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE tasks SET title = ?, content = ?, done = ? WHERE id = ?
	`), title, content, done, id)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return expectOneRow(result, "task", id)
}

// Toggle flips the done flag and returns the task as stored afterwards.
func (s *TaskStore) Toggle(ctx context.Context, id int64) (*domain.Task, error) {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE tasks SET done = NOT done WHERE id = ?
	`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	if err := expectOneRow(result, "task", id); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`
		DELETE FROM tasks WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return expectOneRow(result, "task", id)
}

func expectOneRow(result sql.Result, kind string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
