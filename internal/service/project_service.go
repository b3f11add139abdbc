package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/hgdesk/internal/domain"
)

// projectRepository is the subset of store.ProjectStore that ProjectService requires.
type projectRepository interface {
	Create(ctx context.Context, name string) (*domain.Project, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, id int64) error
}

// taskRepository is the subset of store.TaskStore that ProjectService requires.
type taskRepository interface {
	Create(ctx context.Context, projectID int64, title string) (*domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListByProjectID(ctx context.Context, projectID int64) ([]*domain.Task, error)
	Update(ctx context.Context, id int64, title, content string, done bool) error
	Toggle(ctx context.Context, id int64) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}

type ProjectService struct {
	projects projectRepository
	tasks    taskRepository
	logger   *slog.Logger
}

func NewProjectService(projects projectRepository, tasks taskRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		tasks:    tasks,
		logger:   logger,
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	p, err := s.projects.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project_id", p.ID)
	return p, nil
}

// ListProjects returns projects newest first.
func (s *ProjectService) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// GetProjectWithTasks returns the project and its tasks, newest first.
func (s *ProjectService) GetProjectWithTasks(ctx context.Context, id int64) (*domain.Project, []*domain.Task, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.tasks.ListByProjectID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tasks for project %d: %w", id, err)
	}
	return p, tasks, nil
}

// DeleteProject removes the project together with all of its tasks.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

func (s *ProjectService) AddTask(ctx context.Context, projectID int64, title string) (*domain.Task, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.tasks.Create(ctx, projectID, title)
}

func (s *ProjectService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

// UpdateTask replaces title, content and done in one statement.
func (s *ProjectService) UpdateTask(ctx context.Context, id int64, title, content string, done bool) (*domain.Task, error) {
	if err := s.tasks.Update(ctx, id, title, content, done); err != nil {
		return nil, err
	}
	return s.GetTask(ctx, id)
}

func (s *ProjectService) ToggleTask(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.Toggle(ctx, id)
}

// DeleteTask removes the task and returns it as it was.
func (s *ProjectService) DeleteTask(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}
