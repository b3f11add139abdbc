package web

import (
	"net/http"
	"strconv"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.ListProjects(r.Context())
	if err != nil {
		s.fail(w, r, err, "list projects")
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Title": "Projects", "Projects": projects, "Repos": s.repos.Repos()},
		"base.html", "pages/projects.html",
	); err != nil {
		s.logger.Error("render page error", "error", err)
	}
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	form := bindProjectForm(r)
	if err := validate.Struct(form); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	if _, err := s.projects.CreateProject(r.Context(), form.Name); err != nil {
		s.fail(w, r, err, "create project")
		return
	}
	redirect(w, r, "/")
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	if err := s.projects.DeleteProject(r.Context(), id); err != nil {
		s.fail(w, r, err, "delete project")
		return
	}
	redirect(w, r, "/")
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	project, tasks, err := s.projects.GetProjectWithTasks(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "get project")
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Title": project.Name, "Project": project, "Tasks": tasks},
		"base.html", "pages/project.html",
	); err != nil {
		s.logger.Error("render page error", "error", err)
	}
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	form := bindTaskForm(r)
	if err := validate.Struct(form); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	if _, err := s.projects.AddTask(r.Context(), projectID, form.Title); err != nil {
		s.fail(w, r, err, "add task")
		return
	}
	redirect(w, r, projectPath(projectID))
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	task, err := s.projects.GetTask(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "get task")
		return
	}

	preview, err := renderMarkdown(task.Content)
	if err != nil {
		s.fail(w, r, err, "render task preview")
		return
	}

	if err := s.renderPage(w,
		map[string]any{"Title": task.Title, "Task": task, "Preview": preview},
		"base.html", "pages/task.html",
	); err != nil {
		s.logger.Error("render page error", "error", err)
	}
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	if _, err := s.projects.GetTask(r.Context(), id); err != nil {
		s.fail(w, r, err, "get task")
		return
	}

	form := bindTaskUpdateForm(r)
	if err := validate.Struct(form); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	if _, err := s.projects.UpdateTask(r.Context(), id, form.Title, form.Content, form.Done == "1"); err != nil {
		s.fail(w, r, err, "update task")
		return
	}
	redirect(w, r, "/task/"+strconv.FormatInt(id, 10))
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	task, err := s.projects.ToggleTask(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "toggle task")
		return
	}
	redirect(w, r, projectPath(task.ProjectID))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	task, err := s.projects.DeleteTask(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "delete task")
		return
	}
	redirect(w, r, projectPath(task.ProjectID))
}

func projectPath(id int64) string {
	return "/project/" + strconv.FormatInt(id, 10)
}
