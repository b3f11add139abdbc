package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/hgdesk/internal/hgweb"
)

type repoResponse struct {
	Name    string        `json:"name"`
	Outcome hgweb.Outcome `json:"outcome"`
}

type repoListResponse struct {
	Repos []string `json:"repos"`
}

func (s *Server) handleListRepos(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, repoListResponse{Repos: s.repos.Repos()})
}

func (s *Server) handleInitRepo(w http.ResponseWriter, r *http.Request) {
	req := repoRequest{Name: r.PathValue("name")}
	if err := validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	outcome, err := s.repos.InitRepo(r.Context(), req.Name)
	switch {
	case errors.Is(err, hgweb.ErrInvalidName):
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, hgweb.ErrRepoExists):
		s.observer.ObserveRepoAdmin("init", "conflict")
		writeJSONError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.observer.ObserveRepoAdmin("init", "error")
		s.failJSON(w, r, err, "create repository")
		return
	}

	s.observer.ObserveRepoAdmin("init", string(outcome))
	writeJSON(w, http.StatusCreated, repoResponse{Name: req.Name, Outcome: outcome})
}

func (s *Server) handleRemoveRepo(w http.ResponseWriter, r *http.Request) {
	req := repoRequest{Name: r.PathValue("name")}
	if err := validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	outcome, err := s.repos.RemoveRepo(r.Context(), req.Name)
	switch {
	case errors.Is(err, hgweb.ErrInvalidName):
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.observer.ObserveRepoAdmin("rm", "error")
		s.failJSON(w, r, err, "remove repository")
		return
	}

	s.observer.ObserveRepoAdmin("rm", string(outcome))
	writeJSON(w, http.StatusOK, repoResponse{Name: req.Name, Outcome: outcome})
}
