package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vbonduro/hgdesk/internal/domain"
)

type itemResponse struct {
	ID   int64  `json:"id"`
	Data string `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toItemResponse(it *domain.Item) itemResponse {
	return itemResponse{ID: it.ID, Data: it.Data}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// failJSON is fail for the JSON endpoints.
func (s *Server) failJSON(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error(action+" failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusInternalServerError, "failed to "+action)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.List(r.Context())
	if err != nil {
		s.failJSON(w, r, err, "list items")
		return
	}

	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	req, err := bindItemRequest(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	item, err := s.items.Create(r.Context(), req.Data)
	if err != nil {
		s.failJSON(w, r, err, "create item")
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := s.items.Get(r.Context(), id)
	if err != nil {
		s.failJSON(w, r, err, "get item")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if _, err := s.items.Get(r.Context(), id); err != nil {
		s.failJSON(w, r, err, "get item")
		return
	}

	req, err := bindItemRequest(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	item, err := s.items.Update(r.Context(), id, req.Data)
	if err != nil {
		s.failJSON(w, r, err, "update item")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := s.items.Delete(r.Context(), id); err != nil {
		s.failJSON(w, r, err, "delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
