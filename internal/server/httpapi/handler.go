package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/shared"
	"github.com/go-chi/chi/v5"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		s.logger.Warn(r.Context(), "storage ping failed", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	items, err := s.repo.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if items == nil {
		items = []shared.Item{}
	}
	writeJSON(w, http.StatusOK, shared.ListResponse{Items: items})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !shared.ValidKey(key) {
		writeError(w, http.StatusBadRequest, common.ErrInvalidKey.Error())
		return
	}

	it, err := s.repo.Get(r.Context(), key)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !shared.ValidKey(key) {
		writeError(w, http.StatusBadRequest, common.ErrInvalidKey.Error())
		return
	}

	var req shared.PutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, shared.MaxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		writeError(w, http.StatusBadRequest, common.ErrInvalidPayload.Error())
		return
	}

	updatedAt := s.now()
	if req.UpdatedAt != nil && *req.UpdatedAt > 0 {
		updatedAt = *req.UpdatedAt
	}

	if err := s.repo.Put(r.Context(), key, req.Value, updatedAt); err != nil {
		s.serverError(w, r, err)
		return
	}

	args := []any{"key", key, "updated_at", updatedAt}
	if sub, ok := SubjectFromContext(r.Context()); ok {
		args = append(args, "subject", sub)
	}
	s.logger.Debug(r.Context(), "value stored", args...)
	writeJSON(w, http.StatusOK, shared.PutResponse{Key: key, UpdatedAt: updatedAt})
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "storage error", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, shared.ErrorResponse{Error: msg})
}
