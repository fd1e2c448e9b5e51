package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/persist"
)

const maxBodyBytes = 64 << 10

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if err := persist.ValidateID(req.SessionID); err != nil {
		s.fail(w, r, err)
		return
	}

	if s.limiter != nil && !s.limiter.Allow(req.SessionID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	reply, err := s.svc.Handle(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	JSON(w, http.StatusOK, reply)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.svc.Reset(r.Context(), req.SessionID); err != nil {
		s.fail(w, r, err)
		return
	}
	if s.limiter != nil {
		s.limiter.Forget(req.SessionID)
	}

	JSON(w, http.StatusOK, map[string]string{"status": "reset", "session_id": req.SessionID})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	JSON(w, http.StatusOK, snap)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, persist.ErrInvalidSessionID):
		Error(w, http.StatusBadRequest, "invalid session id")
	case errors.Is(err, persist.ErrNotFound):
		Error(w, http.StatusNotFound, "session not found")
	default:
		s.logger.Error("request failed",
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.String(logger.FieldSessionID, chi.URLParam(r, "id")),
			zap.Error(err),
		)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
