package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"quickpick/internal/model"
	"quickpick/internal/service"
)

// SessionHandler handles the server-side session endpoints
type SessionHandler struct {
	svc    *service.SessionService
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, logger: logger.Named("rest")}
}

// StartResponse is the session creation output
type StartResponse struct {
	SessionID string        `json:"sessionId"`
	Status    string        `json:"status"`
	Plan      *model.Plan   `json:"plan"`
	Result    *model.Result `json:"result"`
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req service.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, result, err := h.svc.Start(r.Context(), &req)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, StartResponse{
		SessionID: session.ID,
		Status:    "ready",
		Plan:      session.Plan,
		Result:    result,
	})
}

// AnswerRequest is the answer submission body
type AnswerRequest struct {
	OptionID string `json:"optionId"`
}

// Answer handles POST /v1/sessions/{id}/answers
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Answer(r.Context(), id, req.OptionID)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Result handles GET /v1/sessions/{id}/result
func (h *SessionHandler) Result(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.svc.Result(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCandidateCount), errors.Is(err, service.ErrUnknownOption):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("session request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
