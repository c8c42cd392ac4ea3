package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quickpick/internal/model"
	"quickpick/internal/service"
)

// QuickPickHandler handles the stateless decision endpoints
type QuickPickHandler struct {
	svc    *service.QuickPickService
	logger *zap.Logger
}

// NewQuickPickHandler creates a new quickpick handler
func NewQuickPickHandler(svc *service.QuickPickService, logger *zap.Logger) *QuickPickHandler {
	return &QuickPickHandler{svc: svc, logger: logger.Named("rest")}
}

// Next handles POST /api/next
func (h *QuickPickHandler) Next(w http.ResponseWriter, r *http.Request) {
	var req service.NextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.NextStep(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// PlanResponse is the start-plan envelope output
type PlanResponse struct {
	Status  string      `json:"status"`
	Plan    *model.Plan `json:"plan"`
	Warning string      `json:"warning,omitempty"`
}

// Plan handles POST /api/plan
func (h *QuickPickHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req service.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, warning, err := h.svc.BuildPlan(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{Status: "ready", Plan: plan, Warning: warning})
}

// Result handles POST /api/result
func (h *QuickPickHandler) Result(w http.ResponseWriter, r *http.Request) {
	var req service.ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.FinalResult(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *QuickPickHandler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrCandidateCount) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
