package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"viva-backend/internal/middleware"
	"viva-backend/internal/models"
)

type sessionOrchestrator interface {
	Join(ctx context.Context, studentID uuid.UUID, req models.JoinRequest) (*models.JoinResult, error)
	Start(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.StartResult, error)
	NextQuestion(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.NextQuestion, error)
	SubmitAnswer(ctx context.Context, studentID, studentSessionID uuid.UUID, req models.SubmitAnswerRequest) (*models.SubmitAnswerResult, error)
	End(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.EndResult, error)
	GetResult(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.SessionResult, error)
	GetHistory(ctx context.Context, studentID uuid.UUID) ([]models.HistoryEntry, error)
}

type StudentSessionHandler struct {
	orchestrator sessionOrchestrator
}

func NewStudentSessionHandler(orchestrator sessionOrchestrator) *StudentSessionHandler {
	return &StudentSessionHandler{orchestrator: orchestrator}
}

func (h *StudentSessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())

	var req models.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.SessionID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "session_id is required",
			map[string]string{"session_id": "required"}, r))
		return
	}

	result, err := h.orchestrator.Join(r.Context(), studentID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *StudentSessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())
	studentSessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student session ID", r))
		return
	}

	result, err := h.orchestrator.Start(r.Context(), studentID, studentSessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *StudentSessionHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())
	studentSessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student session ID", r))
		return
	}

	result, err := h.orchestrator.NextQuestion(r.Context(), studentID, studentSessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *StudentSessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())
	studentSessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student session ID", r))
		return
	}

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := h.orchestrator.SubmitAnswer(r.Context(), studentID, studentSessionID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *StudentSessionHandler) End(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())
	studentSessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student session ID", r))
		return
	}

	result, err := h.orchestrator.End(r.Context(), studentID, studentSessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *StudentSessionHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())
	studentSessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student session ID", r))
		return
	}

	result, err := h.orchestrator.GetResult(r.Context(), studentID, studentSessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *StudentSessionHandler) History(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())

	entries, err := h.orchestrator.GetHistory(r.Context(), studentID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": entries,
		"count":    len(entries),
	})
}
