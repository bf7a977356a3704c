package handlers

import (
	"encoding/json"
	"net/http"

	"viva-backend/internal/models"
	"viva-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.InvalidInputError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", e.Message, e.Fields, r))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", e.Message, r))
	case *services.ForbiddenError:
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", e.Message, r))
	case *services.NotReadyError:
		writeJSON(w, http.StatusBadRequest, errorResp("SESSION_NOT_READY", e.Message, r))
	case *services.UnavailableError:
		writeJSON(w, http.StatusBadRequest, errorResp("SESSION_UNAVAILABLE", e.Message, r))
	case *services.MissingInputError:
		writeJSON(w, http.StatusBadRequest, errorResp("MISSING_INPUT", e.Message, r))
	case *services.NoQuestionsError:
		writeJSON(w, http.StatusBadRequest, errorResp("NO_QUESTIONS", e.Message, r))
	case *services.NoAnswersError:
		writeJSON(w, http.StatusBadRequest, errorResp("NO_ANSWERS", e.Message, r))
	case *services.GenerationError:
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED", "Question generation failed. Please try again.", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
