package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"viva-backend/internal/middleware"
	"viva-backend/internal/models"
	"viva-backend/internal/services"
)

type stubOrchestrator struct {
	joinResult   *models.JoinResult
	joinErr      error
	startResult  *models.StartResult
	startErr     error
	nextResult   *models.NextQuestion
	nextErr      error
	submitResult *models.SubmitAnswerResult
	submitErr    error
	endResult    *models.EndResult
	endErr       error
	sessionRes   *models.SessionResult
	resultErr    error
	history      []models.HistoryEntry
	historyErr   error

	lastStudentID uuid.UUID
	lastSessionID uuid.UUID
}

func (s *stubOrchestrator) Join(ctx context.Context, studentID uuid.UUID, req models.JoinRequest) (*models.JoinResult, error) {
	s.lastStudentID = studentID
	return s.joinResult, s.joinErr
}

func (s *stubOrchestrator) Start(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.StartResult, error) {
	s.lastStudentID = studentID
	s.lastSessionID = studentSessionID
	return s.startResult, s.startErr
}

func (s *stubOrchestrator) NextQuestion(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.NextQuestion, error) {
	s.lastStudentID = studentID
	s.lastSessionID = studentSessionID
	return s.nextResult, s.nextErr
}

func (s *stubOrchestrator) SubmitAnswer(ctx context.Context, studentID, studentSessionID uuid.UUID, req models.SubmitAnswerRequest) (*models.SubmitAnswerResult, error) {
	s.lastStudentID = studentID
	s.lastSessionID = studentSessionID
	return s.submitResult, s.submitErr
}

func (s *stubOrchestrator) End(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.EndResult, error) {
	s.lastStudentID = studentID
	s.lastSessionID = studentSessionID
	return s.endResult, s.endErr
}

func (s *stubOrchestrator) GetResult(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.SessionResult, error) {
	s.lastStudentID = studentID
	s.lastSessionID = studentSessionID
	return s.sessionRes, s.resultErr
}

func (s *stubOrchestrator) GetHistory(ctx context.Context, studentID uuid.UUID) ([]models.HistoryEntry, error) {
	s.lastStudentID = studentID
	return s.history, s.historyErr
}

func authedRequest(method, target, body string, studentID uuid.UUID, urlID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if urlID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", urlID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, studentID))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestStudentSessionHandler_Join_InvalidBody(t *testing.T) {
	h := NewStudentSessionHandler(&stubOrchestrator{})

	req := authedRequest(http.MethodPost, "/api/v1/student-sessions/join", "{not json", uuid.New(), "")
	rr := httptest.NewRecorder()
	h.Join(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %q", resp.Error.Code)
	}
}

func TestStudentSessionHandler_Join_MissingSessionID(t *testing.T) {
	h := NewStudentSessionHandler(&stubOrchestrator{})

	req := authedRequest(http.MethodPost, "/api/v1/student-sessions/join", `{"password":"x"}`, uuid.New(), "")
	rr := httptest.NewRecorder()
	h.Join(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error.Fields["session_id"] != "required" {
		t.Fatalf("expected session_id field error, got %v", resp.Error.Fields)
	}
}

func TestStudentSessionHandler_Join_Success(t *testing.T) {
	sessionID := uuid.New()
	studentID := uuid.New()
	stub := &stubOrchestrator{
		joinResult: &models.JoinResult{StudentSessionID: uuid.New(), SessionID: sessionID, Message: "Joined session"},
	}
	h := NewStudentSessionHandler(stub)

	body := `{"session_id":"` + sessionID.String() + `"}`
	req := authedRequest(http.MethodPost, "/api/v1/student-sessions/join", body, studentID, "")
	rr := httptest.NewRecorder()
	h.Join(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if stub.lastStudentID != studentID {
		t.Fatalf("student ID not forwarded from context")
	}
	var payload models.JoinResult
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Message != "Joined session" {
		t.Fatalf("unexpected message: %q", payload.Message)
	}
}

func TestStudentSessionHandler_Start_InvalidID(t *testing.T) {
	h := NewStudentSessionHandler(&stubOrchestrator{})

	req := authedRequest(http.MethodPost, "/api/v1/student-sessions/not-a-uuid/start", "", uuid.New(), "not-a-uuid")
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestStudentSessionHandler_ServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", &services.NotFoundError{Message: "student session not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", &services.ForbiddenError{Message: "belongs to another student"}, http.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", &services.UnauthorizedError{Message: "invalid session password"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not ready", &services.NotReadyError{Message: "session is not ready"}, http.StatusBadRequest, "SESSION_NOT_READY"},
		{"unavailable", &services.UnavailableError{Message: "session is not available"}, http.StatusBadRequest, "SESSION_UNAVAILABLE"},
		{"missing input", &services.MissingInputError{Message: "interview evaluation requires an uploaded CV"}, http.StatusBadRequest, "MISSING_INPUT"},
		{"no questions", &services.NoQuestionsError{Message: "no questions available"}, http.StatusBadRequest, "NO_QUESTIONS"},
		{"no answers", &services.NoAnswersError{Message: "no answers submitted"}, http.StatusBadRequest, "NO_ANSWERS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ssID := uuid.New()
			h := NewStudentSessionHandler(&stubOrchestrator{startErr: tc.err})

			req := authedRequest(http.MethodPost, "/api/v1/student-sessions/"+ssID.String()+"/start", "", uuid.New(), ssID.String())
			rr := httptest.NewRecorder()
			h.Start(rr, req)

			if rr.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, rr.Code)
			}
			resp := decodeError(t, rr)
			if resp.Error.Code != tc.wantBody {
				t.Fatalf("expected code %q, got %q", tc.wantBody, resp.Error.Code)
			}
		})
	}
}

func TestStudentSessionHandler_SubmitAnswer_FieldErrors(t *testing.T) {
	ssID := uuid.New()
	stub := &stubOrchestrator{
		submitErr: &services.InvalidInputError{
			Message: "answer must not be empty",
			Fields:  map[string]string{"answer": "required"},
		},
	}
	h := NewStudentSessionHandler(stub)

	req := authedRequest(http.MethodPost, "/api/v1/student-sessions/"+ssID.String()+"/answer",
		`{"question_id":"`+uuid.NewString()+`","answer":"x"}`, uuid.New(), ssID.String())
	rr := httptest.NewRecorder()
	h.SubmitAnswer(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error.Code != "VALIDATION_ERROR" || resp.Error.Fields["answer"] == "" {
		t.Fatalf("unexpected error payload: %+v", resp.Error)
	}
}

func TestStudentSessionHandler_End_Success(t *testing.T) {
	ssID := uuid.New()
	stub := &stubOrchestrator{
		endResult: &models.EndResult{StudentSessionID: ssID, ScoreTotal: 7.5, EvaluatedCount: 3, TotalAnswers: 3},
	}
	h := NewStudentSessionHandler(stub)

	req := authedRequest(http.MethodPost, "/api/v1/student-sessions/"+ssID.String()+"/end", "", uuid.New(), ssID.String())
	rr := httptest.NewRecorder()
	h.End(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var payload models.EndResult
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.ScoreTotal != 7.5 || payload.EvaluatedCount != 3 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if stub.lastSessionID != ssID {
		t.Fatalf("student session ID not forwarded")
	}
}

func TestStudentSessionHandler_History(t *testing.T) {
	studentID := uuid.New()
	stub := &stubOrchestrator{
		history: []models.HistoryEntry{
			{StudentSessionID: uuid.New(), SessionName: "Midterm"},
			{StudentSessionID: uuid.New(), SessionName: "Mock Interview"},
		},
	}
	h := NewStudentSessionHandler(stub)

	req := authedRequest(http.MethodGet, "/api/v1/student-sessions/history", "", studentID, "")
	rr := httptest.NewRecorder()
	h.History(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var payload struct {
		Sessions []models.HistoryEntry `json:"sessions"`
		Count    int                   `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Count != 2 || len(payload.Sessions) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if stub.lastStudentID != studentID {
		t.Fatalf("student ID not forwarded from context")
	}
}
