package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"viva-backend/internal/models"
)

type fakeCaller struct {
	resp    map[string]interface{}
	err     error
	prompts []string
}

func (f *fakeCaller) CallJSON(ctx context.Context, prompt string) (map[string]interface{}, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeSearcher struct{ chunks []string }

func (f *fakeSearcher) Search(ctx context.Context, materialID uuid.UUID, query string, k int) ([]string, error) {
	return f.chunks, nil
}

type fakeLoader struct {
	texts map[string]string
	err   error
}

func (f *fakeLoader) Load(ctx context.Context, source string) (string, func(), error) {
	if f.err != nil {
		return "", func() {}, f.err
	}
	return f.texts[source], func() {}, nil
}

type fakeQuestionBatchStore struct{ saved []*models.Question }

func (f *fakeQuestionBatchStore) CreateBatch(ctx context.Context, questions []*models.Question) error {
	f.saved = append(f.saved, questions...)
	return nil
}

type fakeInterviewBatchStore struct{ saved []*models.InterviewQuestion }

func (f *fakeInterviewBatchStore) CreateBatch(ctx context.Context, questions []*models.InterviewQuestion) error {
	f.saved = append(f.saved, questions...)
	return nil
}

func testSession(sessionType string) *models.Session {
	return &models.Session{
		ID:              uuid.New(),
		Name:            "Week 3 Review",
		Type:            sessionType,
		Status:          models.SessionStatusReady,
		DifficultyLevel: "APPLY",
	}
}

func TestGenerateForSessionMapsFields(t *testing.T) {
	caller := &fakeCaller{resp: map[string]interface{}{
		"questions": []interface{}{
			map[string]interface{}{"question": "Explain X", "keywords": "x, y", "question_type": "APPLY"},
			map[string]interface{}{"question": "Compare Y and Z", "keywords": "y, z", "question_type": "ANALYZE"},
			map[string]interface{}{"keywords": "dropped, no question text"},
		},
	}}
	store := &fakeQuestionBatchStore{}
	svc := NewQuestionGenService(caller, &fakeSearcher{}, &fakeLoader{}, store, &fakeInterviewBatchStore{}, 5)

	session := testSession(models.SessionTypePractice)
	questions, err := svc.GenerateForSession(context.Background(), session, models.QuestionStatusApproved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 usable questions, got %d", len(questions))
	}
	if len(store.saved) != 2 {
		t.Fatalf("expected 2 persisted questions, got %d", len(store.saved))
	}
	q := store.saved[0]
	if q.Content != "Explain X" || q.Keywords != "x, y" || q.QuestionType != "APPLY" {
		t.Errorf("question fields not mapped: %+v", q)
	}
	if q.Status != models.QuestionStatusApproved {
		t.Errorf("expected approved status, got %q", q.Status)
	}
	if q.SessionID != session.ID {
		t.Errorf("question not bound to session")
	}
}

func TestGenerateForSessionMissingQuestionsKey(t *testing.T) {
	caller := &fakeCaller{resp: map[string]interface{}{"items": []interface{}{}}}
	svc := NewQuestionGenService(caller, &fakeSearcher{}, &fakeLoader{}, &fakeQuestionBatchStore{}, &fakeInterviewBatchStore{}, 5)

	_, err := svc.GenerateForSession(context.Background(), testSession(models.SessionTypePractice), models.QuestionStatusDraft)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestGenerateInterviewQuestionsRequiresCV(t *testing.T) {
	svc := NewQuestionGenService(&fakeCaller{}, &fakeSearcher{}, &fakeLoader{}, &fakeQuestionBatchStore{}, &fakeInterviewBatchStore{}, 5)

	_, err := svc.GenerateInterviewQuestions(context.Background(), testSession(models.SessionTypeInterview), &models.InterviewConfig{})
	var missingErr *MissingInputError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingInputError, got %v", err)
	}
}

func TestGenerateInterviewQuestionsAssignsOrder(t *testing.T) {
	caller := &fakeCaller{resp: map[string]interface{}{
		"questions": []interface{}{
			map[string]interface{}{"question": "Tell me about a conflict", "category": "teamwork", "purpose": "collaboration"},
			map[string]interface{}{"question": "Describe a hard bug", "category": "technical", "purpose": "debugging depth"},
		},
	}}
	store := &fakeInterviewBatchStore{}
	cvURL := "https://cdn.example.com/cv.pdf"
	loader := &fakeLoader{texts: map[string]string{cvURL: "ten years of Go experience"}}
	svc := NewQuestionGenService(caller, &fakeSearcher{}, loader, &fakeQuestionBatchStore{}, store, 5)

	session := testSession(models.SessionTypeInterview)
	num := 2
	cfg := &models.InterviewConfig{SessionID: session.ID, CVURL: &cvURL, Position: "Backend Engineer", NumQuestions: &num}

	questions, err := svc.GenerateInterviewQuestions(context.Background(), session, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	for i, q := range store.saved {
		if q.QuestionIndex != i {
			t.Errorf("question %d has index %d", i, q.QuestionIndex)
		}
		if q.Status != models.QuestionStatusApproved {
			t.Errorf("interview question %d not auto-approved: %q", i, q.Status)
		}
		if q.JobTitle != "Backend Engineer" {
			t.Errorf("job title not carried: %q", q.JobTitle)
		}
	}
	if store.saved[0].Category != "teamwork" || store.saved[1].Purpose != "debugging depth" {
		t.Errorf("metadata not mapped: %+v", store.saved)
	}
}

func TestGenerateReferenceAnswersSkipsBadIndexes(t *testing.T) {
	caller := &fakeCaller{resp: map[string]interface{}{
		"answers": []interface{}{
			map[string]interface{}{"question_index": float64(0), "reference_answer": "first answer"},
			map[string]interface{}{"question_index": float64(7), "reference_answer": "out of range"},
			map[string]interface{}{"question_index": float64(-1), "reference_answer": "negative"},
			map[string]interface{}{"question_index": float64(1)},
			map[string]interface{}{"reference_answer": "missing index"},
		},
	}}
	svc := NewQuestionGenService(caller, &fakeSearcher{}, &fakeLoader{}, &fakeQuestionBatchStore{}, &fakeInterviewBatchStore{}, 5)

	seeds := []QuestionSeed{{Question: "Q0"}, {Question: "Q1"}}
	answers, err := svc.GenerateReferenceAnswers(context.Background(), testSession(models.SessionTypePractice), seeds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(answers) != 1 {
		t.Fatalf("expected exactly 1 usable answer, got %d: %v", len(answers), answers)
	}
	if answers[0] != "first answer" {
		t.Errorf("unexpected answer at index 0: %q", answers[0])
	}
}

func TestGenerateReferenceAnswersEmptySeeds(t *testing.T) {
	caller := &fakeCaller{}
	svc := NewQuestionGenService(caller, &fakeSearcher{}, &fakeLoader{}, &fakeQuestionBatchStore{}, &fakeInterviewBatchStore{}, 5)

	answers, err := svc.GenerateReferenceAnswers(context.Background(), testSession(models.SessionTypePractice), nil)
	if err != nil || answers != nil {
		t.Fatalf("expected no-op for empty seeds, got %v, %v", answers, err)
	}
	if len(caller.prompts) != 0 {
		t.Errorf("expected no model call for empty seeds")
	}
}
