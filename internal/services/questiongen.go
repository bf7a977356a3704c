package services

import (
	"context"
	"fmt"
	"log"

	"viva-backend/internal/models"
)

const contextChunkLimit = 8

type jsonCaller interface {
	CallJSON(ctx context.Context, prompt string) (map[string]interface{}, error)
}

type documentLoader interface {
	Load(ctx context.Context, source string) (string, func(), error)
}

type questionBatchStore interface {
	CreateBatch(ctx context.Context, questions []*models.Question) error
}

type interviewQuestionBatchStore interface {
	CreateBatch(ctx context.Context, questions []*models.InterviewQuestion) error
}

// QuestionGenService produces questions and reference answers for a
// session, grounded on its attached material where available.
type QuestionGenService struct {
	gen                jsonCaller
	searcher           ChunkSearcher
	ingest             documentLoader
	questions          questionBatchStore
	interviewQuestions interviewQuestionBatchStore
	batchSize          int
}

func NewQuestionGenService(
	gen jsonCaller,
	searcher ChunkSearcher,
	ingest documentLoader,
	questions questionBatchStore,
	interviewQuestions interviewQuestionBatchStore,
	batchSize int,
) *QuestionGenService {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &QuestionGenService{
		gen:                gen,
		searcher:           searcher,
		ingest:             ingest,
		questions:          questions,
		interviewQuestions: interviewQuestions,
		batchSize:          batchSize,
	}
}

func sessionTopic(session *models.Session) string {
	if session.CourseName != nil && *session.CourseName != "" {
		return *session.CourseName
	}
	return session.Name
}

func (s *QuestionGenService) sessionChunks(ctx context.Context, session *models.Session) []string {
	if session.MaterialID == nil {
		return nil
	}
	chunks, err := s.searcher.Search(ctx, *session.MaterialID, sessionTopic(session), contextChunkLimit)
	if err != nil {
		// Fall back to general-knowledge generation rather than failing.
		log.Printf("chunk search failed for session %s: %v", session.ID, err)
		return nil
	}
	return chunks
}

// GenerateForSession creates a batch of questions for an exam or practice
// session and persists them with the given status.
func (s *QuestionGenService) GenerateForSession(ctx context.Context, session *models.Session, status string) ([]*models.Question, error) {
	chunks := s.sessionChunks(ctx, session)
	prompt := PromptsFor(session.Type).BatchQuestions(chunks, session.DifficultyLevel, sessionTopic(session), s.batchSize)

	data, err := s.gen.CallJSON(ctx, prompt)
	if err != nil {
		return nil, &GenerationError{Op: "generate questions", Err: err}
	}

	rawQuestions, ok := data["questions"].([]interface{})
	if !ok || len(rawQuestions) == 0 {
		return nil, &GenerationError{Op: "generate questions", Err: fmt.Errorf("model response missing questions array")}
	}

	questions := make([]*models.Question, 0, len(rawQuestions))
	for _, raw := range rawQuestions {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		content := asString(item["question"])
		if content == "" {
			continue
		}
		questions = append(questions, &models.Question{
			SessionID:    session.ID,
			Content:      content,
			Keywords:     asString(item["keywords"]),
			QuestionType: asString(item["question_type"]),
			Status:       status,
		})
	}

	if len(questions) == 0 {
		return nil, &GenerationError{Op: "generate questions", Err: fmt.Errorf("model returned no usable questions")}
	}

	if err := s.questions.CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("save generated questions: %w", err)
	}
	return questions, nil
}

// GenerateInterviewQuestions ingests the candidate's CV (and job description
// when provided), generates the interview question set and persists it.
// Interview questions are approved immediately since there is no review step.
func (s *QuestionGenService) GenerateInterviewQuestions(ctx context.Context, session *models.Session, cfg *models.InterviewConfig) ([]*models.InterviewQuestion, error) {
	if cfg == nil || cfg.CVURL == nil || *cfg.CVURL == "" {
		return nil, &MissingInputError{Message: "interview session has no CV attached"}
	}

	cvText, cvCleanup, err := s.ingest.Load(ctx, *cfg.CVURL)
	defer cvCleanup()
	if err != nil {
		return nil, &GenerationError{Op: "ingest cv", Err: err}
	}

	combined := cvText
	if cfg.JDURL != nil && *cfg.JDURL != "" {
		jdText, jdCleanup, err := s.ingest.Load(ctx, *cfg.JDURL)
		defer jdCleanup()
		if err != nil {
			// The CV alone is enough context to interview on.
			log.Printf("job description ingest failed for session %s: %v", session.ID, err)
		} else {
			combined += "\n\n" + jdText
		}
	}

	chunks := ChunkText(combined, 4000)
	if len(chunks) > contextChunkLimit {
		chunks = chunks[:contextChunkLimit]
	}

	numQuestions := s.batchSize
	if cfg.NumQuestions != nil && *cfg.NumQuestions > 0 {
		numQuestions = *cfg.NumQuestions
	}

	prompt := PromptsFor(models.SessionTypeInterview).BatchQuestions(chunks, session.DifficultyLevel, cfg.Position, numQuestions)

	data, err := s.gen.CallJSON(ctx, prompt)
	if err != nil {
		return nil, &GenerationError{Op: "generate interview questions", Err: err}
	}

	rawQuestions, ok := data["questions"].([]interface{})
	if !ok || len(rawQuestions) == 0 {
		return nil, &GenerationError{Op: "generate interview questions", Err: fmt.Errorf("model response missing questions array")}
	}

	questions := make([]*models.InterviewQuestion, 0, len(rawQuestions))
	for _, raw := range rawQuestions {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		content := asString(item["question"])
		if content == "" {
			continue
		}
		questions = append(questions, &models.InterviewQuestion{
			SessionID:     session.ID,
			Content:       content,
			Keywords:      asString(item["keywords"]),
			QuestionType:  asString(item["question_type"]),
			Category:      asString(item["category"]),
			Purpose:       asString(item["purpose"]),
			JobTitle:      cfg.Position,
			QuestionIndex: len(questions),
			Status:        models.QuestionStatusApproved,
		})
	}

	if len(questions) == 0 {
		return nil, &GenerationError{Op: "generate interview questions", Err: fmt.Errorf("model returned no usable questions")}
	}

	if err := s.interviewQuestions.CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("save interview questions: %w", err)
	}
	return questions, nil
}

// GenerateReferenceAnswers produces model answers for the given questions in
// a single call and returns them keyed by question index. Indexes the model
// returned out of range, or entries without an answer, are skipped.
func (s *QuestionGenService) GenerateReferenceAnswers(ctx context.Context, session *models.Session, seeds []QuestionSeed) (map[int]string, error) {
	if len(seeds) == 0 {
		return nil, nil
	}

	chunks := s.sessionChunks(ctx, session)
	prompt := PromptsFor(session.Type).ReferenceAnswers(seeds, chunks, sessionTopic(session))

	data, err := s.gen.CallJSON(ctx, prompt)
	if err != nil {
		return nil, &GenerationError{Op: "generate reference answers", Err: err}
	}

	rawAnswers, ok := data["answers"].([]interface{})
	if !ok {
		return nil, &GenerationError{Op: "generate reference answers", Err: fmt.Errorf("model response missing answers array")}
	}

	answers := make(map[int]string, len(seeds))
	for _, raw := range rawAnswers {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		idx, ok := asIndex(item["question_index"])
		if !ok || idx < 0 || idx >= len(seeds) {
			continue
		}
		answer := asString(item["reference_answer"])
		if answer == "" {
			continue
		}
		answers[idx] = answer
	}

	return answers, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asIndex accepts the numeric shapes encoding/json produces for untyped maps.
func asIndex(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
