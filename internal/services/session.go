package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"viva-backend/internal/models"
	"viva-backend/internal/repository"
)

type sessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetInterviewConfig(ctx context.Context, sessionID uuid.UUID) (*models.InterviewConfig, error)
}

type studentSessionStore interface {
	Create(ctx context.Context, ss *models.StudentSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StudentSession, error)
	FindBySessionAndStudent(ctx context.Context, sessionID, studentID uuid.UUID) (*models.StudentSession, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.StudentSession, error)
	FinishWithFallbacks(ctx context.Context, id uuid.UUID, attempts []repository.Completion) error
}

type questionStore interface {
	ListEligible(ctx context.Context, sessionID uuid.UUID) ([]*models.Question, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Question, error)
	SetReferenceAnswer(ctx context.Context, id uuid.UUID, answer string) error
}

type interviewQuestionStore interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*models.InterviewQuestion, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewQuestion, error)
	SetReferenceAnswer(ctx context.Context, id uuid.UUID, answer string) error
}

type answerStore interface {
	Create(ctx context.Context, a *models.StudentAnswer) error
	FindByQuestion(ctx context.Context, studentSessionID, questionID uuid.UUID) (*models.StudentAnswer, error)
	ReplaceText(ctx context.Context, id uuid.UUID, text string) error
	SetEvaluation(ctx context.Context, id uuid.UUID, score *float64, feedback string) error
	ListBySession(ctx context.Context, studentSessionID uuid.UUID) ([]*models.StudentAnswer, error)
}

type interviewAnswerStore interface {
	Create(ctx context.Context, a *models.InterviewAnswer) error
	FindByQuestion(ctx context.Context, studentSessionID, questionID uuid.UUID) (*models.InterviewAnswer, error)
	ReplaceText(ctx context.Context, id uuid.UUID, text string) error
	SetEvaluation(ctx context.Context, id uuid.UUID, scoreJSON json.RawMessage, feedback string) error
	ListBySession(ctx context.Context, studentSessionID uuid.UUID) ([]*models.InterviewAnswer, error)
}

type questionGenerator interface {
	GenerateForSession(ctx context.Context, session *models.Session, status string) ([]*models.Question, error)
	GenerateInterviewQuestions(ctx context.Context, session *models.Session, cfg *models.InterviewConfig) ([]*models.InterviewQuestion, error)
	GenerateReferenceAnswers(ctx context.Context, session *models.Session, seeds []QuestionSeed) (map[int]string, error)
}

type answerEvaluator interface {
	Evaluate(ctx context.Context, prompts PromptProvider, question, studentAnswer, referenceAnswer, difficulty string) Evaluation
	OverallFeedback(ctx context.Context, prompts PromptProvider, pairs []QAPair, summary map[string]float64) OverallAssessment
}

type progressPublisher interface {
	PublishProgress(ctx context.Context, studentID uuid.UUID, progress models.EvaluationProgress)
}

// SessionOrchestrator drives a student's path through an assessment session:
// join, start, question delivery, answer collection and final evaluation.
type SessionOrchestrator struct {
	sessions           sessionStore
	studentSessions    studentSessionStore
	questions          questionStore
	interviewQuestions interviewQuestionStore
	answers            answerStore
	interviewAnswers   interviewAnswerStore
	generator          questionGenerator
	evaluator          answerEvaluator
	progress           progressPublisher

	answerMaxChars    int
	feedbackPairLimit int
}

func NewSessionOrchestrator(
	sessions sessionStore,
	studentSessions studentSessionStore,
	questions questionStore,
	interviewQuestions interviewQuestionStore,
	answers answerStore,
	interviewAnswers interviewAnswerStore,
	generator questionGenerator,
	evaluator answerEvaluator,
	progress progressPublisher,
	answerMaxChars int,
	feedbackPairLimit int,
) *SessionOrchestrator {
	if answerMaxChars <= 0 {
		answerMaxChars = 16000
	}
	if feedbackPairLimit <= 0 {
		feedbackPairLimit = 20
	}
	return &SessionOrchestrator{
		sessions:           sessions,
		studentSessions:    studentSessions,
		questions:          questions,
		interviewQuestions: interviewQuestions,
		answers:            answers,
		interviewAnswers:   interviewAnswers,
		generator:          generator,
		evaluator:          evaluator,
		progress:           progress,
		answerMaxChars:     answerMaxChars,
		feedbackPairLimit:  feedbackPairLimit,
	}
}

// Join enrolls a student into a session. Joining twice is idempotent and
// returns the existing participation.
func (o *SessionOrchestrator) Join(ctx context.Context, studentID uuid.UUID, req models.JoinRequest) (*models.JoinResult, error) {
	session, err := o.sessions.GetByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "session not found"}
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if err := o.validateJoinable(session, req.Password); err != nil {
		return nil, err
	}

	if existing, err := o.studentSessions.FindBySessionAndStudent(ctx, session.ID, studentID); err == nil {
		return &models.JoinResult{
			StudentSessionID: existing.ID,
			SessionID:        session.ID,
			Message:          "Already joined this session",
		}, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("look up participation: %w", err)
	}

	ss := &models.StudentSession{SessionID: session.ID, StudentID: studentID}
	if err := o.studentSessions.Create(ctx, ss); err != nil {
		return nil, fmt.Errorf("join session: %w", err)
	}

	return &models.JoinResult{
		StudentSessionID: ss.ID,
		SessionID:        session.ID,
		Message:          "Joined session",
	}, nil
}

func (o *SessionOrchestrator) validateJoinable(session *models.Session, password string) error {
	switch session.Type {
	case models.SessionTypeExam:
		if session.Status != models.SessionStatusReady {
			return &NotReadyError{Message: "exam session is not open yet"}
		}
		// Sessions without a configured password are open to everyone.
		if session.PasswordHash != nil && *session.PasswordHash != "" {
			if bcrypt.CompareHashAndPassword([]byte(*session.PasswordHash), []byte(password)) != nil {
				return &UnauthorizedError{Message: "invalid session password"}
			}
		}
	case models.SessionTypePractice, models.SessionTypeInterview:
		if session.Status != models.SessionStatusCreated && session.Status != models.SessionStatusReady {
			return &UnavailableError{Message: "session is not available"}
		}
	default:
		return &InvalidInputError{Message: fmt.Sprintf("unknown session type %q", session.Type)}
	}
	return nil
}

// Start begins the question phase for a joined student. For practice and
// interview sessions the question set is generated lazily on first start;
// interview generation failures are fatal because there is nothing to fall
// back on without questions.
func (o *SessionOrchestrator) Start(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.StartResult, error) {
	ss, session, err := o.loadOwned(ctx, studentID, studentSessionID)
	if err != nil {
		return nil, err
	}

	if err := o.validateStartable(session); err != nil {
		return nil, err
	}

	var total int
	timeLimit := session.TimeLimit

	if session.Type == models.SessionTypeInterview {
		cfg, err := o.sessions.GetInterviewConfig(ctx, session.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &MissingInputError{Message: "interview session has no configuration"}
			}
			return nil, fmt.Errorf("load interview config: %w", err)
		}
		if timeLimit == nil {
			timeLimit = cfg.TimeLimit
		}

		existing, err := o.interviewQuestions.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("list interview questions: %w", err)
		}
		total = len(existing)
		if total == 0 {
			generated, err := o.generator.GenerateInterviewQuestions(ctx, session, cfg)
			if err != nil {
				return nil, err
			}
			total = len(generated)
		}
	} else {
		eligible, err := o.questions.ListEligible(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		total = len(eligible)

		if total == 0 && session.Type == models.SessionTypePractice {
			generated, err := o.generator.GenerateForSession(ctx, session, models.QuestionStatusApproved)
			if err != nil {
				// A practice session with existing material may still work
				// on a retry, so surface the empty set instead of the error.
				log.Printf("lazy question generation failed for session %s: %v", session.ID, err)
			} else {
				total = len(generated)
			}
		}
	}

	if total == 0 {
		return nil, &NoQuestionsError{Message: "session has no questions available"}
	}

	return &models.StartResult{
		StudentSessionID: ss.ID,
		SessionStarted:   true,
		TotalQuestions:   total,
		TimeLimit:        timeLimit,
	}, nil
}

func (o *SessionOrchestrator) validateStartable(session *models.Session) error {
	switch session.Type {
	case models.SessionTypeExam:
		if session.Status != models.SessionStatusReady {
			return &NotReadyError{Message: "exam session is not open yet"}
		}
	case models.SessionTypePractice, models.SessionTypeInterview:
		if session.Status != models.SessionStatusCreated && session.Status != models.SessionStatusReady {
			return &UnavailableError{Message: "session is not available"}
		}
	}
	return nil
}

// NextQuestion returns the first unanswered question in presentation order,
// or a completed marker once every question has an answer.
func (o *SessionOrchestrator) NextQuestion(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.NextQuestion, error) {
	ss, session, err := o.loadOwned(ctx, studentID, studentSessionID)
	if err != nil {
		return nil, err
	}

	if session.Type == models.SessionTypeInterview {
		return o.nextInterviewQuestion(ctx, ss, session)
	}
	return o.nextStandardQuestion(ctx, ss, session)
}

func (o *SessionOrchestrator) nextStandardQuestion(ctx context.Context, ss *models.StudentSession, session *models.Session) (*models.NextQuestion, error) {
	eligible, err := o.questions.ListEligible(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(eligible) == 0 {
		return nil, &NoQuestionsError{Message: "session has no questions available"}
	}

	answered, err := o.answeredQuestionIDs(ctx, ss.ID)
	if err != nil {
		return nil, err
	}

	for _, q := range eligible {
		if answered[q.ID] {
			continue
		}
		return &models.NextQuestion{
			QuestionID:     q.ID,
			Question:       q.Content,
			QuestionNumber: len(answered) + 1,
			TotalQuestions: len(eligible),
			Difficulty:     q.QuestionType,
		}, nil
	}

	return &models.NextQuestion{Completed: true, Message: "All questions answered"}, nil
}

func (o *SessionOrchestrator) nextInterviewQuestion(ctx context.Context, ss *models.StudentSession, session *models.Session) (*models.NextQuestion, error) {
	questions, err := o.interviewQuestions.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list interview questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, &NoQuestionsError{Message: "session has no questions available"}
	}

	answers, err := o.interviewAnswers.ListBySession(ctx, ss.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	answered := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}

	for _, q := range questions {
		if answered[q.ID] {
			continue
		}
		return &models.NextQuestion{
			QuestionID:     q.ID,
			Question:       q.Content,
			QuestionNumber: len(answered) + 1,
			TotalQuestions: len(questions),
			Difficulty:     q.QuestionType,
		}, nil
	}

	return &models.NextQuestion{Completed: true, Message: "All questions answered"}, nil
}

func (o *SessionOrchestrator) answeredQuestionIDs(ctx context.Context, studentSessionID uuid.UUID) (map[uuid.UUID]bool, error) {
	answers, err := o.answers.ListBySession(ctx, studentSessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	answered := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = true
	}
	return answered, nil
}

// SubmitAnswer records or replaces the student's answer to one question.
// Replacing an answer clears any prior evaluation; scores are recomputed
// only at session end.
func (o *SessionOrchestrator) SubmitAnswer(ctx context.Context, studentID, studentSessionID uuid.UUID, req models.SubmitAnswerRequest) (*models.SubmitAnswerResult, error) {
	ss, session, err := o.loadOwned(ctx, studentID, studentSessionID)
	if err != nil {
		return nil, err
	}

	answerText := strings.TrimSpace(req.Answer)
	if answerText == "" {
		return nil, &InvalidInputError{Message: "answer must not be empty", Fields: map[string]string{"answer": "required"}}
	}
	// Oversized answers are stored truncated rather than rejected.
	answerText = truncate(answerText, o.answerMaxChars)

	if session.Type == models.SessionTypeInterview {
		return o.submitInterviewAnswer(ctx, ss, session, req, answerText)
	}
	return o.submitStandardAnswer(ctx, ss, session, req, answerText)
}

func (o *SessionOrchestrator) submitStandardAnswer(ctx context.Context, ss *models.StudentSession, session *models.Session, req models.SubmitAnswerRequest, answerText string) (*models.SubmitAnswerResult, error) {
	if req.QuestionID == nil {
		return nil, &InvalidInputError{Message: "question_id is required", Fields: map[string]string{"question_id": "required"}}
	}

	question, err := o.questions.GetByID(ctx, *req.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "question not found"}
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	if question.SessionID != session.ID {
		return nil, &NotFoundError{Message: "question does not belong to this session"}
	}

	var answerID uuid.UUID
	message := "Answer saved"

	existing, err := o.answers.FindByQuestion(ctx, ss.ID, question.ID)
	switch {
	case err == nil:
		if err := o.answers.ReplaceText(ctx, existing.ID, answerText); err != nil {
			return nil, fmt.Errorf("update answer: %w", err)
		}
		answerID = existing.ID
		message = "Answer updated"
	case errors.Is(err, pgx.ErrNoRows):
		answer := &models.StudentAnswer{StudentSessionID: ss.ID, QuestionID: question.ID, AnswerText: answerText}
		if err := o.answers.Create(ctx, answer); err != nil {
			return nil, fmt.Errorf("save answer: %w", err)
		}
		answerID = answer.ID
	default:
		return nil, fmt.Errorf("look up answer: %w", err)
	}

	// Practice sessions warm the reference answer early so the end call has
	// less to generate. Failures here are recoverable at session end.
	if session.Type == models.SessionTypePractice && question.ReferenceAnswer == nil {
		o.warmReferenceAnswer(ctx, session, question)
	}

	eligible, err := o.questions.ListEligible(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	answered, err := o.answeredQuestionIDs(ctx, ss.ID)
	if err != nil {
		return nil, err
	}

	return &models.SubmitAnswerResult{
		AnswerID:              answerID,
		AnsweredCount:         len(answered),
		TotalQuestions:        len(eligible),
		NextQuestionAvailable: len(answered) < len(eligible),
		Message:               message,
	}, nil
}

func (o *SessionOrchestrator) submitInterviewAnswer(ctx context.Context, ss *models.StudentSession, session *models.Session, req models.SubmitAnswerRequest, answerText string) (*models.SubmitAnswerResult, error) {
	if req.InterviewQuestionID == nil {
		return nil, &InvalidInputError{Message: "question_interview_id is required", Fields: map[string]string{"question_interview_id": "required"}}
	}

	question, err := o.interviewQuestions.GetByID(ctx, *req.InterviewQuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "question not found"}
		}
		return nil, fmt.Errorf("load interview question: %w", err)
	}
	if question.SessionID != session.ID {
		return nil, &NotFoundError{Message: "question does not belong to this session"}
	}

	var answerID uuid.UUID
	message := "Answer saved"

	existing, err := o.interviewAnswers.FindByQuestion(ctx, ss.ID, question.ID)
	switch {
	case err == nil:
		if err := o.interviewAnswers.ReplaceText(ctx, existing.ID, answerText); err != nil {
			return nil, fmt.Errorf("update answer: %w", err)
		}
		answerID = existing.ID
		message = "Answer updated"
	case errors.Is(err, pgx.ErrNoRows):
		answer := &models.InterviewAnswer{StudentSessionID: ss.ID, QuestionID: question.ID, AnswerText: answerText}
		if err := o.interviewAnswers.Create(ctx, answer); err != nil {
			return nil, fmt.Errorf("save answer: %w", err)
		}
		answerID = answer.ID
	default:
		return nil, fmt.Errorf("look up answer: %w", err)
	}

	questions, err := o.interviewQuestions.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list interview questions: %w", err)
	}
	answers, err := o.interviewAnswers.ListBySession(ctx, ss.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	return &models.SubmitAnswerResult{
		AnswerID:              answerID,
		AnsweredCount:         len(answers),
		TotalQuestions:        len(questions),
		NextQuestionAvailable: len(answers) < len(questions),
		Message:               message,
	}, nil
}

func (o *SessionOrchestrator) warmReferenceAnswer(ctx context.Context, session *models.Session, question *models.Question) {
	seeds := []QuestionSeed{{Question: question.Content, Keywords: question.Keywords, QuestionType: question.QuestionType}}
	generated, err := o.generator.GenerateReferenceAnswers(ctx, session, seeds)
	if err != nil {
		log.Printf("reference answer warmup failed for question %s: %v", question.ID, err)
		return
	}
	answer, ok := generated[0]
	if !ok {
		return
	}
	if err := o.questions.SetReferenceAnswer(ctx, question.ID, answer); err != nil {
		log.Printf("reference answer save failed for question %s: %v", question.ID, err)
	}
}

// GetResult returns the full evaluated view of a student session.
func (o *SessionOrchestrator) GetResult(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.SessionResult, error) {
	ss, session, err := o.loadOwned(ctx, studentID, studentSessionID)
	if err != nil {
		return nil, err
	}

	var formatted []models.FormattedAnswer
	if session.Type == models.SessionTypeInterview {
		formatted, err = o.formattedInterviewAnswers(ctx, ss.ID)
	} else {
		formatted, err = o.formattedStandardAnswers(ctx, ss.ID)
	}
	if err != nil {
		return nil, err
	}

	return &models.SessionResult{
		StudentSessionID:  ss.ID,
		SessionID:         session.ID,
		SessionName:       session.Name,
		SessionType:       session.Type,
		ScoreTotal:        ss.ScoreTotal,
		AIOverallFeedback: ss.AIOverallFeedback,
		Answers:           formatted,
		JoinTime:          ss.JoinTime,
	}, nil
}

func (o *SessionOrchestrator) formattedStandardAnswers(ctx context.Context, studentSessionID uuid.UUID) ([]models.FormattedAnswer, error) {
	answers, err := o.answers.ListBySession(ctx, studentSessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := o.questions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	content := make(map[uuid.UUID]string, len(questions))
	for _, q := range questions {
		content[q.ID] = q.Content
	}

	formatted := make([]models.FormattedAnswer, 0, len(answers))
	for _, a := range answers {
		score := json.RawMessage("null")
		if a.AIScore != nil {
			if raw, err := json.Marshal(*a.AIScore); err == nil {
				score = raw
			}
		}
		formatted = append(formatted, models.FormattedAnswer{
			AnswerID:         a.ID,
			QuestionID:       a.QuestionID,
			Question:         content[a.QuestionID],
			Answer:           a.AnswerText,
			AIScore:          score,
			AIFeedback:       a.AIFeedback,
			LecturerScore:    a.LecturerScore,
			LecturerFeedback: a.LecturerFeedback,
		})
	}
	return formatted, nil
}

func (o *SessionOrchestrator) formattedInterviewAnswers(ctx context.Context, studentSessionID uuid.UUID) ([]models.FormattedAnswer, error) {
	answers, err := o.interviewAnswers.ListBySession(ctx, studentSessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	formatted := make([]models.FormattedAnswer, 0, len(answers))
	for _, a := range answers {
		question, err := o.interviewQuestions.GetByID(ctx, a.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("load interview question: %w", err)
		}
		score := a.AIScore
		if len(score) == 0 {
			score = json.RawMessage("null")
		}
		formatted = append(formatted, models.FormattedAnswer{
			AnswerID:         a.ID,
			QuestionID:       a.QuestionID,
			Question:         question.Content,
			Answer:           a.AnswerText,
			AIScore:          score,
			AIFeedback:       a.AIFeedback,
			LecturerScore:    a.LecturerScore,
			LecturerFeedback: a.LecturerFeedback,
		})
	}
	return formatted, nil
}

// GetHistory lists the student's participations, newest first.
func (o *SessionOrchestrator) GetHistory(ctx context.Context, studentID uuid.UUID) ([]models.HistoryEntry, error) {
	participations, err := o.studentSessions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(participations))
	for _, ss := range participations {
		session, err := o.sessions.GetByID(ctx, ss.SessionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("load session: %w", err)
		}
		courseName := ""
		if session.CourseName != nil {
			courseName = *session.CourseName
		}
		entries = append(entries, models.HistoryEntry{
			StudentSessionID: ss.ID,
			SessionID:        session.ID,
			SessionName:      session.Name,
			SessionType:      session.Type,
			CourseName:       courseName,
			ScoreTotal:       ss.ScoreTotal,
			JoinTime:         ss.JoinTime,
		})
	}
	return entries, nil
}

func (o *SessionOrchestrator) loadOwned(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.StudentSession, *models.Session, error) {
	ss, err := o.studentSessions.GetByID(ctx, studentSessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &NotFoundError{Message: "student session not found"}
		}
		return nil, nil, fmt.Errorf("load student session: %w", err)
	}
	if ss.StudentID != studentID {
		return nil, nil, &ForbiddenError{Message: "student session belongs to another student"}
	}

	session, err := o.sessions.GetByID(ctx, ss.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &NotFoundError{Message: "session not found"}
		}
		return nil, nil, fmt.Errorf("load session: %w", err)
	}
	return ss, session, nil
}

func (o *SessionOrchestrator) publishProgress(ctx context.Context, studentID uuid.UUID, p models.EvaluationProgress) {
	if o.progress == nil {
		return
	}
	o.progress.PublishProgress(ctx, studentID, p)
}
