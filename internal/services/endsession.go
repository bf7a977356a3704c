package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"viva-backend/internal/models"
	"viva-backend/internal/repository"
)

// pendingAnswer is one answer queued for the evaluation loop. Answers that
// already carry a score from a previous end call keep it instead of being
// re-evaluated; resubmitting an answer clears the score and requeues it.
type pendingAnswer struct {
	question      string
	answer        string
	reference     string
	evaluated     bool
	priorScore    *float64
	priorFeedback string
	persist       func(ctx context.Context, ev Evaluation) error
}

// End closes the student's session: every unevaluated answer is graded
// sequentially, each verdict is persisted as soon as it exists, and the
// final score is the mean of the per-answer overall scores. Once at least
// one answer exists, End degrades instead of failing; problems along the
// way are reported in the result's warnings.
func (o *SessionOrchestrator) End(ctx context.Context, studentID, studentSessionID uuid.UUID) (*models.EndResult, error) {
	ss, session, err := o.loadOwned(ctx, studentID, studentSessionID)
	if err != nil {
		return nil, err
	}

	var pending []pendingAnswer
	var warnings []string
	if session.Type == models.SessionTypeInterview {
		pending, warnings, err = o.prepareInterviewAnswers(ctx, ss, session)
	} else {
		pending, warnings, err = o.prepareStandardAnswers(ctx, ss, session)
	}
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, &NoAnswersError{Message: "session has no answers to evaluate"}
	}

	return o.evaluateAll(ctx, ss, session, pending, warnings), nil
}

func (o *SessionOrchestrator) prepareStandardAnswers(ctx context.Context, ss *models.StudentSession, session *models.Session) ([]pendingAnswer, []string, error) {
	answers, err := o.answers.ListBySession(ctx, ss.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list answers: %w", err)
	}
	if len(answers) == 0 {
		return nil, nil, nil
	}

	ids := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := o.questions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var warnings []string

	// Batch the missing reference answers into a single model call.
	var missing []*models.Question
	for _, q := range questions {
		if q.ReferenceAnswer == nil || *q.ReferenceAnswer == "" {
			missing = append(missing, q)
		}
	}
	if len(missing) > 0 {
		seeds := make([]QuestionSeed, len(missing))
		for i, q := range missing {
			seeds[i] = QuestionSeed{Question: q.Content, Keywords: q.Keywords, QuestionType: q.QuestionType}
		}
		generated, err := o.generator.GenerateReferenceAnswers(ctx, session, seeds)
		if err != nil {
			log.Printf("reference answer generation failed for session %s: %v", session.ID, err)
			warnings = append(warnings, "some answers were evaluated without a reference answer")
		}
		for i, q := range missing {
			answer, ok := generated[i]
			if !ok {
				continue
			}
			ref := answer
			q.ReferenceAnswer = &ref
			if err := o.questions.SetReferenceAnswer(ctx, q.ID, answer); err != nil {
				log.Printf("reference answer save failed for question %s: %v", q.ID, err)
			}
		}
	}

	pending := make([]pendingAnswer, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			warnings = append(warnings, "an answer references a question that no longer exists")
			continue
		}
		ref := ""
		if q.ReferenceAnswer != nil {
			ref = *q.ReferenceAnswer
		}
		answerID := a.ID
		pending = append(pending, pendingAnswer{
			question:      q.Content,
			answer:        a.AnswerText,
			reference:     ref,
			evaluated:     a.AIScore != nil,
			priorScore:    a.AIScore,
			priorFeedback: derefString(a.AIFeedback),
			persist: func(ctx context.Context, ev Evaluation) error {
				return o.answers.SetEvaluation(ctx, answerID, ev.OverallScore, ev.Feedback)
			},
		})
	}
	return pending, warnings, nil
}

func (o *SessionOrchestrator) prepareInterviewAnswers(ctx context.Context, ss *models.StudentSession, session *models.Session) ([]pendingAnswer, []string, error) {
	answers, err := o.interviewAnswers.ListBySession(ctx, ss.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list answers: %w", err)
	}
	if len(answers) == 0 {
		return nil, nil, nil
	}

	// Interview evaluation is grounded on the candidate's CV, so a session
	// that still has unscored answers cannot be closed without one. Sessions
	// whose answers were all scored earlier skip the check.
	needsEvaluation := false
	for _, a := range answers {
		if !hasScoreJSON(a.AIScore) {
			needsEvaluation = true
			break
		}
	}
	if needsEvaluation {
		cfg, err := o.sessions.GetInterviewConfig(ctx, session.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, &MissingInputError{Message: "interview session has no configuration"}
			}
			return nil, nil, fmt.Errorf("load interview config: %w", err)
		}
		if cfg.CVURL == nil || *cfg.CVURL == "" {
			return nil, nil, &MissingInputError{Message: "interview evaluation requires an uploaded CV"}
		}
	}

	questions, err := o.interviewQuestions.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list interview questions: %w", err)
	}
	byID := make(map[uuid.UUID]*models.InterviewQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var warnings []string

	var missing []*models.InterviewQuestion
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if ok && (q.ReferenceAnswer == nil || *q.ReferenceAnswer == "") {
			missing = append(missing, q)
		}
	}
	if len(missing) > 0 {
		seeds := make([]QuestionSeed, len(missing))
		for i, q := range missing {
			seeds[i] = QuestionSeed{Question: q.Content, Keywords: q.Keywords, QuestionType: q.QuestionType}
		}
		generated, err := o.generator.GenerateReferenceAnswers(ctx, session, seeds)
		if err != nil {
			log.Printf("reference answer generation failed for session %s: %v", session.ID, err)
			warnings = append(warnings, "some answers were evaluated without a reference answer")
		}
		for i, q := range missing {
			answer, ok := generated[i]
			if !ok {
				continue
			}
			ref := answer
			q.ReferenceAnswer = &ref
			if err := o.interviewQuestions.SetReferenceAnswer(ctx, q.ID, answer); err != nil {
				log.Printf("reference answer save failed for question %s: %v", q.ID, err)
			}
		}
	}

	pending := make([]pendingAnswer, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			warnings = append(warnings, "an answer references a question that no longer exists")
			continue
		}
		ref := ""
		if q.ReferenceAnswer != nil {
			ref = *q.ReferenceAnswer
		}
		answerID := a.ID
		pending = append(pending, pendingAnswer{
			question:      q.Content,
			answer:        a.AnswerText,
			reference:     ref,
			evaluated:     hasScoreJSON(a.AIScore),
			priorScore:    extractScalarScore(a.AIScore),
			priorFeedback: derefString(a.AIFeedback),
			persist: func(ctx context.Context, ev Evaluation) error {
				return o.interviewAnswers.SetEvaluation(ctx, answerID, scoreJSON(ev), ev.Feedback)
			},
		})
	}
	return pending, warnings, nil
}

func (o *SessionOrchestrator) evaluateAll(ctx context.Context, ss *models.StudentSession, session *models.Session, pending []pendingAnswer, warnings []string) *models.EndResult {
	prompts := PromptsFor(session.Type)
	total := len(pending)

	criteriaSums := make(map[string]float64)
	criteriaCounts := make(map[string]int)
	var overallSum float64
	var overallCount int
	evaluatedCount := 0
	pairs := make([]QAPair, 0, total)

	for i, p := range pending {
		o.publishProgress(ctx, ss.StudentID, models.EvaluationProgress{
			StudentSessionID: ss.ID,
			Evaluated:        i,
			Total:            total,
			Step:             "evaluating",
		})

		var score *float64
		var feedback string

		if p.evaluated {
			score = p.priorScore
			feedback = p.priorFeedback
		} else {
			ev := o.evaluator.Evaluate(ctx, prompts, p.question, p.answer, p.reference, session.DifficultyLevel)
			if err := p.persist(ctx, ev); err != nil {
				log.Printf("evaluation save failed for student_session %s: %v", ss.ID, err)
				warnings = append(warnings, "an evaluation could not be saved to an answer")
			}
			score = ev.OverallScore
			feedback = ev.Feedback
			for criterion, value := range ev.Scores {
				criteriaSums[criterion] += value
				criteriaCounts[criterion]++
			}
		}
		evaluatedCount++

		pairScore := 0.0
		if score != nil {
			pairScore = *score
			overallSum += *score
			overallCount++
		}
		pairs = append(pairs, QAPair{Question: p.question, Answer: p.answer, Score: pairScore, Feedback: feedback})
	}

	var meanScore float64
	if overallCount > 0 {
		meanScore = overallSum / float64(overallCount)
	} else {
		warnings = append(warnings, "no usable scores were produced; total score defaults to 0")
	}

	summary := make(map[string]float64, len(criteriaSums))
	for criterion, sum := range criteriaSums {
		summary[criterion] = sum / float64(criteriaCounts[criterion])
	}

	var overallFeedback string
	if len(pairs) > o.feedbackPairLimit {
		overallFeedback = fmt.Sprintf(
			"Session evaluated: %d answers reviewed with an average score of %.1f/10. Individual feedback is available on each answer.",
			len(pairs), meanScore)
	} else {
		overallFeedback = o.evaluator.OverallFeedback(ctx, prompts, pairs, summary).Feedback
	}

	generic := fmt.Sprintf("Session evaluated with an average score of %.1f/10.", meanScore)
	attempts := []repository.Completion{
		{ScoreTotal: meanScore, OverallFeedback: &overallFeedback},
		{ScoreTotal: meanScore},
		{ScoreTotal: meanScore, OverallFeedback: &generic},
	}
	if err := o.studentSessions.FinishWithFallbacks(ctx, ss.ID, attempts); err != nil {
		log.Printf("student_session %s: final score not persisted: %v", ss.ID, err)
		warnings = append(warnings, "the final score could not be saved; it is still included in this response")
	}

	o.publishProgress(ctx, ss.StudentID, models.EvaluationProgress{
		StudentSessionID: ss.ID,
		Evaluated:        total,
		Total:            total,
		Step:             "completed",
	})

	return &models.EndResult{
		StudentSessionID:  ss.ID,
		ScoreTotal:        meanScore,
		AIOverallFeedback: overallFeedback,
		EvaluatedCount:    evaluatedCount,
		TotalAnswers:      total,
		CompletedAt:       time.Now().UTC(),
		Warnings:          warnings,
	}
}

// scoreJSON packs an evaluation into the structured score stored for
// interview answers.
func scoreJSON(ev Evaluation) json.RawMessage {
	payload := make(map[string]interface{}, len(ev.Scores)+1)
	for criterion, value := range ev.Scores {
		payload[criterion] = value
	}
	if ev.OverallScore != nil {
		payload["overall_score"] = *ev.OverallScore
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}

func hasScoreJSON(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// extractScalarScore pulls one comparable number out of a stored score,
// whether it is a bare number or a criteria map.
func extractScalarScore(raw json.RawMessage) *float64 {
	if !hasScoreJSON(raw) {
		return nil
	}

	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return &scalar
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	for _, key := range []string{"overall_score", "overall"} {
		if value, ok := asFloat(m[key]); ok {
			return &value
		}
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
