package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	feedbackMaxChars = 8000
	degradedScore    = 5.0
)

// Evaluation is the graded verdict for a single answer.
type Evaluation struct {
	Scores       map[string]float64
	OverallScore *float64
	Feedback     string
	Strengths    []string
	Weaknesses   []string
}

// OverallAssessment is the session-level wrap-up.
type OverallAssessment struct {
	Feedback        string
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
}

// EvaluationService grades answers against reference answers. Its methods
// never return an error: grading happens at session end where a failed
// model call must degrade to neutral scores instead of losing the session.
type EvaluationService struct {
	gen jsonCaller
}

func NewEvaluationService(gen jsonCaller) *EvaluationService {
	return &EvaluationService{gen: gen}
}

// Evaluate grades one answer on the six criteria. On model failure it
// returns neutral scores with the error surfaced in the feedback text.
// OverallScore is nil when the model responded but omitted a usable number.
func (s *EvaluationService) Evaluate(ctx context.Context, prompts PromptProvider, question, studentAnswer, referenceAnswer, difficulty string) Evaluation {
	prompt := prompts.EvaluateAnswer(question, studentAnswer, referenceAnswer, difficulty)

	data, err := s.gen.CallJSON(ctx, prompt)
	if err != nil {
		return degradedEvaluation(err)
	}

	ev := Evaluation{
		Scores:     parseScores(data["scores"]),
		Feedback:   truncate(asString(data["feedback"]), feedbackMaxChars),
		Strengths:  asStringSlice(data["strengths"]),
		Weaknesses: asStringSlice(data["weaknesses"]),
	}
	if overall, ok := asFloat(data["overall_score"]); ok {
		ev.OverallScore = &overall
	}
	return ev
}

// OverallFeedback produces the session wrap-up. On model failure it returns
// a generic placeholder rather than an error.
func (s *EvaluationService) OverallFeedback(ctx context.Context, prompts PromptProvider, pairs []QAPair, summary map[string]float64) OverallAssessment {
	prompt := prompts.OverallFeedback(pairs, summary)

	data, err := s.gen.CallJSON(ctx, prompt)
	if err != nil {
		return OverallAssessment{
			Feedback: "Overall feedback is unavailable because the evaluation service did not respond. Individual answer feedback is still recorded.",
		}
	}

	feedback := truncate(asString(data["overall_feedback"]), feedbackMaxChars)
	if feedback == "" {
		feedback = "The session was evaluated, but no overall feedback was produced."
	}

	return OverallAssessment{
		Feedback:        feedback,
		Strengths:       asStringSlice(data["strengths"]),
		Weaknesses:      asStringSlice(data["weaknesses"]),
		Recommendations: asStringSlice(data["recommendations"]),
	}
}

func degradedEvaluation(err error) Evaluation {
	scores := make(map[string]float64, len(evaluationCriteria))
	for _, criterion := range evaluationCriteria {
		scores[criterion] = degradedScore
	}
	overall := degradedScore
	return Evaluation{
		Scores:       scores,
		OverallScore: &overall,
		Feedback:     fmt.Sprintf("Evaluation error: %v", err),
	}
}

func parseScores(v interface{}) map[string]float64 {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	scores := make(map[string]float64, len(raw))
	for criterion, value := range raw {
		if score, ok := asFloat(value); ok {
			scores[criterion] = score
		}
	}
	return scores
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		// Models occasionally quote numeric scores.
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func asStringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
