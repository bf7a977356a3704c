package services

import (
	"strings"
	"testing"

	"viva-backend/internal/models"
)

func TestPromptsForSelectsVariant(t *testing.T) {
	if _, ok := PromptsFor(models.SessionTypeInterview).(interviewPrompts); !ok {
		t.Errorf("expected interview prompts for INTERVIEW sessions")
	}
	if _, ok := PromptsFor(models.SessionTypeExam).(oralExamPrompts); !ok {
		t.Errorf("expected oral exam prompts for EXAM sessions")
	}
	if _, ok := PromptsFor(models.SessionTypePractice).(oralExamPrompts); !ok {
		t.Errorf("expected oral exam prompts for PRACTICE sessions")
	}
}

func TestBatchQuestionsPromptIncludesContext(t *testing.T) {
	prompt := oralExamPrompts{}.BatchQuestions(
		[]string{"photosynthesis converts light into chemical energy"},
		"APPLY", "Biology 101", 5)

	for _, want := range []string{
		"Create 5 high-quality",
		"photosynthesis converts light",
		"Biology 101",
		"APPLY",
		`"questions"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("batch prompt missing %q", want)
		}
	}
}

func TestBatchQuestionsPromptWithoutMaterial(t *testing.T) {
	prompt := oralExamPrompts{}.BatchQuestions(nil, "REMEMBER", "Chemistry", 3)
	if !strings.Contains(prompt, "general knowledge") {
		t.Errorf("expected general-knowledge fallback in prompt")
	}
}

func TestInterviewBatchQuestionsIncludesMetadataFields(t *testing.T) {
	prompt := interviewPrompts{}.BatchQuestions([]string{"cv text"}, "MEDIUM", "Backend Engineer", 4)
	for _, want := range []string{`"category"`, `"purpose"`, "Backend Engineer", "Generate exactly 4"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("interview batch prompt missing %q", want)
		}
	}
}

func TestReferenceAnswersPromptListsQuestions(t *testing.T) {
	seeds := []QuestionSeed{
		{Question: "What is a monad?", Keywords: "functor, bind", QuestionType: "UNDERSTAND"},
		{Question: "Apply it to IO", Keywords: "io", QuestionType: "APPLY"},
	}
	prompt := oralExamPrompts{}.ReferenceAnswers(seeds, nil, "FP")

	for _, want := range []string{"Q1: What is a monad?", "Q2: Apply it to IO", `"question_index"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("reference answers prompt missing %q", want)
		}
	}
}

func TestEvaluatePromptListsCriteria(t *testing.T) {
	prompt := oralExamPrompts{}.EvaluateAnswer("Q", "student says", "reference says", "ANALYZE")
	for _, criterion := range evaluationCriteria {
		if !strings.Contains(strings.ToLower(prompt), criterion) {
			t.Errorf("evaluate prompt missing criterion %q", criterion)
		}
	}
	if !strings.Contains(prompt, `"overall_score"`) {
		t.Errorf("evaluate prompt missing overall_score contract")
	}
}

func TestOverallFeedbackPromptIncludesSummary(t *testing.T) {
	pairs := []QAPair{{Question: "Q1", Answer: "A1", Score: 7.5, Feedback: "decent"}}
	summary := map[string]float64{"correctness": 8.0, "coverage": 6.5}

	prompt := interviewPrompts{}.OverallFeedback(pairs, summary)
	for _, want := range []string{"Q1: Q1", "Score: 7.5/10", "correctness: 8.0/10", "coverage: 6.5/10"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("overall feedback prompt missing %q", want)
		}
	}
}
