package services

import (
	"fmt"
	"strings"

	"viva-backend/internal/models"
)

// evaluationCriteria are the six fixed scoring dimensions, in prompt order.
var evaluationCriteria = []string{
	"correctness",
	"coverage",
	"reasoning",
	"creativity",
	"communication",
	"attitude",
}

// QuestionSeed is the minimal question shape fed back into prompts.
type QuestionSeed struct {
	Question     string
	Keywords     string
	QuestionType string
}

// QAPair is one answered question with its evaluation, used for the
// overall-feedback prompt.
type QAPair struct {
	Question string
	Answer   string
	Score    float64
	Feedback string
}

// PromptProvider produces the prompt text for each generation task. The
// variant is selected by session category: oral-exam phrasing for
// EXAM/PRACTICE, interviewer phrasing for INTERVIEW.
type PromptProvider interface {
	BatchQuestions(chunks []string, difficulty, topic string, numQuestions int) string
	ReferenceAnswers(questions []QuestionSeed, chunks []string, topic string) string
	EvaluateAnswer(question, studentAnswer, referenceAnswer, difficulty string) string
	OverallFeedback(pairs []QAPair, summary map[string]float64) string
}

// PromptsFor selects the prompt variant for a session category.
func PromptsFor(sessionType string) PromptProvider {
	if strings.EqualFold(sessionType, models.SessionTypeInterview) {
		return interviewPrompts{}
	}
	return oralExamPrompts{}
}

func writeChunks(b *strings.Builder, chunks []string) {
	for i, chunk := range chunks {
		fmt.Fprintf(b, "[Chunk %d]: %s\n\n", i+1, chunk)
	}
}

func writeSeeds(b *strings.Builder, questions []QuestionSeed) {
	for i, q := range questions {
		fmt.Fprintf(b, "Q%d: %s\nKeywords: %s\nType: %s\n\n", i+1, q.Question, q.Keywords, q.QuestionType)
	}
}

func writeQAPairs(b *strings.Builder, pairs []QAPair) {
	for i, pair := range pairs {
		fmt.Fprintf(b, "Q%d: %s\nAnswer: %s\nScore: %.1f/10\nFeedback: %s\n\n",
			i+1, pair.Question, pair.Answer, pair.Score, pair.Feedback)
	}
}

func writeScoreSummary(b *strings.Builder, summary map[string]float64) {
	for _, criterion := range evaluationCriteria {
		fmt.Fprintf(b, "%s: %.1f/10\n", criterion, summary[criterion])
	}
}

// ─── Oral exam / practice variant ───

type oralExamPrompts struct{}

func (oralExamPrompts) BatchQuestions(chunks []string, difficulty, topic string, numQuestions int) string {
	var b strings.Builder

	b.WriteString("You are a lecturer preparing in-depth oral examination questions. ")
	fmt.Fprintf(&b, "Create %d high-quality open questions grounded ONLY on the provided context.\n\n", numQuestions)

	if len(chunks) > 0 {
		b.WriteString("Context:\n")
		writeChunks(&b, chunks)
	} else if topic != "" {
		fmt.Fprintf(&b, "No course material is attached. Draw on general knowledge of the subject: %s\n\n", topic)
	}
	if topic != "" {
		fmt.Fprintf(&b, "Course: %s\n", topic)
	}

	fmt.Fprintf(&b, "Cognitive level (Bloom): %s", difficulty)
	if included := models.IncludedBloomLevels(difficulty); len(included) > 1 {
		fmt.Fprintf(&b, " (may also draw on %s)", strings.Join(included[:len(included)-1], ", "))
	}
	b.WriteString("\nQuestion style: free-text / oral examination\n\n")

	fmt.Fprintf(&b, `Requirements:
1. Generate exactly %d questions
2. Use only knowledge present in the context; never reference "the document" or "the provided material" in the question text
3. Each question must test the stated Bloom level
4. Cover distinct aspects of the material, no repeated ideas
5. Do NOT include reference answers (they are generated separately)
6. Phrase questions naturally, as a lecturer speaking directly to a student
7. Prefer understanding, application and analysis over pure recall

`, numQuestions)

	b.WriteString(`Output format (JSON):
{
  "questions": [
    {
      "question": "Question text here",
      "keywords": "keyword1, keyword2, keyword3",
      "question_type": "REMEMBER|UNDERSTAND|APPLY|ANALYZE|EVALUATE|CREATE"
    }
  ]
}

Return ONLY plain JSON, no markdown code block, no LaTeX.

Generate the questions now:`)

	return b.String()
}

func (oralExamPrompts) ReferenceAnswers(questions []QuestionSeed, chunks []string, topic string) string {
	var b strings.Builder

	b.WriteString("You are a lecturer writing the model answers used as the grading baseline for an oral exam. Create one complete reference answer per question, grounded on the context.\n\n")

	b.WriteString("Questions:\n")
	writeSeeds(&b, questions)

	if len(chunks) > 0 {
		b.WriteString("Context:\n")
		writeChunks(&b, chunks)
	}
	if topic != "" {
		fmt.Fprintf(&b, "Course: %s\n\n", topic)
	}

	b.WriteString(`Requirements:
1. Produce reference answers for ALL questions
2. Stay within the context; do not speculate beyond it
3. Move from the main idea to the important details, 100-200 words per answer
4. Make the reasoning and key concepts explicit
5. Match depth to the question's Bloom level
6. Work the supplied keywords in naturally

Output format (JSON):
{
  "answers": [
    {
      "question_index": 0,
      "reference_answer": "Detailed model answer here..."
    }
  ]
}

Return ONLY plain JSON. The answers array must have one entry per question, keyed by question_index.

Generate the reference answers now:`)

	return b.String()
}

func (oralExamPrompts) EvaluateAnswer(question, studentAnswer, referenceAnswer, difficulty string) string {
	var b strings.Builder

	b.WriteString("You are a lecturer grading an oral exam answer. Assess the student's response against the reference answer using the academic criteria below.\n\n")

	fmt.Fprintf(&b, "Question: %s\n\nStudent answer: %s\n\nReference answer: %s\n\nDifficulty level: %s\n\n",
		question, studentAnswer, referenceAnswer, difficulty)

	b.WriteString(`Criteria (0-10 each):
1. Correctness: accuracy against the reference answer and standard knowledge
2. Coverage: completeness of the main points and key arguments
3. Reasoning: clarity and logic of the analysis and supporting evidence
4. Creativity: quality of application, connections and extensions
5. Communication: clarity, structure and correct use of terminology
6. Attitude: confidence and composure of the presentation

Requirements:
1. Score each criterion 0.0-10.0 (decimals allowed)
2. Write detailed feedback naming strengths and gaps
3. Give concrete suggestions for improvement
4. Stay constructive and encouraging
5. Calibrate to the stated difficulty level
6. overall_score should be a weighted average of the criteria

Output format (JSON):
{
  "scores": {
    "correctness": 8.0,
    "coverage": 7.5,
    "reasoning": 7.0,
    "creativity": 7.5,
    "communication": 8.0,
    "attitude": 8.5
  },
  "overall_score": 7.8,
  "feedback": "Detailed feedback here...",
  "strengths": ["strength 1", "strength 2"],
  "weaknesses": ["weakness 1", "weakness 2"]
}

Return ONLY plain JSON. All scores must be numbers between 0.0 and 10.0. Provide 2-4 strengths and weaknesses.

Grade the answer now:`)

	return b.String()
}

func (oralExamPrompts) OverallFeedback(pairs []QAPair, summary map[string]float64) string {
	var b strings.Builder

	b.WriteString("You are summarizing an oral examination. Give the student an overall assessment that makes their current level and next steps clear.\n\n")

	b.WriteString("Question-answer pairs:\n")
	writeQAPairs(&b, pairs)

	b.WriteString("Mean score per criterion:\n")
	writeScoreSummary(&b, summary)

	b.WriteString(`
Requirements:
1. Give an overall assessment of the exam performance
2. Summarize the student's strongest points
3. Name the main limitations and why they matter
4. Recommend concrete follow-up activities
5. Keep a positive, supportive tone
6. Judge the whole performance, not isolated answers
7. Be specific and actionable, 150-300 words

Output format (JSON):
{
  "overall_feedback": "Overall assessment...",
  "strengths": ["strength 1", "strength 2"],
  "weaknesses": ["weakness 1", "weakness 2"],
  "recommendations": ["recommendation 1", "recommendation 2"]
}

Return ONLY plain JSON. Provide 2-4 strengths and weaknesses; recommendations must be actionable.

Generate the overall assessment now:`)

	return b.String()
}

// ─── Interview variant ───

type interviewPrompts struct{}

func (interviewPrompts) BatchQuestions(chunks []string, difficulty, topic string, numQuestions int) string {
	var b strings.Builder

	b.WriteString("You are an expert interviewer crafting behavioral and situational interview questions. ")
	fmt.Fprintf(&b, "Generate %d high-quality questions based on the provided context.\n\n", numQuestions)

	if len(chunks) > 0 {
		b.WriteString("Context (candidate CV and job description extracts):\n")
		writeChunks(&b, chunks)
	}
	if topic != "" {
		fmt.Fprintf(&b, "Position: %s\n", topic)
	}
	fmt.Fprintf(&b, "Difficulty level: %s\nQuestion style: interview discussion (no multiple choice)\n\n", difficulty)

	fmt.Fprintf(&b, `Requirements:
1. Generate exactly %d questions
2. Ground questions ONLY on the provided context
3. Emphasize real-life scenarios, reasoning and reflection
4. Each question explores a distinct competency or angle
5. Do NOT include reference answers (they are generated separately)
6. Keep questions clear, specific and open-ended to spark conversation
7. Encourage the candidate to explain decisions, experiences and justifications

`, numQuestions)

	b.WriteString(`Output format (JSON):
{
  "questions": [
    {
      "question": "Question text here",
      "keywords": "keyword1, keyword2, keyword3",
      "question_type": "BEHAVIORAL|SITUATIONAL|TECHNICAL",
      "category": "competency area",
      "purpose": "what this question probes"
    }
  ]
}

Return ONLY plain JSON, no markdown code block.

Generate the questions now:`)

	return b.String()
}

func (interviewPrompts) ReferenceAnswers(questions []QuestionSeed, chunks []string, topic string) string {
	var b strings.Builder

	b.WriteString("You are an expert interviewer designing model responses for interview questions. Create comprehensive, conversational reference answers using the questions and context below.\n\n")

	b.WriteString("Questions:\n")
	writeSeeds(&b, questions)

	if len(chunks) > 0 {
		b.WriteString("Context (candidate CV and job description extracts):\n")
		writeChunks(&b, chunks)
	}
	if topic != "" {
		fmt.Fprintf(&b, "Position: %s\n\n", topic)
	}

	b.WriteString(`Requirements:
1. Produce reference answers for ALL questions
2. Ground answers on the provided context
3. Model strong interview storytelling (Situation-Task-Action-Result)
4. Highlight reasoning, decision-making and personal insight
5. Align tone and depth with the difficulty
6. Work the supplied keywords in naturally

Output format (JSON):
{
  "answers": [
    {
      "question_index": 0,
      "reference_answer": "Comprehensive reference answer here..."
    }
  ]
}

Return ONLY plain JSON. One entry per question, keyed by question_index.

Generate the reference answers now:`)

	return b.String()
}

func (interviewPrompts) EvaluateAnswer(question, studentAnswer, referenceAnswer, difficulty string) string {
	var b strings.Builder

	b.WriteString("You are an expert interviewer assessing a candidate's response. Evaluate the answer using the criteria below, tailored for interview performance.\n\n")

	fmt.Fprintf(&b, "Question: %s\n\nCandidate answer: %s\n\nReference answer: %s\n\nDifficulty level: %s\n\n",
		question, studentAnswer, referenceAnswer, difficulty)

	b.WriteString(`Criteria (0-10 each):
1. Correctness: does the answer address the prompt accurately and stay on topic?
2. Coverage: sufficient depth, examples and context from experience?
3. Reasoning: are decisions and thought processes explained clearly?
4. Creativity: original insights or nuanced perspectives?
5. Communication: structured, confident, easy to follow?
6. Attitude: professional, collaborative, growth-minded tone?

Requirements:
1. Score each criterion 0.0-10.0
2. Provide detailed feedback on interview strengths and growth areas
3. Mention notable examples or reasoning from the answer
4. Stay constructive and encouraging
5. Tailor feedback to the stated difficulty level

Output format (JSON):
{
  "scores": {
    "correctness": 8.0,
    "coverage": 7.5,
    "reasoning": 7.0,
    "creativity": 7.5,
    "communication": 8.0,
    "attitude": 8.5
  },
  "overall_score": 7.9,
  "feedback": "Detailed feedback here...",
  "strengths": ["strength 1", "strength 2"],
  "weaknesses": ["weakness 1", "weakness 2"]
}

Return ONLY plain JSON.

Evaluate the answer now:`)

	return b.String()
}

func (interviewPrompts) OverallFeedback(pairs []QAPair, summary map[string]float64) string {
	var b strings.Builder

	b.WriteString("You are summarizing a job interview performance. Provide holistic feedback that helps the candidate grow.\n\n")

	b.WriteString("Question-answer pairs:\n")
	writeQAPairs(&b, pairs)

	b.WriteString("Mean score per criterion:\n")
	writeScoreSummary(&b, summary)

	b.WriteString(`
Requirements:
1. Deliver an overall assessment of the interview performance
2. Highlight behavioral strengths and communication qualities
3. Identify key improvement areas with context
4. Offer practical recommendations for future interviews
5. Maintain a constructive, professional tone
6. Consider performance across all answers, not isolated moments

Output format (JSON):
{
  "overall_feedback": "Comprehensive overall feedback here...",
  "strengths": ["strength 1", "strength 2"],
  "weaknesses": ["weakness 1", "weakness 2"],
  "recommendations": ["recommendation 1", "recommendation 2"]
}

Return ONLY plain JSON.

Generate the overall feedback now:`)

	return b.String()
}
