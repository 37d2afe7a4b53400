package aiquiz

import (
	"fmt"
	"strings"
)

const DefaultLanguage = "Korean"

const systemPrompt = `You are an education expert who writes exam problems for school students.
Problems must match the student's grade level and follow the school curriculum.
Explanations should walk the student through the reasoning step by step.
Respond with a single JSON object only and never include any other text.`

type Prompt struct {
	System string
	User   string
}

// ResponseSchema describes the JSON document the model must return.
func ResponseSchema(req GenerationRequest) string {
	problem := `      "question": "<problem statement>",
      "choices": ["<choice 1>", "<choice 2>", "<choice 3>", "<choice 4>"],
      "answer": "<one of the choices, copied exactly>"`
	if req.IncludeExplanation {
		problem += `,
      "explanation": "<step-by-step explanation>"`
	}

	return fmt.Sprintf(`{
  "subject": %q,
  "grade": %d,
  "question_type": %q,
  "difficulty": %q,
  "question_count": %d,
  "problems": [
    {
%s
    }
  ]
}`, req.Subject, req.Grade, req.QuestionType, req.Difficulty, req.QuestionCount, problem)
}

// BuildPrompt renders the fixed template for req. The output is a pure
// function of its arguments.
func BuildPrompt(req GenerationRequest, language string) Prompt {
	if language == "" {
		language = DefaultLanguage
	}

	explanation := "Do not include an \"explanation\" field."
	if req.IncludeExplanation {
		explanation = "Every problem must include a non-empty \"explanation\"."
	}

	var b strings.Builder
	b.WriteString("Create problems that satisfy the following conditions.\n\n")
	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Grade: %d\n", req.Grade)
	fmt.Fprintf(&b, "Question type: %s\n", req.QuestionType)
	fmt.Fprintf(&b, "Number of problems: %d\n", req.QuestionCount)
	fmt.Fprintf(&b, "Difficulty: %s (%s)\n", req.Difficulty, req.Difficulty.Label())
	fmt.Fprintf(&b, "Include explanations: %t\n\n", req.IncludeExplanation)

	b.WriteString("Respond with JSON only, using exactly this structure:\n\n")
	b.WriteString(ResponseSchema(req))
	b.WriteString("\n\nRules:\n")
	fmt.Fprintf(&b, "- Produce exactly %d problems.\n", req.QuestionCount)
	b.WriteString("- Every problem has exactly 4 distinct choices.\n")
	b.WriteString("- \"answer\" must be copied character for character from \"choices\".\n")
	fmt.Fprintf(&b, "- %s\n", explanation)
	fmt.Fprintf(&b, "- Calibrate vocabulary and concepts to grade %d of the curriculum at %s difficulty.\n", req.Grade, req.Difficulty)
	fmt.Fprintf(&b, "- Write all problem text in %s.\n", language)
	b.WriteString("- Do not wrap the JSON in code fences and do not add commentary.\n")

	return Prompt{System: systemPrompt, User: b.String()}
}
