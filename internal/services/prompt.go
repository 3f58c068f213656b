package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/doc-grader/internal/models"
)

// DefaultRubric is used when the client does not upload a rubric file.
const DefaultRubric = `General quality rubric:
1. Content & Accuracy - ideas are correct, relevant and well supported.
2. Structure & Organization - logical flow, clear sections, coherent paragraphs.
3. Clarity & Style - precise language, appropriate tone, readable sentences.
4. Completeness - the document fully addresses its stated purpose.
5. Mechanics - grammar, spelling, punctuation and formatting.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildEvaluationPrompt embeds rubric, document and optional instructions in the grading template.
func (pb *PromptBuilder) BuildEvaluationPrompt(req models.EvaluationRequest) string {
	var instructions string
	if custom := strings.TrimSpace(req.CustomInstructions); custom != "" {
		instructions = fmt.Sprintf(`
ADDITIONAL INSTRUCTIONS FROM THE GRADER:
%s
`, custom)
	}

	return fmt.Sprintf(`You are an experienced, fair and constructive grader. Evaluate the document below strictly against the grading rubric.

GRADING RUBRIC:
%s

DOCUMENT TO EVALUATE:
%s
%s
Your task:
1. Assess the document against every criterion in the rubric.
2. Decide an overall score using the scale the rubric defines (use a score out of 100 if it defines none).
3. Write detailed feedback: strengths, weaknesses and concrete suggestions for improvement, referencing the rubric criteria.

Return ONLY a JSON object in exactly this format, with no markdown and no text outside it:
{
  "score": "<overall score as a string, e.g. \"85/100\" or \"B+\">",
  "feedback": "<detailed feedback>"
}`,
		req.RubricText, req.DocumentText, instructions)
}
