package services

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"alfredoptarigan/doc-grader/internal/models"
)

const (
	PlaceholderScore    = "N/A"
	PlaceholderFeedback = "The AI response could not be parsed into detailed feedback. Please try again."

	minFeedbackChars    = 20
	minRawFeedbackChars = 50
)

var evaluationResultSchema = jsonschema.MustCompileString("evaluation-result.json", `{
	"type": "object",
	"required": ["score", "feedback"],
	"properties": {
		"score": {"type": ["string", "number"]},
		"feedback": {"type": "string", "minLength": 1}
	}
}`)

var (
	leadingFenceRe   = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	trailingFenceRe  = regexp.MustCompile("\\s*```$")
	scoreQuotedRe    = regexp.MustCompile(`(?i)"score"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	scoreBareRe      = regexp.MustCompile(`(?i)\bscore"?\s*[:=]\s*([^\s,}\]"]+(?:\s*/\s*[0-9.]+)?)`)
	feedbackQuotedRe = regexp.MustCompile(`(?i)"feedback"\s*:\s*"((?:[^"\\]|\\.)*)(?:"|$)`)
	feedbackBareRe   = regexp.MustCompile(`(?is)\bfeedback\s*[:=]\s*(.+)`)
)

var jsonEscapes = strings.NewReplacer(
	`\\`, `\`,
	`\"`, `"`,
	`\/`, `/`,
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
)

// NormalizeResponse repairs a model reply into a score/feedback pair. It never fails:
// direct JSON first, then regex extraction, then placeholders.
func NormalizeResponse(raw string) (models.EvaluationResult, models.ParseMethod) {
	cleaned := StripCodeFences(raw)

	if result, ok := parseJSONResult(cleaned); ok {
		return result, models.ParseMethodJSON
	}

	score := extractScore(cleaned)
	feedback := extractFeedback(cleaned)

	if score == "" {
		score = PlaceholderScore
	}

	if len([]rune(feedback)) >= minFeedbackChars {
		return models.EvaluationResult{Score: score, Feedback: feedback}, models.ParseMethodRegex
	}

	if len([]rune(cleaned)) >= minRawFeedbackChars && !strings.HasPrefix(cleaned, "{") {
		feedback = cleaned
	} else {
		feedback = PlaceholderFeedback
	}

	return models.EvaluationResult{Score: score, Feedback: feedback}, models.ParseMethodFallback
}

// StripCodeFences removes a markdown fence wrapping the whole reply. Fences
// inside the text are left alone.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = leadingFenceRe.ReplaceAllString(text, "")
	text = trailingFenceRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// extractJSONObject returns the outermost {...} span of text, or text itself.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

func parseJSONResult(text string) (models.EvaluationResult, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(extractJSONObject(text))))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return models.EvaluationResult{}, false
	}
	if err := evaluationResultSchema.Validate(v); err != nil {
		return models.EvaluationResult{}, false
	}

	obj := v.(map[string]any)
	feedback := strings.TrimSpace(obj["feedback"].(string))
	if feedback == "" {
		return models.EvaluationResult{}, false
	}

	return models.EvaluationResult{
		Score:    formatScore(obj["score"]),
		Feedback: feedback,
	}, true
}

func formatScore(v any) string {
	switch s := v.(type) {
	case string:
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	case json.Number:
		if f, err := strconv.ParseFloat(s.String(), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return s.String()
	}
	return PlaceholderScore
}

func extractScore(text string) string {
	if m := scoreQuotedRe.FindStringSubmatch(text); m != nil {
		if s := strings.TrimSpace(unescapeJSONString(m[1])); s != "" {
			return s
		}
	}
	if m := scoreBareRe.FindStringSubmatch(text); m != nil {
		score := strings.TrimSpace(m[1])
		switch strings.ToLower(score) {
		case "null", "true", "false":
			return ""
		}
		return score
	}
	return ""
}

func extractFeedback(text string) string {
	if m := feedbackQuotedRe.FindStringSubmatch(text); m != nil {
		body := m[1]
		if !strings.HasSuffix(m[0], `"`) {
			// unterminated string: drop the closing braces of the broken object
			body = strings.TrimRight(body, "} \n\r\t")
		}
		return strings.TrimSpace(unescapeJSONString(body))
	}
	if m := feedbackBareRe.FindStringSubmatch(text); m != nil {
		// JS-style objects: {feedback: 'text'}
		body := strings.TrimRight(strings.TrimSpace(m[1]), "} \n\r\t")
		return strings.TrimSpace(strings.Trim(body, `'"`))
	}
	return ""
}

func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err == nil {
		return out
	}
	return jsonEscapes.Replace(s)
}
