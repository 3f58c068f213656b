package services

import (
	"testing"

	"alfredoptarigan/doc-grader/internal/models"
)

func TestNormalizeResponse(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantScore    string
		wantFeedback string
		wantMethod   models.ParseMethod
	}{
		{
			name:         "plain json",
			raw:          `{"score": "85/100", "feedback": "Clear thesis and strong evidence."}`,
			wantScore:    "85/100",
			wantFeedback: "Clear thesis and strong evidence.",
			wantMethod:   models.ParseMethodJSON,
		},
		{
			name:         "fenced json with numeric score",
			raw:          "```json\n{\"score\": 92, \"feedback\": \"Excellent work overall.\"}\n```",
			wantScore:    "92",
			wantFeedback: "Excellent work overall.",
			wantMethod:   models.ParseMethodJSON,
		},
		{
			name:         "decimal score loses trailing zeros",
			raw:          `{"score": 7.50, "feedback": "Solid structure."}`,
			wantScore:    "7.5",
			wantFeedback: "Solid structure.",
			wantMethod:   models.ParseMethodJSON,
		},
		{
			name:         "prose around json",
			raw:          "Here is the evaluation:\n{\"score\": \"B\", \"feedback\": \"Good.\"}\nLet me know if you need more.",
			wantScore:    "B",
			wantFeedback: "Good.",
			wantMethod:   models.ParseMethodJSON,
		},
		{
			name:         "trailing comma falls back to regex",
			raw:          `{"score": "B+", "feedback": "Good structure but the conclusion is weak.",}`,
			wantScore:    "B+",
			wantFeedback: "Good structure but the conclusion is weak.",
			wantMethod:   models.ParseMethodRegex,
		},
		{
			name:         "unterminated feedback string",
			raw:          `{"score": "70", "feedback": "The argument is coherent but lacks citations`,
			wantScore:    "70",
			wantFeedback: "The argument is coherent but lacks citations",
			wantMethod:   models.ParseMethodRegex,
		},
		{
			name:         "escaped characters are decoded",
			raw:          `{"score": "90", "feedback": "Line one.\nLine two with \"quotes\"."`,
			wantScore:    "90",
			wantFeedback: "Line one.\nLine two with \"quotes\".",
			wantMethod:   models.ParseMethodRegex,
		},
		{
			name:         "bare key value lines",
			raw:          "Score: 8/10\nFeedback: The essay is well organized and persuasive.",
			wantScore:    "8/10",
			wantFeedback: "The essay is well organized and persuasive.",
			wantMethod:   models.ParseMethodRegex,
		},
		{
			name:         "null score",
			raw:          `{"score": null, "feedback": "Well structured essay with a clear thesis."}`,
			wantScore:    PlaceholderScore,
			wantFeedback: "Well structured essay with a clear thesis.",
			wantMethod:   models.ParseMethodRegex,
		},
		{
			name:         "boolean score",
			raw:          "Score: true\nFeedback: The essay answers the prompt but lacks depth.",
			wantScore:    PlaceholderScore,
			wantFeedback: "The essay answers the prompt but lacks depth.",
			wantMethod:   models.ParseMethodRegex,
		},
		{
			name:         "fence marker inside feedback is kept",
			raw:          "{\"score\": \"80\", \"feedback\": \"Use a fenced block like ```python to show code.\"}",
			wantScore:    "80",
			wantFeedback: "Use a fenced block like ```python to show code.",
			wantMethod:   models.ParseMethodJSON,
		},
		{
			name:         "js style object with single quotes",
			raw:          "{score: 7, feedback: 'Good essay overall, well argued and cited.'}",
			wantScore:    "7",
			wantFeedback: "Good essay overall, well argued and cited.",
			wantMethod:   models.ParseMethodRegex,
		},
		{
			name:         "long prose becomes feedback",
			raw:          "The document is well written, but it could use more supporting evidence in section two.",
			wantScore:    PlaceholderScore,
			wantFeedback: "The document is well written, but it could use more supporting evidence in section two.",
			wantMethod:   models.ParseMethodFallback,
		},
		{
			name:         "short garbage",
			raw:          "ok",
			wantScore:    PlaceholderScore,
			wantFeedback: PlaceholderFeedback,
			wantMethod:   models.ParseMethodFallback,
		},
		{
			name:         "empty feedback keeps score",
			raw:          `{"score": "50", "feedback": ""}`,
			wantScore:    "50",
			wantFeedback: PlaceholderFeedback,
			wantMethod:   models.ParseMethodFallback,
		},
		{
			name:         "missing feedback with bare numeric score",
			raw:          `{"score": 40}`,
			wantScore:    "40",
			wantFeedback: PlaceholderFeedback,
			wantMethod:   models.ParseMethodFallback,
		},
		{
			name:         "empty reply",
			raw:          "",
			wantScore:    PlaceholderScore,
			wantFeedback: PlaceholderFeedback,
			wantMethod:   models.ParseMethodFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, method := NormalizeResponse(tt.raw)

			if method != tt.wantMethod {
				t.Errorf("method = %q, want %q", method, tt.wantMethod)
			}
			if result.Score != tt.wantScore {
				t.Errorf("score = %q, want %q", result.Score, tt.wantScore)
			}
			if result.Feedback != tt.wantFeedback {
				t.Errorf("feedback = %q, want %q", result.Feedback, tt.wantFeedback)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```JSON\n{\"a\":1}\n```  ", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
		{"{\"a\":1}", `{"a":1}`},
		{"{\"note\": \"wrap code in ```go blocks\"}", "{\"note\": \"wrap code in ```go blocks\"}"},
	}

	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
