package extract

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"job_title": "Engineer"}`,
			expected: `{"job_title": "Engineer"}`,
		},
		{
			name:     "object with surrounding prose",
			input:    "Here is the analysis:\n{\"key_skills\": [\"Go\"]}\nLet me know if you need more.",
			expected: `{"key_skills": ["Go"]}`,
		},
		{
			name:     "object inside markdown fence",
			input:    "```json\n{\"keywords\": []}\n```",
			expected: `{"keywords": []}`,
		},
		{
			name:     "nested braces",
			input:    `prefix {"a": {"b": "c"}} suffix`,
			expected: `{"a": {"b": "c"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			object, err := JSON(tt.input)
			if err != nil {
				t.Fatalf("JSON failed: %v", err)
			}

			if object != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, object)
			}
		})
	}
}

func TestJSONNoBraces(t *testing.T) {
	_, err := JSON("I could not produce an analysis for this posting.")
	if err == nil {
		t.Fatal("Expected error for text without braces, got nil")
	}

	if errors.Cause(err) != ErrExtraction {
		t.Errorf("Expected ErrExtraction cause, got %v", errors.Cause(err))
	}
}

func TestJSONMalformedSpan(t *testing.T) {
	// Braces exist but the span between them is not valid JSON.
	_, err := JSON(`The set {1, 2, 3} is not an object.`)
	if err == nil {
		t.Fatal("Expected error for malformed span, got nil")
	}

	if errors.Cause(err) != ErrExtraction {
		t.Errorf("Expected ErrExtraction cause, got %v", errors.Cause(err))
	}
}

func TestDocumentLabeledFence(t *testing.T) {
	latexDoc := "\\documentclass{article}\n\\begin{document}\nHello\n\\end{document}"
	input := "Here is your tailored resume:\n```latex\n" + latexDoc + "\n```\nGood luck!"

	doc := Document(input, "latex")
	if doc != latexDoc {
		t.Errorf("Expected interior of labeled fence, got %q", doc)
	}
}

func TestDocumentBareFence(t *testing.T) {
	content := "\\documentclass{article}"
	input := "```\n" + content + "\n```"

	doc := Document(input, "latex")
	if doc != content {
		t.Errorf("Expected interior of bare fence, got %q", doc)
	}
}

func TestDocumentPrefersLabeledFence(t *testing.T) {
	input := "```\nwrong block\n```\n```latex\nright block\n```"

	doc := Document(input, "latex")
	if doc != "right block" {
		t.Errorf("Expected labeled fence to win, got %q", doc)
	}
}

func TestDocumentNoFence(t *testing.T) {
	input := "\\documentclass{article}\n\\begin{document}\nplain\n\\end{document}"

	doc := Document(input, "latex")
	if doc != input {
		t.Errorf("Expected verbatim text, got %q", doc)
	}
}

func TestDocumentUnterminatedFence(t *testing.T) {
	// An opening fence with no closing fence falls through to verbatim.
	input := "```latex\n\\documentclass{article}"

	doc := Document(input, "latex")
	if !strings.Contains(doc, "```latex") {
		t.Errorf("Expected verbatim text including the open fence, got %q", doc)
	}
}
