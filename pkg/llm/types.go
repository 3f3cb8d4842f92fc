package llm

import "encoding/json"

// Analysis represents the structured suggestion set produced from a resume
// and a job description. No schema is enforced beyond "valid JSON object";
// absent keys are treated as empty.
type Analysis struct {
	JobTitle              string            `json:"job_title"`
	KeySkills             []string          `json:"key_skills"`
	Keywords              []string          `json:"keywords"`
	MissingSkills         []string          `json:"missing_skills"`
	TitleSuggestions      map[string]string `json:"title_suggestions"`
	ExperienceSuggestions map[string]string `json:"experience_suggestions"`
	ContentAdditions      map[string]string `json:"content_additions"`
	PowerWords            []string          `json:"power_words"`
	FormatSuggestions     map[string]string `json:"format_suggestions"`
}

// ApprovedChanges is the human-approved subset of an Analysis. Title
// suggestions are deliberately absent: the review flow never carries them
// through, regardless of approval.
type ApprovedChanges struct {
	KeySkills             []string          `json:"key_skills,omitempty"`
	Keywords              []string          `json:"keywords,omitempty"`
	MissingSkills         []string          `json:"missing_skills,omitempty"`
	ExperienceSuggestions map[string]string `json:"experience_suggestions,omitempty"`
	ContentAdditions      map[string]string `json:"content_additions,omitempty"`
	PowerWords            []string          `json:"power_words,omitempty"`
	FormatSuggestions     map[string]string `json:"format_suggestions,omitempty"`
}

// Empty reports whether no suggestion category carries any entries.
func (a ApprovedChanges) Empty() (empty bool) {
	empty = len(a.KeySkills) == 0 &&
		len(a.Keywords) == 0 &&
		len(a.MissingSkills) == 0 &&
		len(a.ExperienceSuggestions) == 0 &&
		len(a.ContentAdditions) == 0 &&
		len(a.PowerWords) == 0 &&
		len(a.FormatSuggestions) == 0
	return empty
}

// ClaudeRequest represents the Claude API request format.
type ClaudeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
}

// ClaudeResponse represents the Claude API response format.
type ClaudeResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []Content `json:"content"`
	Model   string    `json:"model"`
	Usage   Usage     `json:"usage"`
}

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Content represents content in the response.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Usage represents token usage information for a single API call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the combined token count.
func (u Usage) Total() (total int) {
	total = u.InputTokens + u.OutputTokens
	return total
}

// parseAnalysis decodes an extracted JSON object into an Analysis. Decoding
// is tolerant: individually malformed or mistyped fields are dropped rather
// than failing the whole analysis.
func parseAnalysis(object string) (analysis Analysis) {
	var fields map[string]json.RawMessage
	err := json.Unmarshal([]byte(object), &fields)
	if err != nil {
		return analysis
	}

	decode := func(key string, target interface{}) {
		raw, ok := fields[key]
		if !ok {
			return
		}
		_ = json.Unmarshal(raw, target)
	}

	decode("job_title", &analysis.JobTitle)
	decode("key_skills", &analysis.KeySkills)
	decode("keywords", &analysis.Keywords)
	decode("missing_skills", &analysis.MissingSkills)
	decode("title_suggestions", &analysis.TitleSuggestions)
	decode("experience_suggestions", &analysis.ExperienceSuggestions)
	decode("content_additions", &analysis.ContentAdditions)
	decode("power_words", &analysis.PowerWords)
	decode("format_suggestions", &analysis.FormatSuggestions)

	return analysis
}
