package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/textailor/textailor/pkg/extract"
)

const (
	// ClaudeAPIEndpoint is the Anthropic API endpoint.
	ClaudeAPIEndpoint = "https://api.anthropic.com/v1/messages"
	// ClaudeAPIVersion is the API version.
	ClaudeAPIVersion = "2023-06-01"
	// DefaultMaxTokens bounds the output length of a single call.
	DefaultMaxTokens = 4000
	// DefaultTemperature keeps sampling deterministic-leaning.
	DefaultTemperature = 0.2
)

// Client represents a Claude API client. It performs exactly one call per
// pipeline stage and never retries; a failed call aborts the invocation.
type Client struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	endpoint    string
}

// NewClient creates a new Claude API client.
func NewClient(apiKey, model string) (client *Client) {
	client = &Client{
		apiKey:      apiKey,
		model:       model,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		endpoint:    ClaudeAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	return client
}

// Analyze sends resume and job description for analysis and parses the
// structured suggestion set out of the reply. Extraction is strict: a reply
// with no parseable JSON object fails the call.
func (c *Client) Analyze(ctx context.Context, resume, jobDescription string) (analysis Analysis, usage Usage, err error) {
	prompt := buildAnalysisPrompt(resume, jobDescription)

	var responseText string
	responseText, usage, err = c.sendRequest(ctx, analysisSystem, prompt)
	if err != nil {
		err = errors.Wrap(err, "analysis request failed")
		return analysis, usage, err
	}

	var object string
	object, err = extract.JSON(responseText)
	if err != nil {
		err = errors.Wrap(err, "failed to extract analysis from response")
		return analysis, usage, err
	}

	analysis = parseAnalysis(object)

	return analysis, usage, err
}

// Customize sends the resume and full analysis for customization and
// returns the replacement LaTeX document. Document extraction is lenient
// and degrades to the whole response text.
func (c *Client) Customize(ctx context.Context, resume string, analysis Analysis) (document string, usage Usage, err error) {
	prompt := buildCustomizationPrompt(resume, analysis)

	document, usage, err = c.customize(ctx, prompt)
	return document, usage, err
}

// CustomizeApproved sends the resume and a human-approved subset of
// suggestions for restricted customization.
func (c *Client) CustomizeApproved(ctx context.Context, resume string, approved ApprovedChanges) (document string, usage Usage, err error) {
	prompt := buildApprovedPrompt(resume, approved)

	document, usage, err = c.customize(ctx, prompt)
	return document, usage, err
}

func (c *Client) customize(ctx context.Context, prompt string) (document string, usage Usage, err error) {
	var responseText string
	responseText, usage, err = c.sendRequest(ctx, customizeSystem, prompt)
	if err != nil {
		err = errors.Wrap(err, "customization request failed")
		return document, usage, err
	}

	document = extract.Document(responseText, "latex")

	return document, usage, err
}

// sendRequest sends a request to the Claude API and returns the response
// text verbatim along with token usage counters.
func (c *Client) sendRequest(ctx context.Context, system, prompt string) (responseText string, usage Usage, err error) {
	// Build request
	claudeReq := ClaudeRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      system,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	var reqBody []byte
	reqBody, err = json.Marshal(claudeReq)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return responseText, usage, err
	}

	// Create HTTP request
	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return responseText, usage, err
	}

	// Set headers
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", ClaudeAPIVersion)

	// Send request
	var resp *http.Response
	resp, err = c.httpClient.Do(httpReq)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return responseText, usage, err
	}
	defer resp.Body.Close()

	// Read response body
	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return responseText, usage, err
	}

	// Check status code
	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		return responseText, usage, err
	}

	// Parse Claude response
	var claudeResp ClaudeResponse
	err = json.Unmarshal(respBody, &claudeResp)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse Claude response: %s", string(respBody))
		return responseText, usage, err
	}

	// Extract text content
	if len(claudeResp.Content) == 0 {
		err = errors.New("no content in Claude response")
		return responseText, usage, err
	}

	responseText = claudeResp.Content[0].Text
	usage = claudeResp.Usage

	return responseText, usage, err
}
