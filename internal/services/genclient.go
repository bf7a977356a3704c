package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse means the backend answered with blank text.
var ErrEmptyResponse = errors.New("empty response from model")

// ParseError means the response was not valid JSON even after repair.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse model output as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// textGenerator is the raw prompt-in, text-out boundary. Tests substitute a
// fake; production uses Gemini.
type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GenClient wraps the generative backend with the JSON contract every
// caller in this service relies on: fenced/escaped output is repaired,
// responses are parsed into a generic document, transient failures are
// retried with exponential backoff, and concurrent calls are capped by a
// token bucket so the rate-limited backend is never flooded.
type GenClient struct {
	backend      textGenerator
	maxRetries   int
	initialDelay time.Duration
	rateChan     chan struct{} // Token bucket
	closer       func()
}

func NewGenClient(apiKey, modelName string, concurrentReqs, maxRetries int, initialDelay time.Duration) (*GenClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	c := newGenClient(&geminiBackend{model: model}, concurrentReqs, maxRetries, initialDelay)
	c.closer = func() { client.Close() }
	return c, nil
}

func newGenClient(backend textGenerator, concurrentReqs, maxRetries int, initialDelay time.Duration) *GenClient {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GenClient{
		backend:      backend,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		rateChan:     rateChan,
	}
}

func (c *GenClient) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *GenClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for generation rate slot")
	}
}

func (c *GenClient) releaseRate() {
	c.rateChan <- struct{}{}
}

// CallJSON sends a prompt and returns the parsed JSON document. Each
// attempt's failure is retried after an exponentially growing delay; the
// final attempt's error propagates unmodified.
func (c *GenClient) CallJSON(ctx context.Context, prompt string) (map[string]interface{}, error) {
	if err := c.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer c.releaseRate()

	delay := c.initialDelay
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		result, err := c.callOnce(ctx, prompt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt < c.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, lastErr
}

func (c *GenClient) callOnce(ctx context.Context, prompt string) (map[string]interface{}, error) {
	raw, err := c.backend.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseModelJSON(raw)
}

// parseModelJSON strips markdown fencing, repairs lone backslashes, and
// parses the result as a JSON object.
func parseModelJSON(raw string) (map[string]interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	cleaned := stripCodeFences(raw)
	cleaned = repairEscapes(cleaned)

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return result, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// repairEscapes doubles any backslash not followed by a valid JSON escape
// character, so model output like "C:\Users" still parses.
func repairEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		if i+1 < len(s) && isJSONEscapeChar(s[i+1]) {
			b.WriteByte(ch)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

func isJSONEscapeChar(ch byte) bool {
	switch ch {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

// geminiBackend adapts the Gemini SDK to the textGenerator boundary.
type geminiBackend struct {
	model *genai.GenerativeModel
}

func (g *geminiBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
