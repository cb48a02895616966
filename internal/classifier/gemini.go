package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the Generative Language REST API base URL.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

const prompt = `You are a personal activity log assistant. Analyze the user's content (text and/or image) and answer with a single JSON object, without markdown code fences:
{
  "summary": "a concise description of what the user is doing, 50-100 characters",
  "category": "one of: work, study, leisure, exercise, social, life, other",
  "tags": ["tag1", "tag2", "tag3"],
  "duration_estimate": estimated minutes spent on the activity (integer)
}

Categories:
- work: programming, meetings, email, project tasks
- study: reading, classes, research, learning a skill
- leisure: videos, games, music, browsing social media
- exercise: gym, running, yoga, ball sports
- social: chatting, gatherings, social events
- life: shopping, cooking, cleaning, daily chores
- other: anything that does not clearly fit

Extract the 3-5 most relevant keywords as tags.`

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
	retryAfter string // internal: Retry-After header value for 429s
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Gemini classifies captures with Google's generateContent endpoint.
type Gemini struct {
	endpoint   string
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
	backoff    func(attempt int, lastErr *APIError) time.Duration
	logger     *slog.Logger
}

// Option configures Gemini behavior.
type Option func(*Gemini)

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(g *Gemini) {
		if endpoint != "" {
			g.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gemini) {
		g.httpClient.Timeout = d
	}
}

// WithMaxRetries sets how many times 429 and 5xx responses are retried.
func WithMaxRetries(n int) Option {
	return func(g *Gemini) {
		g.maxRetries = n
	}
}

// WithBackoff replaces the wait between retries.
func WithBackoff(fn func(attempt int, lastErr *APIError) time.Duration) Option {
	return func(g *Gemini) {
		g.backoff = fn
	}
}

// WithLogger sets the logger used for degraded analyses.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gemini) {
		g.logger = l
	}
}

// NewGemini creates a Gemini classifier for model authenticated by apiKey.
func NewGemini(apiKey, model string, opts ...Option) *Gemini {
	g := &Gemini{
		endpoint:   DefaultEndpoint,
		apiKey:     apiKey,
		model:      model,
		maxRetries: 3,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: backoffDelay,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the capture to the model. Transport, status and parse
// failures yield the fallback analysis, never an error.
func (g *Gemini) Analyze(ctx context.Context, in Input) (Analysis, error) {
	if in.Empty() {
		return Analysis{}, ErrEmptyInput
	}

	parts := []part{{Text: prompt}}
	if text := strings.TrimSpace(in.Text); text != "" {
		parts = append(parts, part{Text: "\n\nText content:\n" + text})
	}
	if in.ImagePath != "" {
		img, err := loadImage(in.ImagePath)
		if err != nil {
			g.logger.Warn("image not sent to classifier", "path", in.ImagePath, "error", err)
		} else {
			parts = append(parts, part{InlineData: img})
		}
	}

	req := generateRequest{
		Contents:         []content{{Parts: parts}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}

	var resp generateResponse
	if err := g.postJSON(ctx, "/models/"+url.PathEscape(g.model)+":generateContent", req, &resp); err != nil {
		return g.fallback(in, fmt.Errorf("generate content: %w", err)), nil
	}

	answer := responseText(resp)
	if answer == "" {
		return g.fallback(in, errors.New("model returned no text")), nil
	}

	a, err := parseAnalysis(answer)
	if err != nil {
		return g.fallback(in, err), nil
	}
	return a, nil
}

func (g *Gemini) fallback(in Input, cause error) Analysis {
	g.logger.Warn("classifier fallback", "model", g.model, "error", cause)
	return Fallback(in, cause)
}

func responseText(resp generateResponse) string {
	var b strings.Builder
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// loadImage reads an image and encodes it for inline transfer. The MIME type
// is sniffed from content.
func loadImage(path string) (*inlineData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("not an image (%s)", mime)
	}
	return &inlineData{MimeType: mime, Data: base64.StdEncoding.EncodeToString(data)}, nil
}

// postJSON sends body as JSON and unmarshals the JSON response into dest.
// Returns *APIError for non-2xx responses. Retries on 429 (with Retry-After)
// and 5xx with exponential backoff.
func (g *Gemini) postJSON(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	var lastErr *APIError
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(g.backoff(attempt, lastErr))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", g.apiKey)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return err
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return json.Unmarshal(respBody, dest)
		}

		bodyStr := string(respBody)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Body: bodyStr}

		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.retryAfter = resp.Header.Get("Retry-After")
			lastErr = apiErr
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = apiErr
			continue
		}

		return apiErr
	}

	if lastErr == nil {
		return errors.New("no request attempted")
	}
	return lastErr
}

// backoffDelay returns the wait duration before a retry attempt.
func backoffDelay(attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == http.StatusTooManyRequests && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	// Exponential backoff: 1s, 2s, 4s
	return time.Duration(1<<(attempt-1)) * time.Second
}
