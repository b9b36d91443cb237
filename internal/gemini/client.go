// Package gemini talks to the Google Gemini generateContent API and turns its
// output into normalized lease summaries, clause explanations and answers.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gonkalabs/termsplain/internal/keypool"
	"github.com/gonkalabs/termsplain/internal/metrics"
)

// DefaultBaseURL is the public Gemini REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("missing GEMINI_API_KEY")

const maxAttempts = 3

// Options configures a Client.
type Options struct {
	BaseURL string
	Keys    []string
	Timeout time.Duration

	// RequestsPerMinute bounds outbound calls across all keys. Zero means no limit.
	RequestsPerMinute int

	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
}

// APIError is a non-success reply from the Gemini API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini: status %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini: status %d %s: %s", e.StatusCode, e.Status, e.Message)
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client calls generateContent, rotating through the configured API keys
// and retrying transient failures.
type Client struct {
	baseURL string
	pool    *keypool.Pool
	limiter *rate.Limiter
	backoff time.Duration

	http *http.Client
}

// New creates a Client. It fails fast with ErrMissingAPIKey when opts
// carries no usable key.
func New(opts Options) (*Client, error) {
	pool, err := keypool.New(opts.Keys)
	if err != nil {
		return nil, ErrMissingAPIKey
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
		burst = opts.RequestsPerMinute
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		pool:    pool,
		limiter: rate.NewLimiter(limit, burst),
		backoff: opts.Backoff,
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
	ResponseSchema   Schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt to model with a JSON response schema and returns the
// text of the first candidate. Transport errors, 429 and 5xx replies are
// retried up to three attempts, each with the next key from the pool.
func (c *Client) Generate(ctx context.Context, model, prompt string, schema Schema) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal: %w", err)
	}

	var lastErr error
	delay := c.backoff
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			metrics.Get().UpstreamRetries.Inc()
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("gemini: rate limit: %w", err)
		}

		text, err := c.do(ctx, model, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return "", err
		}
		if errors.Is(err, ErrEmptyResponse) || ctx.Err() != nil {
			return "", err
		}
		slog.Warn("gemini: request failed, retrying", "attempt", attempt+1, "err", err)
	}
	return "", lastErr
}

// do executes one generateContent call with the next key from the pool.
func (c *Client) do(ctx context.Context, model string, payload []byte) (string, error) {
	url := c.baseURL + "/models/" + model + ":generateContent"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.pool.Next())

	slog.Debug("gemini request", "model", model, "bytes", len(payload))
	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.Get().UpstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
			apiErr.Status = er.Error.Status
			apiErr.Message = er.Error.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return "", apiErr
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	cand := gr.Candidates[0]
	if cand.FinishReason == "MAX_TOKENS" {
		slog.Warn("gemini: response truncated by token limit", "model", model)
	}
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
