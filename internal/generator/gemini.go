// Package generator implements the client for the external generation
// endpoint. It owns the resilience policy: bounded retries with
// status-driven backoff, request timeouts, and client-side pacing that keeps
// a minimum spacing between outbound calls regardless of retry state.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "gemini-2.0-flash"
	// DefaultBaseURL is the generation API root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultTimeout bounds a single generation call. Kept short so a stuck
	// call costs one chunk retry, not the whole document.
	DefaultTimeout = 25 * time.Second
	// DefaultMaxRetries is the attempt budget per Generate call.
	DefaultMaxRetries = 3
	// DefaultMaxOutputTokens bounds the generated output.
	DefaultMaxOutputTokens = 2048
	// DefaultTemperature keeps generation determinism-leaning.
	DefaultTemperature = 0.1

	// minRequestInterval is the client-side pacing between outbound calls.
	minRequestInterval = 500 * time.Millisecond
)

var (
	// ErrMissingAPIKey is a configuration error; it is never retried.
	ErrMissingAPIKey = errors.New("API key not configured")
	// ErrTimeout is returned when the final attempt timed out.
	ErrTimeout = errors.New("request timeout")
	// ErrNoResponse is returned for a well-formed reply with no candidates.
	ErrNoResponse = errors.New("no response generated")
	// ErrMaxRetries is returned when the attempt budget is exhausted
	// without a definitive success or classified error.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// Config holds the generation endpoint settings. Zero values select the
// defaults above; the API key has no default and must be provided.
type Config struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	Temperature     float64       `mapstructure:"temperature"`
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
}

// Client calls the generation endpoint. One Client is owned by one pipeline
// instance; the request counter and limiter are not meant to be shared
// across concurrent runs.
type Client struct {
	cfg      Config
	client   *http.Client
	limiter  *rate.Limiter
	log      *zap.Logger
	requests atomic.Int64

	// backoffUnit scales the retry waits; tests shrink it.
	backoffUnit time.Duration
}

// New creates a generation client. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) *Client {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:         cfg,
		client:      &http.Client{},
		limiter:     rate.NewLimiter(rate.Every(minRequestInterval), 1),
		log:         logger,
		backoffUnit: time.Second,
	}
}

// RequestCount reports how many calls completed successfully.
func (c *Client) RequestCount() int64 {
	return c.requests.Load()
}

type generateRequest struct {
	Contents         []reqContent     `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type reqContent struct {
	Parts []reqPart `json:"parts"`
}

type reqPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []reqPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Land records trip over-eager safety filters (legal disputes, inheritance
// after death); generation is plain translation, so all categories are
// relaxed.
var defaultSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

// Generate sends one prompt and returns the generated text. Rate-limit (429)
// responses back off exponentially, overload (503) waits a fixed interval,
// timeouts retry once per attempt; whatever error remains on the final
// attempt is returned as-is. A missing API key fails immediately.
func (c *Client) Generate(ctx context.Context, promptText string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(generateRequest{
		Contents: []reqContent{{Parts: []reqPart{{Text: promptText}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
		SafetySettings: defaultSafetySettings,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	lastAttempt := c.cfg.MaxRetries - 1
	for attempt := 0; attempt <= lastAttempt; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		text, retryWait, err := c.attempt(ctx, body, attempt)
		switch {
		case err == nil && retryWait == 0:
			c.requests.Add(1)
			return text, nil
		case retryWait > 0:
			if err != nil && attempt == lastAttempt {
				return "", err
			}
			c.log.Warn("generation attempt failed, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", retryWait),
				zap.Error(err))
			if sleepErr := sleepCtx(ctx, retryWait); sleepErr != nil {
				return "", sleepErr
			}
		default:
			return "", err
		}
	}

	return "", ErrMaxRetries
}

// attempt performs one HTTP round trip. A zero retryWait with a nil error is
// success; a zero retryWait with an error is terminal; a non-zero retryWait
// asks the caller to back off and try again (the error, if any, is what to
// report should this have been the final attempt).
func (c *Client) attempt(ctx context.Context, body []byte, attempt int) (text string, retryWait time.Duration, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", c.backoffUnit, ErrTimeout
		}
		return "", c.backoffUnit, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		// 2^attempt + 1 units.
		return "", time.Duration(1<<uint(attempt)+1) * c.backoffUnit, ErrMaxRetries
	case http.StatusServiceUnavailable:
		return "", 2 * c.backoffUnit, ErrMaxRetries
	case http.StatusOK:
	default:
		return "", c.backoffUnit, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", c.backoffUnit, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", 0, ErrNoResponse
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), 0, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
