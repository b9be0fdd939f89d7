// Package deepseek provides an adapter for the DeepSeek chat completions API.
// It asks the model for a listening intent matching a weather observation and
// returns it normalized into domain.Intent.
package deepseek

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
	"github.com/hongfeij/weather-spotify-alarm/internal/core/ports"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-reasoner"

	defaultTries   = 3
	defaultBackoff = 400 * time.Millisecond
	tryTimeout     = 8 * time.Second

	temperature = 0.8
	maxTokens   = 120
	defaultTime = "08:00"
)

const systemPrompt = `Return strict JSON with keys:
mood (a mood based on weather, time, temperature, and condition),
genres (1-3 from: pop, rock, indie, jazz, r-n-b, classical, folk, soul, ambient, dance, electronic, country, blues),
target_energy (0..1), target_valence (0..1), target_danceability (0..1), target_tempo (60..170).
Output ONLY valid JSON.`

// ErrEmptyContent is returned when the model answers without content.
var ErrEmptyContent = errors.New("deepseek: empty response")

// Config configures the client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Tries      int
	Backoff    time.Duration
	HTTPClient *http.Client
}

// Client compiles intents through the chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	tries      int
	backoff    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

var _ ports.IntentCompiler = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// statusError is a non-2xx answer. Only throttling and server errors are
// worth another try.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("deepseek: status %d %s", e.status, e.body)
}

func (e *statusError) retryable() bool {
	return e.status == http.StatusTooManyRequests || (e.status >= 500 && e.status <= 599)
}

// NewClient builds a client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	tries := cfg.Tries
	if tries <= 0 {
		tries = defaultTries
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		tries:      tries,
		backoff:    backoff,
		httpClient: httpClient,
		logger:     logger.Named("deepseek"),
	}
}

// CompileIntent asks the model for an intent. Transport failures, 429 and
// 5xx answers are retried with exponential backoff.
func (c *Client) CompileIntent(ctx context.Context, req domain.WeatherRequest) (domain.Intent, error) {
	payload, err := json.Marshal(chatRequest{
		Model:          c.model,
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
	})
	if err != nil {
		return domain.Intent{}, fmt.Errorf("deepseek: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.tries; attempt++ {
		content, err := c.complete(ctx, payload)
		if err == nil {
			return parseIntent(content)
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return domain.Intent{}, err
		}
		if ctx.Err() != nil {
			return domain.Intent{}, fmt.Errorf("deepseek: %w", ctx.Err())
		}
		c.logger.Warn("deepseek_retry", zap.Int("attempt", attempt+1), zap.Error(err))

		if attempt < c.tries-1 {
			timer := time.NewTimer(c.backoff * time.Duration(1<<attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return domain.Intent{}, fmt.Errorf("deepseek: %w", ctx.Err())
			case <-timer.C:
			}
		}
	}
	return domain.Intent{}, fmt.Errorf("deepseek: failed after %d tries: %w", c.tries, lastErr)
}

func (c *Client) complete(ctx context.Context, payload []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, tryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("deepseek: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("deepseek: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("deepseek: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyContent
	}
	return parsed.Choices[0].Message.Content, nil
}

// parseIntent reads the model's JSON answer. Anything that is not a JSON
// object is an error so the caller can fall back to rules.
func parseIntent(content string) (domain.Intent, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return domain.Intent{}, fmt.Errorf("deepseek: decode intent: %w", err)
	}
	return domain.Normalize(fields), nil
}

func userPrompt(req domain.WeatherRequest) string {
	temp := "NA"
	if req.Temperature != nil {
		temp = fmt.Sprintf("%g", *req.Temperature)
	}
	at := req.Time
	if at == "" {
		at = defaultTime
	}
	return fmt.Sprintf("condition=%s; temp=%sC; time=%s; weekday=%s.\n"+
		"The weather condition is described as: %s. The time of day is: %s.\n"+
		"Based on these inputs, generate a suitable mood. The mood can be upbeat, mellow, energetic, calm, sad, or any descriptive word fitting the condition.",
		req.Condition, temp, at, req.Weekday, req.Condition, at)
}
