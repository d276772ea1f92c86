package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/phrazzld/deckgen-api/internal/config"
	"github.com/phrazzld/deckgen-api/internal/generation"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Model implements generation.TextModel using the Gemini API.
type Model struct {
	logger     *slog.Logger
	models     contentGenerator
	model      string
	maxRetries int
	baseDelay  time.Duration
	rng        *rand.Rand
}

var _ generation.TextModel = (*Model)(nil)

// Option configures a Model.
type Option func(*Model)

// WithRetryDelay overrides the base backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(m *Model) { m.baseDelay = d }
}

// NewModel creates a Gemini-backed model from the LLM configuration.
func NewModel(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Model, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newModel(client.Models, logger, cfg, opts...)
}

func newModel(models contentGenerator, logger *slog.Logger, cfg config.LLMConfig, opts ...Option) (*Model, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if baseDelay < time.Second {
		baseDelay = 2 * time.Second
	}

	m := &Model{
		logger:     logger.With(slog.String("component", "gemini"), slog.String("model", cfg.ModelName)),
		models:     models,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GenerateText sends prompt to Gemini and returns the concatenated text of
// the first candidate. API errors are retried with exponential backoff;
// blocked or empty responses are returned immediately.
func (m *Model) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", generation.ErrEmptyTopic
	}

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		m.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", m.maxRetries+1)

		resp, err := m.models.GenerateContent(ctx, m.model, genai.Text(prompt), cfg)
		if err == nil {
			text, perr := responseText(resp)
			if perr != nil {
				m.logger.WarnContext(ctx, "permanent error occurred, not retrying", "error", perr)
				return "", perr
			}
			m.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return text, nil
		}

		m.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctx.Err())
		}
		if attempt >= m.maxRetries {
			m.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", m.maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, m.maxRetries, err)
		}

		delay := m.backoff(attempt)
		m.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			m.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// backoff returns baseDelay * 2^attempt scaled by a jitter in [0.5, 1.0).
func (m *Model) backoff(attempt int) time.Duration {
	jitter := 0.5 + m.rng.Float64()*0.5
	return time.Duration(float64(m.baseDelay) * math.Pow(2, float64(attempt)) * jitter)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return b.String(), nil
}
