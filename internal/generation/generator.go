package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/deckgen-api/internal/domain"
)

// Request describes the deck a worker wants generated.
type Request struct {
	Topic      string
	SlideCount int
	Style      domain.Style
}

// Generator defines the interface for generating presentations.
// This interface serves as a boundary between the worker and external
// AI/LLM services.
type Generator interface {
	// Generate returns a deck for req, or an error wrapping one of the
	// package's sentinel errors.
	Generate(ctx context.Context, req Request) (*domain.Presentation, error)
}

// TextModel is a single prompt-in, text-out call to a language model.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// PromptGenerator implements Generator over any TextModel.
type PromptGenerator struct {
	model  TextModel
	logger *slog.Logger
}

var _ Generator = (*PromptGenerator)(nil)

// NewPromptGenerator creates a PromptGenerator.
func NewPromptGenerator(model TextModel, logger *slog.Logger) (*PromptGenerator, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptGenerator{
		model:  model,
		logger: logger.With(slog.String("component", "generator")),
	}, nil
}

// Generate builds the prompt for req, calls the model and parses its answer.
func (g *PromptGenerator) Generate(ctx context.Context, req Request) (*domain.Presentation, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "calling language model",
		slog.Int("prompt_length", len(prompt)),
		slog.Int("number_of_slides", ClampSlides(req.SlideCount)),
		slog.String("style", req.Style.String()))

	text, err := g.model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned, err := CleanJSONResponse(text)
	if err != nil {
		g.logger.WarnContext(ctx, "model returned unparseable JSON",
			slog.Int("response_length", len(text)))
		return nil, err
	}

	deck, err := domain.ParsePresentation([]byte(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	g.logger.InfoContext(ctx, "presentation generated",
		slog.Int("slides", len(deck.Slides)))
	return deck, nil
}
