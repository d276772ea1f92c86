package generation

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/deckgen-api/internal/domain"
)

// The model is always asked for at least a title, a content and a
// conclusion slide, so decks are generated within these bounds regardless
// of what the client asked for.
const (
	MinGeneratedSlides = 5
	MaxGeneratedSlides = 20
)

//go:embed templates/presentation.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("presentation").Parse(promptSource))

var styleInstructions = map[domain.Style]string{
	domain.StyleModern: "Create a modern and minimal presentation with clean aesthetics. " +
		"Use concise text, ample white space, and a straightforward approach. " +
		"Focus on visual simplicity and essential information only.",
	domain.StyleCorporate: "Create a corporate and professional presentation suitable for business settings. " +
		"Use formal language, data-driven content, and a structured approach. " +
		"Include professional terminology and focus on clear business value and actionable insights.",
	domain.StyleCreative: "Create a creative and bold presentation with dynamic content. " +
		"Use engaging language, unexpected analogies, and a conversational tone. " +
		"Incorporate thought-provoking ideas and visually interesting concepts that challenge conventional thinking.",
	domain.StyleAcademic: "Create an academic and formal presentation suitable for educational settings. " +
		"Use precise language, cite relevant concepts, and maintain a scholarly tone. " +
		"Include thorough explanations and logical progressions of ideas with appropriate depth of analysis.",
}

const generalInstruction = "Create a balanced presentation with clear, informative content suitable for a general audience."

type promptData struct {
	Topic            string
	SlideCount       int
	StyleInstruction string
}

// ClampSlides bounds n to [MinGeneratedSlides, MaxGeneratedSlides].
func ClampSlides(n int) int {
	switch {
	case n < MinGeneratedSlides:
		return MinGeneratedSlides
	case n > MaxGeneratedSlides:
		return MaxGeneratedSlides
	default:
		return n
	}
}

// StyleInstruction returns the tone instruction for style. Unknown styles
// get the general instruction.
func StyleInstruction(style domain.Style) string {
	if s, ok := styleInstructions[style]; ok {
		return s
	}
	return generalInstruction
}

// BuildPrompt renders the model prompt for req.
func BuildPrompt(req Request) (string, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return "", ErrEmptyTopic
	}

	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Topic:            topic,
		SlideCount:       ClampSlides(req.SlideCount),
		StyleInstruction: StyleInstruction(req.Style),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
