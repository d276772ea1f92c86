package generation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/phrazzld/deckgen-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	text   string
	err    error
	prompt string
}

func (m *stubModel) GenerateText(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.text, m.err
}

const validDeck = `{"title":"Quantum","slides":[{"type":"title","title":"Quantum","subtitle":"Basics"},` +
	`{"type":"content","title":"Qubits","bullets":["a","b"],"imagePrompt":"a qubit"}]}`

func TestClampSlides(t *testing.T) {
	t.Parallel()
	cases := map[int]int{-1: 5, 1: 5, 5: 5, 10: 10, 20: 20, 21: 20}
	for in, want := range cases {
		assert.Equal(t, want, generation.ClampSlides(in), "ClampSlides(%d)", in)
	}
}

func TestStyleInstruction(t *testing.T) {
	t.Parallel()
	assert.Contains(t, generation.StyleInstruction(domain.StyleModern), "modern and minimal")
	assert.Contains(t, generation.StyleInstruction(domain.StyleCorporate), "corporate")
	assert.Contains(t, generation.StyleInstruction(domain.StyleCreative), "creative and bold")
	assert.Contains(t, generation.StyleInstruction(domain.StyleAcademic), "academic")
	assert.Contains(t, generation.StyleInstruction(domain.StyleGeneral), "general audience")
	assert.Contains(t, generation.StyleInstruction(domain.Style("unknown")), "general audience")
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := generation.BuildPrompt(generation.Request{
		Topic:      "  Explain quantum computing basics ",
		SlideCount: 3,
		Style:      domain.StyleAcademic,
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Include exactly 5 slides total")
	assert.Contains(t, prompt, "scholarly tone")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "Topic: Explain quantum computing basics"))
	assert.Contains(t, prompt, `"imagePrompt"`, "template output must not be HTML-escaped")

	_, err = generation.BuildPrompt(generation.Request{Topic: "   ", SlideCount: 5})
	assert.ErrorIs(t, err, generation.ErrEmptyTopic)
}

func TestCleanJSONResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: validDeck, want: validDeck},
		{name: "fenced", in: "```json\n" + validDeck + "\n```", want: validDeck},
		{name: "surrounding prose", in: "Here you go:\n" + validDeck + "\nEnjoy!", want: validDeck},
		{name: "trailing commas", in: "{\"title\":\"x\",\n\"slides\":[{\"type\":\"title\",\"title\":\"x\",},\n]}", want: `{"title":"x","slides":[{"type":"title","title":"x"}]}`},
		{name: "not json", in: "I cannot help with that.", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := generation.CleanJSONResponse(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, generation.ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, got)
		})
	}
}

func TestPromptGenerator_Generate(t *testing.T) {
	t.Parallel()

	model := &stubModel{text: "```json\n" + validDeck + "\n```"}
	gen, err := generation.NewPromptGenerator(model, nil)
	require.NoError(t, err)

	deck, err := gen.Generate(context.Background(), generation.Request{
		Topic:      "Explain quantum computing basics",
		SlideCount: 10,
		Style:      domain.StyleModern,
	})
	require.NoError(t, err)
	assert.Equal(t, "Quantum", deck.Title)
	assert.Len(t, deck.Slides, 2)
	assert.Contains(t, model.prompt, "Include exactly 10 slides total")
}

func TestPromptGenerator_Errors(t *testing.T) {
	t.Parallel()

	_, err := generation.NewPromptGenerator(nil, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	req := generation.Request{Topic: "Explain quantum computing basics", SlideCount: 5}

	boom := errors.New("model unavailable")
	gen, err := generation.NewPromptGenerator(&stubModel{err: boom}, nil)
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), req)
	assert.ErrorIs(t, err, boom)

	gen, err = generation.NewPromptGenerator(&stubModel{text: "no json here"}, nil)
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), req)
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)

	gen, err = generation.NewPromptGenerator(&stubModel{text: `{"title":"Empty","slides":[]}`}, nil)
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), req)
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	assert.ErrorIs(t, err, domain.ErrInvalidPresentation)
}
