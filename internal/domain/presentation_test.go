package domain_test

import (
	"testing"

	"github.com/phrazzld/deckgen-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresentation(t *testing.T) {
	blob := []byte(`{
		"title": "Quantum Computing",
		"slides": [
			{"type": "title", "title": "Quantum Computing", "subtitle": "Basics"},
			{"type": "content", "title": "Qubits", "bullets": ["a", "b"], "imagePrompt": "a qubit"}
		]
	}`)

	p, err := domain.ParsePresentation(blob)
	require.NoError(t, err)
	assert.Equal(t, "Quantum Computing", p.Title)
	require.Len(t, p.Slides, 2)
	assert.Equal(t, "Basics", p.Slides[0].Subtitle)
	assert.Equal(t, []string{"a", "b"}, p.Slides[1].Bullets)
	assert.Equal(t, "a qubit", p.Slides[1].ImagePrompt)
}

func TestParsePresentation_Rejects(t *testing.T) {
	tests := map[string]string{
		"malformed": `{"title": "x", "slides": [`,
		"no slides": `{"title": "x", "slides": []}`,
		"not json":  `completed`,
	}

	for name, blob := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := domain.ParsePresentation([]byte(blob))
			assert.Nil(t, p)
			assert.ErrorIs(t, err, domain.ErrInvalidPresentation)
		})
	}
}

func TestPresentation_MarshalUsesWireNames(t *testing.T) {
	p := &domain.Presentation{
		Title:  "t",
		Slides: []domain.Slide{{Type: "content", Title: "s", ImagePrompt: "ip", ImageURL: "u"}},
	}

	blob, err := p.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"imagePrompt":"ip"`)
	assert.Contains(t, string(blob), `"imageURL":"u"`)
}
