package domain

import (
	"encoding/json"
	"fmt"
)

// Slide is one page of a generated presentation. Only Type and Title are
// always present; the rest depends on the slide type.
type Slide struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Bullets     []string `json:"bullets,omitempty"`
	Description string   `json:"description,omitempty"`
	ImagePrompt string   `json:"imagePrompt,omitempty"`
	ImageURL    string   `json:"imageURL,omitempty"`
}

// Presentation is the result payload written by the worker and promoted onto
// the job once a client has read it.
type Presentation struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// ParsePresentation decodes a result payload. Malformed JSON and decks without
// slides are rejected with an error wrapping ErrInvalidPresentation.
func ParsePresentation(blob []byte) (*Presentation, error) {
	var p Presentation
	if err := json.Unmarshal(blob, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPresentation, err)
	}
	if len(p.Slides) == 0 {
		return nil, fmt.Errorf("%w: no slides", ErrInvalidPresentation)
	}
	return &p, nil
}

// Marshal encodes the presentation in its wire format.
func (p *Presentation) Marshal() ([]byte, error) {
	return json.Marshal(p)
}
