package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Style selects the tone the generator is asked to write in.
type Style string

// Recognised styles.
const (
	StyleModern    Style = "modern"
	StyleCorporate Style = "corporate"
	StyleCreative  Style = "creative"
	StyleAcademic  Style = "academic"
	StyleGeneral   Style = "general"
)

// DefaultStyle is used when a submission names no style.
const DefaultStyle = StyleGeneral

var lower = cases.Lower(language.Und)

// ParseStyle normalises s to a recognised Style. An empty string yields
// DefaultStyle.
func ParseStyle(s string) (Style, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return DefaultStyle, nil
	}
	style := Style(lower.String(trimmed))
	if !style.IsValid() {
		return "", ErrInvalidStyle
	}
	return style, nil
}

// IsValid reports whether s is a recognised style.
func (s Style) IsValid() bool {
	switch s {
	case StyleModern, StyleCorporate, StyleCreative, StyleAcademic, StyleGeneral:
		return true
	default:
		return false
	}
}

func (s Style) String() string {
	return string(s)
}
