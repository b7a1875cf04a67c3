// Package generator produces personalized quotes through the Anthropic API.
package generator

import (
	"context"
	"strings"
)

// Tone is the requested voice of a generated quote.
type Tone string

const (
	ToneInspirational Tone = "inspirational"
	ToneMotivational  Tone = "motivational"
	ToneReflective    Tone = "reflective"
	ToneEnergetic     Tone = "energetic"
)

// ParseTone maps a free-form subscriber tone preference to a generation
// tone. Unknown preferences fall back to inspirational.
func ParseTone(preference string) Tone {
	switch strings.ToLower(strings.TrimSpace(preference)) {
	case "bold", "energetic":
		return ToneEnergetic
	case "motivational":
		return ToneMotivational
	case "gentle", "wise", "reflective":
		return ToneReflective
	default:
		return ToneInspirational
	}
}

// Request describes one generation call. The generator holds no state
// between calls; all avoidance context travels in AvoidQuotes.
type Request struct {
	Persona     string
	Categories  []string
	Tone        Tone
	AvoidQuotes []string
}

// Quote is a generated candidate. It is not persisted until the
// orchestrator accepts it.
type Quote struct {
	Text        string `json:"quote"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	Explanation string `json:"explanation"`
}

// Generator produces one quote candidate per call.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Quote, error)
}
