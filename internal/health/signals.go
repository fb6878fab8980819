// internal/health/signals.go
package health

import (
	"strconv"
	"strings"
)

// Signals are the raw facts about a startup the health heuristics read.
type Signals struct {
	StartupID        string
	ProblemStatement string
	OneLiner         string
	TargetMarket     string
	HasTeamMembers   bool

	// PreviousScore is the last persisted health score, nil when never scored.
	PreviousScore *int

	Canvas    *Canvas
	PitchDeck *PitchDeck
	Wizard    WizardAnswers

	TotalTasks       int
	CompletedTasks   int
	InvestorContacts int
	CustomerContacts int // customer and lead contacts
	PitchDocuments   int
}

// Canvas is the latest lean canvas.
type Canvas struct {
	Problem                string
	Solution               string
	UniqueValueProposition string
	CustomerSegments       string
	Channels               string
}

// PitchDeck is the latest pitch deck.
type PitchDeck struct {
	Status string
}

// WizardAnswers is the form data of a completed onboarding wizard session.
// It is nil when no completed session exists.
type WizardAnswers map[string]interface{}

// Has reports whether the answer for key is present and non-empty.
func (w WizardAnswers) Has(key string) bool {
	v, ok := w[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

// Number returns the numeric answer for key; numeric strings are accepted.
func (w WizardAnswers) Number(key string) (float64, bool) {
	switch t := w[key].(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
