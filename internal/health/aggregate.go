// internal/health/aggregate.go
package health

import (
	"encoding/json"
	"time"
)

// Component is one weighted sub-score of the breakdown.
type Component struct {
	Score  int    `json:"score"`
	Weight int    `json:"weight"`
	Label  string `json:"label"`
}

// Breakdown holds the six sub-scores. Weights sum to 100.
type Breakdown struct {
	ProblemClarity      Component `json:"problemClarity"`
	SolutionFit         Component `json:"solutionFit"`
	MarketUnderstanding Component `json:"marketUnderstanding"`
	TractionProof       Component `json:"tractionProof"`
	TeamReadiness       Component `json:"teamReadiness"`
	InvestorReadiness   Component `json:"investorReadiness"`
}

// Components returns the sub-scores in weight table order with their keys.
func (b Breakdown) Components() []NamedComponent {
	return []NamedComponent{
		{"problemClarity", b.ProblemClarity},
		{"solutionFit", b.SolutionFit},
		{"marketUnderstanding", b.MarketUnderstanding},
		{"tractionProof", b.TractionProof},
		{"teamReadiness", b.TeamReadiness},
		{"investorReadiness", b.InvestorReadiness},
	}
}

type NamedComponent struct {
	Key string
	Component
}

// CategoryScores keys every sub-score by name, the shape health_score trigger
// rules read.
func (b Breakdown) CategoryScores() map[string]float64 {
	out := make(map[string]float64, 6)
	for _, c := range b.Components() {
		out[c.Key] = float64(c.Score)
	}
	return out
}

// Score is the health aggregate returned to callers.
type Score struct {
	Overall        int       `json:"overall"`
	Trend          int       `json:"trend"`
	Breakdown      Breakdown `json:"breakdown"`
	Warnings       []string  `json:"warnings"`
	LastCalculated time.Time `json:"lastCalculated"`
}

const (
	warningThreshold = 50
	maxWarnings      = 3
)

// Aggregate computes the health score from signals. It has no side effects.
func Aggregate(s *Signals, now time.Time) *Score {
	b := Breakdown{
		ProblemClarity:      Component{Score: problemClarity(s), Weight: 20, Label: "Problem Clarity"},
		SolutionFit:         Component{Score: solutionFit(s), Weight: 15, Label: "Solution Fit"},
		MarketUnderstanding: Component{Score: marketUnderstanding(s), Weight: 15, Label: "Market Understanding"},
		TractionProof:       Component{Score: tractionProof(s), Weight: 25, Label: "Traction Proof"},
		TeamReadiness:       Component{Score: teamReadiness(s), Weight: 10, Label: "Team Readiness"},
		InvestorReadiness:   Component{Score: investorReadiness(s), Weight: 15, Label: "Investor Readiness"},
	}

	weighted := 0
	for _, c := range b.Components() {
		weighted += c.Score * c.Weight
	}
	// integer half-up rounding of weighted/100; weighted is never negative
	overall := (weighted + 50) / 100

	previous := overall
	if s.PreviousScore != nil && *s.PreviousScore != 0 {
		previous = *s.PreviousScore
	}

	return &Score{
		Overall:        overall,
		Trend:          overall - previous,
		Breakdown:      b,
		Warnings:       warnings(b),
		LastCalculated: now.UTC(),
	}
}

func warnings(b Breakdown) []string {
	candidates := []struct {
		score   int
		message string
	}{
		{b.ProblemClarity.Score, "Problem statement needs more detail"},
		{b.SolutionFit.Score, "Define your unique value proposition"},
		{b.MarketUnderstanding.Score, "Add more market research"},
		{b.TractionProof.Score, "No traction data in 14 days"},
		{b.InvestorReadiness.Score, "Complete your pitch deck for investors"},
	}

	out := []string{}
	for _, c := range candidates {
		if c.score < warningThreshold && len(out) < maxWarnings {
			out = append(out, c.message)
		}
	}
	return out
}

// decodeBreakdown reads a persisted breakdown; unreadable data yields a zero Breakdown.
func decodeBreakdown(raw []byte) Breakdown {
	var b Breakdown
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &b)
	}
	return b
}
