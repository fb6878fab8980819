// internal/scoring/weights.go
package scoring

import "fmt"

// Dimension is the JSON key of a scored startup-quality axis.
type Dimension string

const (
	ProblemClarity   Dimension = "problemClarity"
	SolutionStrength Dimension = "solutionStrength"
	MarketSize       Dimension = "marketSize"
	Competition      Dimension = "competition"
	BusinessModel    Dimension = "businessModel"
	TeamFit          Dimension = "teamFit"
	Timing           Dimension = "timing"
)

// DimensionWeight binds a dimension to its display label and percentage weight.
type DimensionWeight struct {
	Key    Dimension `json:"key" yaml:"key"`
	Label  string    `json:"label" yaml:"label"`
	Weight int       `json:"weight" yaml:"weight"`
}

// WeightTable is the ordered weight configuration. Order is the canonical
// presentation order of the scores matrix.
type WeightTable []DimensionWeight

// DefaultWeights returns the canonical seven-dimension weight table.
func DefaultWeights() WeightTable {
	return WeightTable{
		{Key: ProblemClarity, Label: "Problem Clarity", Weight: 15},
		{Key: SolutionStrength, Label: "Solution Strength", Weight: 15},
		{Key: MarketSize, Label: "Market Size", Weight: 15},
		{Key: Competition, Label: "Competition", Weight: 10},
		{Key: BusinessModel, Label: "Business Model", Weight: 15},
		{Key: TeamFit, Label: "Team Fit", Weight: 15},
		{Key: Timing, Label: "Timing", Weight: 15},
	}
}

// Sum returns the total of all weights.
func (w WeightTable) Sum() int {
	total := 0
	for _, d := range w {
		total += d.Weight
	}
	return total
}

// Validate checks that the table is non-empty, has no duplicate or negative
// entries, and sums to 100.
func (w WeightTable) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("weight table is empty")
	}
	seen := make(map[Dimension]bool, len(w))
	for _, d := range w {
		if d.Weight < 0 {
			return fmt.Errorf("dimension %s has negative weight %d", d.Key, d.Weight)
		}
		if seen[d.Key] {
			return fmt.Errorf("dimension %s listed twice", d.Key)
		}
		seen[d.Key] = true
	}
	if sum := w.Sum(); sum != 100 {
		return fmt.Errorf("weights sum to %d, expected 100", sum)
	}
	return nil
}

func (w WeightTable) clone() WeightTable {
	out := make(WeightTable, len(w))
	copy(out, w)
	return out
}
