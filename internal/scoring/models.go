// internal/scoring/models.go
package scoring

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// Score is a raw numeric input. Anything that is not a JSON number,
// null included, decodes as NaN so clamping pins it to the range floor.
// Numbers beyond float64 range decode as signed infinity.
type Score float64

func (s *Score) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		*s = Score(math.NaN())
		return nil
	}
	*s = Score(v)
	return nil
}

// DimensionScores carries the raw dimension scores for one validation run.
// Values are nominally 0-100 but may be out of range or NaN.
type DimensionScores struct {
	ProblemClarity   float64 `json:"problemClarity"`
	SolutionStrength float64 `json:"solutionStrength"`
	MarketSize       float64 `json:"marketSize"`
	Competition      float64 `json:"competition"`
	BusinessModel    float64 `json:"businessModel"`
	TeamFit          float64 `json:"teamFit"`
	Timing           float64 `json:"timing"`
}

func (d *DimensionScores) UnmarshalJSON(b []byte) error {
	var raw struct {
		ProblemClarity   *Score `json:"problemClarity"`
		SolutionStrength *Score `json:"solutionStrength"`
		MarketSize       *Score `json:"marketSize"`
		Competition      *Score `json:"competition"`
		BusinessModel    *Score `json:"businessModel"`
		TeamFit          *Score `json:"teamFit"`
		Timing           *Score `json:"timing"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = DimensionScores{
		ProblemClarity:   raw.ProblemClarity.orNaN(),
		SolutionStrength: raw.SolutionStrength.orNaN(),
		MarketSize:       raw.MarketSize.orNaN(),
		Competition:      raw.Competition.orNaN(),
		BusinessModel:    raw.BusinessModel.orNaN(),
		TeamFit:          raw.TeamFit.orNaN(),
		Timing:           raw.Timing.orNaN(),
	}
	return nil
}

// orNaN reads a missing or null score as NaN.
func (s *Score) orNaN() float64 {
	if s == nil {
		return math.NaN()
	}
	return float64(*s)
}

// Value returns the raw score for key. Unknown keys read as NaN.
func (d DimensionScores) Value(key Dimension) float64 {
	switch key {
	case ProblemClarity:
		return d.ProblemClarity
	case SolutionStrength:
		return d.SolutionStrength
	case MarketSize:
		return d.MarketSize
	case Competition:
		return d.Competition
	case BusinessModel:
		return d.BusinessModel
	case TeamFit:
		return d.TeamFit
	case Timing:
		return d.Timing
	}
	return math.NaN()
}

// Uniform returns scores with every dimension set to v.
func Uniform(v float64) DimensionScores {
	return DimensionScores{
		ProblemClarity:   v,
		SolutionStrength: v,
		MarketSize:       v,
		Competition:      v,
		BusinessModel:    v,
		TeamFit:          v,
		Timing:           v,
	}
}

type FactorInput struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

func (f *FactorInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name        *string `json:"name"`
		Score       *Score  `json:"score"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = FactorInput{Score: raw.Score.orNaN()}
	if raw.Name != nil {
		f.Name = *raw.Name
	}
	if raw.Description != nil {
		f.Description = *raw.Description
	}
	return nil
}

type FactorResult struct {
	Name        string       `json:"name"`
	Score       float64      `json:"score"`
	Description string       `json:"description"`
	Status      FactorStatus `json:"status"`
}

type DimensionRow struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight int     `json:"weight"`
}

type ScoresMatrix struct {
	Dimensions      []DimensionRow `json:"dimensions"`
	OverallWeighted int            `json:"overall_weighted"`
}

type Metadata struct {
	RawWeightedAverage float64            `json:"raw_weighted_average"`
	BiasCorrection     int                `json:"bias_correction"`
	ClampedDimensions  map[string]float64 `json:"clamped_dimensions"`
}

// Result is the deterministic outcome of a scoring run.
type Result struct {
	OverallScore     int            `json:"overall_score"`
	Verdict          Verdict        `json:"verdict"`
	MarketFactors    []FactorResult `json:"market_factors"`
	ExecutionFactors []FactorResult `json:"execution_factors"`
	ScoresMatrix     ScoresMatrix   `json:"scores_matrix"`
	Metadata         Metadata       `json:"metadata"`
}
