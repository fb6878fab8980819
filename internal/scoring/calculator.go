// internal/scoring/calculator.go
package scoring

// Calculator turns dimension and factor scores into a Result.
// A Calculator is immutable after construction and safe for concurrent use.
type Calculator struct {
	weights          WeightTable
	goThreshold      int
	cautionThreshold int
	strongFactor     float64
	moderateFactor   float64
}

// Option configures the Calculator.
type Option func(*Calculator)

// WithWeights overrides the default dimension weight table.
func WithWeights(w WeightTable) Option {
	return func(c *Calculator) {
		c.weights = w.clone()
	}
}

// WithVerdictThresholds overrides the go/caution lower bounds.
func WithVerdictThresholds(goThreshold, cautionThreshold int) Option {
	return func(c *Calculator) {
		c.goThreshold = goThreshold
		c.cautionThreshold = cautionThreshold
	}
}

// WithFactorThresholds overrides the strong/moderate lower bounds.
func WithFactorThresholds(strong, moderate float64) Option {
	return func(c *Calculator) {
		c.strongFactor = strong
		c.moderateFactor = moderate
	}
}

// NewCalculator creates a calculator with optional configuration.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		weights:          DefaultWeights(),
		goThreshold:      DefaultGoThreshold,
		cautionThreshold: DefaultCautionThreshold,
		strongFactor:     DefaultStrongFactorThreshold,
		moderateFactor:   DefaultModerateFactorThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Weights returns a copy of the calculator's weight table.
func (c *Calculator) Weights() WeightTable {
	return c.weights.clone()
}

// Compute scores one validation run.
//
// overall_score = clamp(round(Σ clamped·weight/100) + bias, 0, 100); the
// verdict is derived from the final overall score.
func (c *Calculator) Compute(dims DimensionScores, market, execution []FactorInput, bias int) *Result {
	clamped := make(map[string]float64, len(c.weights))
	rows := make([]DimensionRow, 0, len(c.weights))

	var weighted float64
	for _, dw := range c.weights {
		v := ClampDimension(dims.Value(dw.Key))
		clamped[string(dw.Key)] = v
		weighted += v * float64(dw.Weight)
		rows = append(rows, DimensionRow{Name: dw.Label, Score: v, Weight: dw.Weight})
	}
	raw := weighted / 100

	// Any bias past ±100 pins the result, so saturate before adding.
	overall := clampInt(roundHalfUp(raw)+clampInt(bias, -100, 100), 0, 100)

	return &Result{
		OverallScore:     overall,
		Verdict:          VerdictFromScore(overall, c.goThreshold, c.cautionThreshold),
		MarketFactors:    c.classifyFactors(market),
		ExecutionFactors: c.classifyFactors(execution),
		ScoresMatrix: ScoresMatrix{
			Dimensions:      rows,
			OverallWeighted: overall,
		},
		Metadata: Metadata{
			RawWeightedAverage: roundTo2(raw),
			BiasCorrection:     bias,
			ClampedDimensions:  clamped,
		},
	}
}

func (c *Calculator) classifyFactors(in []FactorInput) []FactorResult {
	out := make([]FactorResult, 0, len(in))
	for _, f := range in {
		score := ClampFactor(f.Score)
		out = append(out, FactorResult{
			Name:        f.Name,
			Score:       score,
			Description: f.Description,
			Status:      StatusFromFactorScore(score, c.strongFactor, c.moderateFactor),
		})
	}
	return out
}

var defaultCalculator = NewCalculator()

// ComputeScore scores with the default weights and thresholds.
func ComputeScore(dims DimensionScores, market, execution []FactorInput, bias int) *Result {
	return defaultCalculator.Compute(dims, market, execution, bias)
}
