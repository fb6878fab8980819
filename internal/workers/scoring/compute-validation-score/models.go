// internal/workers/scoring/compute-validation-score/models.go
package computevalidationscore

import "startup-scoring/internal/scoring"

type Input struct {
	StartupID        string                  `json:"startupId"`
	Dimensions       scoring.DimensionScores `json:"dimensions"`
	MarketFactors    []scoring.FactorInput   `json:"marketFactors"`
	ExecutionFactors []scoring.FactorInput   `json:"executionFactors"`
	BiasCorrection   int                     `json:"biasCorrection"`
}

type Output struct {
	Score *scoring.Result `json:"score"`
}
