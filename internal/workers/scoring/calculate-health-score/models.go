// internal/workers/scoring/calculate-health-score/models.go
package calculatehealthscore

import "startup-scoring/internal/health"

type Input struct {
	StartupID string `json:"startupId"`
	UseCache  bool   `json:"useCache"`
}

// Output flattens the health score and adds the sub-scores keyed by name so
// the process can pass them straight to evaluate-workflow-triggers.
type Output struct {
	*health.Score
	CategoryScores map[string]float64 `json:"categoryScores"`
}
