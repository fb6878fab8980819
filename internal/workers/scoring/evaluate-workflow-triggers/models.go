// internal/workers/scoring/evaluate-workflow-triggers/models.go
package evaluateworkflowtriggers

import "startup-scoring/internal/triggers"

// Input is the score envelope in the job variables.
type Input = triggers.ScoreData

// Output is returned to the process as-is; tasks_created lets a gateway
// branch on whether any corrective work was generated.
type Output = triggers.ProcessResult
