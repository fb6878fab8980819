// internal/scoring/thresholds.go
package scoring

const (
	DefaultGoThreshold      = 75
	DefaultCautionThreshold = 50

	DefaultStrongFactorThreshold   = 7.0
	DefaultModerateFactorThreshold = 4.0
)

// Verdict is the three-tier classification of an overall score.
type Verdict string

const (
	VerdictGo      Verdict = "go"
	VerdictCaution Verdict = "caution"
	VerdictNoGo    Verdict = "no_go"
)

// FactorStatus is the tier of a single market or execution factor.
type FactorStatus string

const (
	FactorStrong   FactorStatus = "strong"
	FactorModerate FactorStatus = "moderate"
	FactorWeak     FactorStatus = "weak"
)

// VerdictFromScore maps a final overall score to a verdict.
// Lower bounds are inclusive.
func VerdictFromScore(score, goThreshold, cautionThreshold int) Verdict {
	switch {
	case score >= goThreshold:
		return VerdictGo
	case score >= cautionThreshold:
		return VerdictCaution
	default:
		return VerdictNoGo
	}
}

// StatusFromFactorScore maps a clamped factor score to a status tier.
func StatusFromFactorScore(score, strong, moderate float64) FactorStatus {
	switch {
	case score >= strong:
		return FactorStrong
	case score >= moderate:
		return FactorModerate
	default:
		return FactorWeak
	}
}
