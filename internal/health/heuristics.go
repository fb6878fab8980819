// internal/health/heuristics.go
package health

import "unicode/utf16"

// Sub-score point rules. Every sub-score is capped at MaxSubScore.
const (
	MaxSubScore = 100

	problemBase             = 30
	problemStatementPoints  = 20
	problemStatementLong    = 15
	problemStatementLongLen = 100
	problemCanvasPoints     = 20
	problemCanvasLong       = 15
	problemCanvasLongLen    = 50
	problemWizardPoints     = 10

	solutionBase      = 30
	solutionCanvas    = 25
	solutionValueProp = 25
	solutionOneLiner  = 20

	marketBase           = 25
	marketSegments       = 25
	marketChannels       = 15
	marketTargetMarket   = 20
	marketWizardIndustry = 15

	tractionBase        = 20
	tractionPerTask     = 5
	tractionTaskCap     = 30
	tractionPerInvestor = 5
	tractionInvestorCap = 25
	tractionPerCustomer = 3
	tractionCustomerCap = 25

	teamBase              = 40
	teamFounderExperience = 20
	teamSizePoints        = 20
	teamMembersPoints     = 20

	investorBase         = 20
	investorDeckPoints   = 30
	investorDeckComplete = 20
	investorPerDocument  = 10
	investorDocumentCap  = 30

	pitchDeckStatusComplete = "complete"
)

// textLen counts UTF-16 code units, so characters outside the BMP count twice.
func textLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func problemClarity(s *Signals) int {
	score := problemBase
	if s.ProblemStatement != "" {
		score += problemStatementPoints
		if textLen(s.ProblemStatement) > problemStatementLongLen {
			score += problemStatementLong
		}
	}
	if s.Canvas != nil && s.Canvas.Problem != "" {
		score += problemCanvasPoints
		if textLen(s.Canvas.Problem) > problemCanvasLongLen {
			score += problemCanvasLong
		}
	}
	if s.Wizard.Has("problem") {
		score += problemWizardPoints
	}
	return capScore(score)
}

func solutionFit(s *Signals) int {
	score := solutionBase
	if s.Canvas != nil {
		if s.Canvas.Solution != "" {
			score += solutionCanvas
		}
		if s.Canvas.UniqueValueProposition != "" {
			score += solutionValueProp
		}
	}
	if s.OneLiner != "" {
		score += solutionOneLiner
	}
	return capScore(score)
}

func marketUnderstanding(s *Signals) int {
	score := marketBase
	if s.Canvas != nil {
		if s.Canvas.CustomerSegments != "" {
			score += marketSegments
		}
		if s.Canvas.Channels != "" {
			score += marketChannels
		}
	}
	if s.TargetMarket != "" {
		score += marketTargetMarket
	}
	if s.Wizard.Has("industry") {
		score += marketWizardIndustry
	}
	return capScore(score)
}

func tractionProof(s *Signals) int {
	score := tractionBase
	if s.TotalTasks > 0 {
		score += min(tractionTaskCap, s.CompletedTasks*tractionPerTask)
	}
	score += min(tractionInvestorCap, s.InvestorContacts*tractionPerInvestor)
	score += min(tractionCustomerCap, s.CustomerContacts*tractionPerCustomer)
	return capScore(score)
}

func teamReadiness(s *Signals) int {
	score := teamBase
	if s.Wizard.Has("founder_experience") {
		score += teamFounderExperience
	}
	if size, ok := s.Wizard.Number("team_size"); ok && size > 1 {
		score += teamSizePoints
	}
	if s.HasTeamMembers {
		score += teamMembersPoints
	}
	return capScore(score)
}

func investorReadiness(s *Signals) int {
	score := investorBase
	if s.PitchDeck != nil {
		score += investorDeckPoints
		if s.PitchDeck.Status == pitchDeckStatusComplete {
			score += investorDeckComplete
		}
	}
	score += min(investorDocumentCap, s.PitchDocuments*investorPerDocument)
	return capScore(score)
}

func capScore(v int) int {
	if v > MaxSubScore {
		return MaxSubScore
	}
	return v
}
