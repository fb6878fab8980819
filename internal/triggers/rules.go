// internal/triggers/rules.go
package triggers

type Source string

const (
	SourceInvestorScore    Source = "investor_score"
	SourceReadinessScore   Source = "readiness_score"
	SourceValidationReport Source = "validation_report"
	SourceHealthScore      Source = "health_score"
)

// Sources lists every accepted ScoreData source.
var Sources = []Source{SourceInvestorScore, SourceReadinessScore, SourceValidationReport, SourceHealthScore}

func (s Source) Valid() bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// CategoryOverall makes a rule read ScoreData.OverallScore instead of a category score.
const CategoryOverall = "overall"

// TaskTemplate is the task a rule produces when it fires.
type TaskTemplate struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
}

type Rule struct {
	ID        string       `json:"id" yaml:"id"`
	Source    Source       `json:"source" yaml:"source"`
	Category  string       `json:"category" yaml:"category"`
	Threshold float64      `json:"threshold" yaml:"threshold"`
	Priority  Priority     `json:"priority" yaml:"priority"`
	Template  TaskTemplate `json:"taskTemplate" yaml:"task_template"`
}

// Categories match the health breakdown keys, validator report types and the
// investor/readiness score categories.
var defaultRules = []Rule{
	{
		ID: "problem_clarity_low", Source: SourceHealthScore, Category: "problemClarity", Threshold: 60, Priority: PriorityHigh,
		Template: TaskTemplate{
			Title:       "Clarify Problem Statement",
			Description: "Your problem clarity score is {{SCORE}}/100 (threshold: {{THRESHOLD}}). Refine your problem statement to clearly articulate the pain point you're solving. Include: who has this problem, how severe it is, and how often it occurs.",
			Tags:        []string{"foundation", "validation", "ai-triggered"},
		},
	},
	{
		ID: "solution_fit_low", Source: SourceHealthScore, Category: "solutionFit", Threshold: 60, Priority: PriorityHigh,
		Template: TaskTemplate{
			Title:       "Define Unique Value Proposition",
			Description: "Your solution fit score is {{SCORE}}/100 (threshold: {{THRESHOLD}}). Document your unique value proposition: what makes your solution different from alternatives, and why customers should choose you.",
			Tags:        []string{"foundation", "positioning", "ai-triggered"},
		},
	},
	{
		ID: "market_understanding_low", Source: SourceHealthScore, Category: "marketUnderstanding", Threshold: 60, Priority: PriorityHigh,
		Template: TaskTemplate{
			Title:       "Conduct Market Research",
			Description: "Your market understanding score is {{SCORE}}/100 (threshold: {{THRESHOLD}}). Research your target market: define customer segments, identify market size, and map competitor landscape.",
			Tags:        []string{"market", "research", "ai-triggered"},
		},
	},
	{
		ID: "traction_proof_low", Source: SourceHealthScore, Category: "tractionProof", Threshold: 60, Priority: PriorityUrgent,
		Template: TaskTemplate{
			Title:       "Build Traction Evidence",
			Description: "Your traction score is {{SCORE}}/100 (threshold: {{THRESHOLD}}). Document evidence of progress: customer conversations, pilot users, LOIs, revenue, or engagement metrics.",
			Tags:        []string{"traction", "validation", "ai-triggered"},
		},
	},
	{
		ID: "team_readiness_low", Source: SourceHealthScore, Category: "teamReadiness", Threshold: 60, Priority: PriorityMedium,
		Template: TaskTemplate{
			Title:       "Strengthen Team Profile",
			Description: "Your team readiness score is {{SCORE}}/100 (threshold: {{THRESHOLD}}). Document your team's relevant experience, identify skill gaps, and consider advisors or co-founders to fill them.",
			Tags:        []string{"team", "advisory", "ai-triggered"},
		},
	},
	{
		ID: "investor_readiness_low", Source: SourceHealthScore, Category: "investorReadiness", Threshold: 60, Priority: PriorityMedium,
		Template: TaskTemplate{
			Title:       "Prepare Investor Materials",
			Description: "Your investor readiness score is {{SCORE}}/100 (threshold: {{THRESHOLD}}). Create or update your pitch deck, executive summary, and financial projections.",
			Tags:        []string{"fundraising", "pitch", "ai-triggered"},
		},
	},
	{
		ID: "canvas_incomplete", Source: SourceHealthScore, Category: "canvas", Threshold: 40, Priority: PriorityMedium,
		Template: TaskTemplate{
			Title:       "Complete Lean Canvas",
			Description: "Your Lean Canvas is {{SCORE}}% complete. Fill in missing sections to clarify your business model.",
			Tags:        []string{"canvas", "planning", "ai-triggered"},
		},
	},
	{
		ID: "pitch_not_ready", Source: SourceHealthScore, Category: "pitch", Threshold: 30, Priority: PriorityMedium,
		Template: TaskTemplate{
			Title:       "Create Pitch Deck",
			Description: "Start building your investor pitch deck. Focus on problem, solution, and traction slides first.",
			Tags:        []string{"pitch", "fundraising", "ai-triggered"},
		},
	},

	{
		ID: "validation_market_low", Source: SourceValidationReport, Category: "market", Threshold: 60, Priority: PriorityHigh,
		Template: TaskTemplate{
			Title:       "Address Market Validation Gaps",
			Description: "Market validation score: {{SCORE}}/100. Key gaps identified in your market analysis. Review validation report and address specific concerns.",
			Tags:        []string{"validation", "market", "ai-triggered"},
		},
	},
	{
		ID: "validation_product_low", Source: SourceValidationReport, Category: "product", Threshold: 60, Priority: PriorityHigh,
		Template: TaskTemplate{
			Title:       "Strengthen Product Definition",
			Description: "Product validation score: {{SCORE}}/100. Your product definition needs refinement. Review validation feedback and clarify your product roadmap.",
			Tags:        []string{"validation", "product", "ai-triggered"},
		},
	},
	{
		ID: "validation_founder_low", Source: SourceValidationReport, Category: "founder", Threshold: 60, Priority: PriorityMedium,
		Template: TaskTemplate{
			Title:       "Highlight Founder-Market Fit",
			Description: "Founder validation score: {{SCORE}}/100. Better demonstrate your unique qualifications to solve this problem and lead this company.",
			Tags:        []string{"validation", "team", "ai-triggered"},
		},
	},
	{
		ID: "validation_finance_low", Source: SourceValidationReport, Category: "finance", Threshold: 60, Priority: PriorityHigh,
		Template: TaskTemplate{
			Title:       "Improve Financial Projections",
			Description: "Finance validation score: {{SCORE}}/100. Your financial model needs work. Review unit economics, revenue projections, and funding requirements.",
			Tags:        []string{"validation", "finance", "ai-triggered"},
		},
	},
	{
		ID: "validation_overall_critical", Source: SourceValidationReport, Category: CategoryOverall, Threshold: 50, Priority: PriorityUrgent,
		Template: TaskTemplate{
			Title:       "Critical: Review Validation Results",
			Description: "Overall validation score: {{SCORE}}/100. Your startup needs significant improvements across multiple areas. Schedule a strategy review session.",
			Tags:        []string{"validation", "critical", "ai-triggered"},
		},
	},

	{
		ID: "team_strength_low", Source: SourceInvestorScore, Category: "team", Threshold: 60, Priority: PriorityMedium,
		Template: TaskTemplate{
			Title:       "Strengthen Team Advisory",
			Description: "Identify 3 industry mentors or advisors to fill experience gaps in {{GAP_AREA}}.",
			Tags:        []string{"team", "advisory", "ai-triggered"},
		},
	},
	{
		ID: "financials_weak", Source: SourceInvestorScore, Category: "financials", Threshold: 70, Priority: PriorityHigh,
		Template: TaskTemplate{
			Title:       "Update Financial Model",
			Description: "Review and update financial projections. Industry average suggests including {{BENCHMARK}} in your model.",
			Tags:        []string{"financials", "model", "ai-triggered"},
		},
	},

	{
		ID: "market_fit_low", Source: SourceReadinessScore, Category: "market", Threshold: 60, Priority: PriorityHigh,
		Template: TaskTemplate{
			Title:       "Conduct Customer Discovery",
			Description: "Run 10 customer interviews with {{TARGET_SEGMENT}} to validate problem-solution fit.",
			Tags:        []string{"market", "interviews", "ai-triggered"},
		},
	},
	{
		ID: "product_incomplete", Source: SourceReadinessScore, Category: "product", Threshold: 50, Priority: PriorityUrgent,
		Template: TaskTemplate{
			Title:       "Complete MVP Definition",
			Description: "Define and document your Minimum Viable Product scope. Focus on core value proposition.",
			Tags:        []string{"product", "mvp", "ai-triggered"},
		},
	},
}

// DefaultRules returns a copy of the built-in rule table.
func DefaultRules() []Rule {
	return cloneRules(defaultRules)
}

// FilterBySource returns the rules for source in table order. An empty source
// returns every rule.
func FilterBySource(rules []Rule, source Source) []Rule {
	if source == "" {
		return cloneRules(rules)
	}
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Source == source {
			out = append(out, r.clone())
		}
	}
	return out
}

func (r Rule) clone() Rule {
	r.Template.Tags = append([]string(nil), r.Template.Tags...)
	return r
}

func cloneRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = r.clone()
	}
	return out
}
