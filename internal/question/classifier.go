package question

import (
	"strings"
	"time"
)

// Complexity labels a question by how hard its SQL is likely to be. The
// label decides which resolution strategy runs first and how much time the
// AI generator is given.
type Complexity string

const (
	Simple   Complexity = "SIMPLE"
	Moderate Complexity = "MODERATE"
	Complex  Complexity = "COMPLEX"
)

// Classifier assigns a Complexity label from keyword heuristics. Indicator
// lists and timeout budgets are injected so the boundaries stay visible
// policy rather than hidden constants. Classification is deterministic for
// identical input.
type Classifier struct {
	ComplexIndicators  []string
	ModerateIndicators []string

	SimpleBudget   time.Duration
	ModerateBudget time.Duration
	ComplexBudget  time.Duration
	BudgetCeiling  time.Duration
}

var defaultComplexIndicators = []string{
	"trend", "growth", "change over time", "compare", " vs ", "versus",
	"correlation", "analysis", "breakdown by", "segment by",
	"month over month", "year over year", "moving average", "forecast",
}

var defaultModerateIndicators = []string{
	"top", "bottom", "best", "worst", "highest", "lowest",
	"by category", "by region", "by store", "group by",
	"average", "total", "sum", "count", "join",
}

func NewClassifier(simple, moderate, cplx, ceiling time.Duration) *Classifier {
	return &Classifier{
		ComplexIndicators:  defaultComplexIndicators,
		ModerateIndicators: defaultModerateIndicators,
		SimpleBudget:       simple,
		ModerateBudget:     moderate,
		ComplexBudget:      cplx,
		BudgetCeiling:      ceiling,
	}
}

// Classify labels the question. COMPLEX indicators are checked before
// MODERATE ones; a question matching neither list is SIMPLE. Two or more
// dimension-style entities also force COMPLEX, since multiple group-bys
// usually need joins the templates cannot express.
func (c *Classifier) Classify(q *Question) Complexity {
	text := q.Normalized

	for _, ind := range c.ComplexIndicators {
		if strings.Contains(text, ind) {
			return Complex
		}
	}

	groupers := 0
	for _, dt := range dimensionTerms {
		if strings.Contains(text, dt.phrase) {
			groupers++
		}
	}
	if groupers >= 2 {
		return Complex
	}

	for _, ind := range c.ModerateIndicators {
		if strings.Contains(text, ind) {
			return Moderate
		}
	}
	return Simple
}

// Budget returns the AI-generation timeout for a label, clamped by the
// configured ceiling.
func (c *Classifier) Budget(label Complexity) time.Duration {
	var d time.Duration
	switch label {
	case Complex:
		d = c.ComplexBudget
	case Moderate:
		d = c.ModerateBudget
	default:
		d = c.SimpleBudget
	}
	if c.BudgetCeiling > 0 && d > c.BudgetCeiling {
		d = c.BudgetCeiling
	}
	return d
}
