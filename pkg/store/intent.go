package store

import "strings"

// IntentCategory is the closed set of classified turn categories.
type IntentCategory string

const (
	CategoryCalculation   IntentCategory = "CALCULATION"
	CategoryEducation     IntentCategory = "EDUCATION"
	CategoryComparison    IntentCategory = "COMPARISON"
	CategoryScenario      IntentCategory = "SCENARIO"
	CategoryRecap         IntentCategory = "RECAP"
	CategoryGeneralAdvice IntentCategory = "GENERAL_ADVICE"
)

// CalculatorHint is the calculator variant suggested by classification.
type CalculatorHint string

const (
	HintNone      CalculatorHint = "none"
	HintQuick     CalculatorHint = "quick"
	HintDetailed  CalculatorHint = "detailed"
	HintPortfolio CalculatorHint = "portfolio"
)

// IntentResult is the structured output of intent classification.
// Confidence is always within [0,1]; unknown categories normalize to
// GENERAL_ADVICE rather than erroring.
type IntentResult struct {
	Category                 IntentCategory `json:"category"`
	Goal                     string         `json:"goal"`
	Hint                     CalculatorHint `json:"calculator_hint"`
	Confidence               float64        `json:"confidence"`
	NeedsExternalSearch      bool           `json:"needs_external_search"`
	NeedsCalculatorSelection bool           `json:"needs_calculator_selection"`
}

// NormalizeCategory maps a raw category string onto the closed enum.
func NormalizeCategory(raw string) IntentCategory {
	switch IntentCategory(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryCalculation:
		return CategoryCalculation
	case CategoryEducation:
		return CategoryEducation
	case CategoryComparison:
		return CategoryComparison
	case CategoryScenario:
		return CategoryScenario
	case CategoryRecap:
		return CategoryRecap
	default:
		return CategoryGeneralAdvice
	}
}

// NormalizeHint maps a raw hint string onto the closed enum.
func NormalizeHint(raw string) CalculatorHint {
	switch CalculatorHint(strings.ToLower(strings.TrimSpace(raw))) {
	case HintQuick:
		return HintQuick
	case HintDetailed:
		return HintDetailed
	case HintPortfolio:
		return HintPortfolio
	default:
		return HintNone
	}
}

// ClampConfidence forces a confidence value into [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IsInformational reports whether the category routes through retrieval.
func (c IntentCategory) IsInformational() bool {
	return c == CategoryEducation || c == CategoryComparison || c == CategoryScenario
}
