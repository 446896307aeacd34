package calculator

import (
	"context"
	"fmt"

	"ai-advisor-be/pkg/store"
)

// FinancialCalculator turns a completed questionnaire profile into a
// structured recommendation. Invoked exactly once, on dialogue completion.
type FinancialCalculator interface {
	Compute(ctx context.Context, variant string, profile map[string]interface{}) (*ComputeResult, error)
}

// ComputeResult is the structured output of a calculation.
type ComputeResult struct {
	Headline        string            `json:"headline"`
	RecommendedAmt  float64           `json:"recommended_amount"`
	Breakdown       map[string]string `json:"breakdown"`
	Notes           []string          `json:"notes,omitempty"`
}

// ReferenceCalculator is a deliberately simple built-in implementation so
// the dialogue completes end to end without an external service.
type ReferenceCalculator struct{}

var _ FinancialCalculator = ReferenceCalculator{}

func (ReferenceCalculator) Compute(ctx context.Context, variant string, profile map[string]interface{}) (*ComputeResult, error) {
	switch variant {
	case store.CalcVariantQuick:
		return quickCoverage(profile)
	case store.CalcVariantDetailed:
		return detailedCoverage(profile)
	case store.CalcVariantPortfolio:
		return portfolioGap(profile)
	default:
		return nil, fmt.Errorf("unknown calculator variant: %s", variant)
	}
}

// quickCoverage is the income-multiple rule of thumb.
func quickCoverage(profile map[string]interface{}) (*ComputeResult, error) {
	income := num(profile, "annual_income")
	dependents := num(profile, "dependents")

	multiple := 10.0
	if dependents >= 3 {
		multiple = 12.0
	}
	amount := income * multiple

	return &ComputeResult{
		Headline:       "Quick coverage estimate",
		RecommendedAmt: amount,
		Breakdown: map[string]string{
			"method":          fmt.Sprintf("%.0fx annual income", multiple),
			"annual_income":   fmt.Sprintf("$%.0f", income),
			"dependents":      fmt.Sprintf("%.0f", dependents),
		},
		Notes: []string{"Rule-of-thumb estimate; run the detailed calculator for an obligations-based figure."},
	}, nil
}

// detailedCoverage follows the DIME method (debts, income, mortgage,
// education), netting out existing coverage.
func detailedCoverage(profile map[string]interface{}) (*ComputeResult, error) {
	income := num(profile, "annual_income")
	debts := num(profile, "debts")
	mortgage := num(profile, "mortgage_balance")
	dependents := num(profile, "dependents")
	existing := num(profile, "existing_coverage")

	education := dependents * 50000
	need := debts + income*10 + mortgage + education - existing
	if need < 0 {
		need = 0
	}

	return &ComputeResult{
		Headline:       "Detailed coverage estimate (DIME)",
		RecommendedAmt: need,
		Breakdown: map[string]string{
			"debts":             fmt.Sprintf("$%.0f", debts),
			"income_replacement": fmt.Sprintf("$%.0f (10 years)", income*10),
			"mortgage":          fmt.Sprintf("$%.0f", mortgage),
			"education":         fmt.Sprintf("$%.0f", education),
			"existing_coverage": fmt.Sprintf("-$%.0f", existing),
		},
	}, nil
}

// portfolioGap estimates the retirement savings gap.
func portfolioGap(profile map[string]interface{}) (*ComputeResult, error) {
	age := num(profile, "age")
	retirementAge := num(profile, "retirement_age")
	if retirementAge == 0 {
		retirementAge = 65
	}
	income := num(profile, "annual_income")
	savings := num(profile, "current_savings")

	yearsLeft := retirementAge - age
	if yearsLeft < 0 {
		yearsLeft = 0
	}
	target := income * 12 // simple 12x-income retirement target
	gap := target - savings
	if gap < 0 {
		gap = 0
	}

	var annual float64
	if yearsLeft > 0 {
		annual = gap / yearsLeft
	}

	return &ComputeResult{
		Headline:       "Portfolio gap estimate",
		RecommendedAmt: gap,
		Breakdown: map[string]string{
			"target":          fmt.Sprintf("$%.0f (12x income)", target),
			"current_savings": fmt.Sprintf("$%.0f", savings),
			"years_remaining": fmt.Sprintf("%.0f", yearsLeft),
			"annual_savings":  fmt.Sprintf("$%.0f/yr to close the gap", annual),
		},
	}, nil
}

func num(profile map[string]interface{}, key string) float64 {
	switch v := profile[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
