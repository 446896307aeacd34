package calculator

import "ai-advisor-be/pkg/store"

// minOptionalAnswers is the number of optional answers a variant needs
// before its dialogue is considered complete. Required questions are
// always mandatory.
var minOptionalAnswers = map[string]int{
	store.CalcVariantQuick:     0,
	store.CalcVariantDetailed:  1,
	store.CalcVariantPortfolio: 0,
}

// QuestionsFor returns the questionnaire for a calculator variant.
// The returned slice is a fresh copy; sessions may not share state.
func QuestionsFor(variant string) []store.CalcQuestion {
	var src []store.CalcQuestion
	switch variant {
	case store.CalcVariantQuick:
		src = quickQuestions
	case store.CalcVariantDetailed:
		src = detailedQuestions
	case store.CalcVariantPortfolio:
		src = portfolioQuestions
	default:
		return nil
	}
	return append([]store.CalcQuestion(nil), src...)
}

var quickQuestions = []store.CalcQuestion{
	{
		ID:       "age",
		Prompt:   "How old are you?",
		Type:     store.AnswerNumber,
		Required: true,
		Min:      18,
		Max:      100,
		Example:  "35",
	},
	{
		ID:       "annual_income",
		Prompt:   "What is your annual income before taxes?",
		Type:     store.AnswerCurrency,
		Required: true,
		Min:      0,
		Max:      100_000_000,
		Example:  "$85,000",
	},
	{
		ID:       "dependents",
		Prompt:   "How many people depend on your income?",
		Type:     store.AnswerNumber,
		Required: true,
		Min:      0,
		Max:      20,
		Example:  "2",
	},
}

var detailedQuestions = []store.CalcQuestion{
	{
		ID:       "age",
		Prompt:   "How old are you?",
		Type:     store.AnswerNumber,
		Required: true,
		Min:      18,
		Max:      100,
		Example:  "35",
	},
	{
		ID:       "annual_income",
		Prompt:   "What is your annual income before taxes?",
		Type:     store.AnswerCurrency,
		Required: true,
		Min:      0,
		Max:      100_000_000,
		Example:  "$85,000",
	},
	{
		ID:       "dependents",
		Prompt:   "How many people depend on your income?",
		Type:     store.AnswerNumber,
		Required: true,
		Min:      0,
		Max:      20,
		Example:  "2",
	},
	{
		ID:       "debts",
		Prompt:   "Roughly how much non-mortgage debt do you carry (loans, cards, etc.)?",
		Type:     store.AnswerCurrency,
		Required: true,
		Min:      0,
		Max:      100_000_000,
		Example:  "$15,000",
	},
	{
		ID:       "mortgage_balance",
		Prompt:   "What is your remaining mortgage balance? Enter 0 if none.",
		Type:     store.AnswerCurrency,
		Required: true,
		Min:      0,
		Max:      100_000_000,
		Example:  "$250,000",
	},
	{
		ID:       "existing_coverage",
		Prompt:   "How much life insurance coverage do you already have?",
		Type:     store.AnswerCurrency,
		Required: false,
		Min:      0,
		Max:      1_000_000_000,
		Example:  "$100,000",
	},
	{
		ID:       "smoker",
		Prompt:   "Do you use tobacco products?",
		Type:     store.AnswerBool,
		Required: false,
		Example:  "no",
	},
}

var portfolioQuestions = []store.CalcQuestion{
	{
		ID:       "age",
		Prompt:   "How old are you?",
		Type:     store.AnswerNumber,
		Required: true,
		Min:      18,
		Max:      100,
		Example:  "35",
	},
	{
		ID:       "annual_income",
		Prompt:   "What is your annual income before taxes?",
		Type:     store.AnswerCurrency,
		Required: true,
		Min:      0,
		Max:      100_000_000,
		Example:  "$85,000",
	},
	{
		ID:       "current_savings",
		Prompt:   "How much do you currently have saved for retirement?",
		Type:     store.AnswerCurrency,
		Required: true,
		Min:      0,
		Max:      1_000_000_000,
		Example:  "$120,000",
	},
	{
		ID:       "risk_tolerance",
		Prompt:   "How would you describe your risk tolerance: conservative, balanced, or aggressive?",
		Type:     store.AnswerSelect,
		Required: true,
		Options:  []string{"conservative", "balanced", "aggressive"},
		Example:  "balanced",
	},
	{
		ID:       "retirement_age",
		Prompt:   "At what age do you plan to retire?",
		Type:     store.AnswerNumber,
		Required: false,
		Min:      40,
		Max:      90,
		Example:  "65",
	},
}
