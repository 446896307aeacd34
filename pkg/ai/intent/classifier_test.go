package intent

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"ai-advisor-be/pkg/llm"
	"ai-advisor-be/pkg/store"
)

// fakeLLM returns a fixed response or error for every call.
type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func testClassifier(response string, err error) *Classifier {
	return NewClassifier(&fakeLLM{response: response, err: err}, log.New(os.Stdout, "", 0))
}

func TestClassifyStrictJSON(t *testing.T) {
	c := testClassifier(`{"category":"EDUCATION","goal":"explain term life","calculator_hint":"none","confidence":0.92,"needs_external_search":false,"needs_calculator_selection":false}`, nil)

	result := c.Classify(context.Background(), "what is term life insurance?", store.ConversationContext{})

	if result.Category != store.CategoryEducation {
		t.Fatalf("expected EDUCATION, got %s", result.Category)
	}
	if result.Confidence != 0.92 {
		t.Fatalf("expected confidence 0.92, got %.2f", result.Confidence)
	}
}

func TestClassifyFencedJSON(t *testing.T) {
	c := testClassifier("```json\n{\"category\":\"CALCULATION\",\"goal\":\"estimate coverage\",\"calculator_hint\":\"detailed\",\"confidence\":0.88}\n```", nil)

	result := c.Classify(context.Background(), "how much coverage do I need?", store.ConversationContext{})

	if result.Category != store.CategoryCalculation {
		t.Fatalf("expected CALCULATION, got %s", result.Category)
	}
	if result.Hint != store.HintDetailed {
		t.Fatalf("expected detailed hint, got %s", result.Hint)
	}
}

func TestClassifyJSONBuriedInCommentary(t *testing.T) {
	c := testClassifier(`Sure! Here is the classification you asked for:
{"category":"COMPARISON","goal":"compare products","calculator_hint":"none","confidence":0.8}
Let me know if you need anything else.`, nil)

	result := c.Classify(context.Background(), "term vs whole life", store.ConversationContext{})

	if result.Category != store.CategoryComparison {
		t.Fatalf("expected COMPARISON, got %s", result.Category)
	}
}

func TestClassifyUnknownCategoryNormalizes(t *testing.T) {
	c := testClassifier(`{"category":"BANANAS","goal":"","calculator_hint":"turbo","confidence":0.7}`, nil)

	result := c.Classify(context.Background(), "hmm", store.ConversationContext{})

	if result.Category != store.CategoryGeneralAdvice {
		t.Fatalf("unknown category must normalize to GENERAL_ADVICE, got %s", result.Category)
	}
	if result.Hint != store.HintNone {
		t.Fatalf("unknown hint must normalize to none, got %s", result.Hint)
	}
}

func TestClassifyConfidenceClamped(t *testing.T) {
	tests := []struct {
		response string
		want     float64
	}{
		{`{"category":"EDUCATION","confidence":1.7}`, 1.0},
		{`{"category":"EDUCATION","confidence":-0.3}`, 0.0},
	}
	for _, tt := range tests {
		c := testClassifier(tt.response, nil)
		result := c.Classify(context.Background(), "explain annuities", store.ConversationContext{})
		if result.Confidence != tt.want {
			t.Fatalf("confidence %.2f not clamped to %.2f", result.Confidence, tt.want)
		}
	}
}

func TestClassifyGarbageFallsBackToKeywords(t *testing.T) {
	c := testClassifier("I cannot classify that, sorry.", nil)

	result := c.Classify(context.Background(), "calculate how much insurance I need", store.ConversationContext{})

	if result.Category != store.CategoryCalculation {
		t.Fatalf("expected keyword fallback to CALCULATION, got %s", result.Category)
	}
	if result.Confidence > 0.6 {
		t.Fatalf("fallback confidence must not exceed 0.6, got %.2f", result.Confidence)
	}
}

func TestClassifyProviderErrorFallsBack(t *testing.T) {
	c := testClassifier("", errors.New("connection refused"))

	result := c.Classify(context.Background(), "explain what a deductible is", store.ConversationContext{})

	if result.Category != store.CategoryEducation {
		t.Fatalf("expected keyword fallback to EDUCATION, got %s", result.Category)
	}
}

func TestClassifyNeverReturnsEmptyCategory(t *testing.T) {
	responses := []string{"", "null", "{}", "{\"category\":\"\"}", "not json at all"}
	for _, resp := range responses {
		c := testClassifier(resp, nil)
		result := c.Classify(context.Background(), "random message", store.ConversationContext{})
		if result.Category == "" {
			t.Fatalf("empty category for response %q", resp)
		}
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Fatalf("confidence out of range for response %q: %.2f", resp, result.Confidence)
		}
	}
}
