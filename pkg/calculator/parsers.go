package calculator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"ai-advisor-be/internal/constant"
	"ai-advisor-be/pkg/llm"
	"ai-advisor-be/pkg/store"
)

// ErrUnparseable means no value could be extracted from the user reply
// by any layer of the parsing chain.
var ErrUnparseable = errors.New("could not extract an answer from the reply")

// ErrOutOfRange means a value was extracted but failed range validation.
type ErrOutOfRange struct {
	Value float64
	Min   float64
	Max   float64
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("value %.2f outside allowed range [%.0f, %.0f]", e.Value, e.Min, e.Max)
}

// AnswerParser extracts a typed answer from free-form user text.
// The chain is cheapest-first: direct parse, then an LLM extraction,
// then a bare regex scan, then one last LLM attempt with the question
// restated. Values are range-validated after extraction.
type AnswerParser struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewAnswerParser creates a new answer parser
func NewAnswerParser(llmProvider llm.LLMProvider, logger *log.Logger) *AnswerParser {
	return &AnswerParser{llmProvider: llmProvider, logger: logger}
}

// Parse extracts the answer for one question. The returned value is
// float64 for number/currency, string for select, bool for bool.
func (p *AnswerParser) Parse(ctx context.Context, q *store.CalcQuestion, input string) (interface{}, error) {
	input = strings.TrimSpace(input)

	switch q.Type {
	case store.AnswerNumber, store.AnswerCurrency:
		return p.parseNumeric(ctx, q, input)
	case store.AnswerSelect:
		return p.parseSelect(ctx, q, input)
	case store.AnswerBool:
		return p.parseBool(ctx, q, input)
	default:
		return nil, fmt.Errorf("unknown answer type: %s", q.Type)
	}
}

var numericToken = regexp.MustCompile(`-?\d[\d,]*(\.\d+)?\s*[kKmM]?`)

func (p *AnswerParser) parseNumeric(ctx context.Context, q *store.CalcQuestion, input string) (interface{}, error) {
	// Layer 1: the whole reply is the value.
	if v, ok := parseAmount(input); ok {
		return p.validateRange(q, v)
	}

	// Layer 2: LLM extraction from conversational phrasing ("I make
	// about 85k a year", "thirty-five").
	if v, ok := p.llmExtractNumeric(ctx, q, input, false); ok {
		return p.validateRange(q, v)
	}

	// Layer 3: first numeric token anywhere in the reply.
	if match := numericToken.FindString(input); match != "" {
		if v, ok := parseAmount(match); ok {
			p.logger.Printf("[CALC] Regex fallback extracted %.2f for question %s", v, q.ID)
			return p.validateRange(q, v)
		}
	}

	// Layer 4: one last LLM attempt with the question restated.
	if v, ok := p.llmExtractNumeric(ctx, q, input, true); ok {
		return p.validateRange(q, v)
	}

	return nil, ErrUnparseable
}

func (p *AnswerParser) llmExtractNumeric(ctx context.Context, q *store.CalcQuestion, input string, restate bool) (float64, bool) {
	kind := "a plain number"
	if q.Type == store.AnswerCurrency {
		kind = "a dollar amount"
	}

	prompt := fmt.Sprintf(constant.AnswerParsePrompt, q.Prompt, kind, input)
	if restate {
		prompt += fmt.Sprintf("\nReminder: the question being answered is %q. Infer the most plausible value from context.", q.Prompt)
	}

	reply, err := p.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0), llm.WithMaxTokens(32))
	if err != nil {
		p.logger.Printf("[CALC] LLM answer extraction failed for question %s: %v", q.ID, err)
		return 0, false
	}
	reply = strings.TrimSpace(reply)
	if strings.EqualFold(reply, "UNPARSEABLE") {
		return 0, false
	}
	v, ok := parseAmount(reply)
	return v, ok
}

func (p *AnswerParser) validateRange(q *store.CalcQuestion, v float64) (interface{}, error) {
	if q.Min != 0 || q.Max != 0 {
		if v < q.Min || v > q.Max {
			return nil, &ErrOutOfRange{Value: v, Min: q.Min, Max: q.Max}
		}
	}
	return v, nil
}

func (p *AnswerParser) parseSelect(ctx context.Context, q *store.CalcQuestion, input string) (interface{}, error) {
	lower := strings.ToLower(input)

	for _, opt := range q.Options {
		if strings.EqualFold(input, opt) {
			return opt, nil
		}
	}
	for _, opt := range q.Options {
		if strings.Contains(lower, strings.ToLower(opt)) {
			return opt, nil
		}
	}

	// LLM maps conversational phrasing ("somewhere in the middle I
	// guess") onto one of the listed options.
	kind := fmt.Sprintf("one of: %s", strings.Join(q.Options, ", "))
	reply, err := p.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.AnswerParsePrompt, q.Prompt, kind, input),
		llm.WithTemperature(0.0), llm.WithMaxTokens(16))
	if err != nil {
		p.logger.Printf("[CALC] LLM option mapping failed for question %s: %v", q.ID, err)
		return nil, ErrUnparseable
	}
	reply = strings.TrimSpace(reply)
	for _, opt := range q.Options {
		if strings.EqualFold(reply, opt) {
			return opt, nil
		}
	}
	return nil, ErrUnparseable
}

var (
	yesWords = map[string]bool{"yes": true, "y": true, "yeah": true, "yep": true, "true": true, "sure": true, "i do": true}
	noWords  = map[string]bool{"no": true, "n": true, "nope": true, "false": true, "never": true, "i don't": true, "i dont": true}
)

func (p *AnswerParser) parseBool(ctx context.Context, q *store.CalcQuestion, input string) (interface{}, error) {
	lower := strings.ToLower(strings.TrimSpace(input))
	if yesWords[lower] {
		return true, nil
	}
	if noWords[lower] {
		return false, nil
	}

	reply, err := p.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.AnswerParsePrompt, q.Prompt, "yes or no", input),
		llm.WithTemperature(0.0), llm.WithMaxTokens(8))
	if err != nil {
		p.logger.Printf("[CALC] LLM yes/no mapping failed for question %s: %v", q.ID, err)
		return nil, ErrUnparseable
	}
	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return nil, ErrUnparseable
}

// parseAmount parses "85000", "85,000", "$85,000", "85k", "1.2m".
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		multiplier = 1_000
		s = strings.TrimSpace(s[:len(s)-1])
	case strings.HasSuffix(s, "m"), strings.HasSuffix(s, "M"):
		multiplier = 1_000_000
		s = strings.TrimSpace(s[:len(s)-1])
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * multiplier, true
}
