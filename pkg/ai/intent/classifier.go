package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-advisor-be/internal/constant"
	"ai-advisor-be/pkg/llm"
	"ai-advisor-be/pkg/store"
)

// Classifier maps a user turn plus a memory snapshot to a structured intent.
// It delegates the judgment to the LLM with a fixed JSON contract and
// tolerates non-conforming output through a layered parser chain:
// strict parse -> brace-matched substring -> keyword heuristics.
// Classify never fails; it always returns a populated result.
type Classifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewClassifier creates a new intent classifier
func NewClassifier(llmProvider llm.LLMProvider, logger *log.Logger) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// rawIntent mirrors the JSON contract given to the model.
type rawIntent struct {
	Category                 string  `json:"category"`
	Goal                     string  `json:"goal"`
	CalculatorHint           string  `json:"calculator_hint"`
	Confidence               float64 `json:"confidence"`
	NeedsExternalSearch      bool    `json:"needs_external_search"`
	NeedsCalculatorSelection bool    `json:"needs_calculator_selection"`
}

// Classify analyzes the user message and produces a stable intent.
// Pure function of its inputs plus one LLM call; no session mutation.
func (c *Classifier) Classify(ctx context.Context, text string, convCtx store.ConversationContext) store.IntentResult {
	prompt := fmt.Sprintf(constant.IntentClassificationPrompt, buildContextBlock(convCtx), text)

	response, err := c.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		c.logger.Printf("[INTENT] Classification call failed, using keyword fallback: %v", err)
		return keywordFallback(text)
	}

	result, err := c.parseIntent(response)
	if err != nil {
		c.logger.Printf("[INTENT] Parse failed, using keyword fallback: %v", err)
		return keywordFallback(text)
	}

	c.logger.Printf("[INTENT] Classified: %s (hint: %s, confidence: %.2f, external: %v)",
		result.Category, result.Hint, result.Confidence, result.NeedsExternalSearch)

	return result
}

func buildContextBlock(convCtx store.ConversationContext) string {
	var sb strings.Builder

	if convCtx.KnowledgeLevel != "" {
		sb.WriteString(fmt.Sprintf("KNOWLEDGE_LEVEL: %s\n", convCtx.KnowledgeLevel))
	}
	if convCtx.CurrentTopic != "" {
		sb.WriteString(fmt.Sprintf("CURRENT_TOPIC: %s\n", convCtx.CurrentTopic))
	}
	if len(convCtx.Themes) > 0 {
		sb.WriteString(fmt.Sprintf("RECENT_THEMES: %s\n", strings.Join(convCtx.Themes, ", ")))
	}
	if len(convCtx.Goals) > 0 {
		sb.WriteString(fmt.Sprintf("USER_GOALS: %s\n", strings.Join(convCtx.Goals, ", ")))
	}
	if sb.Len() == 0 {
		sb.WriteString("INITIAL_STATE: No prior conversation.\n")
	}

	return sb.String()
}

// parseIntent applies the strict and lenient parsing layers.
func (c *Classifier) parseIntent(response string) (store.IntentResult, error) {
	var raw rawIntent

	// Layer 1: strict parse of the whole response
	if err := json.Unmarshal([]byte(cleanFences(response)), &raw); err == nil {
		return normalize(raw), nil
	}

	// Layer 2: brace-matched substring
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return store.IntentResult{}, fmt.Errorf("no JSON found in response")
	}
	if err := json.Unmarshal([]byte(jsonContent), &raw); err != nil {
		return store.IntentResult{}, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	return normalize(raw), nil
}

func normalize(raw rawIntent) store.IntentResult {
	result := store.IntentResult{
		Category:                 store.NormalizeCategory(raw.Category),
		Goal:                     strings.TrimSpace(raw.Goal),
		Hint:                     store.NormalizeHint(raw.CalculatorHint),
		Confidence:               store.ClampConfidence(raw.Confidence),
		NeedsExternalSearch:      raw.NeedsExternalSearch,
		NeedsCalculatorSelection: raw.NeedsCalculatorSelection,
	}
	return result
}

// keywordFallback is layer 3: cheap heuristics over the raw user text.
// Confidence never exceeds 0.6 on this path.
func keywordFallback(text string) store.IntentResult {
	lower := strings.ToLower(text)

	if containsAny(lower, []string{"calculate", "how much", "estimate my", "how many"}) {
		return store.IntentResult{
			Category:   store.CategoryCalculation,
			Goal:       "calculate a financial figure",
			Hint:       store.HintQuick,
			Confidence: 0.6,
		}
	}

	if containsAny(lower, []string{"what did we discuss", "summarize our", "recap"}) {
		return store.IntentResult{
			Category:   store.CategoryRecap,
			Goal:       "recap the conversation",
			Confidence: 0.6,
		}
	}

	if containsAny(lower, []string{"explain", "what is", "what are", "how does"}) {
		return store.IntentResult{
			Category:   store.CategoryEducation,
			Goal:       "explain a concept",
			Hint:       store.HintNone,
			Confidence: 0.6,
		}
	}

	if containsAny(lower, []string{" vs ", "versus", "compare", "difference between"}) {
		return store.IntentResult{
			Category:   store.CategoryComparison,
			Goal:       "compare options",
			Confidence: 0.55,
		}
	}

	return store.IntentResult{
		Category:   store.CategoryGeneralAdvice,
		Goal:       "general guidance",
		Hint:       store.HintNone,
		Confidence: 0.4,
	}
}

func cleanFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
