package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-advisor-be/internal/constant"
	"ai-advisor-be/pkg/llm"
)

// MaxExpandedQueries bounds the retrieval fan-out cost.
const MaxExpandedQueries = 5

// Expander produces semantically related query variants for multi-query
// retrieval. The original query is always a guaranteed member of the set.
type Expander struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewExpander creates a new query expander
func NewExpander(llmProvider llm.LLMProvider, logger *log.Logger) *Expander {
	return &Expander{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Expand returns 1..MaxExpandedQueries queries, original first.
// A failed expansion degrades to the original query alone.
func (e *Expander) Expand(ctx context.Context, query string) []string {
	queries := []string{query}

	response, err := e.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.QueryExpansionPrompt, query),
		llm.WithTemperature(0.3))
	if err != nil {
		e.logger.Printf("[EXPAND] Expansion failed, using original query only: %v", err)
		return queries
	}

	seen := map[string]bool{normalizeQuery(query): true}
	for _, line := range strings.Split(response, "\n") {
		variant := strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if variant == "" || seen[normalizeQuery(variant)] {
			continue
		}
		seen[normalizeQuery(variant)] = true
		queries = append(queries, variant)
		if len(queries) == MaxExpandedQueries {
			break
		}
	}

	e.logger.Printf("[EXPAND] %d queries in fan-out set", len(queries))
	return queries
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
