package response

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-advisor-be/pkg/llm"
	"ai-advisor-be/pkg/store"
)

// Generator synthesizes the answer text from the ranked documents.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewGenerator creates a new response generator
func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Synthesize produces the answer from the top-ranked documents plus a
// short memory summary. Citations are attached separately by the engine;
// the prompt explicitly forbids inline document indices.
func (g *Generator) Synthesize(ctx context.Context, query string, docs []store.Document, memorySummary string) (string, error) {
	prompt := g.buildPrompt(query, docs, memorySummary)

	answer, err := g.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return "", fmt.Errorf("answer synthesis: %w", err)
	}

	g.logger.Printf("[GENERATION] Answer synthesized from %d documents", len(docs))
	return strings.TrimSpace(answer), nil
}

func (g *Generator) buildPrompt(query string, docs []store.Document, memorySummary string) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are a financial guidance assistant. Answer using ONLY the reference material below.\n")
	prompt.WriteString("</system>\n\n")

	if memorySummary != "" {
		prompt.WriteString("<conversation_memory>\n")
		prompt.WriteString(memorySummary)
		prompt.WriteString("</conversation_memory>\n\n")
	}

	prompt.WriteString("<reference_material>\n")
	for _, d := range docs {
		prompt.WriteString(fmt.Sprintf("\n--- %s ---\n", d.Title))
		prompt.WriteString(d.Content)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</reference_material>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. Answer directly from the reference material; do not invent facts.\n")
	prompt.WriteString("2. Do NOT cite documents by number or index ([1], Doc 2, etc.). Source attribution is handled separately by the system.\n")
	prompt.WriteString("3. Match depth to the user's knowledge level when stated in the conversation memory.\n")
	prompt.WriteString("4. Educational tone; never promise returns or give directive purchase advice.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_question>\n\nAnswer:")

	return prompt.String()
}
