package factory

import (
	"fmt"

	"ai-advisor-be/internal/config"
	"ai-advisor-be/pkg/llm"
	"ai-advisor-be/pkg/llm/ollama"
)

// NewLLMProvider builds the configured LLM backend.
func NewLLMProvider(cfg config.AIConfig) (llm.LLMProvider, error) {
	switch cfg.LLMProvider {
	case "ollama", "":
		return ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.LLMModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}
