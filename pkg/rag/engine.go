package rag

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"ai-advisor-be/internal/constant"
	"ai-advisor-be/pkg/embedding"
	"ai-advisor-be/pkg/llm"
	"ai-advisor-be/pkg/rag/response"
	"ai-advisor-be/pkg/rag/search"
	"ai-advisor-be/pkg/store"
	"ai-advisor-be/pkg/vectorindex"
	"ai-advisor-be/pkg/websearch"
)

// MaxSynthesisDocs caps how many documents feed answer synthesis.
const MaxSynthesisDocs = 5

// webSearchFloor is the minimum top-result score before a web supplement
// is attached.
const webSearchFloor = 0.5

// defaultQuality is used whenever the quality rating cannot be parsed.
const defaultQuality = 0.5

// Result is the retrieval engine's output for one query.
type Result struct {
	Answer    string
	Quality   float64
	Documents []store.Document
	Sources   []string
}

// Engine is the multi-query retrieval pipeline: expansion, concurrent
// fan-out search, dedup, re-rank, synthesis, optional web supplement
// and quality scoring. It never hard-fails; every degradation resolves
// to some answer.
type Engine struct {
	expander    *search.Expander
	search      *search.Orchestrator
	generator   *response.Generator
	webProvider websearch.Provider
	llmProvider llm.LLMProvider
	config      search.Config
	logger      *log.Logger
}

// NewEngine creates a new retrieval engine. webProvider may be nil when
// no web search capability is configured.
func NewEngine(
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	index vectorindex.Index,
	webProvider websearch.Provider,
	logger *log.Logger,
) *Engine {
	return &Engine{
		expander:    search.NewExpander(llmProvider, logger),
		search:      search.NewOrchestrator(embeddingProvider, index, logger),
		generator:   response.NewGenerator(llmProvider, logger),
		webProvider: webProvider,
		llmProvider: llmProvider,
		config:      search.DefaultConfig(),
		logger:      logger,
	}
}

// Answer runs the full retrieval pipeline for one turn.
// allowExternalSearch is decided once, upstream, by the router; it is
// never recomputed here.
func (e *Engine) Answer(ctx context.Context, query string, convCtx store.ConversationContext, memorySummary string, allowExternalSearch bool) *Result {
	queries := e.expander.Expand(ctx, query)
	docs := e.search.Execute(ctx, queries, convCtx, e.config)

	if len(docs) == 0 {
		e.logger.Printf("[RAG] Zero documents retrieved, returning insufficient-information answer")
		return &Result{
			Answer:  constant.InsufficientInformationAnswer,
			Quality: defaultQuality,
		}
	}

	top := docs
	if len(top) > MaxSynthesisDocs {
		top = top[:MaxSynthesisDocs]
	}

	answer, err := e.generator.Synthesize(ctx, query, top, memorySummary)
	if err != nil {
		e.logger.Printf("[RAG] Synthesis failed: %v", err)
		return &Result{
			Answer:    constant.InsufficientInformationAnswer,
			Quality:   defaultQuality,
			Documents: top,
		}
	}

	if allowExternalSearch {
		answer = e.supplementWithWebSearch(ctx, query, answer)
	}

	sources := collectSources(top)
	answer = appendSources(answer, sources)

	quality := e.scoreQuality(ctx, query, top, answer)

	return &Result{
		Answer:    answer,
		Quality:   quality,
		Documents: top,
		Sources:   sources,
	}
}

// supplementWithWebSearch appends a clearly separated current-information
// segment. Appending (not interleaving) keeps provenance traceable.
func (e *Engine) supplementWithWebSearch(ctx context.Context, query, answer string) string {
	if e.webProvider == nil {
		return answer
	}

	results, err := e.webProvider.Query(ctx, query)
	if err != nil {
		e.logger.Printf("[RAG] Web search failed, keeping knowledge-base answer: %v", err)
		return answer
	}
	if len(results) == 0 || results[0].Score < webSearchFloor {
		e.logger.Printf("[RAG] Web results below confidence floor, skipping supplement")
		return answer
	}

	var sb strings.Builder
	sb.WriteString(answer)
	sb.WriteString("\n\n")
	sb.WriteString(constant.CurrentInfoHeader)
	sb.WriteString("\n")
	for i, r := range results {
		if i == 3 {
			break
		}
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", strings.TrimSpace(r.Content), r.URL))
	}
	return sb.String()
}

// scoreQuality asks the model to rate the answer. Parsing is defensive:
// strict float, then first numeric token, then defaultQuality.
func (e *Engine) scoreQuality(ctx context.Context, query string, docs []store.Document, answer string) float64 {
	var docBlock strings.Builder
	for _, d := range docs {
		docBlock.WriteString(d.Title)
		docBlock.WriteString(": ")
		docBlock.WriteString(truncate(d.Content, 300))
		docBlock.WriteString("\n")
	}

	response, err := e.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.QualityRatingPrompt, query, docBlock.String(), answer),
		llm.WithTemperature(0.0))
	if err != nil {
		e.logger.Printf("[RAG] Quality rating failed, defaulting to %.1f: %v", defaultQuality, err)
		return defaultQuality
	}

	return ParseQualityScore(response)
}

var numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// ParseQualityScore extracts a [0,1] score from a free-form rating reply.
func ParseQualityScore(response string) float64 {
	trimmed := strings.TrimSpace(response)

	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return store.ClampConfidence(v)
	}

	if match := numberPattern.FindString(trimmed); match != "" {
		if v, err := strconv.ParseFloat(match, 64); err == nil {
			// Models occasionally answer on a 0-10 or percentage scale
			if v > 1 && v <= 10 {
				v = v / 10
			} else if v > 10 {
				v = v / 100
			}
			return store.ClampConfidence(v)
		}
	}

	return defaultQuality
}

func collectSources(docs []store.Document) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, d := range docs {
		label := d.Title
		if d.Source != "" {
			label = fmt.Sprintf("%s (%s)", d.Title, d.Source)
		}
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		sources = append(sources, label)
	}
	return sources
}

func appendSources(answer string, sources []string) string {
	if len(sources) == 0 {
		return answer
	}
	var sb strings.Builder
	sb.WriteString(answer)
	sb.WriteString("\n\n")
	sb.WriteString(constant.SourcesHeader)
	sb.WriteString("\n")
	for _, s := range sources {
		sb.WriteString("- ")
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
