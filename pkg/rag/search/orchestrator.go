package search

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"ai-advisor-be/pkg/embedding"
	"ai-advisor-be/pkg/store"
	"ai-advisor-be/pkg/vectorindex"

	"golang.org/x/sync/errgroup"
)

// Orchestrator runs the concurrent multi-query vector search and the
// deterministic dedup/re-rank over the merged result set.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	index             vectorindex.Index
	logger            *log.Logger
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(embeddingProvider embedding.EmbeddingProvider, index vectorindex.Index, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		index:             index,
		logger:            logger,
	}
}

// Config encapsulates search parameters
type Config struct {
	TopKPerQuery    int
	PerQueryTimeout time.Duration
	KnowledgeBoost  float64
	TopicBoost      float64
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		TopKPerQuery:    12,
		PerQueryTimeout: 8 * time.Second,
		KnowledgeBoost:  1.2,
		TopicBoost:      1.1,
	}
}

// Execute fans out one search per expanded query. Sub-queries run
// concurrently, each under its own timeout; a failing or timed-out
// sub-query contributes zero documents rather than aborting retrieval.
// The merged set is deduplicated and re-ranked before returning.
func (o *Orchestrator) Execute(ctx context.Context, queries []string, convCtx store.ConversationContext, config Config) []store.Document {
	var mu sync.Mutex
	var merged []store.Document

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxExpandedQueries)

	for _, query := range queries {
		query := query
		g.Go(func() error {
			subCtx, cancel := context.WithTimeout(gctx, config.PerQueryTimeout)
			defer cancel()

			docs, err := o.searchOne(subCtx, query, config.TopKPerQuery)
			if err != nil {
				o.logger.Printf("[SEARCH] Sub-query failed, contributing zero documents: %v", err)
				return nil // degrade, never abort the group
			}

			mu.Lock()
			merged = append(merged, docs...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	o.logger.Printf("[SEARCH] Raw merged results: %d documents from %d queries", len(merged), len(queries))

	deduped := Deduplicate(merged)
	ranked := Rank(deduped, convCtx, config)

	o.logger.Printf("[SEARCH] After dedup/rank: %d documents", len(ranked))
	return ranked
}

func (o *Orchestrator) searchOne(ctx context.Context, query string, topK int) ([]store.Document, error) {
	embeddingRes, err := o.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	docs, err := o.index.Search(ctx, embeddingRes.Embedding.Values, topK)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		docs[i].Query = query
	}
	return docs, nil
}

// Deduplicate drops documents whose normalized content hash was already
// seen, keeping the first occurrence. Running it twice yields the same set.
func Deduplicate(docs []store.Document) []store.Document {
	seen := make(map[string]bool)
	var out []store.Document
	for _, d := range docs {
		h := d.ContentHash()
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, d)
	}
	return out
}

// Rank sorts by score descending after applying deterministic boosts:
// a multiplicative boost for knowledge-level metadata matches and a
// smaller one for current-topic matches. Re-weighting only, no re-embedding.
func Rank(docs []store.Document, convCtx store.ConversationContext, config Config) []store.Document {
	ranked := append([]store.Document(nil), docs...)

	for i := range ranked {
		if convCtx.KnowledgeLevel != "" && ranked[i].Metadata["knowledge_level"] == convCtx.KnowledgeLevel {
			ranked[i].Score *= config.KnowledgeBoost
		}
		if convCtx.CurrentTopic != "" && topicMatches(ranked[i].Metadata["topic"], convCtx.CurrentTopic) {
			ranked[i].Score *= config.TopicBoost
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func topicMatches(docTopic, currentTopic string) bool {
	if docTopic == "" {
		return false
	}
	topic := strings.ToLower(currentTopic)
	for _, w := range strings.Fields(strings.ToLower(docTopic)) {
		if strings.Contains(topic, w) {
			return true
		}
	}
	return false
}
