package rag

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"ai-advisor-be/internal/constant"
	"ai-advisor-be/pkg/embedding"
	"ai-advisor-be/pkg/llm"
	"ai-advisor-be/pkg/store"
	"ai-advisor-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers based on which prompt it receives.
type scriptedLLM struct {
	expansion string
	synthesis string
	rating    string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "search queries"):
		return s.expansion, nil
	case strings.Contains(prompt, "<reference_material>"):
		return s.synthesis, nil
	case strings.Contains(prompt, "Rate how well"):
		return s.rating, nil
	}
	return "", errors.New("unexpected prompt")
}

type fakeEmbedding struct{}

func (fakeEmbedding) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingValues{Values: []float32{0.1, 0.2}}}, nil
}

type fakeIndex struct {
	docs []store.Document
	err  error
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, topK int) ([]store.Document, error) {
	return f.docs, f.err
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, vector []float32, payload vectorindex.DocumentPayload) error {
	return nil
}

func testEngine(llmProvider llm.LLMProvider, index vectorindex.Index) *Engine {
	return NewEngine(llmProvider, fakeEmbedding{}, index, nil, log.New(os.Stdout, "", 0))
}

func TestAnswerZeroDocumentsReturnsInsufficientInfo(t *testing.T) {
	engine := testEngine(&scriptedLLM{expansion: ""}, &fakeIndex{docs: nil})

	result := engine.Answer(context.Background(), "what is an obscure rider?", store.ConversationContext{}, "", false)

	require.NotNil(t, result)
	assert.Equal(t, constant.InsufficientInformationAnswer, result.Answer)
	assert.Equal(t, 0.5, result.Quality)
	assert.Empty(t, result.Sources)
}

func TestAnswerIndexErrorDegradesToInsufficientInfo(t *testing.T) {
	engine := testEngine(&scriptedLLM{expansion: ""}, &fakeIndex{err: errors.New("connection lost")})

	result := engine.Answer(context.Background(), "what is term life?", store.ConversationContext{}, "", false)

	require.NotNil(t, result)
	assert.Equal(t, constant.InsufficientInformationAnswer, result.Answer)
}

func TestAnswerAppendsSources(t *testing.T) {
	index := &fakeIndex{docs: []store.Document{
		{ID: "1", Title: "Term Life Basics", Source: "product-guide", Content: "Term life covers a fixed period.", Score: 0.9},
	}}
	engine := testEngine(&scriptedLLM{
		expansion: "",
		synthesis: "Term life insurance covers you for a fixed period of time.",
		rating:    "0.85",
	}, index)

	result := engine.Answer(context.Background(), "what is term life?", store.ConversationContext{}, "", false)

	require.NotNil(t, result)
	assert.Contains(t, result.Answer, constant.SourcesHeader)
	assert.Contains(t, result.Answer, "Term Life Basics (product-guide)")
	assert.Equal(t, 0.85, result.Quality)
	assert.Equal(t, []string{"Term Life Basics (product-guide)"}, result.Sources)
}

func TestAnswerCapsSynthesisDocuments(t *testing.T) {
	var docs []store.Document
	for i := 0; i < 12; i++ {
		docs = append(docs, store.Document{
			ID:      string(rune('a' + i)),
			Title:   "Doc " + string(rune('A'+i)),
			Content: strings.Repeat(string(rune('a'+i)), 10),
			Score:   1.0 - float64(i)*0.05,
		})
	}
	engine := testEngine(&scriptedLLM{synthesis: "answer", rating: "0.7"}, &fakeIndex{docs: docs})

	result := engine.Answer(context.Background(), "anything", store.ConversationContext{}, "", false)

	require.NotNil(t, result)
	assert.LessOrEqual(t, len(result.Documents), MaxSynthesisDocs)
}

func TestParseQualityScore(t *testing.T) {
	tests := []struct {
		response string
		want     float64
	}{
		{"0.85", 0.85},
		{" 0.5 \n", 0.5},
		{"I'd rate this 0.9 overall.", 0.9},
		{"8/10", 0.8},
		{"Score: 85", 0.85},
		{"no number here", 0.5},
		{"", 0.5},
		{"1.0", 1.0},
	}

	for _, tt := range tests {
		got := ParseQualityScore(tt.response)
		if got != tt.want {
			t.Errorf("ParseQualityScore(%q) = %.2f, want %.2f", tt.response, got, tt.want)
		}
	}
}
