package search

import (
	"testing"

	"ai-advisor-be/pkg/store"
)

func TestDeduplicateKeepsFirstOccurrence(t *testing.T) {
	docs := []store.Document{
		{ID: "a", Content: "Term life insurance covers a fixed period."},
		{ID: "b", Content: "term  life insurance covers a FIXED period. "}, // same after normalization
		{ID: "c", Content: "Whole life insurance builds cash value."},
	}

	out := Deduplicate(docs)

	if len(out) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "c" {
		t.Fatalf("first occurrence not kept: %v, %v", out[0].ID, out[1].ID)
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	docs := []store.Document{
		{ID: "a", Content: "alpha"},
		{ID: "b", Content: "alpha"},
		{ID: "c", Content: "beta"},
	}

	once := Deduplicate(docs)
	twice := Deduplicate(once)

	if len(once) != len(twice) {
		t.Fatalf("dedup not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("dedup reordered on second pass at %d", i)
		}
	}
}

func TestRankAppliesKnowledgeBoost(t *testing.T) {
	docs := []store.Document{
		{ID: "plain", Score: 0.80},
		{ID: "boosted", Score: 0.70, Metadata: map[string]string{"knowledge_level": "beginner"}},
	}
	convCtx := store.ConversationContext{KnowledgeLevel: store.KnowledgeBeginner}

	ranked := Rank(docs, convCtx, DefaultConfig())

	// 0.70 * 1.2 = 0.84 > 0.80
	if ranked[0].ID != "boosted" {
		t.Fatalf("knowledge-level boost not applied, got %s first", ranked[0].ID)
	}
}

func TestRankAppliesTopicBoost(t *testing.T) {
	docs := []store.Document{
		{ID: "plain", Score: 0.80},
		{ID: "topical", Score: 0.75, Metadata: map[string]string{"topic": "retirement planning"}},
	}
	convCtx := store.ConversationContext{CurrentTopic: "retirement savings gap"}

	ranked := Rank(docs, convCtx, DefaultConfig())

	// 0.75 * 1.1 = 0.825 > 0.80
	if ranked[0].ID != "topical" {
		t.Fatalf("topic boost not applied, got %s first", ranked[0].ID)
	}
}

func TestRankDeterministic(t *testing.T) {
	docs := []store.Document{
		{ID: "a", Score: 0.5},
		{ID: "b", Score: 0.9},
		{ID: "c", Score: 0.7},
	}
	convCtx := store.ConversationContext{}

	first := Rank(docs, convCtx, DefaultConfig())
	second := Rank(docs, convCtx, DefaultConfig())

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("ranking not deterministic at position %d", i)
		}
	}
	if first[0].ID != "b" || first[1].ID != "c" || first[2].ID != "a" {
		t.Fatalf("unexpected order: %s %s %s", first[0].ID, first[1].ID, first[2].ID)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	docs := []store.Document{
		{ID: "a", Score: 0.5, Metadata: map[string]string{"knowledge_level": "beginner"}},
	}
	convCtx := store.ConversationContext{KnowledgeLevel: store.KnowledgeBeginner}

	Rank(docs, convCtx, DefaultConfig())

	if docs[0].Score != 0.5 {
		t.Fatalf("input slice mutated: score now %.2f", docs[0].Score)
	}
}
