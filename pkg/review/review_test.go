package review

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"ai-advisor-be/internal/constant"
	"ai-advisor-be/pkg/llm"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func testReviewer(response string, err error) *Reviewer {
	return NewReviewer(&fakeLLM{response: response, err: err}, log.New(os.Stdout, "", 0))
}

func TestReviewSoftensAndScores(t *testing.T) {
	r := testReviewer(`{"answer":"Historically, markets have often grown over long periods, though returns are never guaranteed.","score":0.95}`, nil)

	result := r.Review(context.Background(), "You should buy this fund, it will definitely grow.")

	if !result.Rewrote {
		t.Fatal("expected a rewrite")
	}
	if result.Score != 0.95 {
		t.Fatalf("expected score 0.95, got %.2f", result.Score)
	}
	if strings.Contains(result.Answer, "definitely grow") {
		t.Fatalf("guarantee survived the rewrite: %q", result.Answer)
	}
}

func TestReviewRestoresDroppedSources(t *testing.T) {
	draft := "Term life covers a fixed period.\n\n" + constant.SourcesHeader + "\n- Term Life Basics (product-guide)"
	// The model rewrote the prose but dropped the attribution block.
	r := testReviewer(`{"answer":"Term life insurance covers a fixed period of time.","score":0.9}`, nil)

	result := r.Review(context.Background(), draft)

	if !strings.Contains(result.Answer, constant.SourcesHeader) {
		t.Fatalf("sources segment not restored: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "Term Life Basics (product-guide)") {
		t.Fatalf("source entry lost: %q", result.Answer)
	}
}

func TestReviewKeepsExistingSources(t *testing.T) {
	draft := "Prose.\n\n" + constant.SourcesHeader + "\n- A (b)"
	r := testReviewer(`{"answer":"Rewritten prose.\n\n`+constant.SourcesHeader+`\n- A (b)","score":0.9}`, nil)

	result := r.Review(context.Background(), draft)

	if strings.Count(result.Answer, constant.SourcesHeader) != 1 {
		t.Fatalf("sources segment duplicated: %q", result.Answer)
	}
}

func TestReviewUnparseableReplyPassesThrough(t *testing.T) {
	draft := "The original answer."
	r := testReviewer("I think this looks fine!", nil)

	result := r.Review(context.Background(), draft)

	if result.Answer != draft {
		t.Fatalf("draft should pass through unchanged, got %q", result.Answer)
	}
	if result.Score != 0.7 {
		t.Fatalf("expected fallback score 0.7, got %.2f", result.Score)
	}
	if result.Rewrote {
		t.Fatal("passthrough must not report a rewrite")
	}
}

func TestReviewProviderErrorPassesThrough(t *testing.T) {
	draft := "The original answer."
	r := testReviewer("", errors.New("timeout"))

	result := r.Review(context.Background(), draft)

	if result.Answer != draft {
		t.Fatalf("draft should pass through unchanged, got %q", result.Answer)
	}
	if result.Score != 0.7 {
		t.Fatalf("expected fallback score 0.7, got %.2f", result.Score)
	}
}

func TestReviewScoreClamped(t *testing.T) {
	r := testReviewer(`{"answer":"ok","score":3.5}`, nil)

	result := r.Review(context.Background(), "draft")

	if result.Score != 1.0 {
		t.Fatalf("score not clamped, got %.2f", result.Score)
	}
}
