package review

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

// fallbackScore is used when the review reply cannot be parsed. The
// original answer passes through unchanged in that case.
const fallbackScore = 0.7

// Result is the outcome of a compliance review.
type Result struct {
	Answer  string
	Score   float64
	Rewrote bool
}

// Reviewer softens guarantees, return promises and directive purchase
// advice in draft answers. It never blocks a turn: on any failure the
// draft passes through unchanged.
type Reviewer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewReviewer creates a new compliance reviewer
func NewReviewer(llmProvider llm.LLMProvider, logger *log.Logger) *Reviewer {
	return &Reviewer{llmProvider: llmProvider, logger: logger}
}

type reviewReply struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Review runs the compliance pass over a draft answer. The source
// attribution segment survives the rewrite even when the model drops it.
func (r *Reviewer) Review(ctx context.Context, draft string) Result {
	raw, err := r.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.ComplianceReviewPrompt, draft),
		llm.WithTemperature(0.0))
	if err != nil {
		r.logger.Printf("[REVIEW] Compliance call failed, passing draft through: %v", err)
		return Result{Answer: draft, Score: fallbackScore}
	}

	var reply reviewReply
	if err := json.Unmarshal([]byte(cleanFences(raw)), &reply); err != nil || reply.Answer == "" {
		r.logger.Printf("[REVIEW] Unparseable review reply, passing draft through")
		return Result{Answer: draft, Score: fallbackScore}
	}

	answer := restoreSources(draft, reply.Answer)

	return Result{
		Answer:  answer,
		Score:   store.ClampConfidence(reply.Score),
		Rewrote: answer != draft,
	}
}

// restoreSources re-appends the attribution segment when a rewrite
// dropped it. Attribution is system-generated and must survive review.
func restoreSources(draft, reviewed string) string {
	idx := strings.Index(draft, constant.SourcesHeader)
	if idx < 0 || strings.Contains(reviewed, constant.SourcesHeader) {
		return reviewed
	}
	return strings.TrimRight(reviewed, "\n") + "\n\n" + draft[idx:]
}

func cleanFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	// Salvage a JSON object embedded in commentary.
	if !strings.HasPrefix(s, "{") {
		if start := strings.Index(s, "{"); start >= 0 {
			if end := strings.LastIndex(s, "}"); end > start {
				s = s[start : end+1]
			}
		}
	}
	return s
}
