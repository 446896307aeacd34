package memory

import (
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"ai-advisor-be/pkg/store"
)

func testManager() *Manager {
	return NewManager(log.New(os.Stdout, "", 0))
}

func TestUpdateBoundsHoldUnderPressure(t *testing.T) {
	m := testManager()
	convCtx := &store.ConversationContext{}

	categories := []store.IntentCategory{
		store.CategoryEducation,
		store.CategoryComparison,
		store.CategoryCalculation,
		store.CategoryScenario,
		store.CategoryGeneralAdvice,
		store.CategoryRecap,
	}

	for i := 0; i < 1000; i++ {
		m.Update(convCtx,
			fmt.Sprintf("question number %d about product %d", i, i%37),
			categories[i%len(categories)],
			fmt.Sprintf("goal %d", i%11),
			fmt.Sprintf("answer %d", i))
	}

	if len(convCtx.Themes) > store.MaxThemes {
		t.Fatalf("themes over bound: %d", len(convCtx.Themes))
	}
	if len(convCtx.Goals) > store.MaxGoals {
		t.Fatalf("goals over bound: %d", len(convCtx.Goals))
	}
	if len(convCtx.Recent) > store.MaxRecentItems {
		t.Fatalf("recent window over bound: %d", len(convCtx.Recent))
	}
}

func TestUpdateThemesDeduplicated(t *testing.T) {
	m := testManager()
	convCtx := &store.ConversationContext{}

	for i := 0; i < 5; i++ {
		m.Update(convCtx, "what is term life?", store.CategoryEducation, "", "")
	}

	if len(convCtx.Themes) != 1 {
		t.Fatalf("expected 1 theme, got %d: %v", len(convCtx.Themes), convCtx.Themes)
	}
}

func TestResolveFollowUpWithLiveTopic(t *testing.T) {
	m := testManager()
	convCtx := &store.ConversationContext{}

	m.Update(convCtx, "explain indexed universal life insurance", store.CategoryEducation,
		"understand indexed universal life insurance", "")

	isFollowUp, referent, _ := m.ResolveFollowUp(convCtx, "tell me more about that")

	if !isFollowUp {
		t.Fatal("expected follow-up to be detected")
	}
	if referent != convCtx.CurrentTopic {
		t.Fatalf("referent %q should be the current topic %q", referent, convCtx.CurrentTopic)
	}
}

func TestResolveFollowUpNoTopic(t *testing.T) {
	m := testManager()
	convCtx := &store.ConversationContext{}

	isFollowUp, _, _ := m.ResolveFollowUp(convCtx, "tell me more about it")

	if isFollowUp {
		t.Fatal("follow-up without any topic must not resolve")
	}
}

func TestResolveFollowUpIgnoresUnrelatedPhrasing(t *testing.T) {
	m := testManager()
	convCtx := &store.ConversationContext{}
	m.Update(convCtx, "explain annuities", store.CategoryEducation, "understand annuities", "")

	isFollowUp, _, _ := m.ResolveFollowUp(convCtx, "how much does a funeral cost on average")

	if isFollowUp {
		t.Fatal("question without follow-up markers must not resolve as follow-up")
	}
}

func TestStaleTopicExpires(t *testing.T) {
	current := time.Now()
	m := testManager().WithClock(func() time.Time { return current })
	convCtx := &store.ConversationContext{}

	m.Update(convCtx, "explain whole life insurance", store.CategoryEducation, "understand whole life", "")
	if convCtx.CurrentTopic == "" {
		t.Fatal("expected a topic to be set")
	}

	// Advance past the staleness window and probe with a follow-up.
	current = current.Add(store.TopicStaleAfter + time.Minute)

	isFollowUp, _, _ := m.ResolveFollowUp(convCtx, "tell me more about that")
	if isFollowUp {
		t.Fatal("stale topic must not anchor a follow-up")
	}
	if convCtx.CurrentTopic != "" {
		t.Fatalf("stale topic should have been cleared, got %q", convCtx.CurrentTopic)
	}
}

func TestFreshTopicSurvivesWithinWindow(t *testing.T) {
	current := time.Now()
	m := testManager().WithClock(func() time.Time { return current })
	convCtx := &store.ConversationContext{}

	m.Update(convCtx, "explain whole life insurance", store.CategoryEducation, "understand whole life", "")
	current = current.Add(2 * time.Minute)

	isFollowUp, _, _ := m.ResolveFollowUp(convCtx, "what about the cash value part?")
	if !isFollowUp {
		t.Fatal("fresh topic should anchor a follow-up inside the window")
	}
}

func TestSnapshotExpiresStaleTopic(t *testing.T) {
	current := time.Now()
	m := testManager().WithClock(func() time.Time { return current })
	convCtx := &store.ConversationContext{}

	m.Update(convCtx, "explain indexed universal life", store.CategoryEducation,
		"understand indexed universal life", "")

	current = current.Add(10 * time.Minute)

	snap := m.Snapshot(convCtx)
	if snap.CurrentTopic != "" {
		t.Fatalf("stale topic leaked through snapshot: %q", snap.CurrentTopic)
	}
	if convCtx.CurrentTopic != "" {
		t.Fatalf("stale topic should be cleared on the live context, got %q", convCtx.CurrentTopic)
	}
}

func TestSummaryExpiresStaleTopic(t *testing.T) {
	current := time.Now()
	m := testManager().WithClock(func() time.Time { return current })
	convCtx := &store.ConversationContext{}

	m.Update(convCtx, "explain annuities", store.CategoryEducation, "understand annuities", "")

	current = current.Add(store.TopicStaleAfter + time.Minute)

	summary := m.Summary(convCtx)
	if strings.Contains(summary, "Current topic") {
		t.Fatalf("stale topic leaked into summary: %q", summary)
	}
}

func TestSnapshotKeepsFreshTopic(t *testing.T) {
	current := time.Now()
	m := testManager().WithClock(func() time.Time { return current })
	convCtx := &store.ConversationContext{}

	m.Update(convCtx, "explain annuities", store.CategoryEducation, "understand annuities", "")
	current = current.Add(2 * time.Minute)

	snap := m.Snapshot(convCtx)
	if snap.CurrentTopic == "" {
		t.Fatal("fresh topic should survive snapshot inside the window")
	}
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	m := testManager()
	convCtx := &store.ConversationContext{}
	m.Update(convCtx, "explain annuities", store.CategoryEducation, "understand annuities", "")

	snap := m.Snapshot(convCtx)
	snap.Themes = append(snap.Themes, "injected")
	snap.CurrentTopic = "hijacked"

	if convCtx.CurrentTopic == "hijacked" {
		t.Fatal("snapshot mutation leaked into the live context")
	}
	for _, theme := range convCtx.Themes {
		if theme == "injected" {
			t.Fatal("snapshot theme mutation leaked into the live context")
		}
	}
}
