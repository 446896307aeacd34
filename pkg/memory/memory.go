package memory

import (
	"log"
	"sort"
	"strings"
	"time"

	"ai-advisor-be/pkg/store"

	"github.com/google/uuid"
)

// Manager maintains per-session conversational memory: recent topics,
// themes and goals, follow-up resolution and the pollution guard that
// keeps stale context from leaking into unrelated turns.
type Manager struct {
	logger *log.Logger
	now    func() time.Time
}

// NewManager creates a new conversation memory manager
func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// followUpMarkers trigger follow-up detection together with a live topic.
var followUpMarkers = []string{
	"tell me more",
	"what about",
	"more about",
	"this",
	"that",
	"it",
}

// similarityThreshold is the token intersection-over-union floor for
// relating memory items to a follow-up referent.
const similarityThreshold = 0.3

// Update folds one completed turn into the context. Bounds are enforced
// on every call; oldest entries are dropped, never an error.
func (m *Manager) Update(convCtx *store.ConversationContext, turnText string, category store.IntentCategory, goal string, answerText string) {
	now := m.now()

	// Pollution guard first: a long-untouched topic must not absorb the
	// new turn as if it were related.
	convCtx.ExpireStaleTopic(now)

	topic := extractTopic(turnText, goal)
	if topic != "" {
		convCtx.TouchTopic(topic, now)
		m.remember(convCtx, store.MemoryTopic, topic, 0.9, now)
	} else if convCtx.CurrentTopic != "" {
		// Follow-up turns keep the existing topic alive
		convCtx.TopicTouchedAt = now
	}

	convCtx.AddTheme(themeFor(category))
	if goal != "" && category != store.CategoryRecap {
		convCtx.AddGoal(goal)
	}

	if level := inferKnowledgeLevel(turnText); level != "" {
		convCtx.KnowledgeLevel = level
	}

	if answerText != "" {
		m.remember(convCtx, store.MemoryResponse, truncate(answerText, 240), 0.7, now)
	}
}

// ResolveFollowUp reports whether the query continues the current topic.
// This is a cheap lexical bridge, not semantic search: marker presence
// plus a live topic, with related concepts pulled by word overlap.
func (m *Manager) ResolveFollowUp(convCtx *store.ConversationContext, query string) (bool, string, []string) {
	convCtx.ExpireStaleTopic(m.now())

	if convCtx.CurrentTopic == "" {
		return false, "", nil
	}

	lower := strings.ToLower(query)
	matched := false
	for _, marker := range followUpMarkers {
		if containsWord(lower, marker) {
			matched = true
			break
		}
	}
	if !matched {
		return false, "", nil
	}

	referent := convCtx.CurrentTopic
	referentTokens := tokenSet(referent)

	var related []string
	for _, item := range convCtx.Recent {
		if item.Content == referent {
			continue
		}
		if tokenOverlap(referentTokens, tokenSet(item.Content)) > similarityThreshold {
			related = append(related, item.Content)
		}
	}

	m.logger.Printf("[MEMORY] Follow-up resolved: referent=%q, %d related concepts", referent, len(related))
	return true, referent, related
}

// Snapshot returns a defensive copy of the context for read-only consumers.
// The staleness guard runs first so an expired topic never reaches the
// classifier at the start of a new turn.
func (m *Manager) Snapshot(convCtx *store.ConversationContext) store.ConversationContext {
	convCtx.ExpireStaleTopic(m.now())

	snap := *convCtx
	snap.Themes = append([]string(nil), convCtx.Themes...)
	snap.Goals = append([]string(nil), convCtx.Goals...)
	snap.Recent = append([]store.MemoryItem(nil), convCtx.Recent...)
	return snap
}

// Summary renders a short memory digest for prompt injection. Stale
// topics are expired before rendering, same as Snapshot.
func (m *Manager) Summary(convCtx *store.ConversationContext) string {
	convCtx.ExpireStaleTopic(m.now())

	var sb strings.Builder
	if convCtx.CurrentTopic != "" {
		sb.WriteString("Current topic: " + convCtx.CurrentTopic + "\n")
	}
	if len(convCtx.Themes) > 0 {
		sb.WriteString("Discussed: " + strings.Join(convCtx.Themes, ", ") + "\n")
	}
	if len(convCtx.Goals) > 0 {
		sb.WriteString("User goals: " + strings.Join(convCtx.Goals, "; ") + "\n")
	}
	return sb.String()
}

// remember appends a memory item, evicting least-recently-accessed items
// once the window exceeds its capacity.
func (m *Manager) remember(convCtx *store.ConversationContext, itemType, content string, confidence float64, now time.Time) {
	for i := range convCtx.Recent {
		if convCtx.Recent[i].Content == content && convCtx.Recent[i].Type == itemType {
			convCtx.Recent[i].AccessedAt = now
			convCtx.Recent[i].AccessCount++
			return
		}
	}

	convCtx.Recent = append(convCtx.Recent, store.MemoryItem{
		ID:          uuid.New().String(),
		Type:        itemType,
		Content:     content,
		Confidence:  confidence,
		CreatedAt:   now,
		AccessedAt:  now,
		AccessCount: 1,
	})

	if len(convCtx.Recent) > store.MaxRecentItems {
		sort.SliceStable(convCtx.Recent, func(i, j int) bool {
			return convCtx.Recent[i].AccessedAt.Before(convCtx.Recent[j].AccessedAt)
		})
		convCtx.Recent = convCtx.Recent[len(convCtx.Recent)-store.MaxRecentItems:]
	}
}

// extractTopic pulls a topic phrase from the turn. The classifier's goal
// wins when present; otherwise the question is stripped down to its
// content words.
func extractTopic(turnText, goal string) string {
	if isFollowUpPhrasing(turnText) {
		return ""
	}
	if goal != "" {
		return goal
	}

	words := strings.Fields(strings.TrimRight(turnText, "?!. "))
	var content []string
	for _, w := range words {
		if isStopWord(strings.ToLower(w)) {
			continue
		}
		content = append(content, w)
		if len(content) == 6 {
			break
		}
	}
	return strings.Join(content, " ")
}

func isFollowUpPhrasing(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "tell me more") ||
		strings.HasPrefix(lower, "what about") ||
		strings.HasPrefix(lower, "and ")
}

func themeFor(category store.IntentCategory) string {
	return strings.ToLower(string(category))
}

func inferKnowledgeLevel(text string) string {
	lower := strings.ToLower(text)
	if containsAny(lower, []string{"i'm new to", "i am new to", "explain simply", "in simple terms", "like i'm five"}) {
		return store.KnowledgeBeginner
	}
	if containsAny(lower, []string{"irr", "cost basis", "1035 exchange", "modified endowment", "actuarial"}) {
		return store.KnowledgeAdvanced
	}
	return ""
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?\"'")
		if w != "" && !isStopWord(w) {
			set[w] = true
		}
	}
	return set
}

// tokenOverlap computes intersection-over-union on word sets.
func tokenOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func containsWord(s, marker string) bool {
	if strings.Contains(marker, " ") {
		return strings.Contains(s, marker)
	}
	for _, w := range strings.Fields(s) {
		if strings.Trim(w, ".,!?\"'") == marker {
			return true
		}
	}
	return false
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"what": true, "how": true, "why": true, "when": true, "where": true,
	"do": true, "does": true, "did": true, "i": true, "my": true, "me": true,
	"about": true, "of": true, "for": true, "to": true, "in": true, "on": true,
	"tell": true, "more": true, "please": true, "can": true, "you": true,
}

func isStopWord(w string) bool {
	return stopWords[w]
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
