package store

import "time"

// Bounds for the conversational memory lists. Oldest entries are dropped
// silently when a bound is exceeded, never an error.
const (
	MaxThemes       = 5
	MaxGoals        = 3
	MaxRecentItems  = 20
	TopicStaleAfter = 5 * time.Minute
	MemoryItemLimit = 50
)

// Knowledge levels used for retrieval boosting.
const (
	KnowledgeBeginner     = "beginner"
	KnowledgeIntermediate = "intermediate"
	KnowledgeAdvanced     = "advanced"
)

// ConversationContext is the bounded cross-turn memory attached to a session.
type ConversationContext struct {
	KnowledgeLevel string `json:"knowledge_level"`

	// Semantic themes, insertion order, most recent last, capped at MaxThemes
	Themes []string `json:"themes"`

	// User goals, capped at MaxGoals
	Goals []string `json:"goals"`

	// Current topic, empty when none or stale
	CurrentTopic   string    `json:"current_topic"`
	TopicTouchedAt time.Time `json:"topic_touched_at"`

	// Recent memory window, capped at MaxRecentItems
	Recent []MemoryItem `json:"recent"`
}

// MemoryItem type constants.
const (
	MemoryTopic    = "topic"
	MemoryEntity   = "entity"
	MemoryConcept  = "concept"
	MemoryResponse = "response"
)

// MemoryItem is a single unit of conversational memory.
type MemoryItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	Confidence  float64   `json:"confidence"`
	CreatedAt   time.Time `json:"created_at"`
	AccessedAt  time.Time `json:"accessed_at"`
	AccessCount int       `json:"access_count"`
	RelatedIDs  []string  `json:"related_ids,omitempty"`
}

// AddTheme appends a theme, dropping the oldest when over the bound.
func (c *ConversationContext) AddTheme(theme string) {
	if theme == "" {
		return
	}
	for _, t := range c.Themes {
		if t == theme {
			return
		}
	}
	c.Themes = append(c.Themes, theme)
	if len(c.Themes) > MaxThemes {
		c.Themes = c.Themes[len(c.Themes)-MaxThemes:]
	}
}

// AddGoal appends a goal, dropping the oldest when over the bound.
func (c *ConversationContext) AddGoal(goal string) {
	if goal == "" {
		return
	}
	for _, g := range c.Goals {
		if g == goal {
			return
		}
	}
	c.Goals = append(c.Goals, goal)
	if len(c.Goals) > MaxGoals {
		c.Goals = c.Goals[len(c.Goals)-MaxGoals:]
	}
}

// TouchTopic sets the current topic and refreshes its timestamp.
func (c *ConversationContext) TouchTopic(topic string, now time.Time) {
	c.CurrentTopic = topic
	c.TopicTouchedAt = now
}

// ExpireStaleTopic clears the current topic once it has been untouched
// longer than the staleness window, so stale context cannot leak into an
// unrelated new topic.
func (c *ConversationContext) ExpireStaleTopic(now time.Time) {
	if c.CurrentTopic == "" {
		return
	}
	if now.Sub(c.TopicTouchedAt) > TopicStaleAfter {
		c.CurrentTopic = ""
	}
}
