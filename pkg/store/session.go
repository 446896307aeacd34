package store

import "time"

// Session represents the active conversation state held in memory.
// At most one calculator dialogue may be attached at any time.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// Ordered message log for this session
	Messages []ChatTurn `json:"messages"`

	// Cross-turn conversational memory snapshot
	Context ConversationContext `json:"context"`

	// Active multi-question calculator dialogue, nil when none
	Calculator *CalculatorSession `json:"calculator,omitempty"`

	LastActive time.Time `json:"last_active"`
}

// ChatTurn is a single entry in the session message log.
type ChatTurn struct {
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HasActiveCalculator reports whether a calculator dialogue is pending.
// A session in selecting, active or error state locks routing to the calculator.
func (s *Session) HasActiveCalculator() bool {
	if s.Calculator == nil {
		return false
	}
	return s.Calculator.State == CalcStateSelecting ||
		s.Calculator.State == CalcStateActive ||
		s.Calculator.State == CalcStateError
}

// AppendTurn records a message in the session log.
func (s *Session) AppendTurn(role, content string) {
	s.Messages = append(s.Messages, ChatTurn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
}
