package events

import "time"

// Advisor event type codes.
const (
	TypeTurnProcessed       = "ADVISOR_TURN_PROCESSED"
	TypeSessionCreated      = "ADVISOR_SESSION_CREATED"
	TypeCalculatorCompleted = "ADVISOR_CALCULATOR_COMPLETED"
)

// NewTurnProcessedEvent is emitted after every completed chat turn.
// Consumers use it for usage accounting and audit.
func NewTurnProcessedEvent(sessionID, userID, routeKind string, quality float64, latency time.Duration) Event {
	return BaseEvent{
		Type: TypeTurnProcessed,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
			"route_kind": routeKind,
			"quality":    quality,
			"latency_ms": latency.Milliseconds(),
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionCreatedEvent is emitted when a conversation session starts.
func NewSessionCreatedEvent(sessionID, userID string) Event {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		},
		OccurredAt: time.Now(),
	}
}

// NewCalculatorCompletedEvent is emitted when a calculator dialogue
// finishes with a computed result.
func NewCalculatorCompletedEvent(sessionID, variant string, amount float64) Event {
	return BaseEvent{
		Type: TypeCalculatorCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"variant":    variant,
			"amount":     amount,
		},
		OccurredAt: time.Now(),
	}
}
