package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"ai-advisor-be/pkg/events"
	pkgnats "ai-advisor-be/pkg/nats"
)

type IAuditService interface {
	Run() error
}

// auditService consumes turn-processed events for usage accounting.
// Counts are process-local; the durable consumer keeps the stream
// position across restarts.
type auditService struct {
	subscriber *pkgnats.Subscriber
	logger     *log.Logger

	mu          sync.Mutex
	turnsByUser map[string]int
}

func NewAuditService(subscriber *pkgnats.Subscriber, logger *log.Logger) IAuditService {
	return &auditService{
		subscriber:  subscriber,
		logger:      logger,
		turnsByUser: make(map[string]int),
	}
}

func (a *auditService) Run() error {
	subject := fmt.Sprintf("events.%s", events.TypeTurnProcessed)
	return a.subscriber.Subscribe(subject, "advisor-usage-audit", a.handleTurnProcessed)
}

func (a *auditService) handleTurnProcessed(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userID, _ := payload["user_id"].(string)
	if userID == "" {
		return fmt.Errorf("turn event without user_id")
	}

	a.mu.Lock()
	a.turnsByUser[userID]++
	total := a.turnsByUser[userID]
	a.mu.Unlock()

	a.logger.Printf("[AUDIT] Turn: user=%s session=%v route=%v quality=%v total_turns=%d",
		userID, payload["session_id"], payload["route_kind"], payload["quality"], total)
	return nil
}
