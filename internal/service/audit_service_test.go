package service

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-advisor-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditCountsTurnsPerUser(t *testing.T) {
	a := &auditService{
		logger:      log.New(os.Stdout, "", 0),
		turnsByUser: make(map[string]int),
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := a.handleTurnProcessed(ctx, events.NewTurnProcessedEvent("s-1", "user-1", "RETRIEVAL_ANSWER", 0.8, 120*time.Millisecond))
		require.NoError(t, err)
	}
	err := a.handleTurnProcessed(ctx, events.NewTurnProcessedEvent("s-2", "user-2", "PLAIN_ANSWER", 0.7, 80*time.Millisecond))
	require.NoError(t, err)

	assert.Equal(t, 3, a.turnsByUser["user-1"])
	assert.Equal(t, 1, a.turnsByUser["user-2"])
}

func TestAuditRejectsEventWithoutUser(t *testing.T) {
	a := &auditService{
		logger:      log.New(os.Stdout, "", 0),
		turnsByUser: make(map[string]int),
	}

	err := a.handleTurnProcessed(context.Background(), events.BaseEvent{
		Type: events.TypeTurnProcessed,
		Data: map[string]interface{}{"session_id": "s-1"},
	})

	require.Error(t, err)
	assert.Empty(t, a.turnsByUser)
}
