package service

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-advisor-be/internal/constant"
	"ai-advisor-be/internal/dto"
	sessionstore "ai-advisor-be/internal/repository/memory"
	"ai-advisor-be/pkg/ai/intent"
	"ai-advisor-be/pkg/ai/router"
	"ai-advisor-be/pkg/calculator"
	"ai-advisor-be/pkg/embedding"
	"ai-advisor-be/pkg/llm"
	convmemory "ai-advisor-be/pkg/memory"
	"ai-advisor-be/pkg/rag"
	"ai-advisor-be/pkg/review"
	"ai-advisor-be/pkg/store"
	"ai-advisor-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM routes prompts to canned replies by prompt markers, so one
// fake drives the whole pipeline.
type scriptedLLM struct{}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "intent analyzer"):
		// Key on full user phrases: single words like "calculate" also
		// appear in the prompt template itself.
		switch {
		case strings.Contains(prompt, "calculate how much life insurance"):
			return `{"category":"CALCULATION","goal":"estimate life insurance coverage","calculator_hint":"quick","confidence":0.9}`, nil
		case strings.Contains(prompt, "what did we discuss so far"):
			return `{"category":"RECAP","goal":"recap the conversation","calculator_hint":"none","confidence":0.9}`, nil
		}
		return `{"category":"EDUCATION","goal":"understand term life insurance","calculator_hint":"none","confidence":0.9}`, nil
	case strings.Contains(prompt, "search queries"):
		return "term life insurance explained\nhow does term life coverage work", nil
	case strings.Contains(prompt, "<reference_material>"):
		return "Term life insurance covers a fixed period.", nil
	case strings.Contains(prompt, "Rate how well"):
		return "0.8", nil
	case strings.Contains(prompt, "You review answers"):
		return "not valid json, passthrough", nil
	case strings.Contains(prompt, "Extract the answer value"):
		return "UNPARSEABLE", nil
	}
	return "General guidance reply.", nil
}

type emptyEmbedding struct{}

func (emptyEmbedding) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingValues{Values: []float32{0.5}}}, nil
}

type memoryIndex struct {
	docs []store.Document
}

func (m *memoryIndex) Search(ctx context.Context, vector []float32, topK int) ([]store.Document, error) {
	return m.docs, nil
}

func (m *memoryIndex) Upsert(ctx context.Context, id string, vector []float32, payload vectorindex.DocumentPayload) error {
	m.docs = append(m.docs, store.Document{ID: id, Title: payload.Title, Content: payload.Content, Source: payload.Source, Score: 0.9})
	return nil
}

func newTestChatService(index vectorindex.Index) (IChatService, *sessionstore.SessionRepository) {
	logger := log.New(os.Stdout, "", 0)
	llmProvider := &scriptedLLM{}
	sessions := sessionstore.NewSessionRepository(time.Hour)

	svc := NewChatService(
		sessions,
		intent.NewClassifier(llmProvider, logger),
		router.NewRouter(logger),
		convmemory.NewManager(logger),
		rag.NewEngine(llmProvider, emptyEmbedding{}, index, nil, logger),
		calculator.NewManager(llmProvider, calculator.ReferenceCalculator{}, logger),
		review.NewReviewer(llmProvider, logger),
		llmProvider,
		nil, // no event bus in tests
		nil, // no websocket hub in tests
		10*time.Second,
		logger,
	)
	return svc, sessions
}

func createSession(t *testing.T, svc IChatService) string {
	t.Helper()
	res, err := svc.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)
	return res.Id
}

func TestSendChatEmptyKnowledgeBase(t *testing.T) {
	svc, _ := newTestChatService(&memoryIndex{})
	sessionId := createSession(t, svc)

	res, err := svc.SendChat(context.Background(), "user-1", &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          "what is term life insurance?",
	})

	require.NoError(t, err)
	assert.Equal(t, string(store.RouteRetrievalAnswer), res.Route)
	assert.Equal(t, constant.InsufficientInformationAnswer, res.Reply)
	assert.Equal(t, 0.5, res.Quality)
}

func TestSendChatRetrievalWithDocuments(t *testing.T) {
	index := &memoryIndex{docs: []store.Document{
		{ID: "1", Title: "Term Life Basics", Source: "product-guide", Content: "Term life covers a fixed period.", Score: 0.9},
	}}
	svc, _ := newTestChatService(index)
	sessionId := createSession(t, svc)

	res, err := svc.SendChat(context.Background(), "user-1", &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          "what is term life insurance?",
	})

	require.NoError(t, err)
	assert.Equal(t, string(store.RouteRetrievalAnswer), res.Route)
	assert.Contains(t, res.Reply, "Term life insurance covers a fixed period.")
	assert.Contains(t, res.Reply, constant.SourcesHeader)
	assert.Equal(t, 0.8, res.Quality)
	assert.Equal(t, constant.StandardDisclaimer, res.Disclaimer)
}

func TestSendChatCalculatorDialogueLocksRouting(t *testing.T) {
	svc, sessions := newTestChatService(&memoryIndex{})
	sessionId := createSession(t, svc)
	ctx := context.Background()

	// Start the calculator
	res, err := svc.SendChat(ctx, "user-1", &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          "calculate how much life insurance I need",
	})
	require.NoError(t, err)
	assert.Equal(t, string(store.RouteCalculatorStart), res.Route)
	assert.Contains(t, res.Reply, "How old are you?")

	// A question mid-dialogue must continue the dialogue, not answer it
	res, err = svc.SendChat(ctx, "user-1", &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          "what is term life insurance?",
	})
	require.NoError(t, err)
	assert.Equal(t, string(store.RouteCalculatorContinue), res.Route)

	session, found := sessions.Get(sessionId)
	require.True(t, found)
	assert.True(t, session.HasActiveCalculator(), "dialogue must survive an off-topic message")

	// Valid answers advance and eventually complete
	for _, answer := range []string{"35", "$85,000", "2"} {
		res, err = svc.SendChat(ctx, "user-1", &dto.SendChatRequest{
			ChatSessionId: sessionId,
			Chat:          answer,
		})
		require.NoError(t, err)
	}
	assert.Contains(t, res.Reply, "Quick coverage estimate")

	session, _ = sessions.Get(sessionId)
	assert.False(t, session.HasActiveCalculator(), "completed dialogue must clear")
}

func TestSendChatRecapBeforeAnyDiscussion(t *testing.T) {
	svc, _ := newTestChatService(&memoryIndex{})
	sessionId := createSession(t, svc)

	res, err := svc.SendChat(context.Background(), "user-1", &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          "what did we discuss so far?",
	})

	require.NoError(t, err)
	assert.Equal(t, string(store.RouteRecap), res.Route)
	assert.Contains(t, res.Reply, "haven't discussed anything yet")
}

func TestSendChatUnknownSession(t *testing.T) {
	svc, _ := newTestChatService(&memoryIndex{})

	_, err := svc.SendChat(context.Background(), "user-1", &dto.SendChatRequest{
		ChatSessionId: "00000000-0000-0000-0000-000000000000",
		Chat:          "hello",
	})

	require.Error(t, err)
}

func TestSendChatWrongUser(t *testing.T) {
	svc, _ := newTestChatService(&memoryIndex{})
	sessionId := createSession(t, svc)

	_, err := svc.SendChat(context.Background(), "someone-else", &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          "hello",
	})

	require.Error(t, err)
}

func TestConcurrentChatAndReads(t *testing.T) {
	svc, _ := newTestChatService(&memoryIndex{})
	sessionId := createSession(t, svc)
	ctx := context.Background()

	// Writers append turns while readers walk the message log; both sides
	// must serialize on the per-session lock.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.SendChat(ctx, "user-1", &dto.SendChatRequest{
				ChatSessionId: sessionId,
				Chat:          "what is term life insurance?",
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.GetHistory(ctx, "user-1", sessionId)
			assert.NoError(t, err)
			_, err = svc.GetAllSessions(ctx, "user-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := svc.GetHistory(ctx, "user-1", sessionId)
	require.NoError(t, err)
	assert.Len(t, history, 16)
}

func TestSessionLifecycle(t *testing.T) {
	svc, _ := newTestChatService(&memoryIndex{})
	ctx := context.Background()
	sessionId := createSession(t, svc)

	list, err := svc.GetAllSessions(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.SendChat(ctx, "user-1", &dto.SendChatRequest{ChatSessionId: sessionId, Chat: "what is term life insurance?"})
	require.NoError(t, err)

	history, err := svc.GetHistory(ctx, "user-1", sessionId)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, history[0].Role)
	assert.Equal(t, constant.ChatMessageRoleAssistant, history[1].Role)

	require.NoError(t, svc.DeleteSession(ctx, "user-1", sessionId))
	_, err = svc.GetHistory(ctx, "user-1", sessionId)
	require.Error(t, err)
}
