package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-advisor-be/internal/constant"
	"ai-advisor-be/internal/dto"
	sessionstore "ai-advisor-be/internal/repository/memory"
	"ai-advisor-be/internal/websocket"
	"ai-advisor-be/pkg/ai/intent"
	"ai-advisor-be/pkg/ai/router"
	"ai-advisor-be/pkg/calculator"
	"ai-advisor-be/pkg/events"
	"ai-advisor-be/pkg/llm"
	convmemory "ai-advisor-be/pkg/memory"
	pkgnats "ai-advisor-be/pkg/nats"
	"ai-advisor-be/pkg/rag"
	"ai-advisor-be/pkg/review"
	"ai-advisor-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatService interface {
	CreateSession(ctx context.Context, userID string) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userID string) ([]dto.GetAllSessionsResponse, error)
	GetHistory(ctx context.Context, userID, sessionID string) ([]dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
	SendChat(ctx context.Context, userID string, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	sessions    *sessionstore.SessionRepository
	classifier  *intent.Classifier
	router      *router.Router
	memory      *convmemory.Manager
	ragEngine   *rag.Engine
	calcManager *calculator.Manager
	reviewer    *review.Reviewer
	llmProvider llm.LLMProvider
	natsPub     *pkgnats.Publisher
	wsHub       *websocket.Hub
	turnTimeout time.Duration
	logger      *log.Logger
}

func NewChatService(
	sessions *sessionstore.SessionRepository,
	classifier *intent.Classifier,
	rtr *router.Router,
	memoryManager *convmemory.Manager,
	ragEngine *rag.Engine,
	calcManager *calculator.Manager,
	reviewer *review.Reviewer,
	llmProvider llm.LLMProvider,
	natsPub *pkgnats.Publisher,
	wsHub *websocket.Hub,
	turnTimeout time.Duration,
	logger *log.Logger,
) IChatService {
	return &chatService{
		sessions:    sessions,
		classifier:  classifier,
		router:      rtr,
		memory:      memoryManager,
		ragEngine:   ragEngine,
		calcManager: calcManager,
		reviewer:    reviewer,
		llmProvider: llmProvider,
		natsPub:     natsPub,
		wsHub:       wsHub,
		turnTimeout: turnTimeout,
		logger:      logger,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userID string) (*dto.CreateSessionResponse, error) {
	session := &store.Session{
		ID:     uuid.New().String(),
		UserID: userID,
	}
	s.sessions.Save(session)

	s.publishEvent(events.NewSessionCreatedEvent(session.ID, userID))

	return &dto.CreateSessionResponse{Id: session.ID}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context, userID string) ([]dto.GetAllSessionsResponse, error) {
	sessions := s.sessions.List(userID)

	res := make([]dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		// Message log and context mutate during in-flight turns; reads
		// take the same per-session lock SendChat holds.
		lock := s.sessions.Lock(session.ID)
		lock.Lock()
		res = append(res, dto.GetAllSessionsResponse{
			Id:         session.ID,
			Topic:      session.Context.CurrentTopic,
			Turns:      len(session.Messages),
			LastActive: session.LastActive,
		})
		lock.Unlock()
	}
	return res, nil
}

func (s *chatService) GetHistory(ctx context.Context, userID, sessionID string) ([]dto.GetChatHistoryResponse, error) {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	lock := s.sessions.Lock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	res := make([]dto.GetChatHistoryResponse, 0, len(session.Messages))
	for _, turn := range session.Messages {
		res = append(res, dto.GetChatHistoryResponse{Role: turn.Role, Chat: turn.Content})
	}
	return res, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return err
	}

	// Serialize with any in-flight turn before dropping the session.
	lock := s.sessions.Lock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	s.sessions.Delete(sessionID)
	return nil
}

// SendChat processes one conversational turn end to end. Turns for the
// same session are serialized by a per-session lock; the whole turn runs
// under one deadline and degrades to an apology instead of erroring.
func (s *chatService) SendChat(ctx context.Context, userID string, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	session, err := s.ownedSession(userID, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	lock := s.sessions.Lock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	turnCtx, cancel := context.WithTimeout(ctx, s.turnTimeout)
	defer cancel()

	started := time.Now()
	outcome := s.processTurn(turnCtx, session, req.Chat)

	session.AppendTurn(constant.ChatMessageRoleUser, req.Chat)
	session.AppendTurn(constant.ChatMessageRoleAssistant, outcome.reply)
	s.sessions.Save(session)

	latency := time.Since(started)
	s.logger.Printf("[ORCHESTRATOR] Turn done: session=%s route=%s quality=%.2f latency=%s",
		session.ID, outcome.route.Kind, outcome.quality, latency)

	s.publishEvent(events.NewTurnProcessedEvent(session.ID, userID, string(outcome.route.Kind), outcome.quality, latency))
	if s.wsHub != nil {
		s.wsHub.Send(userID, websocket.Push{Type: "turn_processed", Data: fiber.Map{
			"chat_session_id": session.ID,
			"route":           outcome.route.Kind,
			"quality":         outcome.quality,
		}})
	}

	return &dto.SendChatResponse{
		ChatSessionId: session.ID,
		Reply:         outcome.reply,
		Route:         string(outcome.route.Kind),
		Quality:       outcome.quality,
		Sources:       outcome.sources,
		Disclaimer:    outcome.disclaimer,
	}, nil
}

// turnOutcome is the internal result of one dispatched turn.
type turnOutcome struct {
	reply      string
	route      store.RoutingDecision
	quality    float64
	sources    []string
	disclaimer string
}

// processTurn classifies, routes and dispatches one message. Every path
// produces a reply; a blown deadline resolves to the generic apology.
func (s *chatService) processTurn(ctx context.Context, session *store.Session, text string) turnOutcome {
	calcActive := session.HasActiveCalculator()

	// Mid-dialogue calculator messages are never reclassified.
	var intentResult store.IntentResult
	if !calcActive {
		intentResult = s.classifier.Classify(ctx, text, s.memory.Snapshot(&session.Context))
	}

	decision := s.router.Decide(text, intentResult, session.Context, calcActive)

	outcome := s.dispatch(ctx, session, text, intentResult, decision)
	outcome.route = decision

	if ctx.Err() != nil {
		s.logger.Printf("[ORCHESTRATOR] Turn deadline exceeded for session %s, degrading to apology", session.ID)
		return turnOutcome{
			reply:   constant.GenericApology,
			route:   decision,
			quality: 0,
		}
	}

	// Calculator turns are questionnaire mechanics; folding them into
	// conversational memory would pollute topic tracking.
	if !calcActive && decision.Kind != store.RouteCalculatorContinue {
		s.memory.Update(&session.Context, text, intentResult.Category, intentResult.Goal, outcome.reply)
	}

	return outcome
}

func (s *chatService) dispatch(ctx context.Context, session *store.Session, text string, intentResult store.IntentResult, decision store.RoutingDecision) turnOutcome {
	switch decision.Kind {
	case store.RouteCalculatorContinue:
		cs := session.Calculator
		reply := s.calcManager.Continue(ctx, session, text)
		if cs != nil && cs.State == store.CalcStateCompleted {
			s.publishEvent(events.NewCalculatorCompletedEvent(session.ID, cs.Variant, cs.Result))
		}
		return turnOutcome{reply: reply, disclaimer: constant.StandardDisclaimer}

	case store.RouteCalculatorSelect:
		return turnOutcome{reply: s.calcManager.StartSelection(session)}

	case store.RouteCalculatorStart:
		return turnOutcome{reply: s.calcManager.Start(session, decision.Metadata["calculator"])}

	case store.RouteRetrievalAnswer:
		return s.retrievalAnswer(ctx, session, text, decision)

	case store.RouteRecap:
		return turnOutcome{reply: s.buildRecap(ctx, session), quality: decision.Confidence}

	case store.RouteToolHandoff:
		return turnOutcome{
			reply: fmt.Sprintf("Document analysis is handled by the %s tool. Please upload your document there and I can discuss the findings with you afterwards.", decision.Tool),
		}

	default:
		return s.plainAnswer(ctx, session, text)
	}
}

func (s *chatService) retrievalAnswer(ctx context.Context, session *store.Session, text string, decision store.RoutingDecision) turnOutcome {
	query := text

	// A follow-up like "tell me more about that" retrieves poorly on its
	// own; anchor it to the live topic before expansion.
	if isFollowUp, referent, _ := s.memory.ResolveFollowUp(&session.Context, text); isFollowUp {
		query = fmt.Sprintf("%s (regarding %s)", text, referent)
	}

	allowExternal := decision.Metadata["allow_external_search"] == "true"
	result := s.ragEngine.Answer(ctx, query, session.Context, s.memory.Summary(&session.Context), allowExternal)

	reviewed := s.reviewer.Review(ctx, result.Answer)

	return turnOutcome{
		reply:      reviewed.Answer,
		quality:    result.Quality,
		sources:    result.Sources,
		disclaimer: constant.StandardDisclaimer,
	}
}

func (s *chatService) plainAnswer(ctx context.Context, session *store.Session, text string) turnOutcome {
	var prompt strings.Builder
	prompt.WriteString("You are a financial guidance assistant. Give a short, educational answer. Never promise returns or give directive purchase advice.\n\n")
	if summary := s.memory.Summary(&session.Context); summary != "" {
		prompt.WriteString("Conversation memory:\n")
		prompt.WriteString(summary)
		prompt.WriteString("\n")
	}
	prompt.WriteString("User: ")
	prompt.WriteString(text)

	answer, err := s.llmProvider.Generate(ctx, prompt.String(), llm.WithTemperature(0.5))
	if err != nil {
		s.logger.Printf("[ORCHESTRATOR] Plain answer failed: %v", err)
		return turnOutcome{reply: constant.GenericApology}
	}

	reviewed := s.reviewer.Review(ctx, strings.TrimSpace(answer))

	return turnOutcome{
		reply:      reviewed.Answer,
		quality:    reviewed.Score,
		disclaimer: constant.StandardDisclaimer,
	}
}

// buildRecap summarizes the conversation from the session's own state.
// The deterministic fallback keeps recap working even with the model down.
func (s *chatService) buildRecap(ctx context.Context, session *store.Session) string {
	if len(session.Messages) == 0 {
		return "We haven't discussed anything yet. Ask me about insurance products, retirement planning, or run one of the calculators."
	}

	var history strings.Builder
	start := 0
	if len(session.Messages) > 20 {
		start = len(session.Messages) - 20
	}
	for _, turn := range session.Messages[start:] {
		history.WriteString(turn.Role)
		history.WriteString(": ")
		history.WriteString(truncate(turn.Content, 300))
		history.WriteString("\n")
	}

	prompt := fmt.Sprintf("Summarize this financial-guidance conversation in a few sentences for the user. Mention topics covered and any stated goals.\n\n%s", history.String())
	recap, err := s.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err == nil && strings.TrimSpace(recap) != "" {
		return strings.TrimSpace(recap)
	}

	s.logger.Printf("[ORCHESTRATOR] LLM recap failed, using deterministic summary: %v", err)
	var sb strings.Builder
	sb.WriteString("So far we've covered: ")
	if len(session.Context.Themes) > 0 {
		sb.WriteString(strings.Join(session.Context.Themes, ", "))
	} else {
		sb.WriteString("general questions")
	}
	if len(session.Context.Goals) > 0 {
		sb.WriteString(". Your stated goals: ")
		sb.WriteString(strings.Join(session.Context.Goals, "; "))
	}
	sb.WriteString(".")
	return sb.String()
}

func (s *chatService) ownedSession(userID, sessionID string) (*store.Session, error) {
	session, found := s.sessions.Get(sessionID)
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}
	if session.UserID != userID {
		return nil, fiber.NewError(fiber.StatusForbidden, "chat session belongs to another user")
	}
	return session, nil
}

func (s *chatService) publishEvent(event events.Event) {
	if s.natsPub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.natsPub.Publish(ctx, event); err != nil {
			s.logger.Printf("[ORCHESTRATOR] Event publish failed (%s): %v", event.EventType(), err)
		}
	}()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
