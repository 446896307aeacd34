package bootstrap

import (
	"log"

	"ai-advisor-be/internal/config"
	"ai-advisor-be/internal/controller"
	"ai-advisor-be/internal/pkg/logger"
	sessionstore "ai-advisor-be/internal/repository/memory"
	"ai-advisor-be/internal/service"
	"ai-advisor-be/internal/websocket"
	"ai-advisor-be/pkg/ai/intent"
	"ai-advisor-be/pkg/ai/router"
	"ai-advisor-be/pkg/calculator"
	"ai-advisor-be/pkg/embedding"
	"ai-advisor-be/pkg/llm/factory"
	convmemory "ai-advisor-be/pkg/memory"
	"ai-advisor-be/pkg/rag"
	"ai-advisor-be/pkg/review"
	"ai-advisor-be/pkg/vectorindex/pgvector"
	"ai-advisor-be/pkg/websearch"

	pkgNats "ai-advisor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

const knowledgeTopic = "EMBED_KNOWLEDGE_ARTICLE"

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    service.IAuditService // nil when NATS is unavailable

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	pipelineLog := log.Default()

	// 1. Event Bus (in-process)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2. AI Providers
	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
	)
	log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)

	llmProvider, err := factory.NewLLMProvider(cfg.Ai)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3. Storage
	vectorIndex := pgvector.NewIndex(db)
	sessionRepo := sessionstore.NewSessionRepository(cfg.Advisor.SessionTTL)

	var webProvider websearch.Provider
	if cfg.Advisor.WebSearchURL != "" {
		webProvider = websearch.NewHTTPProvider(cfg.Advisor.WebSearchURL, cfg.Advisor.WebSearchAPIKey)
		log.Printf("[INFO] Web search supplement enabled")
	}

	// 4. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	var auditService service.IAuditService
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber, usage audit disabled: %v", err)
	} else {
		auditService = service.NewAuditService(natsSub, pipelineLog)
	}

	wsLogger := logger.NewIsolatedLogger("logs/push.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	// 5. Advisory Pipeline
	classifier := intent.NewClassifier(llmProvider, pipelineLog)
	decisionRouter := router.NewRouter(pipelineLog)
	memoryManager := convmemory.NewManager(pipelineLog)
	ragEngine := rag.NewEngine(llmProvider, embeddingProvider, vectorIndex, webProvider, pipelineLog)
	calcManager := calculator.NewManager(llmProvider, calculator.ReferenceCalculator{}, pipelineLog)
	reviewer := review.NewReviewer(llmProvider, pipelineLog)

	// 6. Services
	knowledgeService := service.NewKnowledgeService(pubSub, knowledgeTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		knowledgeTopic,
		embeddingProvider,
		vectorIndex,
	)

	chatService := service.NewChatService(
		sessionRepo,
		classifier,
		decisionRouter,
		memoryManager,
		ragEngine,
		calcManager,
		reviewer,
		llmProvider,
		natsPub,
		wsHub,
		cfg.Advisor.TurnTimeout,
		pipelineLog,
	)

	// 7. Controllers
	return &Container{
		ChatController:      controller.NewChatController(chatService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		ConsumerService:     consumerService,
		AuditService:        auditService,
		WebSocketHub:        wsHub,
	}
}
