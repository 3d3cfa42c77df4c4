package bootstrap

import (
	"context"
	"log"
	"time"

	"cardiac-assistant-be/internal/config"
	"cardiac-assistant-be/internal/controller"
	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/internal/pkg/serverutils"
	"cardiac-assistant-be/internal/repository/implementation"
	"cardiac-assistant-be/internal/repository/memory"
	"cardiac-assistant-be/internal/service"
	"cardiac-assistant-be/internal/websocket"
	"cardiac-assistant-be/pkg/embedding"
	"cardiac-assistant-be/pkg/embedding/jina"
	"cardiac-assistant-be/pkg/llm/factory"
	pktNats "cardiac-assistant-be/pkg/nats"
	ragcontext "cardiac-assistant-be/pkg/rag/context"
	"cardiac-assistant-be/pkg/rag/executor"
	"cardiac-assistant-be/pkg/rag/response"
	"cardiac-assistant-be/pkg/rag/router"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	DocumentController  controller.IDocumentController
	AssistantWsHandler  *websocket.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func() error
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// Redis (embedding cache only; optional)
	rdb := newRedisClient(cfg.App.RedisURL)

	embeddingProvider := newEmbeddingProvider(cfg)
	if rdb != nil {
		embeddingProvider = embedding.NewCachedProvider(
			embeddingProvider,
			rdb,
			cfg.Ai.EmbeddingProvider+":"+cfg.Ai.EmbeddingModel,
			cfg.Retrieval.EmbeddingCacheTTL,
			sysLogger,
		)
		log.Printf("[INFO] Embedding cache enabled (ttl %s)", cfg.Retrieval.EmbeddingCacheTTL)
	}

	llmBaseURL := cfg.Ai.LLMBaseURL
	if cfg.Ai.LLMProvider == "ollama" && llmBaseURL == "" {
		llmBaseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, llmBaseURL, cfg.LLMAPIKey())
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// NATS audit stream (optional)
	var eventPublisher executor.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}

	// Repositories
	documentRepo := implementation.NewClinicalDocumentRepository(db)
	conversationRepo := memory.NewConversationRepository(cfg.Retrieval.SessionTTL)

	// RAG pipeline
	pipeline := executor.NewPipeline(
		router.NewClassifier(llmProvider, sysLogger, cfg.Ai.ClassifierTemperature),
		ragcontext.NewAssembler(embeddingProvider, documentRepo, sysLogger, ragcontext.Config{
			QueryLimit: cfg.Retrieval.QueryLimit,
			TopK:       cfg.Retrieval.TopK,
		}),
		response.NewGenerator(llmProvider, sysLogger, cfg.Ai.GenerationTemperature),
		eventPublisher,
		sysLogger,
		cfg.Retrieval.HistoryWindow,
	)

	// Services
	publisherService := service.NewPublisherService(cfg.Events.IndexDocumentTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Events.IndexDocumentTopic,
		documentRepo,
		embeddingProvider,
		eventPublisher,
		sysLogger,
	)
	assistantService := service.NewAssistantService(pipeline, conversationRepo, documentRepo, sysLogger)
	documentService := service.NewDocumentService(publisherService, documentRepo, sysLogger)

	// Controllers
	auth := serverutils.NewJwtMiddleware(cfg.App.JwtSecret, cfg.App.AuthEnabled)
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)

	c := &Container{
		AssistantController: controller.NewAssistantController(assistantService, auth),
		DocumentController:  controller.NewDocumentController(documentService, auth),
		AssistantWsHandler:  websocket.NewHandler(assistantService, auth, wsLogger),
		ConsumerService:     consumerService,
		Logger:              sysLogger,
	}

	c.closers = append(c.closers, pubSub.Close)
	if natsPub != nil {
		c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
	}
	if rdb != nil {
		c.closers = append(c.closers, rdb.Close)
	}
	c.closers = append(c.closers, sysLogger.Sync, wsLogger.Sync)

	return c
}

// Close releases brokers and flushes logs, in that order.
func (c *Container) Close() {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			log.Printf("[WARN] Shutdown: %v", err)
		}
	}
}

func newEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	case "jina":
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
		return jina.NewJinaProvider(cfg.Keys.Jina, "", "")
	default:
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	}
}

// newRedisClient returns nil when Redis is unreachable; embeddings then go
// straight to the provider.
func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (embedding cache disabled)", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
