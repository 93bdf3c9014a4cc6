package bootstrap

import (
	"context"
	"log"

	"knowledgebase-be/internal/config"
	"knowledgebase-be/internal/controller"
	"knowledgebase-be/internal/pkg/logger"
	"knowledgebase-be/internal/repository/unitofwork"
	"knowledgebase-be/internal/service"
	"knowledgebase-be/internal/websocket"
	"knowledgebase-be/pkg/embedding"
	pktNats "knowledgebase-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController       controller.IAuthController
	NoteController       controller.INoteController
	TranscriptController controller.ITranscriptController
	SearchController     controller.ISearchController
	ReindexController    controller.IReindexController
	SettingController    controller.ISettingController

	// Background services (exposed for main.go to run)
	ConsumerService     service.IConsumerService
	RegenerationService service.IRegenerationService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil // services treat a nil client as cache-disabled
	}

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Embedding provider configuration
	providerCfg := embedding.Config{
		GeminiApiKey:  cfg.Keys.GoogleGemini,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OllamaModel:   cfg.Ai.OllamaModel,
	}

	// Validate the configured default at boot. An unknown kind, or a remote
	// default missing its credential, degrades to local instead of failing
	// every owner without a settings row.
	defaultKind, err := embedding.ParseKind(cfg.Ai.DefaultEmbeddingProvider)
	if err != nil {
		log.Printf("[WARN] Invalid EMBEDDING_PROVIDER %q, using local", cfg.Ai.DefaultEmbeddingProvider)
		defaultKind = embedding.KindLocal
	}
	defaultKind = embedding.NewWithFallback(defaultKind, providerCfg).Kind()
	log.Printf("[INFO] Default embedding provider: %s", defaultKind)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedContentTopic, pubSub)
	embeddingService := service.NewEmbeddingService(
		uowFactory,
		providerCfg,
		defaultKind,
		cfg.Ai.EmbedTimeout,
		cfg.Ai.EmbedCacheTTL,
		rdb,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedContentTopic,
		embeddingService,
		sysLogger,
	)
	regenerationService := service.NewRegenerationService(
		uowFactory,
		embeddingService,
		cfg.Ai.EmbedTimeout,
		wsHub,
		natsPub,
		sysLogger,
	)
	searchService := service.NewSearchService(uowFactory, embeddingService, cfg.Ai.EmbedTimeout, sysLogger)
	noteService := service.NewNoteService(uowFactory, publisherService, natsPub, sysLogger)
	transcriptService := service.NewTranscriptService(uowFactory, publisherService, natsPub, sysLogger)
	authService := service.NewAuthService(uowFactory)
	settingService := service.NewSettingService(uowFactory, defaultKind)

	// 6. Controllers
	return &Container{
		AuthController:       controller.NewAuthController(authService),
		NoteController:       controller.NewNoteController(noteService),
		TranscriptController: controller.NewTranscriptController(transcriptService),
		SearchController:     controller.NewSearchController(searchService),
		ReindexController:    controller.NewReindexController(regenerationService),
		SettingController:    controller.NewSettingController(settingService),
		ConsumerService:      consumerService,
		RegenerationService:  regenerationService,
		WebSocketHub:         wsHub,
	}
}
