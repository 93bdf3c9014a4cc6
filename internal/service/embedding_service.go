package service

import (
	"context"
	"strings"
	"time"

	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/pkg/logger"
	"knowledgebase-be/internal/repository/specification"
	"knowledgebase-be/internal/repository/unitofwork"
	"knowledgebase-be/pkg/embedding"

	"github.com/redis/go-redis/v9"
)

// IEmbeddingService is the write path of the vector index. Both operations
// are invoked fire-and-forget from CRUD handlers, so they report success as a
// bare boolean and never let an error escape.
type IEmbeddingService interface {
	GenerateAndStore(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType, userId entity.UserID) bool
	DeleteEmbedding(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType) bool
	// ResolveProvider constructs the embedding provider configured for this
	// owner. Two owners may resolve to different variants at the same time.
	ResolveProvider(ctx context.Context, userId entity.UserID) (embedding.Provider, error)
}

type embeddingService struct {
	uowFactory   unitofwork.RepositoryFactory
	providerCfg  embedding.Config
	defaultKind  embedding.Kind // applied to owners without a settings row
	embedTimeout time.Duration
	cacheTTL     time.Duration
	rdb          *redis.Client // optional content-hash cache; nil disables it
	logger       logger.ILogger
}

func NewEmbeddingService(
	uowFactory unitofwork.RepositoryFactory,
	providerCfg embedding.Config,
	defaultKind embedding.Kind,
	embedTimeout time.Duration,
	cacheTTL time.Duration,
	rdb *redis.Client,
	sysLogger logger.ILogger,
) IEmbeddingService {
	if embedTimeout <= 0 {
		embedTimeout = 30 * time.Second
	}
	if defaultKind == "" {
		defaultKind = embedding.KindLocal
	}
	return &embeddingService{
		uowFactory:   uowFactory,
		providerCfg:  providerCfg,
		defaultKind:  defaultKind,
		embedTimeout: embedTimeout,
		cacheTTL:     cacheTTL,
		rdb:          rdb,
		logger:       sysLogger,
	}
}

func (s *embeddingService) ResolveProvider(ctx context.Context, userId entity.UserID) (embedding.Provider, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	configured, err := uow.UserSettingRepository().GetEmbeddingProvider(ctx, userId)
	if err != nil {
		return nil, err
	}

	kind := s.defaultKind
	if configured != "" {
		kind, err = embedding.ParseKind(configured)
		if err != nil {
			return nil, err
		}
	}

	provider, err := embedding.New(kind, s.providerCfg)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		return embedding.NewCachedProvider(provider, s.rdb, s.cacheTTL), nil
	}
	return provider, nil
}

func (s *embeddingService) GenerateAndStore(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType, userId entity.UserID) bool {
	// Validation failures return false with no I/O attempted.
	if !itemId.Valid() || !userId.Valid() || !itemType.Valid() {
		s.logger.Warn("Embedding", "Rejected embedding request with invalid arguments", map[string]interface{}{
			"item_id": itemId, "item_type": itemType, "user_id": userId,
		})
		return false
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	title, content, found, err := s.fetchItemText(ctx, uow, itemId, itemType, userId)
	if err != nil {
		s.logger.Error("Embedding", "Failed to fetch item text", map[string]interface{}{
			"item_id": itemId, "item_type": itemType, "error": err.Error(),
		})
		return false
	}
	if !found {
		s.logger.Warn("Embedding", "Item not found, skipping embedding", map[string]interface{}{
			"item_id": itemId, "item_type": itemType,
		})
		return false
	}

	text := ComposeEmbeddingText(title, content)
	if text == "" {
		// An empty vector would sit near everything in the index; skip it.
		s.logger.Info("Embedding", "Item has no text content, skipping embedding", map[string]interface{}{
			"item_id": itemId, "item_type": itemType,
		})
		return false
	}

	provider, err := s.ResolveProvider(ctx, userId)
	if err != nil {
		s.logger.Error("Embedding", "Failed to resolve embedding provider", map[string]interface{}{
			"user_id": userId, "error": err.Error(),
		})
		return false
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vector, err := provider.Generate(embedCtx, text, embedding.TaskTypeDocument)
	if err != nil {
		s.logger.Error("Embedding", "Failed to generate embedding", map[string]interface{}{
			"item_id": itemId, "item_type": itemType, "provider": provider.Kind(), "error": err.Error(),
		})
		return false
	}

	record := &entity.ContentEmbedding{
		ItemId:         itemId,
		ItemType:       itemType,
		UserId:         userId,
		EmbeddingValue: vector,
		CreatedAt:      time.Now(),
	}
	if err := uow.ContentEmbeddingRepository().Upsert(ctx, record); err != nil {
		s.logger.Error("Embedding", "Failed to upsert embedding", map[string]interface{}{
			"item_id": itemId, "item_type": itemType, "error": err.Error(),
		})
		return false
	}

	return true
}

func (s *embeddingService) DeleteEmbedding(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType) bool {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ContentEmbeddingRepository().DeleteByItem(ctx, itemId, itemType); err != nil {
		s.logger.Error("Embedding", "Failed to delete embedding", map[string]interface{}{
			"item_id": itemId, "item_type": itemType, "error": err.Error(),
		})
		return false
	}
	return true
}

func (s *embeddingService) fetchItemText(ctx context.Context, uow unitofwork.UnitOfWork, itemId entity.ItemID, itemType entity.ItemType, userId entity.UserID) (title string, content string, found bool, err error) {
	switch itemType {
	case entity.ItemTypeNote:
		note, err := uow.NoteRepository().FindOne(ctx,
			specification.ByID{ID: itemId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil || note == nil {
			return "", "", false, err
		}
		return note.Title, note.Content, true, nil
	case entity.ItemTypeTranscript:
		transcript, err := uow.TranscriptRepository().FindOne(ctx,
			specification.ByID{ID: itemId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil || transcript == nil {
			return "", "", false, err
		}
		return transcript.Title, transcript.Content, true, nil
	default:
		return "", "", false, nil
	}
}

// ComposeEmbeddingText joins title and body, title first: a bare body often
// omits context the title supplies, and that context matters for recall.
func ComposeEmbeddingText(title string, content string) string {
	return strings.TrimSpace(strings.TrimSpace(title) + "\n\n" + strings.TrimSpace(content))
}
