package service

import (
	"context"
	"encoding/json"
	"time"

	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/pkg/logger"
	"knowledgebase-be/internal/repository/specification"
	"knowledgebase-be/internal/repository/unitofwork"
	"knowledgebase-be/pkg/events"
	"knowledgebase-be/pkg/nats"
)

type ITranscriptService interface {
	Create(ctx context.Context, userId entity.UserID, req *dto.CreateTranscriptRequest) (*dto.CreateTranscriptResponse, error)
	Show(ctx context.Context, userId entity.UserID, id entity.ItemID) (*dto.ShowTranscriptResponse, error)
	Update(ctx context.Context, userId entity.UserID, req *dto.UpdateTranscriptRequest) (*dto.UpdateTranscriptResponse, error)
	Delete(ctx context.Context, userId entity.UserID, id entity.ItemID) error
}

type transcriptService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *nats.Publisher
	logger           logger.ILogger
}

func NewTranscriptService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *nats.Publisher,
	sysLogger logger.ILogger,
) ITranscriptService {
	return &transcriptService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
	}
}

func (c *transcriptService) Create(ctx context.Context, userId entity.UserID, req *dto.CreateTranscriptRequest) (*dto.CreateTranscriptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	transcript := entity.Transcript{
		Title:           req.Title,
		Content:         req.Content,
		Summary:         req.Summary,
		Segments:        req.Segments,
		DurationSeconds: req.DurationSeconds,
		UserId:          userId,
		CreatedAt:       time.Now(),
	}

	if err := uow.TranscriptRepository().Create(ctx, &transcript); err != nil {
		return nil, err
	}

	if err := c.publishEmbed(ctx, transcript.Id, userId); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.TranscriptCreated, map[string]interface{}{
		"title":         transcript.Title,
		"transcript_id": transcript.Id,
		"user_id":       userId,
	})

	return &dto.CreateTranscriptResponse{Id: transcript.Id}, nil
}

func (c *transcriptService) Show(ctx context.Context, userId entity.UserID, id entity.ItemID) (*dto.ShowTranscriptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	transcript, err := uow.TranscriptRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if transcript == nil {
		return nil, nil
	}

	return &dto.ShowTranscriptResponse{
		Id:              transcript.Id,
		Title:           transcript.Title,
		Content:         transcript.Content,
		Summary:         transcript.Summary,
		Segments:        json.RawMessage(transcript.Segments),
		DurationSeconds: transcript.DurationSeconds,
		CreatedAt:       transcript.CreatedAt,
		UpdatedAt:       transcript.UpdatedAt,
	}, nil
}

func (c *transcriptService) Update(ctx context.Context, userId entity.UserID, req *dto.UpdateTranscriptRequest) (*dto.UpdateTranscriptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	transcript, err := uow.TranscriptRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if transcript == nil {
		return nil, nil
	}

	now := time.Now()
	transcript.Title = req.Title
	transcript.Content = req.Content
	transcript.Summary = req.Summary
	transcript.UpdatedAt = &now

	if err := uow.TranscriptRepository().Update(ctx, transcript); err != nil {
		return nil, err
	}

	if err := c.publishEmbed(ctx, transcript.Id, userId); err != nil {
		return nil, err
	}

	return &dto.UpdateTranscriptResponse{Id: transcript.Id}, nil
}

func (c *transcriptService) Delete(ctx context.Context, userId entity.UserID, id entity.ItemID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	transcript, err := uow.TranscriptRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if transcript == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.TranscriptRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.ContentEmbeddingRepository().DeleteByItem(ctx, id, entity.ItemTypeTranscript); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.publishEvent(ctx, events.TranscriptDeleted, map[string]interface{}{
		"transcript_id": id,
		"user_id":       userId,
	})
	return nil
}

func (c *transcriptService) publishEmbed(ctx context.Context, transcriptId entity.ItemID, userId entity.UserID) error {
	payload := dto.PublishEmbedItemMessage{
		ItemId:   transcriptId,
		ItemType: entity.ItemTypeTranscript,
		UserId:   userId,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, payloadJson)
}

func (c *transcriptService) publishEvent(ctx context.Context, eventType events.Type, data map[string]interface{}) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("Transcript", "Failed to publish event", map[string]interface{}{
			"event": eventType, "error": err.Error(),
		})
	}
}
