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

type INoteService interface {
	Create(ctx context.Context, userId entity.UserID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, userId entity.UserID, id entity.ItemID) (*dto.ShowNoteResponse, error)
	List(ctx context.Context, userId entity.UserID) (*dto.ListNotesResponse, error)
	Update(ctx context.Context, userId entity.UserID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, userId entity.UserID, id entity.ItemID) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *nats.Publisher
	logger           logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *nats.Publisher,
	sysLogger logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
	}
}

func (c *noteService) Create(ctx context.Context, userId entity.UserID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note := entity.Note{
		Title:     req.Title,
		Content:   req.Content,
		Summary:   req.Summary,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	if err := c.publishEmbed(ctx, note.Id, userId); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, events.NoteCreated, map[string]interface{}{
		"title":   note.Title,
		"note_id": note.Id,
		"user_id": userId,
	})

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (c *noteService) Show(ctx context.Context, userId entity.UserID, id entity.ItemID) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil // Not found
	}

	return &dto.ShowNoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		Summary:   note.Summary,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

func (c *noteService) List(ctx context.Context, userId entity.UserID) (*dto.ListNotesResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ListNotesResponse{Notes: make([]*dto.ShowNoteResponse, 0, len(notes))}
	for _, note := range notes {
		res.Notes = append(res.Notes, &dto.ShowNoteResponse{
			Id:        note.Id,
			Title:     note.Title,
			Content:   note.Content,
			Summary:   note.Summary,
			CreatedAt: note.CreatedAt,
			UpdatedAt: note.UpdatedAt,
		})
	}
	return res, nil
}

func (c *noteService) Update(ctx context.Context, userId entity.UserID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil
	}

	now := time.Now()
	note.Title = req.Title
	note.Content = req.Content
	note.Summary = req.Summary
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	if err := c.publishEmbed(ctx, note.Id, userId); err != nil {
		return nil, err
	}

	return &dto.UpdateNoteResponse{Id: note.Id}, nil
}

// Delete removes the note and its vector in one transaction so search can
// never surface a hit whose source row is gone.
func (c *noteService) Delete(ctx context.Context, userId entity.UserID, id entity.ItemID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if note == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.ContentEmbeddingRepository().DeleteByItem(ctx, id, entity.ItemTypeNote); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.publishEvent(ctx, events.NoteDeleted, map[string]interface{}{
		"note_id": id,
		"user_id": userId,
	})
	return nil
}

func (c *noteService) publishEmbed(ctx context.Context, noteId entity.ItemID, userId entity.UserID) error {
	payload := dto.PublishEmbedItemMessage{
		ItemId:   noteId,
		ItemType: entity.ItemTypeNote,
		UserId:   userId,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, payloadJson)
}

// Events feed the notification system; a publish failure never fails the
// request.
func (c *noteService) publishEvent(ctx context.Context, eventType events.Type, data map[string]interface{}) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.logger.Warn("Note", "Failed to publish event", map[string]interface{}{
			"event": eventType, "error": err.Error(),
		})
	}
}
