package service

import (
	"context"
	"encoding/json"

	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the embed topic fed by the CRUD layer. The embedding
// service already converts every failure into a logged boolean, so messages
// are always acked; a bad item must never wedge the pipeline.
type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	embeddingService IEmbeddingService
	logger           logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	embeddingService IEmbeddingService,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		embeddingService: embeddingService,
		logger:           sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishEmbedItemMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal embed message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ok := cs.embeddingService.GenerateAndStore(ctx, payload.ItemId, payload.ItemType, payload.UserId)
	if ok {
		cs.logger.Info("Consumer", "Embedding stored", map[string]interface{}{
			"item_id": payload.ItemId, "item_type": payload.ItemType,
		})
	}
}
