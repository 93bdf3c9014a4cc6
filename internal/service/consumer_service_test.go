package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/entity"
	"knowledgebase-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingEmbeddingService captures GenerateAndStore invocations.
type recordingEmbeddingService struct {
	mu    sync.Mutex
	calls []dto.PublishEmbedItemMessage
}

func (s *recordingEmbeddingService) GenerateAndStore(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType, userId entity.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, dto.PublishEmbedItemMessage{ItemId: itemId, ItemType: itemType, UserId: userId})
	return true
}

func (s *recordingEmbeddingService) DeleteEmbedding(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType) bool {
	return true
}

func (s *recordingEmbeddingService) ResolveProvider(ctx context.Context, userId entity.UserID) (embedding.Provider, error) {
	return newFakeProvider(), nil
}

func (s *recordingEmbeddingService) snapshot() []dto.PublishEmbedItemMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.PublishEmbedItemMessage, len(s.calls))
	copy(out, s.calls)
	return out
}

func TestConsumerProcessesPublishedMessages(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	recorder := &recordingEmbeddingService{}
	consumer := NewConsumerService(pubSub, "EMBED_CONTENT", recorder, nopLogger{})
	publisher := NewPublisherService("EMBED_CONTENT", pubSub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	want := dto.PublishEmbedItemMessage{ItemId: 7, ItemType: entity.ItemTypeTranscript, UserId: 3}
	payload, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, payload))

	require.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, want, recorder.snapshot()[0])
}

func TestConsumerSkipsMalformedMessages(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	recorder := &recordingEmbeddingService{}
	consumer := NewConsumerService(pubSub, "EMBED_CONTENT", recorder, nopLogger{})
	publisher := NewPublisherService("EMBED_CONTENT", pubSub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, publisher.Publish(ctx, []byte("not json")))

	good := dto.PublishEmbedItemMessage{ItemId: 1, ItemType: entity.ItemTypeNote, UserId: 1}
	payload, _ := json.Marshal(good)
	require.NoError(t, publisher.Publish(ctx, payload))

	// The malformed message is acked and dropped; the next one still flows.
	require.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, good, recorder.snapshot()[0])
}
