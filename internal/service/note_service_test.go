package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) messages(t *testing.T) []dto.PublishEmbedItemMessage {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]dto.PublishEmbedItemMessage, 0, len(p.payloads))
	for _, raw := range p.payloads {
		var msg dto.PublishEmbedItemMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		out = append(out, msg)
	}
	return out
}

func newNoteFixture() (*fakeUow, *fakePublisher, INoteService) {
	uow := newFakeUow()
	pub := &fakePublisher{}
	svc := NewNoteService(&fakeUowFactory{uow: uow}, pub, nil, nopLogger{})
	return uow, pub, svc
}

func TestNoteCreatePublishesEmbedMessage(t *testing.T) {
	uow, pub, svc := newNoteFixture()
	userId := entity.UserID(1)

	res, err := svc.Create(context.Background(), userId, &dto.CreateNoteRequest{
		Title: "groceries", Content: "milk and eggs",
	})
	require.NoError(t, err)
	require.True(t, res.Id.Valid())

	stored := uow.notes.findById(res.Id)
	require.NotNil(t, stored)
	assert.Equal(t, userId, stored.UserId)

	msgs := pub.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, res.Id, msgs[0].ItemId)
	assert.Equal(t, entity.ItemTypeNote, msgs[0].ItemType)
	assert.Equal(t, userId, msgs[0].UserId)
}

func TestNoteUpdatePublishesEmbedMessage(t *testing.T) {
	uow, pub, svc := newNoteFixture()
	userId := entity.UserID(1)

	note := &entity.Note{Title: "old", Content: "old", UserId: userId}
	require.NoError(t, uow.notes.Create(context.Background(), note))

	res, err := svc.Update(context.Background(), userId, &dto.UpdateNoteRequest{
		Id: note.Id, Title: "new", Content: "new body",
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	stored := uow.notes.findById(note.Id)
	assert.Equal(t, "new", stored.Title)
	assert.NotNil(t, stored.UpdatedAt)

	msgs := pub.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, note.Id, msgs[0].ItemId)
}

func TestNoteUpdateNotOwned(t *testing.T) {
	uow, pub, svc := newNoteFixture()

	note := &entity.Note{Title: "t", Content: "c", UserId: entity.UserID(2)}
	require.NoError(t, uow.notes.Create(context.Background(), note))

	res, err := svc.Update(context.Background(), entity.UserID(1), &dto.UpdateNoteRequest{
		Id: note.Id, Title: "hijack",
	})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, pub.messages(t))
}

func TestNoteDeleteRemovesEmbedding(t *testing.T) {
	uow, _, svc := newNoteFixture()
	userId := entity.UserID(1)

	note := &entity.Note{Title: "t", Content: "c", UserId: userId}
	require.NoError(t, uow.notes.Create(context.Background(), note))
	require.NoError(t, uow.embeddings.Upsert(context.Background(), &entity.ContentEmbedding{
		ItemId: note.Id, ItemType: entity.ItemTypeNote, UserId: userId,
	}))

	require.NoError(t, svc.Delete(context.Background(), userId, note.Id))

	assert.Nil(t, uow.notes.findById(note.Id))
	assert.Equal(t, 0, uow.embeddings.rowCount())
}

func TestNoteDeleteMissingIsNoop(t *testing.T) {
	_, _, svc := newNoteFixture()
	assert.NoError(t, svc.Delete(context.Background(), entity.UserID(1), entity.ItemID(42)))
}
