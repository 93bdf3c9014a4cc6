package service

import (
	"context"
	"testing"
	"time"

	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchFixture(provider *fakeProvider) (*fakeUow, ISearchService) {
	uow := newFakeUow()
	svc := NewSearchService(
		&fakeUowFactory{uow: uow},
		&stubEmbeddingService{provider: provider},
		time.Second,
		nopLogger{},
	)
	return uow, svc
}

func TestSearchEmptyIndex(t *testing.T) {
	_, svc := newSearchFixture(newFakeProvider())

	res, err := svc.Search(context.Background(), entity.UserID(1), &dto.SearchRequest{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, 0, res.Count)
}

func TestSearchHydratesAndRanks(t *testing.T) {
	provider := newFakeProvider()
	uow, svc := newSearchFixture(provider)
	userId := entity.UserID(1)

	uow.notes.Create(context.Background(), &entity.Note{Id: 1, Title: "groceries", Content: "milk and eggs", UserId: userId})
	uow.transcripts.Create(context.Background(), &entity.Transcript{Id: 1001, Title: "standup", Content: "sprint planning", Summary: "daily sync", UserId: userId})

	uow.embeddings.nearest = []*contract.NearestEmbedding{
		{ItemId: 1001, ItemType: entity.ItemTypeTranscript, Distance: 0.4},
		{ItemId: 1, ItemType: entity.ItemTypeNote, Distance: 0.1},
	}

	res, err := svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "planning"})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)

	// Ordered by relevance descending, independent of scan order.
	assert.Equal(t, entity.ItemTypeNote, res.Results[0].Type)
	assert.InDelta(t, 0.9, res.Results[0].Relevance, 1e-9)
	assert.Equal(t, "groceries", res.Results[0].Title)

	assert.Equal(t, entity.ItemTypeTranscript, res.Results[1].Type)
	assert.InDelta(t, 0.6, res.Results[1].Relevance, 1e-9)
	assert.Equal(t, "daily sync", res.Results[1].Summary)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, provider.callCount())
}

func TestSearchQueryEmbeddingCached(t *testing.T) {
	provider := newFakeProvider()
	_, svc := newSearchFixture(provider)

	_, err := svc.Search(context.Background(), entity.UserID(1), &dto.SearchRequest{Query: "repeated"})
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), entity.UserID(1), &dto.SearchRequest{Query: "repeated"})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.callCount())
}

func TestSearchDropsDeletedRows(t *testing.T) {
	uow, svc := newSearchFixture(newFakeProvider())
	userId := entity.UserID(1)

	uow.notes.Create(context.Background(), &entity.Note{Id: 1, Title: "kept", Content: "text", UserId: userId})
	// Item 2 has a stale vector but no source row.
	uow.embeddings.nearest = []*contract.NearestEmbedding{
		{ItemId: 1, ItemType: entity.ItemTypeNote, Distance: 0.2},
		{ItemId: 2, ItemType: entity.ItemTypeNote, Distance: 0.1},
	}

	res, err := svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "text"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, entity.ItemID(1), res.Results[0].Id)
}

func TestSearchOwnerScoping(t *testing.T) {
	uow, svc := newSearchFixture(newFakeProvider())

	// The vector row claims user 1, but the source row belongs to user 2;
	// hydration must drop it.
	uow.notes.Create(context.Background(), &entity.Note{Id: 5, Title: "secret", Content: "text", UserId: entity.UserID(2)})
	uow.embeddings.nearest = []*contract.NearestEmbedding{
		{ItemId: 5, ItemType: entity.ItemTypeNote, Distance: 0.1},
	}

	res, err := svc.Search(context.Background(), entity.UserID(1), &dto.SearchRequest{Query: "secret"})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
}

func TestSearchDedupeKeepsHigherRelevance(t *testing.T) {
	uow, svc := newSearchFixture(newFakeProvider())
	userId := entity.UserID(1)

	uow.notes.Create(context.Background(), &entity.Note{Id: 1, Title: "dup", Content: "text", UserId: userId})
	uow.embeddings.nearest = []*contract.NearestEmbedding{
		{ItemId: 1, ItemType: entity.ItemTypeNote, Distance: 0.3},
		{ItemId: 1, ItemType: entity.ItemTypeNote, Distance: 0.1},
	}

	res, err := svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "dup"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.InDelta(t, 0.9, res.Results[0].Relevance, 1e-9)
}

func TestSearchLimitClamped(t *testing.T) {
	uow, svc := newSearchFixture(newFakeProvider())
	userId := entity.UserID(1)

	var nearest []*contract.NearestEmbedding
	for i := 1; i <= 60; i++ {
		uow.notes.Create(context.Background(), &entity.Note{Id: entity.ItemID(i), Title: "n", Content: "text", UserId: userId})
		nearest = append(nearest, &contract.NearestEmbedding{
			ItemId: entity.ItemID(i), ItemType: entity.ItemTypeNote, Distance: float64(i) / 100,
		})
	}
	uow.embeddings.nearest = nearest

	res, err := svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "n", Limit: 500})
	require.NoError(t, err)
	assert.Len(t, res.Results, 50)

	res, err = svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "n"})
	require.NoError(t, err)
	assert.Len(t, res.Results, 10)
}

func TestSearchProviderErrorPropagates(t *testing.T) {
	provider := newFakeProvider()
	provider.err = errBoom
	_, svc := newSearchFixture(provider)

	res, err := svc.Search(context.Background(), entity.UserID(1), &dto.SearchRequest{Query: "x"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, errBoom)
}

func TestSearchStoreErrorPropagates(t *testing.T) {
	uow, svc := newSearchFixture(newFakeProvider())
	uow.embeddings.searchErr = errBoom

	res, err := svc.Search(context.Background(), entity.UserID(1), &dto.SearchRequest{Query: "x"})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, errBoom)
}

func TestSearchTimestampPrefersUpdatedAt(t *testing.T) {
	uow, svc := newSearchFixture(newFakeProvider())
	userId := entity.UserID(1)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	uow.notes.Create(context.Background(), &entity.Note{
		Id: 1, Title: "n", Content: "text", UserId: userId,
		CreatedAt: created, UpdatedAt: &updated,
	})
	uow.notes.Create(context.Background(), &entity.Note{
		Id: 2, Title: "n2", Content: "text", UserId: userId,
		CreatedAt: created,
	})
	uow.embeddings.nearest = []*contract.NearestEmbedding{
		{ItemId: 1, ItemType: entity.ItemTypeNote, Distance: 0.1},
		{ItemId: 2, ItemType: entity.ItemTypeNote, Distance: 0.2},
	}

	res, err := svc.Search(context.Background(), userId, &dto.SearchRequest{Query: "text"})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, updated, res.Results[0].Timestamp)
	assert.Equal(t, created, res.Results[1].Timestamp)
}
