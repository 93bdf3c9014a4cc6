package service

import (
	"context"
	"sort"
	"time"

	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/pkg/logger"
	"knowledgebase-be/internal/repository/contract"
	"knowledgebase-be/internal/repository/specification"
	"knowledgebase-be/internal/repository/unitofwork"
	"knowledgebase-be/pkg/embedding"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type ISearchService interface {
	// Search embeds the query, scans the owner's vector index, and hydrates
	// the hits into ranked results. Errors propagate to the caller; search is
	// user-facing, not fire-and-forget.
	Search(ctx context.Context, userId entity.UserID, request *dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchService struct {
	uowFactory       unitofwork.RepositoryFactory
	embeddingService IEmbeddingService
	embedTimeout     time.Duration
	queryCache       *gocache.Cache
	logger           logger.ILogger
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingService IEmbeddingService,
	embedTimeout time.Duration,
	sysLogger logger.ILogger,
) ISearchService {
	if embedTimeout <= 0 {
		embedTimeout = 30 * time.Second
	}
	return &searchService{
		uowFactory:       uowFactory,
		embeddingService: embeddingService,
		embedTimeout:     embedTimeout,
		queryCache:       gocache.New(5*time.Minute, 10*time.Minute),
		logger:           sysLogger,
	}
}

func (s *searchService) Search(ctx context.Context, userId entity.UserID, request *dto.SearchRequest) (*dto.SearchResponse, error) {
	limit := request.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	provider, err := s.embeddingService.ResolveProvider(ctx, userId)
	if err != nil {
		return nil, err
	}

	queryVector, err := s.embedQuery(ctx, provider, request.Query)
	if err != nil {
		s.logger.Error("Search", "Failed to embed query", map[string]interface{}{
			"user_id": userId, "provider": provider.Kind(), "error": err.Error(),
		})
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Over-fetch slightly so dedupe cannot shrink the page below limit.
	neighbors, err := uow.ContentEmbeddingRepository().SearchNearest(ctx, queryVector, userId, limit+5)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return &dto.SearchResponse{Results: []dto.SearchResultResponse{}, Count: 0}, nil
	}

	results, err := s.hydrate(ctx, uow, userId, neighbors)
	if err != nil {
		return nil, err
	}

	results = dedupeResults(results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > limit {
		results = results[:limit]
	}

	return &dto.SearchResponse{Results: results, Count: len(results)}, nil
}

// embedQuery memoizes the query vector per provider kind. Repeated searches
// for the same phrase (typo-fix, pagination, refresh) skip the provider call.
func (s *searchService) embedQuery(ctx context.Context, provider embedding.Provider, query string) ([]float32, error) {
	key := string(provider.Kind()) + ":" + query
	if cached, ok := s.queryCache.Get(key); ok {
		if vector, ok := cached.([]float32); ok {
			return vector, nil
		}
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vector, err := provider.Generate(embedCtx, query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, err
	}
	s.queryCache.Set(key, vector, gocache.DefaultExpiration)
	return vector, nil
}

// hydrate loads the matched rows in at most two batch reads, one per item
// type, and maps each neighbor to a response row. A neighbor whose source row
// has since been deleted is silently dropped.
func (s *searchService) hydrate(ctx context.Context, uow unitofwork.UnitOfWork, userId entity.UserID, neighbors []*contract.NearestEmbedding) ([]dto.SearchResultResponse, error) {
	var noteIds, transcriptIds []entity.ItemID
	for _, n := range neighbors {
		switch n.ItemType {
		case entity.ItemTypeNote:
			noteIds = append(noteIds, n.ItemId)
		case entity.ItemTypeTranscript:
			transcriptIds = append(transcriptIds, n.ItemId)
		}
	}

	notes := map[entity.ItemID]*entity.Note{}
	if len(noteIds) > 0 {
		rows, err := uow.NoteRepository().FindAll(ctx,
			specification.ByIDs{IDs: noteIds},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			notes[row.Id] = row
		}
	}

	transcripts := map[entity.ItemID]*entity.Transcript{}
	if len(transcriptIds) > 0 {
		rows, err := uow.TranscriptRepository().FindAll(ctx,
			specification.ByIDs{IDs: transcriptIds},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			transcripts[row.Id] = row
		}
	}

	results := make([]dto.SearchResultResponse, 0, len(neighbors))
	for _, n := range neighbors {
		relevance := 1 - n.Distance
		switch n.ItemType {
		case entity.ItemTypeNote:
			note, ok := notes[n.ItemId]
			if !ok {
				continue
			}
			results = append(results, dto.SearchResultResponse{
				Id:        note.Id,
				Type:      entity.ItemTypeNote,
				Title:     note.Title,
				Content:   note.Content,
				Summary:   note.Summary,
				Timestamp: itemTimestamp(note.CreatedAt, note.UpdatedAt),
				Relevance: relevance,
			})
		case entity.ItemTypeTranscript:
			transcript, ok := transcripts[n.ItemId]
			if !ok {
				continue
			}
			results = append(results, dto.SearchResultResponse{
				Id:        transcript.Id,
				Type:      entity.ItemTypeTranscript,
				Title:     transcript.Title,
				Content:   transcript.Content,
				Summary:   transcript.Summary,
				Timestamp: itemTimestamp(transcript.CreatedAt, transcript.UpdatedAt),
				Relevance: relevance,
			})
		}
	}
	return results, nil
}

// dedupeResults keeps the higher-relevance entry per (type, id). Order of the
// survivors follows first appearance; the caller re-sorts afterwards.
func dedupeResults(results []dto.SearchResultResponse) []dto.SearchResultResponse {
	type resultKey struct {
		itemType entity.ItemType
		id       entity.ItemID
	}
	best := map[resultKey]int{}
	out := results[:0:0]
	for _, r := range results {
		key := resultKey{itemType: r.Type, id: r.Id}
		if idx, seen := best[key]; seen {
			if r.Relevance > out[idx].Relevance {
				out[idx] = r
			}
			continue
		}
		best[key] = len(out)
		out = append(out, r)
	}
	return out
}

func itemTimestamp(createdAt time.Time, updatedAt *time.Time) time.Time {
	if updatedAt != nil && !updatedAt.IsZero() {
		return *updatedAt
	}
	return createdAt
}
