package service

import (
	"context"
	"time"

	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/pkg/logger"
	"knowledgebase-be/internal/repository/specification"
	"knowledgebase-be/internal/repository/unitofwork"
	"knowledgebase-be/internal/websocket"
	"knowledgebase-be/pkg/embedding"
	"knowledgebase-be/pkg/events"
	"knowledgebase-be/pkg/nats"

	"github.com/google/uuid"
)

// IRegenerationService rebuilds the whole vector index for one owner. A
// single supervisor goroutine (started via Run) owns the job slot: start
// requests and status reads go through channels, never shared memory, so
// there is exactly one writer of the state no matter how many callers race.
type IRegenerationService interface {
	// Run is the supervisor loop. It must be running before Start/Status are
	// called and exits when ctx is cancelled.
	Run(ctx context.Context)
	// Start begins a regeneration for the owner. It acknowledges immediately;
	// the bulk pass continues in the background. A second Start while a run
	// is in flight fails without touching the running pass.
	Start(ctx context.Context, userId entity.UserID) *dto.StartReindexResponse
	// Status returns a snapshot of the current (or last) run.
	Status(ctx context.Context) *dto.ReindexStatusResponse
}

type regenerationService struct {
	uowFactory       unitofwork.RepositoryFactory
	embeddingService IEmbeddingService
	embedTimeout     time.Duration
	hub              *websocket.Hub     // optional progress push
	eventPublisher   *nats.Publisher    // optional, best-effort
	logger           logger.ILogger

	startCh  chan *startRegenRequest
	statusCh chan chan *dto.ReindexStatusResponse
	workerCh chan regenEvent
}

type startRegenRequest struct {
	userId entity.UserID
	reply  chan *dto.StartReindexResponse
}

// Worker -> supervisor events. Every event carries the run id so a stale
// worker (a run already declared fatal) cannot corrupt a newer run's state.
type regenEvent struct {
	runId     uuid.UUID
	total     int
	progress  bool
	itemError *dto.ReindexItemError
	fatal     error
	apiKey    bool
	done      bool
}

// regenState is the single job slot. Only the supervisor goroutine touches it.
type regenState struct {
	inProgress     bool
	runId          uuid.UUID
	userId         entity.UserID
	total          int
	completed      int
	startTime      time.Time
	errors         []dto.ReindexItemError
	fatalError     string
	hasAPIKeyError bool
}

func NewRegenerationService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingService IEmbeddingService,
	embedTimeout time.Duration,
	hub *websocket.Hub,
	eventPublisher *nats.Publisher,
	sysLogger logger.ILogger,
) IRegenerationService {
	if embedTimeout <= 0 {
		embedTimeout = 30 * time.Second
	}
	return &regenerationService{
		uowFactory:       uowFactory,
		embeddingService: embeddingService,
		embedTimeout:     embedTimeout,
		hub:              hub,
		eventPublisher:   eventPublisher,
		logger:           sysLogger,
		startCh:          make(chan *startRegenRequest),
		statusCh:         make(chan chan *dto.ReindexStatusResponse),
		workerCh:         make(chan regenEvent, 64),
	}
}

func (s *regenerationService) Run(ctx context.Context) {
	state := &regenState{}

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.startCh:
			req.reply <- s.handleStart(ctx, state, req.userId)
		case reply := <-s.statusCh:
			reply <- snapshot(state)
		case ev := <-s.workerCh:
			s.handleWorkerEvent(state, ev)
		}
	}
}

func (s *regenerationService) Start(ctx context.Context, userId entity.UserID) *dto.StartReindexResponse {
	req := &startRegenRequest{
		userId: userId,
		reply:  make(chan *dto.StartReindexResponse, 1),
	}
	select {
	case s.startCh <- req:
	case <-ctx.Done():
		return &dto.StartReindexResponse{Success: false, Message: "request cancelled"}
	}
	select {
	case res := <-req.reply:
		return res
	case <-ctx.Done():
		return &dto.StartReindexResponse{Success: false, Message: "request cancelled"}
	}
}

func (s *regenerationService) Status(ctx context.Context) *dto.ReindexStatusResponse {
	reply := make(chan *dto.ReindexStatusResponse, 1)
	select {
	case s.statusCh <- reply:
	case <-ctx.Done():
		return &dto.ReindexStatusResponse{}
	}
	select {
	case res := <-reply:
		return res
	case <-ctx.Done():
		return &dto.ReindexStatusResponse{}
	}
}

// handleStart runs on the supervisor goroutine; the in-progress check and the
// slot reset are therefore a single serialized step.
func (s *regenerationService) handleStart(ctx context.Context, state *regenState, userId entity.UserID) *dto.StartReindexResponse {
	if state.inProgress {
		return &dto.StartReindexResponse{
			Success: false,
			Message: "regeneration already in progress",
			RunId:   state.runId,
		}
	}

	// Construct the provider eagerly so configuration problems surface to the
	// caller instead of a background log.
	provider, err := s.embeddingService.ResolveProvider(ctx, userId)
	if err != nil {
		*state = regenState{
			userId:         userId,
			fatalError:     err.Error(),
			hasAPIKeyError: embedding.IsAuthError(err),
		}
		s.logger.Error("Regeneration", "Provider construction failed, run not started", map[string]interface{}{
			"user_id": userId, "error": err.Error(),
		})
		return &dto.StartReindexResponse{Success: false, Message: err.Error()}
	}

	runId := uuid.New()
	*state = regenState{
		inProgress: true,
		runId:      runId,
		userId:     userId,
		startTime:  time.Now(),
		errors:     []dto.ReindexItemError{},
	}

	s.publishEvent(ctx, events.ReindexStarted, map[string]interface{}{
		"run_id": runId, "user_id": userId,
	})

	go s.runWorker(ctx, runId, userId, provider)

	return &dto.StartReindexResponse{
		Success: true,
		Message: "regeneration started",
		RunId:   runId,
	}
}

func (s *regenerationService) handleWorkerEvent(state *regenState, ev regenEvent) {
	if ev.runId != state.runId {
		return // stale worker
	}

	switch {
	case ev.total > 0:
		state.total = ev.total
	case ev.progress:
		state.completed++
		s.notifyProgress(state)
	case ev.itemError != nil:
		state.errors = append(state.errors, *ev.itemError)
	case ev.fatal != nil:
		state.inProgress = false
		state.fatalError = ev.fatal.Error()
		state.hasAPIKeyError = ev.apiKey
		s.notifyDone(state)
	case ev.done:
		state.inProgress = false
		s.notifyDone(state)
	}
}

func (s *regenerationService) notifyProgress(state *regenState) {
	if s.hub == nil {
		return
	}
	s.hub.Send(state.userId, "reindex_progress", map[string]interface{}{
		"run_id":    state.runId,
		"total":     state.total,
		"completed": state.completed,
	})
}

func (s *regenerationService) notifyDone(state *regenState) {
	s.publishEvent(context.Background(), events.ReindexFinished, map[string]interface{}{
		"run_id":      state.runId,
		"user_id":     state.userId,
		"completed":   state.completed,
		"total":       state.total,
		"error_count": len(state.errors),
		"fatal_error": state.fatalError,
	})
	if s.hub == nil {
		return
	}
	s.hub.Send(state.userId, "reindex_done", map[string]interface{}{
		"run_id":      state.runId,
		"completed":   state.completed,
		"total":       state.total,
		"error_count": len(state.errors),
		"fatal_error": state.fatalError,
	})
}

func (s *regenerationService) publishEvent(ctx context.Context, eventType events.Type, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("Regeneration", "Failed to publish event", map[string]interface{}{
			"event": eventType, "error": err.Error(),
		})
	}
}

// snapshot truncates errors to the first 10 so a long run with many failures
// cannot balloon the status payload.
func snapshot(state *regenState) *dto.ReindexStatusResponse {
	res := &dto.ReindexStatusResponse{
		InProgress:     state.inProgress,
		RunId:          state.runId,
		Total:          state.total,
		Completed:      state.completed,
		ErrorCount:     len(state.errors),
		FatalError:     state.fatalError,
		HasAPIKeyError: state.hasAPIKeyError,
		Errors:         []dto.ReindexItemError{},
	}
	if !state.startTime.IsZero() {
		t := state.startTime
		res.StartTime = &t
	}
	limit := len(state.errors)
	if limit > 10 {
		limit = 10
	}
	res.Errors = append(res.Errors, state.errors[:limit]...)
	return res
}

// ---- worker ----

func (s *regenerationService) runWorker(ctx context.Context, runId uuid.UUID, userId entity.UserID, provider embedding.Provider) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Health-check probe before any item is touched: an invalid credential
	// should abort with completed == 0, not burn through the whole corpus.
	if err := s.healthCheck(ctx, provider); err != nil {
		s.failRun(ctx, runId, userId, err)
		return
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		s.failRun(ctx, runId, userId, err)
		return
	}
	transcripts, err := uow.TranscriptRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		s.failRun(ctx, runId, userId, err)
		return
	}

	s.workerCh <- regenEvent{runId: runId, total: len(notes) + len(transcripts)}

	// Notes fully processed before transcripts.
	for _, note := range notes {
		if !s.reindexItem(ctx, uow, runId, userId, provider, note.Id, entity.ItemTypeNote, note.Title, note.Content) {
			return
		}
	}
	for _, transcript := range transcripts {
		if !s.reindexItem(ctx, uow, runId, userId, provider, transcript.Id, entity.ItemTypeTranscript, transcript.Title, transcript.Content) {
			return
		}
	}

	s.workerCh <- regenEvent{runId: runId, done: true}
}

// reindexItem returns false when the run must stop (fatal provider failure).
// Everything else is a per-item error: recorded, then on to the next item.
func (s *regenerationService) reindexItem(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	runId uuid.UUID,
	userId entity.UserID,
	provider embedding.Provider,
	itemId entity.ItemID,
	itemType entity.ItemType,
	title string,
	content string,
) bool {
	repo := uow.ContentEmbeddingRepository()

	if err := repo.DeleteByItem(ctx, itemId, itemType); err != nil {
		s.recordItemError(runId, itemId, itemType, err)
		return true
	}

	text := ComposeEmbeddingText(title, content)
	if text == "" {
		// Nothing to embed; the stale vector is gone, which is the correct
		// end state for empty content.
		s.workerCh <- regenEvent{runId: runId, progress: true}
		return true
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	vector, err := provider.Generate(embedCtx, text, embedding.TaskTypeDocument)
	cancel()
	if err != nil {
		if embedding.IsAuthError(err) {
			s.failRun(ctx, runId, userId, err)
			return false
		}
		s.recordItemError(runId, itemId, itemType, err)
		return true
	}

	record := &entity.ContentEmbedding{
		ItemId:         itemId,
		ItemType:       itemType,
		UserId:         userId,
		EmbeddingValue: vector,
		CreatedAt:      time.Now(),
	}
	if err := repo.Upsert(ctx, record); err != nil {
		s.recordItemError(runId, itemId, itemType, err)
		return true
	}

	s.workerCh <- regenEvent{runId: runId, progress: true}
	return true
}

func (s *regenerationService) healthCheck(ctx context.Context, provider embedding.Provider) error {
	probeCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()
	_, err := provider.Generate(probeCtx, "health check", embedding.TaskTypeQuery)
	return err
}

func (s *regenerationService) recordItemError(runId uuid.UUID, itemId entity.ItemID, itemType entity.ItemType, err error) {
	s.logger.Warn("Regeneration", "Item failed, continuing", map[string]interface{}{
		"item_id": itemId, "item_type": itemType, "error": err.Error(),
	})
	s.workerCh <- regenEvent{runId: runId, itemError: &dto.ReindexItemError{
		ItemId:   itemId,
		ItemType: itemType,
		Error:    err.Error(),
	}}
}

// failRun aborts the run. On an authentication failure the owner's provider
// preference is downgraded to local so a retry does not hit the same wall.
func (s *regenerationService) failRun(ctx context.Context, runId uuid.UUID, userId entity.UserID, err error) {
	isAuth := embedding.IsAuthError(err)
	if isAuth {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if derr := uow.UserSettingRepository().SetEmbeddingProvider(ctx, userId, string(embedding.KindLocal)); derr != nil {
			s.logger.Error("Regeneration", "Failed to downgrade provider preference", map[string]interface{}{
				"user_id": userId, "error": derr.Error(),
			})
		} else {
			s.logger.Warn("Regeneration", "Provider preference downgraded to local after auth failure", map[string]interface{}{
				"user_id": userId,
			})
		}
	}
	s.logger.Error("Regeneration", "Run aborted", map[string]interface{}{
		"run_id": runId, "user_id": userId, "error": err.Error(),
	})
	s.workerCh <- regenEvent{runId: runId, fatal: err, apiKey: isAuth}
}
