package service

import (
	"context"
	"errors"
	"sync"

	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/repository/contract"
	"knowledgebase-be/internal/repository/specification"
	"knowledgebase-be/internal/repository/unitofwork"
	"knowledgebase-be/pkg/embedding"
)

// In-memory fakes shared by the service tests. They cover the slice of
// repository behavior the services actually exercise: ById/UserOwnedBy
// filters, upsert-by-(item,type), and nearest scans ordered externally.

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// ---- provider ----

type fakeProviderCall struct {
	Text     string
	TaskType string
}

// fakeProvider returns canned vectors and errors. ErrAfter lets a test fail
// the Nth call onwards (0 = never fail).
type fakeProvider struct {
	mu       sync.Mutex
	kind     embedding.Kind
	vector   []float32
	err      error
	errAfter int
	calls    []fakeProviderCall
}

func newFakeProvider() *fakeProvider {
	vec := make([]float32, embedding.Dimensions)
	vec[0] = 1
	return &fakeProvider{kind: embedding.KindLocal, vector: vec}
}

func (p *fakeProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fakeProviderCall{Text: text, TaskType: taskType})
	if p.err != nil && len(p.calls) > p.errAfter {
		return nil, p.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float32, len(p.vector))
	copy(out, p.vector)
	return out, nil
}

func (p *fakeProvider) Kind() embedding.Kind { return p.kind }

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// ---- repositories ----

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes map[entity.ItemID]*entity.Note
	err   error
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: map[entity.ItemID]*entity.Note{}}
}

func matchSpecs(id entity.ItemID, userId entity.UserID, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if s.ID != id {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, want := range s.IDs {
				if want == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserID != userId {
				return false
			}
		}
	}
	return true
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if note.Id == 0 {
		note.Id = entity.ItemID(len(r.notes) + 1)
	}
	clone := *note
	r.notes[note.Id] = &clone
	return nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	clone := *note
	r.notes[note.Id] = &clone
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id entity.ItemID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, note := range r.notes {
		if matchSpecs(note.Id, note.UserId, specs) {
			clone := *note
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeNoteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*entity.Note
	for _, note := range r.notes {
		if matchSpecs(note.Id, note.UserId, specs) {
			clone := *note
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, err := r.FindAll(ctx, specs...)
	return int64(len(rows)), err
}

func (r *fakeNoteRepo) findById(id entity.ItemID) *entity.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[id]
	if !ok {
		return nil
	}
	clone := *note
	return &clone
}

type fakeTranscriptRepo struct {
	mu          sync.Mutex
	transcripts map[entity.ItemID]*entity.Transcript
	err         error
}

func newFakeTranscriptRepo() *fakeTranscriptRepo {
	return &fakeTranscriptRepo{transcripts: map[entity.ItemID]*entity.Transcript{}}
}

func (r *fakeTranscriptRepo) Create(ctx context.Context, transcript *entity.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if transcript.Id == 0 {
		transcript.Id = entity.ItemID(1000 + len(r.transcripts) + 1)
	}
	clone := *transcript
	r.transcripts[transcript.Id] = &clone
	return nil
}

func (r *fakeTranscriptRepo) Update(ctx context.Context, transcript *entity.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	clone := *transcript
	r.transcripts[transcript.Id] = &clone
	return nil
}

func (r *fakeTranscriptRepo) Delete(ctx context.Context, id entity.ItemID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.transcripts, id)
	return nil
}

func (r *fakeTranscriptRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, transcript := range r.transcripts {
		if matchSpecs(transcript.Id, transcript.UserId, specs) {
			clone := *transcript
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeTranscriptRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*entity.Transcript
	for _, transcript := range r.transcripts {
		if matchSpecs(transcript.Id, transcript.UserId, specs) {
			clone := *transcript
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTranscriptRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, err := r.FindAll(ctx, specs...)
	return int64(len(rows)), err
}

type embeddingKey struct {
	itemId   entity.ItemID
	itemType entity.ItemType
}

type fakeEmbeddingRepo struct {
	mu        sync.Mutex
	rows      map[embeddingKey]*entity.ContentEmbedding
	upsertErr error
	deleteErr error
	searchErr error
	// nearest is returned verbatim by SearchNearest when set.
	nearest []*contract.NearestEmbedding
}

func newFakeEmbeddingRepo() *fakeEmbeddingRepo {
	return &fakeEmbeddingRepo{rows: map[embeddingKey]*entity.ContentEmbedding{}}
}

func (r *fakeEmbeddingRepo) Upsert(ctx context.Context, row *entity.ContentEmbedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	clone := *row
	r.rows[embeddingKey{itemId: row.ItemId, itemType: row.ItemType}] = &clone
	return nil
}

func (r *fakeEmbeddingRepo) DeleteByItem(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.rows, embeddingKey{itemId: itemId, itemType: itemType})
	return nil
}

func (r *fakeEmbeddingRepo) DeleteAllByUserId(ctx context.Context, userId entity.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, row := range r.rows {
		if row.UserId == userId {
			delete(r.rows, key)
		}
	}
	return nil
}

// rowByItem inspects stored state; it is not part of the repository contract.
func (r *fakeEmbeddingRepo) rowByItem(itemId entity.ItemID, itemType entity.ItemType) *entity.ContentEmbedding {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[embeddingKey{itemId: itemId, itemType: itemType}]
	if !ok {
		return nil
	}
	clone := *row
	return &clone
}

func (r *fakeEmbeddingRepo) SearchNearest(ctx context.Context, vector []float32, userId entity.UserID, limit int) ([]*contract.NearestEmbedding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	out := r.nearest
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeEmbeddingRepo) rowCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[entity.UserID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[entity.UserID]*entity.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.Id == 0 {
		user.Id = entity.UserID(len(r.users) + 1)
	}
	clone := *user
	r.users[user.Id] = &clone
	return nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindById(ctx context.Context, id entity.UserID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type fakeUserSettingRepo struct {
	mu        sync.Mutex
	providers map[entity.UserID]string
	getErr    error
}

func newFakeUserSettingRepo() *fakeUserSettingRepo {
	return &fakeUserSettingRepo{providers: map[entity.UserID]string{}}
}

func (r *fakeUserSettingRepo) GetEmbeddingProvider(ctx context.Context, userId entity.UserID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return "", r.getErr
	}
	if provider, ok := r.providers[userId]; ok {
		return provider, nil
	}
	return "", nil
}

func (r *fakeUserSettingRepo) SetEmbeddingProvider(ctx context.Context, userId entity.UserID, provider string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[userId] = provider
	return nil
}

func (r *fakeUserSettingRepo) providerFor(userId entity.UserID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if provider, ok := r.providers[userId]; ok {
		return provider
	}
	return ""
}

// ---- unit of work ----

type fakeUow struct {
	users       *fakeUserRepo
	settings    *fakeUserSettingRepo
	notes       *fakeNoteRepo
	transcripts *fakeTranscriptRepo
	embeddings  *fakeEmbeddingRepo
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		users:       newFakeUserRepo(),
		settings:    newFakeUserSettingRepo(),
		notes:       newFakeNoteRepo(),
		transcripts: newFakeTranscriptRepo(),
		embeddings:  newFakeEmbeddingRepo(),
	}
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository { return u.users }
func (u *fakeUow) UserSettingRepository() contract.UserSettingRepository {
	return u.settings
}
func (u *fakeUow) NoteRepository() contract.NoteRepository             { return u.notes }
func (u *fakeUow) TranscriptRepository() contract.TranscriptRepository { return u.transcripts }
func (u *fakeUow) ContentEmbeddingRepository() contract.ContentEmbeddingRepository {
	return u.embeddings
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// ---- embedding service stub ----

// stubEmbeddingService hands regeneration and search a fixed provider without
// touching provider construction.
type stubEmbeddingService struct {
	provider   embedding.Provider
	resolveErr error
}

func (s *stubEmbeddingService) GenerateAndStore(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType, userId entity.UserID) bool {
	return false
}

func (s *stubEmbeddingService) DeleteEmbedding(ctx context.Context, itemId entity.ItemID, itemType entity.ItemType) bool {
	return false
}

func (s *stubEmbeddingService) ResolveProvider(ctx context.Context, userId entity.UserID) (embedding.Provider, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.provider, nil
}

var errBoom = errors.New("boom")
