package unitofwork

import (
	"context"

	"knowledgebase-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	UserSettingRepository() contract.UserSettingRepository
	NoteRepository() contract.NoteRepository
	TranscriptRepository() contract.TranscriptRepository
	ContentEmbeddingRepository() contract.ContentEmbeddingRepository
}
