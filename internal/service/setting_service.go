package service

import (
	"context"

	"knowledgebase-be/internal/dto"
	"knowledgebase-be/internal/entity"
	"knowledgebase-be/internal/repository/unitofwork"
	"knowledgebase-be/pkg/embedding"
)

type ISettingService interface {
	GetSettings(ctx context.Context, userId entity.UserID) (*dto.ShowSettingsResponse, error)
	UpdateEmbeddingProvider(ctx context.Context, userId entity.UserID, req *dto.UpdateEmbeddingProviderRequest) (*dto.ShowSettingsResponse, error)
}

type settingService struct {
	uowFactory  unitofwork.RepositoryFactory
	defaultKind embedding.Kind
}

func NewSettingService(uowFactory unitofwork.RepositoryFactory, defaultKind embedding.Kind) ISettingService {
	if defaultKind == "" {
		defaultKind = embedding.KindLocal
	}
	return &settingService{uowFactory: uowFactory, defaultKind: defaultKind}
}

func (s *settingService) GetSettings(ctx context.Context, userId entity.UserID) (*dto.ShowSettingsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	provider, err := uow.UserSettingRepository().GetEmbeddingProvider(ctx, userId)
	if err != nil {
		return nil, err
	}
	if provider == "" {
		provider = string(s.defaultKind)
	}
	return &dto.ShowSettingsResponse{EmbeddingProvider: provider}, nil
}

func (s *settingService) UpdateEmbeddingProvider(ctx context.Context, userId entity.UserID, req *dto.UpdateEmbeddingProviderRequest) (*dto.ShowSettingsResponse, error) {
	// Reject unknown kinds at the boundary so the stored preference is always
	// resolvable later.
	kind, err := embedding.ParseKind(req.EmbeddingProvider)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserSettingRepository().SetEmbeddingProvider(ctx, userId, string(kind)); err != nil {
		return nil, err
	}
	return &dto.ShowSettingsResponse{EmbeddingProvider: string(kind)}, nil
}
