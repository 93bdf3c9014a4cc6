package dto

type ShowSettingsResponse struct {
	EmbeddingProvider string `json:"embedding_provider"`
}

type UpdateEmbeddingProviderRequest struct {
	EmbeddingProvider string `json:"embedding_provider" validate:"required"`
}
