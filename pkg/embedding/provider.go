package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Dimensions is the fixed vector length every provider must return.
const Dimensions = 384

// Task types passed through to providers that distinguish document and query
// embeddings (Gemini does, Ollama ignores them).
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// Kind is the closed set of provider variants.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// ParseKind resolves a configured provider name case-insensitively. Parsing
// happens once at the boundary; everything past it switches exhaustively on
// Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindLocal:
		return KindLocal, nil
	case KindRemote:
		return KindRemote, nil
	default:
		return "", fmt.Errorf("unsupported embedding provider: %q", s)
	}
}

// Provider generates text embeddings.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
	Kind() Kind
}

// AuthError marks a provider failure caused by a missing or rejected
// credential. A regeneration run treats it as fatal; a single generation task
// just records the failure.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("embedding provider authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
