package embedding

import (
	"fmt"
	"log"
)

// Config carries everything the factory needs to construct either variant.
type Config struct {
	GeminiApiKey  string
	OllamaBaseURL string
	OllamaModel   string
}

// New constructs the provider for kind. A missing remote credential is a
// configuration error and fails fast here, before any content is touched.
func New(kind Kind, cfg Config) (Provider, error) {
	switch kind {
	case KindLocal:
		return NewLocalProvider(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	case KindRemote:
		if cfg.GeminiApiKey == "" {
			return nil, &AuthError{Err: fmt.Errorf("remote embedding provider requires GOOGLE_GEMINI_API_KEY")}
		}
		return NewRemoteProvider(cfg.GeminiApiKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider kind: %q", kind)
	}
}

// NewWithFallback substitutes the local provider when construction fails,
// for call sites that must never hard-fail.
func NewWithFallback(kind Kind, cfg Config) Provider {
	p, err := New(kind, cfg)
	if err != nil {
		log.Printf("[WARN] embedding provider %q unavailable (%v), falling back to local", kind, err)
		return NewLocalProvider(cfg.OllamaBaseURL, cfg.OllamaModel)
	}
	return p
}
