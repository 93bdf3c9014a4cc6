package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// RemoteProvider implements Provider against the Gemini embedding API.
// One outbound call per Generate; requires a valid API key.
type RemoteProvider struct {
	ApiKey  string
	BaseURL string // overridable for tests
	Model   string
	client  *http.Client
}

func NewRemoteProvider(apiKey string) *RemoteProvider {
	return &RemoteProvider{
		ApiKey:  apiKey,
		BaseURL: defaultGeminiBaseURL,
		Model:   "text-embedding-004",
		client:  &http.Client{},
	}
}

func (p *RemoteProvider) Kind() Kind {
	return KindRemote
}

type geminiRequestContentPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Parts []geminiRequestContentPart `json:"parts"`
}

type geminiEmbeddingRequest struct {
	Model                string               `json:"model"`
	Content              geminiRequestContent `json:"content"`
	TaskType             string               `json:"taskType,omitempty"`
	OutputDimensionality int                  `json:"outputDimensionality,omitempty"`
}

type geminiEmbeddingResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func (p *RemoteProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	geminiReq := geminiEmbeddingRequest{
		Model: "models/" + p.Model,
		Content: geminiRequestContent{
			Parts: []geminiRequestContentPart{
				{Text: text},
			},
		},
		TaskType: taskType,
		// text-embedding-004 natively emits 768 dimensions; ask the API to
		// truncate so local and remote vectors share one index layout.
		OutputDimensionality: Dimensions,
	}
	geminiReqJson, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent", p.BaseURL, p.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(geminiReqJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
		if isAuthStatus(res.StatusCode, string(resByte)) {
			return nil, &AuthError{Err: apiErr}
		}
		return nil, apiErr
	}

	var resEmbedding geminiEmbeddingResponse
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, err
	}

	values := resEmbedding.Embedding.Values
	if len(values) != Dimensions {
		return nil, fmt.Errorf("gemini returned %d dimensions, want %d", len(values), Dimensions)
	}

	// Truncated MRL embeddings are no longer unit length; renormalize before
	// they reach the cosine-distance index.
	return normalizeVector(values), nil
}

// isAuthStatus classifies credential rejections. Gemini reports an invalid
// key as 400 with an API_KEY_INVALID reason rather than a plain 401.
func isAuthStatus(code int, body string) bool {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return true
	}
	return code == http.StatusBadRequest && strings.Contains(body, "API_KEY_INVALID")
}
