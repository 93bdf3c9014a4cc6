package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiResponse(dims int) geminiEmbeddingResponse {
	var res geminiEmbeddingResponse
	res.Embedding.Values = make([]float32, dims)
	for i := range res.Embedding.Values {
		res.Embedding.Values[i] = 0.5
	}
	return res
}

func TestRemoteProviderGenerate(t *testing.T) {
	var gotReq geminiEmbeddingRequest
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(geminiResponse(Dimensions))
	}))
	defer server.Close()

	p := NewRemoteProvider("test-key")
	p.BaseURL = server.URL

	vec, err := p.Generate(context.Background(), "meeting notes", TaskTypeQuery)
	require.NoError(t, err)
	require.Len(t, vec, Dimensions)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "models/text-embedding-004", gotReq.Model)
	assert.Equal(t, TaskTypeQuery, gotReq.TaskType)
	assert.Equal(t, Dimensions, gotReq.OutputDimensionality)
	assert.Equal(t, "meeting notes", gotReq.Content.Parts[0].Text)

	// Truncated embeddings must be renormalized to unit length.
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-4)
}

func TestRemoteProviderUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"UNAUTHENTICATED"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewRemoteProvider("bad-key")
	p.BaseURL = server.URL

	vec, err := p.Generate(context.Background(), "hello", TaskTypeDocument)
	assert.Nil(t, vec)
	assert.True(t, IsAuthError(err))
}

func TestRemoteProviderInvalidKeyAs400(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"details":[{"reason":"API_KEY_INVALID"}]}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewRemoteProvider("bad-key")
	p.BaseURL = server.URL

	_, err := p.Generate(context.Background(), "hello", TaskTypeDocument)
	assert.True(t, IsAuthError(err))
}

func TestRemoteProviderPlainBadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"content too long"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewRemoteProvider("ok-key")
	p.BaseURL = server.URL

	_, err := p.Generate(context.Background(), "hello", TaskTypeDocument)
	assert.Error(t, err)
	assert.False(t, IsAuthError(err))
}

func TestRemoteProviderWrongDimensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse(768))
	}))
	defer server.Close()

	p := NewRemoteProvider("ok-key")
	p.BaseURL = server.URL

	vec, err := p.Generate(context.Background(), "hello", TaskTypeDocument)
	assert.Nil(t, vec)
	assert.ErrorContains(t, err, "768 dimensions")
}
