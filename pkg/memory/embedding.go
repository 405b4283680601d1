package memory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaEmbedder generates embeddings through a local Ollama server.
type OllamaEmbedder struct {
	client    *api.Client
	model     string
	dimension int
}

// NewOllamaEmbedder creates an embedder against the given Ollama host.
// dimension must match the collection dimension of the episode store.
func NewOllamaEmbedder(host, model string, dimension int) (*OllamaEmbedder, error) {
	base, err := url.Parse(host)

	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}

	return &OllamaEmbedder{
		client: api.NewClient(base, &http.Client{
			Timeout: 30 * time.Second,
		}),
		model:     model,
		dimension: dimension,
	}, nil
}

// Dimension returns the expected embedding vector size.
func (embedder *OllamaEmbedder) Dimension() int {
	return embedder.dimension
}

// Embed generates an embedding for a single text.
func (embedder *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := embedder.EmbedBatch(ctx, []string{text})

	if err != nil {
		return nil, err
	}

	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request. A
// non-success response surfaces as an EmbeddingError carrying the raw
// response body.
func (embedder *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := embedder.client.Embed(ctx, &api.EmbedRequest{
		Model: embedder.model,
		Input: texts,
	})

	if err != nil {
		return nil, embeddingError(err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, &EmbeddingError{
			Err: fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), len(texts)),
		}
	}

	for _, embedding := range resp.Embeddings {
		if len(embedding) != embedder.dimension {
			return nil, &EmbeddingError{
				Err: fmt.Errorf("dimension mismatch: got %d, want %d (model: %s)",
					len(embedding), embedder.dimension, embedder.model),
			}
		}
	}

	return resp.Embeddings, nil
}

func embeddingError(err error) *EmbeddingError {
	var status api.StatusError

	if errors.As(err, &status) {
		return &EmbeddingError{Body: status.ErrorMessage, Err: err}
	}

	return &EmbeddingError{Err: err}
}

// MockEmbedder generates deterministic embeddings for testing.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (embedder *MockEmbedder) Dimension() int {
	return embedder.dimension
}

// Embed creates a deterministic mock embedding derived from the text
// bytes, so identical texts always map to identical vectors.
func (embedder *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding := make([]float32, embedder.dimension)

	for i := range embedding {
		if len(text) > 0 {
			embedding[i] = float32(text[i%len(text)]) / 256.0
		} else {
			embedding[i] = 0.5
		}
	}

	return embedding, nil
}

func (embedder *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	for i, text := range texts {
		embedding, _ := embedder.Embed(ctx, text)
		embeddings[i] = embedding
	}

	return embeddings, nil
}
