// Package memory implements per-user episodic memory: reflection-based
// episode summarization, hybrid (vector + keyword) retrieval, and
// score-fusion ranking on top of an external vector point store.
package memory

import "context"

// Embedder represents a service capable of generating embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer produces free-form text from a single prompt. It is the
// opaque summarization capability behind the Reflector.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Point is a single record to upsert into a vector store collection.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a point returned from a vector store read path. Score
// carries the store's native similarity score for search results and is
// zero for keyword scans, which have no ranking of their own.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// VectorStore defines the operations the episode store needs from a
// vector point store backend.
type VectorStore interface {
	// EnsureCollection creates the collection with the given dimension
	// and cosine distance if it does not exist yet. Idempotent.
	EnsureCollection(ctx context.Context, collection string, dimension int) error

	// Upsert writes points into the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to limit points ranked by the store's native
	// similarity score.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error)

	// Scroll returns up to limit points whose conversation text matches
	// the query, in the store's native scan order.
	Scroll(ctx context.Context, collection string, queryText string, limit int) ([]ScoredPoint, error)
}
