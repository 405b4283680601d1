package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	// DefaultCollectionPrefix is the fixed prefix of every per-user
	// collection name. Changing it breaks data portability.
	DefaultCollectionPrefix = "memory_orb"

	// DefaultUserID is used when the caller does not supply a user.
	DefaultUserID = "default_user"

	// DefaultDimension matches the mxbai-embed-large output dimension.
	DefaultDimension = 1024

	// searchLimit caps both read paths of a single retrieval.
	searchLimit = 5

	// topResults is the fused result count handed to the composer.
	topResults = 3
)

// Store is the per-user episode collection abstraction over a vector
// point store. Collections are created lazily on first write and never
// deleted or merged across users.
type Store struct {
	vector    VectorStore
	embedder  Embedder
	prefix    string
	dimension int
}

type StoreOption func(*Store)

// NewStore creates an episode store over the given backend and
// embedding capability.
func NewStore(vector VectorStore, embedder Embedder, options ...StoreOption) *Store {
	store := &Store{
		vector:    vector,
		embedder:  embedder,
		prefix:    DefaultCollectionPrefix,
		dimension: DefaultDimension,
	}

	for _, option := range options {
		option(store)
	}

	return store
}

// WithCollectionPrefix overrides the collection name prefix.
func WithCollectionPrefix(prefix string) StoreOption {
	return func(store *Store) { store.prefix = prefix }
}

// WithDimension overrides the collection vector dimension.
func WithDimension(dimension int) StoreOption {
	return func(store *Store) { store.dimension = dimension }
}

// CollectionName maps a user id to its physically separate collection.
// The mapping is deterministic so it is reproducible without a lookup
// table.
func (store *Store) CollectionName(userID string) string {
	if userID == "" {
		userID = DefaultUserID
	}

	return store.prefix + "_" + userID
}

// EnsureCollection creates the user's collection if absent. Safe to
// call before every write.
func (store *Store) EnsureCollection(ctx context.Context, userID string) error {
	return store.vector.EnsureCollection(ctx, store.CollectionName(userID), store.dimension)
}

// Write derives the embedding from the draft summary, assembles the
// full episode record under a fresh id, and upserts exactly one point
// into the user's collection. An embedding failure means no point is
// written at all.
func (store *Store) Write(ctx context.Context, userID string, draft Draft, conversation string) (Episode, error) {
	embeddings, err := store.embedder.EmbedBatch(ctx, []string{draft.ConversationSummary})

	if err != nil {
		return Episode{}, err
	}

	episode := Episode{
		ID:                  uuid.NewString(),
		Conversation:        conversation,
		ContextTags:         draft.ContextTags,
		ConversationSummary: draft.ConversationSummary,
		WhatWorked:          draft.WhatWorked,
		WhatToAvoid:         draft.WhatToAvoid,
		Embedding:           embeddings[0],
	}

	err = store.vector.Upsert(ctx, store.CollectionName(userID), []Point{{
		ID:      episode.ID,
		Vector:  episode.Embedding,
		Payload: episode.payload(),
	}})

	if err != nil {
		return Episode{}, err
	}

	log.Debug("episode written", "user", userID, "id", episode.ID)

	return episode, nil
}

// SearchBySimilarity returns up to limit points ranked by the store's
// native similarity score.
func (store *Store) SearchBySimilarity(ctx context.Context, userID string, vector []float32, limit int) ([]ScoredPoint, error) {
	return store.vector.Search(ctx, store.CollectionName(userID), vector, limit)
}

// ScanByKeyword returns up to limit points whose conversation text
// matches the query, in scan order.
func (store *Store) ScanByKeyword(ctx context.Context, userID string, queryText string, limit int) ([]ScoredPoint, error) {
	return store.vector.Scroll(ctx, store.CollectionName(userID), queryText, limit)
}

// Recall embeds the query, issues the two read paths concurrently, and
// fuses them into the top ranked episodes. The reads are logically
// independent; ordering between them carries no meaning.
func (store *Store) Recall(ctx context.Context, userID string, query string, alpha float64) ([]RankedResult, error) {
	vector, err := store.embedder.Embed(ctx, query)

	if err != nil {
		return nil, err
	}

	var (
		wg         sync.WaitGroup
		similarity []ScoredPoint
		keyword    []ScoredPoint
		simErr     error
		kwErr      error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		similarity, simErr = store.SearchBySimilarity(ctx, userID, vector, searchLimit)
	}()

	go func() {
		defer wg.Done()
		keyword, kwErr = store.ScanByKeyword(ctx, userID, query, searchLimit)
	}()

	wg.Wait()

	if simErr != nil {
		return nil, fmt.Errorf("similarity search: %w", simErr)
	}

	if kwErr != nil {
		return nil, fmt.Errorf("keyword scan: %w", kwErr)
	}

	return Fuse(similarity, keyword, alpha), nil
}
