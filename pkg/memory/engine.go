package memory

import (
	"context"

	"github.com/charmbracelet/log"
)

// Engine wires the write path (reflection into storage) and the read
// path (retrieval into a directive) together. It holds no cross-request
// state; the user id travels with every call.
type Engine struct {
	reflector *Reflector
	store     *Store
	composer  *Composer
}

// NewEngine creates an engine with the given fusion weight.
func NewEngine(reflector *Reflector, store *Store, alpha float64) *Engine {
	engine := &Engine{
		reflector: reflector,
		store:     store,
	}

	engine.composer = NewComposer(engine, alpha)
	return engine
}

// AddEpisode reflects on a finished conversation and persists it as an
// episode in the user's collection. A reflection parse failure is
// recoverable: the sentinel draft is written so the conversation text
// is not dropped. Embedding and store failures propagate.
func (engine *Engine) AddEpisode(ctx context.Context, turns []Turn, userID string) (Episode, error) {
	conversation := FormatTranscript(turns)

	draft, err := engine.reflector.Reflect(ctx, conversation)

	if err != nil {
		return Episode{}, err
	}

	if draft.Err != nil {
		log.Warn("storing episode with sentinel fields", "user", userID, "error", draft.Err)
	}

	if err := engine.store.EnsureCollection(ctx, userID); err != nil {
		return Episode{}, err
	}

	return engine.store.Write(ctx, userID, draft, conversation)
}

// Recall returns the top ranked episodes for the query. The user's
// collection is created if absent so a fresh user recalls an empty set
// rather than a missing-collection error.
func (engine *Engine) Recall(ctx context.Context, userID string, query string, alpha float64) ([]RankedResult, error) {
	if err := engine.store.EnsureCollection(ctx, userID); err != nil {
		return nil, err
	}

	return engine.store.Recall(ctx, userID, query, alpha)
}

// Directive composes the priming directive for the query.
func (engine *Engine) Directive(ctx context.Context, userID string, query string) (string, error) {
	return engine.composer.Compose(ctx, userID, query)
}
