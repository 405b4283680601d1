package memory

import (
	"context"
	"fmt"
	"strings"
)

// NeutralDirective primes a conversation when no episodes match.
const NeutralDirective = "You are a helpful AI Assistant."

const directiveTemplate = `You are a helpful AI Assistant with conversation memory:

Current Context Tags: %s
Key Insight: %s
Avoid: %s
Recent History: %s`

// Recaller is the retrieval capability the composer renders from.
type Recaller interface {
	Recall(ctx context.Context, userID string, query string, alpha float64) ([]RankedResult, error)
}

// Composer turns top-ranked episodes into a single priming directive
// for a subsequent conversation. It holds no state across calls.
type Composer struct {
	recaller Recaller
	alpha    float64
}

// NewComposer creates a composer over the given retrieval capability
// with the supplied fusion weight.
func NewComposer(recaller Recaller, alpha float64) *Composer {
	return &Composer{recaller: recaller, alpha: alpha}
}

// Compose retrieves the episodes most relevant to the query and renders
// the directive text. Zero results is a normal outcome and produces the
// neutral directive, not an error.
func (composer *Composer) Compose(ctx context.Context, userID string, query string) (string, error) {
	results, err := composer.recaller.Recall(ctx, userID, query, composer.alpha)

	if err != nil {
		return "", err
	}

	return Render(results), nil
}

// Render formats ranked results into the directive: the top episode
// supplies current context (tags, key insight, pitfall) and the
// runners-up contribute their summaries as recent history.
func Render(results []RankedResult) string {
	if len(results) == 0 {
		return NeutralDirective
	}

	current := results[0].Episode

	history := make([]string, 0, len(results)-1)

	for _, result := range results[1:] {
		history = append(history, result.Episode.ConversationSummary)
	}

	return fmt.Sprintf(
		directiveTemplate,
		strings.Join(current.ContextTags, ", "),
		current.WhatWorked,
		current.WhatToAvoid,
		strings.Join(history, " | "),
	)
}
