package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

/*
reflectionPrompt instructs the summarization capability to return one
JSON object with exactly the four semantic fields. The conversation
text itself is attached by the caller afterwards.
*/
const reflectionPrompt = `You are analyzing conversations to create memories that will help guide future interactions. Your task is to extract key elements that would be most helpful when encountering similar discussions in the future.

Review the conversation and create a memory reflection following these rules:

1. For any field where you don't have enough information or the field isn't relevant, use "N/A"
2. Be extremely concise - each string should be one clear, actionable sentence
3. Focus only on information that would be useful for handling similar future conversations
4. Context_tags should be specific enough to match similar situations but general enough to be reusable

Output valid JSON in exactly this format:
{
    "context_tags": [              // 2-4 keywords that would help identify similar future conversations
        string,                    // Use specific terms like "deep_learning", "methodology_question", "results_interpretation"
        ...
    ],
    "conversation_summary": string, // One sentence describing what the conversation accomplished
    "what_worked": string,          // Most effective approach or strategy used in this conversation
    "what_to_avoid": string         // Most important pitfall or ineffective approach to avoid
}

Examples:
- Good context_tags: ["transformer_architecture", "attention_mechanism", "methodology_comparison"]
- Bad context_tags: ["machine_learning", "paper_discussion", "questions"]

- Good conversation_summary: "Explained how the attention mechanism in the BERT paper differs from traditional transformer architectures"
- Bad conversation_summary: "Discussed a machine learning paper"

- Good what_worked: "Using analogies from matrix multiplication to explain attention score calculations"
- Bad what_worked: "Explained the technical concepts well"

- Good what_to_avoid: "Diving into mathematical formulas before establishing user's familiarity with linear algebra fundamentals"
- Bad what_to_avoid: "Used complicated language"

Do not include any text outside the JSON object in your response.

Here is the prior conversation:

%s`

/*
Reflector turns a raw conversation transcript into a structured episode
draft via a single call to the summarization capability.
*/
type Reflector struct {
	summarizer Summarizer
}

func NewReflector(summarizer Summarizer) *Reflector {
	return &Reflector{summarizer: summarizer}
}

// Reflect invokes the summarization capability and parses its response.
// A malformed response is recoverable: the returned draft carries the
// parse error and the raw text, with every field set to its sentinel.
func (reflector *Reflector) Reflect(ctx context.Context, conversation string) (Draft, error) {
	response, err := reflector.summarizer.Summarize(
		ctx, fmt.Sprintf(reflectionPrompt, conversation),
	)

	if err != nil {
		return Draft{}, fmt.Errorf("reflect: %w", err)
	}

	draft := ParseDraft(response)

	if draft.Err != nil {
		log.Warn("reflection response was not valid JSON", "error", draft.Err)
	}

	return draft, nil
}

// ParseDraft extracts the JSON object between the first '{' and the
// last '}' in the raw response and decodes it. Any failure degrades to
// a sentinel draft tagged with a ParseError, never a fault.
func ParseDraft(raw string) Draft {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start < 0 || end < start {
		return errorDraft(raw, errors.New("no JSON object found"))
	}

	var draft Draft

	if err := json.Unmarshal([]byte(raw[start:end+1]), &draft); err != nil {
		return errorDraft(raw, err)
	}

	return normalizeDraft(draft)
}

func errorDraft(raw string, err error) Draft {
	draft := normalizeDraft(Draft{})
	draft.Err = &ParseError{Raw: raw, Err: err}
	draft.Raw = raw
	return draft
}

// normalizeDraft enforces the sentinel invariant: string fields are
// never empty and the tag list is never nil.
func normalizeDraft(draft Draft) Draft {
	if draft.ContextTags == nil {
		draft.ContextTags = []string{}
	}

	if draft.ConversationSummary == "" {
		draft.ConversationSummary = NotApplicable
	}

	if draft.WhatWorked == "" {
		draft.WhatWorked = NotApplicable
	}

	if draft.WhatToAvoid == "" {
		draft.WhatToAvoid = NotApplicable
	}

	return draft
}
