package memory

import (
	"fmt"
	"strings"
)

// NotApplicable is the sentinel value for any semantic field the
// reflection could not populate. Fields are never left empty.
const NotApplicable = "N/A"

// Turn is a single conversation turn tagged with a speaker role.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Episode is one stored memory unit. All fields are immutable once
// written.
type Episode struct {
	ID                  string    `json:"id"`
	Conversation        string    `json:"conversation"`
	ContextTags         []string  `json:"context_tags"`
	ConversationSummary string    `json:"conversation_summary"`
	WhatWorked          string    `json:"what_worked"`
	WhatToAvoid         string    `json:"what_to_avoid"`
	Embedding           []float32 `json:"embedding,omitempty"`
}

// Draft is the Reflector's output before the conversation text and the
// embedding are attached by the caller. A failed parse is represented
// by Err plus the raw response text, never by a thrown fault.
type Draft struct {
	ContextTags         []string `json:"context_tags"`
	ConversationSummary string   `json:"conversation_summary"`
	WhatWorked          string   `json:"what_worked"`
	WhatToAvoid         string   `json:"what_to_avoid"`

	Err error  `json:"-"`
	Raw string `json:"-"`
}

// RankedResult is an Episode with its fused relevance score. It is
// transient and never persisted.
type RankedResult struct {
	Episode Episode `json:"episode"`
	Score   float64 `json:"score"`
}

// FormatTranscript renders turns into the canonical transcript text: a
// leading system turn is excluded, every other turn becomes an
// uppercased role label followed by its content, newline-joined.
func FormatTranscript(turns []Turn) string {
	if len(turns) > 0 && strings.EqualFold(turns[0].Role, "system") {
		turns = turns[1:]
	}

	lines := make([]string, 0, len(turns))

	for _, turn := range turns {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(turn.Role), turn.Content))
	}

	return strings.Join(lines, "\n")
}

// payloadKeys is the persisted schema surface: the point payload mirrors
// the Episode fields minus the embedding. Keys must remain stable for
// data portability.
const (
	payloadConversation = "conversation"
	payloadContextTags  = "context_tags"
	payloadSummary      = "conversation_summary"
	payloadWhatWorked   = "what_worked"
	payloadWhatToAvoid  = "what_to_avoid"
)

func (episode Episode) payload() map[string]any {
	return map[string]any{
		payloadConversation: episode.Conversation,
		payloadContextTags:  episode.ContextTags,
		payloadSummary:      episode.ConversationSummary,
		payloadWhatWorked:   episode.WhatWorked,
		payloadWhatToAvoid:  episode.WhatToAvoid,
	}
}

// episodeFromPayload rebuilds an Episode from a store payload. Values
// arrive as decoded JSON, so the tag list shows up as []any.
func episodeFromPayload(id string, payload map[string]any) Episode {
	episode := Episode{
		ID:                  id,
		Conversation:        stringValue(payload, payloadConversation),
		ContextTags:         stringSlice(payload, payloadContextTags),
		ConversationSummary: stringValue(payload, payloadSummary),
		WhatWorked:          stringValue(payload, payloadWhatWorked),
		WhatToAvoid:         stringValue(payload, payloadWhatToAvoid),
	}

	return episode
}

func stringValue(payload map[string]any, key string) string {
	if value, ok := payload[key].(string); ok {
		return value
	}

	return ""
}

func stringSlice(payload map[string]any, key string) []string {
	switch value := payload[key].(type) {
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))

		for _, item := range value {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}

		return out
	}

	return []string{}
}
