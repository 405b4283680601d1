package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(summarizer Summarizer) (*Engine, *fakeVectorStore) {
	fake := newFakeVectorStore()
	store := NewStore(fake, NewMockEmbedder(8), WithDimension(8))
	return NewEngine(NewReflector(summarizer), store, 0.5), fake
}

func TestAddEpisode(t *testing.T) {
	ctx := context.Background()

	turns := []Turn{
		{Role: "system", Content: "You are a helpful AI Assistant."},
		{Role: "user", Content: "how do I profile a goroutine leak?"},
		{Role: "assistant", Content: "start with pprof's goroutine profile."},
	}

	t.Run("StoresReflectedEpisode", func(t *testing.T) {
		engine, _ := newTestEngine(&stubSummarizer{
			response: `{"context_tags": ["pprof"], "conversation_summary": "profiled a goroutine leak", "what_worked": "pprof", "what_to_avoid": "guessing"}`,
		})

		episode, err := engine.AddEpisode(ctx, turns, "u1")
		require.NoError(t, err)
		require.NotEmpty(t, episode.ID)

		assert.Equal(t, []string{"pprof"}, episode.ContextTags)
		assert.Equal(t, "profiled a goroutine leak", episode.ConversationSummary)
		assert.Equal(t, "USER: how do I profile a goroutine leak?\nASSISTANT: start with pprof's goroutine profile.", episode.Conversation)
	})

	t.Run("UnparsableReflectionStillWritesTheConversation", func(t *testing.T) {
		engine, fake := newTestEngine(&stubSummarizer{response: "I cannot help with that."})

		episode, err := engine.AddEpisode(ctx, turns, "u1")
		require.NoError(t, err)
		require.NotEmpty(t, episode.ID)

		assert.Equal(t, NotApplicable, episode.WhatWorked)
		assert.Contains(t, episode.Conversation, "USER: how do I profile a goroutine leak?")

		points, err := fake.Scroll(ctx, "memory_orb_u1", "goroutine", 5)
		require.NoError(t, err)
		assert.Len(t, points, 1)
	})

	t.Run("SummarizerFailureWritesNothing", func(t *testing.T) {
		engine, fake := newTestEngine(&stubSummarizer{err: context.DeadlineExceeded})

		_, err := engine.AddEpisode(ctx, turns, "u1")
		require.Error(t, err)
		assert.Empty(t, fake.collections)
	})
}

func TestEngineDirective(t *testing.T) {
	ctx := context.Background()

	t.Run("FreshUserGetsNeutralDirective", func(t *testing.T) {
		engine, _ := newTestEngine(&stubSummarizer{response: "{}"})

		directive, err := engine.Directive(ctx, "u1", "anything at all")
		require.NoError(t, err)
		assert.Equal(t, NeutralDirective, directive)
	})

	t.Run("StoredEpisodeShapesTheDirective", func(t *testing.T) {
		engine, _ := newTestEngine(&stubSummarizer{
			response: `{"context_tags": ["profiling"], "conversation_summary": "walked through pprof", "what_worked": "concrete flags", "what_to_avoid": "vague advice"}`,
		})

		_, err := engine.AddEpisode(ctx, []Turn{
			{Role: "user", Content: "pprof flags?"},
			{Role: "assistant", Content: "use -http and -seconds."},
		}, "u1")
		require.NoError(t, err)

		directive, err := engine.Directive(ctx, "u1", "pprof flags?")
		require.NoError(t, err)

		assert.Contains(t, directive, "Current Context Tags: profiling")
		assert.Contains(t, directive, "Key Insight: concrete flags")
		assert.Contains(t, directive, "Avoid: vague advice")
	})
}
