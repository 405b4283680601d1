// Package provider contains concrete clients for the external
// summarization capability.
package provider

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
)

/*
OpenAISummarizer runs the reflection prompt through the OpenAI chat
completion API. The official client reads OPENAI_API_KEY from the
environment.
*/
type OpenAISummarizer struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

type OpenAISummarizerOption func(*OpenAISummarizer)

func NewOpenAISummarizer(options ...OpenAISummarizerOption) *OpenAISummarizer {
	summarizer := &OpenAISummarizer{
		client:      openai.NewClient(),
		model:       string(openai.ChatModelGPT4oMini),
		temperature: 0.7,
		maxTokens:   1024,
	}

	for _, option := range options {
		option(summarizer)
	}

	return summarizer
}

// WithModel overrides the completion model.
func WithModel(model string) OpenAISummarizerOption {
	return func(summarizer *OpenAISummarizer) {
		if model != "" {
			summarizer.model = model
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(temperature float64) OpenAISummarizerOption {
	return func(summarizer *OpenAISummarizer) {
		summarizer.temperature = temperature
	}
}

// Summarize executes a single blocking completion and returns the
// assistant text verbatim. Parsing of the response is the caller's
// concern.
func (summarizer *OpenAISummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := summarizer.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(summarizer.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(summarizer.temperature),
		MaxTokens:   openai.Int(summarizer.maxTokens),
	})

	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
