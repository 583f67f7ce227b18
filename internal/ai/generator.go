package ai

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the part of *openai.Client the generator uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Generator struct {
	client ChatClient
	model  string
	// delay before the single retry of a transient failure
	retryDelay time.Duration
}

// NewGenerator creates a generator talking to an OpenAI-compatible endpoint.
// An empty baseURL uses the OpenAI default; an empty model uses GPT-4o.
func NewGenerator(apiKey, baseURL, model string) *Generator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return NewGeneratorWithClient(openai.NewClientWithConfig(config), model)
}

// NewGeneratorWithClient wraps an existing chat client.
func NewGeneratorWithClient(client ChatClient, model string) *Generator {
	if model == "" {
		model = openai.GPT4o
	}
	return &Generator{
		client:     client,
		model:      model,
		retryDelay: 2 * time.Second,
	}
}

// Model returns the chat model used for completions.
func (g *Generator) Model() string { return g.model }
