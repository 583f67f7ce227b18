package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sitesketch/internal/ai/prompts"
	"sitesketch/internal/types"
	"sitesketch/internal/utils"

	openai "github.com/sashabaranov/go-openai"
)

// Converse sends the next user turn along with the prior history and returns
// the model's reply text. Image parts are sent as data URLs.
func (g *Generator) Converse(ctx context.Context, history []types.Message, next types.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompts.SiteBuilderSystemInstruction(),
	})
	for _, m := range history {
		messages = append(messages, toChatMessage(m))
	}
	messages = append(messages, toChatMessage(next))

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: 0.7,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil && utils.ShouldRetry(err) {
		log.Printf("Chat completion failed, retrying once... Error: %v", err)
		select {
		case <-time.After(g.retryDelay):
		case <-ctx.Done():
			return "", fmt.Errorf("chat completion failed: %w", ctx.Err())
		}
		resp, err = g.client.CreateChatCompletion(ctx, req)
	}
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.Printf("Chat usage for empty response: %+v", resp.Usage)
		return "", errors.New("model returned an empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func toChatMessage(m types.Message) openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if m.Role == types.RoleModel {
		role = openai.ChatMessageRoleAssistant
	}
	if !m.HasImage() {
		return openai.ChatCompletionMessage{Role: role, Content: m.Text()}
	}

	parts := make([]openai.ChatMessagePart, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch {
		case p.InlineData != nil:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + p.InlineData.MimeType + ";base64," + p.InlineData.Data,
					Detail: openai.ImageURLDetailHigh,
				},
			})
		case p.Text != "":
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	}
	return openai.ChatCompletionMessage{Role: role, MultiContent: parts}
}
