package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sitesketch/internal/ai"
	"sitesketch/internal/annotate"
	"sitesketch/internal/types"
)

// Generator produces the model's reply to the next user turn.
type Generator interface {
	Converse(ctx context.Context, history []types.Message, next types.Message) (string, error)
}

// Service runs conversations and their annotation tools.
type Service struct {
	store      *Store
	generator  Generator
	rasterizer annotate.Rasterizer
	sessOpts   []annotate.Option
}

// NewService wires a store to a generator and a rasterizer. opts are applied
// to every annotation session.
func NewService(store *Store, generator Generator, rasterizer annotate.Rasterizer, opts ...annotate.Option) *Service {
	return &Service{
		store:      store,
		generator:  generator,
		rasterizer: rasterizer,
		sessOpts:   opts,
	}
}

// Store returns the underlying conversation store.
func (s *Service) Store() *Store { return s.store }

// Reply is the outcome of one turn.
type Reply struct {
	Text    string `json:"reply"`
	HTML    string `json:"html"`
	Updated bool   `json:"updated"`
}

// Send posts a user message, attaching the pending annotation image if there
// is one, and records the model's reply. When the reply contains an HTML
// document it becomes the conversation's preview. Failures are also
// recorded in the transcript as a model message.
func (s *Service) Send(ctx context.Context, id, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}
	c, err := s.store.Get(id)
	if err != nil {
		return Reply{}, err
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Reply{}, ErrBusy
	}
	c.busy = true
	var parts []types.MessagePart
	if c.pending != nil {
		parts = append(parts, types.MessagePart{InlineData: &types.InlineData{
			MimeType: c.pending.MimeType,
			Data:     c.pending.Base64(),
		}})
	}
	parts = append(parts, types.MessagePart{Text: text})
	msg := types.Message{Role: types.RoleUser, Parts: parts}
	history := append([]types.Message(nil), c.history...)
	c.history = append(c.history, msg)
	c.pending = nil
	c.mu.Unlock()

	replyText, err := s.generator.Converse(ctx, history, msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		log.Printf("ERROR: conversation %s: %v", id, err)
		c.history = append(c.history, types.Message{
			Role:  types.RoleModel,
			Parts: []types.MessagePart{{Text: fmt.Sprintf("Sorry, I encountered an error: %v", err)}},
		})
		return Reply{}, err
	}
	c.history = append(c.history, types.Message{
		Role:  types.RoleModel,
		Parts: []types.MessagePart{{Text: replyText}},
	})

	html, ok := ai.ExtractHTML(replyText)
	if ok {
		c.html = html
		log.Printf("Info: conversation %s preview updated (%d bytes)", id, len(html))
	}
	return Reply{Text: replyText, HTML: c.html, Updated: ok}, nil
}

// ClearAnnotation drops the pending annotation image.
func (s *Service) ClearAnnotation(id string) error {
	c, err := s.store.Get(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return ErrNoAnnotation
	}
	c.pending = nil
	return nil
}
