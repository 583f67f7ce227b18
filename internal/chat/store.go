package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"sitesketch/internal/annotate"
	"sitesketch/internal/types"
)

var (
	ErrNotFound      = errors.New("conversation not found")
	ErrBusy          = errors.New("conversation is waiting for a reply")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNotAnnotating = errors.New("annotation tool is not open")
	ErrNoAnnotation  = errors.New("no annotation image attached")
)

// Conversation is one user's chat with the site builder.
type Conversation struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	history    []types.Message
	html       string
	pending    *annotate.FinalImage
	busy       bool
	preview    *PreviewTarget
	annotation *annotate.Session
}

// Snapshot is a read-only copy of a conversation's state.
type Snapshot struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"createdAt"`
	History       []types.Message `json:"history"`
	HTML          string          `json:"html"`
	HasAnnotation bool            `json:"hasAnnotation"`
	Annotating    bool            `json:"annotating"`
	Busy          bool            `json:"busy"`
}

// Snapshot copies the conversation state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:            c.ID,
		CreatedAt:     c.CreatedAt,
		History:       append([]types.Message(nil), c.history...),
		HTML:          c.html,
		HasAnnotation: c.pending != nil,
		Annotating:    c.annotation != nil,
		Busy:          c.busy,
	}
}

// HTML returns the latest generated document.
func (c *Conversation) HTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html
}

// PendingAnnotation returns the image that will be attached to the next
// message, if any.
func (c *Conversation) PendingAnnotation() (annotate.FinalImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return annotate.FinalImage{}, false
	}
	return *c.pending, true
}

// Store keeps conversations in memory.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

func NewStore() *Store {
	return &Store{conversations: make(map[string]*Conversation)}
}

// Create starts an empty conversation.
func (s *Store) Create() *Conversation {
	c := &Conversation{ID: uuid.New().String(), CreatedAt: time.Now().UTC()}
	s.mu.Lock()
	s.conversations[c.ID] = c
	s.mu.Unlock()
	return c
}

// Get looks a conversation up by ID.
func (s *Store) Get(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Delete removes a conversation and closes its annotation tool.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	c, ok := s.conversations[id]
	delete(s.conversations, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	c.mu.Lock()
	sess := c.annotation
	c.annotation, c.preview = nil, nil
	c.mu.Unlock()
	if sess != nil {
		sess.Detach()
	}
	return nil
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
