package assistant

import (
	"sync"

	"github.com/asknotes/asknotes/internal/models"
)

// Conversation is the append-only turn history for one subject. Turns
// are never mutated or removed. Consecutive user turns occur when an
// assistant call fails: the user turn is kept, the assistant turn is
// not produced.
type Conversation struct {
	mu    sync.Mutex
	turns []models.Turn
}

func NewConversation() *Conversation {
	return &Conversation{}
}

func (c *Conversation) AppendUser(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, models.Turn{Role: models.RoleUser, Content: content})
}

func (c *Conversation) AppendAssistant(content string, parsed *models.StructuredAnswer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, models.Turn{
		Role:    models.RoleAssistant,
		Content: content,
		Parsed:  parsed,
	})
}

// RecentWindow returns a copy of the last n turns. The model context
// is built from this window, not the full history, to bound prompt
// size; the information loss is intentional.
func (c *Conversation) RecentWindow(n int) []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := len(c.turns) - n
	if n <= 0 || start < 0 {
		start = 0
	}
	window := make([]models.Turn, len(c.turns)-start)
	copy(window, c.turns[start:])
	return window
}

// Turns returns a copy of the full history.
func (c *Conversation) Turns() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := make([]models.Turn, len(c.turns))
	copy(turns, c.turns)
	return turns
}
