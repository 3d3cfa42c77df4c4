package history

import (
	"sync"

	"cardiac-assistant-be/pkg/llm"
)

// DefaultWindow is how many recent turns (three exchanges) reach the prompt.
const DefaultWindow = 6

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an append-only turn log for one session. Only the tail
// window is ever read for prompting.
type Conversation struct {
	mu        sync.RWMutex
	turns     []Turn
	patientID string
}

func NewConversation() *Conversation {
	return &Conversation{}
}

func (c *Conversation) Append(role, content string) {
	c.mu.Lock()
	c.turns = append(c.turns, Turn{Role: role, Content: content})
	c.mu.Unlock()
}

// AppendExchange records a user query and its answer together.
func (c *Conversation) AppendExchange(query, answer string) {
	c.mu.Lock()
	c.turns = append(c.turns,
		Turn{Role: llm.RoleUser, Content: query},
		Turn{Role: llm.RoleAssistant, Content: answer},
	)
	c.mu.Unlock()
}

// Window returns the last min(n, len) turns in insertion order.
func (c *Conversation) Window(n int) []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 {
		return []Turn{}
	}
	start := len(c.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(c.turns)-start)
	copy(out, c.turns[start:])
	return out
}

func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Clear drops every turn and the tracked patient.
func (c *Conversation) Clear() {
	c.mu.Lock()
	c.turns = nil
	c.patientID = ""
	c.mu.Unlock()
}

// SetPatient records the patient last answered for. Display only.
func (c *Conversation) SetPatient(patientID string) {
	if patientID == "" {
		return
	}
	c.mu.Lock()
	c.patientID = patientID
	c.mu.Unlock()
}

func (c *Conversation) CurrentPatient() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.patientID
}

// Partition splits turns by role, keeping order within each side.
func Partition(turns []Turn) (user []string, assistant []string) {
	for _, t := range turns {
		switch t.Role {
		case llm.RoleUser:
			user = append(user, t.Content)
		case llm.RoleAssistant:
			assistant = append(assistant, t.Content)
		}
	}
	return user, assistant
}
