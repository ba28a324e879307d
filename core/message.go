package core

// Role identifies the author of a history entry.
type Role string

const (
	// RoleUser marks text sent to an agent backend.
	RoleUser Role = "user"
	// RoleAgent marks a (serialized) reply produced by an agent backend.
	RoleAgent Role = "agent"
)

// Message is a single history entry.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserMessage is a convenience constructor for a user-authored entry.
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// AgentMessage is a convenience constructor for an agent-authored entry.
func AgentMessage(text string) Message { return Message{Role: RoleAgent, Text: text} }

// History is the ordered exchange log forwarded to a model endpoint so it
// has conversational context. It is append-only within a run and owned by a
// single orchestration loop, so it carries no locking.
type History struct {
	messages []Message
}

// NewHistory creates a history seeded with the given messages.
func NewHistory(msgs ...Message) *History {
	h := &History{}
	h.messages = append(h.messages, msgs...)
	return h
}

// Append adds entries to the end of the history.
func (h *History) Append(msgs ...Message) {
	h.messages = append(h.messages, msgs...)
}

// AppendExchange records one prompt/reply pair.
func (h *History) AppendExchange(prompt, reply string) {
	h.Append(UserMessage(prompt), AgentMessage(reply))
}

// Len returns the number of entries. A nil history has length zero.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.messages)
}

// Messages returns a copy of the entries in order.
func (h *History) Messages() []Message {
	if h == nil || len(h.messages) == 0 {
		return nil
	}
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// FirstUserText returns the text of the earliest user entry, if any.
func (h *History) FirstUserText() (string, bool) {
	if h == nil {
		return "", false
	}
	for _, m := range h.messages {
		if m.Role == RoleUser {
			return m.Text, true
		}
	}
	return "", false
}

// Exchanges returns the number of completed prompt/reply pairs.
func (h *History) Exchanges() int { return h.Len() / 2 }
