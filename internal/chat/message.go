package chat

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry. Markdown must return the same output
// for the same message state, so rendering stays cacheable.
type Message interface {
	Role() string
	Markdown() string
}

type TextMessage struct {
	Speaker string
	Body    string
}

func NewUserMessage(body string) *TextMessage {
	return &TextMessage{Speaker: RoleUser, Body: body}
}

func NewAssistantMessage(body string) *TextMessage {
	return &TextMessage{Speaker: RoleAssistant, Body: body}
}

func (m *TextMessage) Role() string { return m.Speaker }

func (m *TextMessage) Markdown() string { return m.Body }
