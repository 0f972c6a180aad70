package ai

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message written by the human user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the model.
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Fragment is one streamed piece of a generated answer.
// A Fragment with Err set is terminal: no fragments follow it and the
// stream channel is closed immediately after.
type Fragment struct {
	Text string
	Err  error
}
