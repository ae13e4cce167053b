// Package schema contains the core data types shared across concierge
// packages: conversation messages, the LLM provider contract, and the tool
// contract. Concrete implementations live in their respective packages.
package schema

// ContentBlock is a single block in a message. The model's tool-use protocol
// is block-structured: an assistant turn may mix text and tool_use blocks,
// and tool results travel back as tool_result blocks inside a user turn.
type ContentBlock struct {
	Type string // "text" | "tool_use" | "tool_result"

	// Type == "text"
	Text string

	// Type == "tool_use"
	ID    string // call id assigned by the model, echoed back in the result
	Name  string
	Input map[string]any

	// Type == "tool_result"
	ToolUseID string
	Content   string // always a string, even for structured tool output
}

// TextBlock returns a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// ToolResultBlock returns a tool_result block correlated to the tool_use
// block with the given id.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: "tool_result", ToolUseID: toolUseID, Content: content}
}

// Message is one entry in the per-turn message list sent to the model.
// Role is "user" or "assistant"; the rolling context window is injected into
// the system prompt instead of appearing here.
type Message struct {
	Role    string
	Content []ContentBlock
}

// Messages is the ordered message list for a single agent turn. It owns
// typed append methods so callers never construct raw blocks inline.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
func NewMessages(msgs ...Message) Messages {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// AddUser appends a plain-text user message.
func (mh *Messages) AddUser(text string) {
	mh.Messages = append(mh.Messages, Message{
		Role:    "user",
		Content: []ContentBlock{TextBlock(text)},
	})
}

// AddAssistant appends an assistant message with the given content blocks
// (typically the model's own response blocks, tool_use included).
func (mh *Messages) AddAssistant(blocks []ContentBlock) {
	mh.Messages = append(mh.Messages, Message{
		Role:    "assistant",
		Content: blocks,
	})
}

// AddToolResults appends a single user message carrying all tool results for
// one iteration. The model correlates results to calls by ToolUseID, not by
// position.
func (mh *Messages) AddToolResults(results []ContentBlock) {
	mh.Messages = append(mh.Messages, Message{
		Role:    "user",
		Content: results,
	})
}

// Clone returns a copy of mh with an independent backing slice.
func (mh *Messages) Clone() Messages {
	cloned := make([]Message, len(mh.Messages))
	copy(cloned, mh.Messages)
	return Messages{Messages: cloned}
}
