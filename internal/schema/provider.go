package schema

import (
	"context"
	"encoding/json"
)

// Stop reasons signalled by the model.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// ToolSchema is one tool definition in the catalogue exposed to the model.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// ToolUse is one tool invocation requested by the model.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
}

// Response is the normalised model response for one call.
//
// Blocks holds the assistant content verbatim so the agent loop can append
// it back into the message list when tools are requested; TextSegments and
// ToolUses are the typed projections the loop acts on.
type Response struct {
	StopReason   string
	TextSegments []string
	ToolUses     []ToolUse
	Blocks       []ContentBlock
	Usage        map[string]int
}

// HasToolUses reports whether the response requests at least one tool call.
func (r Response) HasToolUses() bool { return len(r.ToolUses) > 0 }

// Provider is the interface the hosted model backend must satisfy.
// recent conversation context travels inside system, never in msgs.
type Provider interface {
	Chat(ctx context.Context, system string, msgs Messages, tools []ToolSchema) (Response, error)
}
