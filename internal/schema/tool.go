package schema

import (
	"context"
	"encoding/json"
)

// Tool is the interface all model-callable tools must satisfy.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's input.
	Parameters() json.RawMessage
	// Execute runs the tool. The returned string is handed back to the model
	// verbatim; an error is converted by the registry into an error payload
	// and never aborts the turn.
	Execute(ctx context.Context, params map[string]any) (string, error)
}
