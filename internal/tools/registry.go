// Package tools holds the model-callable tools and the registry that
// dispatches tool calls by name. Tool failures are converted to JSON error
// payloads here so a bad call degrades one tool result instead of aborting
// the whole agent turn.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/verdevalley/concierge/internal/schema"
)

// Registry maps tool names to implementations.
type Registry struct {
	tools  map[string]schema.Tool
	order  []string
	logger *slog.Logger
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (schema.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Schemas returns the wire-format schemas for all registered tools, in
// registration order.
func (r *Registry) Schemas() []schema.ToolSchema {
	out := make([]schema.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, schema.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		})
	}
	return out
}

// Execute runs the named tool and always returns a string for the model.
// Unknown names and tool failures come back as {"error": ...} payloads.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) string {
	t, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		return errorPayload("Unknown tool: " + name)
	}

	r.logger.Info("executing tool", "tool", name, "input", params)
	result, err := t.Execute(ctx, params)
	if err != nil {
		r.logger.Error("tool execution failed", "tool", name, "error", err)
		return errorPayload("Tool failed: " + err.Error())
	}
	return result
}

func errorPayload(msg string) string {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error": "internal error"}`
	}
	return string(data)
}
