package tools

import (
	"log/slog"

	"github.com/verdevalley/concierge/internal/schema"
)

// RegistryBuilder accumulates tools during the construction phase.
// Call Build() to produce an immutable Registry ready for use.
type RegistryBuilder struct {
	tools  map[string]schema.Tool
	order  []string
	logger *slog.Logger
}

// NewRegistryBuilder returns a fresh RegistryBuilder.
func NewRegistryBuilder(logger *slog.Logger) *RegistryBuilder {
	return &RegistryBuilder{tools: make(map[string]schema.Tool), logger: logger}
}

// WithTool adds a tool and returns the builder, enabling chaining.
// Registering the same name twice keeps the later tool and its position.
func (b *RegistryBuilder) WithTool(tool schema.Tool) *RegistryBuilder {
	name := tool.Name()
	if _, exists := b.tools[name]; !exists {
		b.order = append(b.order, name)
	}
	b.tools[name] = tool

	return b
}

// Build produces an immutable Registry from the accumulated tools.
func (b *RegistryBuilder) Build() *Registry {
	tools := make(map[string]schema.Tool, len(b.tools))
	for k, v := range b.tools {
		tools[k] = v
	}
	order := make([]string, len(b.order))
	copy(order, b.order)
	return &Registry{tools: tools, order: order, logger: b.logger}
}
