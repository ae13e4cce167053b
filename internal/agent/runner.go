// Package agent contains the tool-use loop and the per-message pipeline that
// turns an inbound chat message into a reply.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/verdevalley/concierge/internal/schema"
	"github.com/verdevalley/concierge/internal/tools"
)

const (
	// DefaultMaxIterations bounds the tool-use loop for one turn.
	DefaultMaxIterations = 10

	// FallbackReply is sent when the loop exhausts its iterations or the
	// model stops for a reason the loop does not understand.
	FallbackReply = "I'm sorry, I had trouble processing that. Please try again."
)

// Runner drives the tool-use loop: call the model, execute any tools it
// requests, feed results back, and repeat until it produces a final answer.
type Runner struct {
	provider      schema.Provider
	registry      *tools.Registry
	basePrompt    string
	maxIterations int
	logger        *slog.Logger
}

// NewRunner builds a Runner. An empty basePrompt uses DefaultSystemPrompt and
// maxIterations of zero or less uses DefaultMaxIterations.
func NewRunner(provider schema.Provider, registry *tools.Registry, basePrompt string, maxIterations int, logger *slog.Logger) *Runner {
	if basePrompt == "" {
		basePrompt = DefaultSystemPrompt
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Runner{
		provider:      provider,
		registry:      registry,
		basePrompt:    basePrompt,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Run executes one full agent turn and returns the reply text.
//
// Only the current user message enters the API message list; history arrives
// through the system prompt as a formatted transcript. Tool failures are
// absorbed into tool results by the registry, so the only error returned
// here is a failed model call.
func (r *Runner) Run(ctx context.Context, userMessage, recentConversation string) (string, error) {
	systemPrompt := BuildSystemPrompt(r.basePrompt, recentConversation)

	msgs := schema.NewMessages()
	msgs.AddUser(userMessage)

	toolSchemas := r.registry.Schemas()

	for iteration := 1; iteration <= r.maxIterations; iteration++ {
		r.logger.Info("agent iteration", "iteration", iteration)

		resp, err := r.provider.Chat(ctx, systemPrompt, msgs, toolSchemas)
		if err != nil {
			return "", fmt.Errorf("model call: %w", err)
		}

		switch resp.StopReason {
		case schema.StopEndTurn:
			return strings.TrimSpace(strings.Join(resp.TextSegments, " ")), nil

		case schema.StopToolUse:
			// The assistant blocks go back verbatim so tool_use ids stay
			// paired with the results that follow.
			msgs.AddAssistant(resp.Blocks)

			results := make([]schema.ContentBlock, 0, len(resp.ToolUses))
			for _, use := range resp.ToolUses {
				content := r.registry.Execute(ctx, use.Name, use.Input)
				results = append(results, schema.ToolResultBlock(use.ID, content))
			}
			msgs.AddToolResults(results)

		default:
			r.logger.Warn("unexpected stop reason", "stop_reason", resp.StopReason)
			return FallbackReply, nil
		}
	}

	r.logger.Warn("agent loop exhausted", "max_iterations", r.maxIterations)
	return FallbackReply, nil
}
