// Package providers implements the hosted LLM backend over the Anthropic
// Messages API. The client is constructed once at startup and injected into
// the agent; call failures are returned to the caller rather than converted
// to user-visible text here.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verdevalley/concierge/internal/schema"
)

const (
	defaultAPIBase   = "https://api.anthropic.com/v1"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
	apiVersion       = "2023-06-01"
)

// AnthropicProvider makes direct HTTP calls to the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey     string
	apiBase    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

var _ schema.Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider constructs a provider from raw config values.
// Empty apiBase, model, and maxTokens fall back to the defaults above.
func NewAnthropicProvider(apiKey, apiBase, model string, maxTokens int) *AnthropicProvider {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &AnthropicProvider{
		apiKey:     apiKey,
		apiBase:    strings.TrimRight(apiBase, "/"),
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Chat implements schema.Provider.
func (p *AnthropicProvider) Chat(
	ctx context.Context,
	system string,
	msgs schema.Messages,
	tools []schema.ToolSchema,
) (schema.Response, error) {
	body := map[string]any{
		"model":      p.model,
		"max_tokens": p.maxTokens,
		"messages":   wireMessages(msgs),
	}
	if system != "" {
		body["system"] = system
	}
	if len(tools) > 0 {
		body["tools"] = tools
	}

	data, err := json.Marshal(body)
	if err != nil {
		return schema.Response{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiBase+"/messages", bytes.NewReader(data))
	if err != nil {
		return schema.Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return schema.Response{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.Response{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return schema.Response{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}

	return parseResponse(raw)
}

// ---------------------------------------------------------------------------
// Wire format
// ---------------------------------------------------------------------------

// wireMessages converts the typed message list to the Messages API format.
func wireMessages(msgs schema.Messages) []map[string]any {
	out := make([]map[string]any, 0, len(msgs.Messages))
	for _, m := range msgs.Messages {
		blocks := make([]map[string]any, 0, len(m.Content))
		for _, b := range m.Content {
			switch b.Type {
			case "text":
				blocks = append(blocks, map[string]any{"type": "text", "text": b.Text})
			case "tool_use":
				input := b.Input
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, map[string]any{
					"type":  "tool_use",
					"id":    b.ID,
					"name":  b.Name,
					"input": input,
				})
			case "tool_result":
				blocks = append(blocks, map[string]any{
					"type":        "tool_result",
					"tool_use_id": b.ToolUseID,
					"content":     b.Content,
				})
			}
		}
		out = append(out, map[string]any{"role": m.Role, "content": blocks})
	}
	return out
}

// respBody models the subset of the Messages API response we care about.
type respBody struct {
	Content []struct {
		Type  string         `json:"type"`
		Text  string         `json:"text"`  // type=text
		ID    string         `json:"id"`    // type=tool_use
		Name  string         `json:"name"`  // type=tool_use
		Input map[string]any `json:"input"` // type=tool_use
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func parseResponse(raw []byte) (schema.Response, error) {
	var body respBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return schema.Response{}, fmt.Errorf("parse response: %w", err)
	}

	out := schema.Response{
		StopReason: body.StopReason,
		Usage: map[string]int{
			"input_tokens":  body.Usage.InputTokens,
			"output_tokens": body.Usage.OutputTokens,
		},
	}

	for _, block := range body.Content {
		switch block.Type {
		case "text":
			out.TextSegments = append(out.TextSegments, block.Text)
			out.Blocks = append(out.Blocks, schema.TextBlock(block.Text))
		case "tool_use":
			out.ToolUses = append(out.ToolUses, schema.ToolUse{
				ID:    block.ID,
				Name:  block.Name,
				Input: block.Input,
			})
			out.Blocks = append(out.Blocks, schema.ContentBlock{
				Type:  "tool_use",
				ID:    block.ID,
				Name:  block.Name,
				Input: block.Input,
			})
		}
	}
	return out, nil
}

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
