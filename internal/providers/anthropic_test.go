package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/verdevalley/concierge/internal/schema"
)

func TestChat_EndTurn(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-test" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("missing version header, got %q", r.Header.Get("anthropic-version"))
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Hello from the concierge."},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 12, "output_tokens": 8},
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("sk-test", srv.URL, "test-model", 256)
	msgs := schema.NewMessages()
	msgs.AddUser("hi")

	resp, err := p.Chat(context.Background(), "system text", msgs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != schema.StopEndTurn {
		t.Errorf("expected end_turn, got %q", resp.StopReason)
	}
	if len(resp.TextSegments) != 1 || resp.TextSegments[0] != "Hello from the concierge." {
		t.Errorf("unexpected text segments %v", resp.TextSegments)
	}
	if resp.Usage["output_tokens"] != 8 {
		t.Errorf("unexpected usage %v", resp.Usage)
	}

	if gotBody["model"] != "test-model" {
		t.Errorf("expected model in request, got %v", gotBody["model"])
	}
	if gotBody["system"] != "system text" {
		t.Errorf("expected system prompt in request, got %v", gotBody["system"])
	}
	if gotBody["max_tokens"] != float64(256) {
		t.Errorf("expected max_tokens 256, got %v", gotBody["max_tokens"])
	}
}

func TestChat_ToolUse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Let me check."},
				{
					"type":  "tool_use",
					"id":    "toolu_01",
					"name":  "check_availability",
					"input": map[string]any{"property_name": "The Glasshouse"},
				},
			},
			"stop_reason": "tool_use",
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("sk-test", srv.URL, "", 0)
	msgs := schema.NewMessages()
	msgs.AddUser("is the glasshouse free?")

	resp, err := p.Chat(context.Background(), "", msgs, []schema.ToolSchema{
		{Name: "check_availability", Description: "d", InputSchema: json.RawMessage(`{"type":"object"}`)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasToolUses() {
		t.Fatal("expected tool uses")
	}
	use := resp.ToolUses[0]
	if use.ID != "toolu_01" || use.Name != "check_availability" {
		t.Errorf("unexpected tool use %+v", use)
	}
	if use.Input["property_name"] != "The Glasshouse" {
		t.Errorf("unexpected tool input %v", use.Input)
	}
	// Blocks preserve the full response for echoing back to the API.
	if len(resp.Blocks) != 2 || resp.Blocks[1].Type != "tool_use" {
		t.Errorf("unexpected blocks %+v", resp.Blocks)
	}
}

func TestChat_ToolResultWireFormat(t *testing.T) {
	var gotBody struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type      string `json:"type"`
				ToolUseID string `json:"tool_use_id"`
				Content   string `json:"content"`
			} `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]any{{"type": "text", "text": "ok"}},
			"stop_reason": "end_turn",
		})
	}))
	defer srv.Close()

	p := NewAnthropicProvider("sk-test", srv.URL, "", 0)
	msgs := schema.NewMessages()
	msgs.AddUser("hi")
	msgs.AddAssistant([]schema.ContentBlock{
		{Type: "tool_use", ID: "toolu_01", Name: "echo", Input: map[string]any{"text": "x"}},
	})
	msgs.AddToolResults([]schema.ContentBlock{
		schema.ToolResultBlock("toolu_01", `{"ok":true}`),
	})

	if _, err := p.Chat(context.Background(), "", msgs, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gotBody.Messages) != 3 {
		t.Fatalf("expected 3 wire messages, got %d", len(gotBody.Messages))
	}
	result := gotBody.Messages[2]
	if result.Role != "user" {
		t.Errorf("tool results must travel in a user message, got %q", result.Role)
	}
	if result.Content[0].Type != "tool_result" || result.Content[0].ToolUseID != "toolu_01" {
		t.Errorf("unexpected tool_result block %+v", result.Content[0])
	}
	if result.Content[0].Content != `{"ok":true}` {
		t.Errorf("tool result content must stay a string, got %q", result.Content[0].Content)
	}
}

func TestChat_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("sk-test", srv.URL, "", 0)
	msgs := schema.NewMessages()
	msgs.AddUser("hi")

	_, err := p.Chat(context.Background(), "", msgs, nil)
	if err == nil {
		t.Fatal("expected error for HTTP 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %v", err)
	}
}
