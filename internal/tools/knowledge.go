package tools

import (
	"context"
	"encoding/json"

	"github.com/verdevalley/concierge/internal/schema"
)

// KnowledgeSearcher answers a free-text query with a plain-text context
// block. Implementations absorb their own failures and return a readable
// sentence instead of an error.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string) string
}

// SearchKnowledgeBaseTool exposes the knowledge base to the model.
type SearchKnowledgeBaseTool struct {
	searcher KnowledgeSearcher
}

var _ schema.Tool = (*SearchKnowledgeBaseTool)(nil)

// NewSearchKnowledgeBaseTool creates the search_knowledge_base tool.
func NewSearchKnowledgeBaseTool(searcher KnowledgeSearcher) *SearchKnowledgeBaseTool {
	return &SearchKnowledgeBaseTool{searcher: searcher}
}

func (t *SearchKnowledgeBaseTool) Name() string {
	return "search_knowledge_base"
}

func (t *SearchKnowledgeBaseTool) Description() string {
	return "Search the Verde Valley knowledge base for information about properties, " +
		"amenities, policies, activities, and general guest questions. " +
		"Use this for any question that doesn't require checking calendars or making bookings."
}

func (t *SearchKnowledgeBaseTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "The search query, e.g. 'pet policy at Olive Lodge' or 'check-in time'"
			}
		},
		"required": ["query"]
	}`)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (t *SearchKnowledgeBaseTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req searchRequest
	if err := decodeArgs(params, &req); err != nil {
		return "", err
	}
	if req.Query == "" {
		return "", missingField("query")
	}
	return t.searcher.Search(ctx, req.Query), nil
}
