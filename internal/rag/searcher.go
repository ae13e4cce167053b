package rag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/verdevalley/concierge/internal/store"
)

const (
	// NoResultsMessage is returned when the similarity search comes back empty.
	NoResultsMessage = "No relevant information found in the knowledge base."
	// ErrorMessage is returned when embedding or search fails. Failures are
	// absorbed here so the agent turn continues with a degraded tool result.
	ErrorMessage = "Unable to search the knowledge base right now."

	defaultMatchCount = 5
)

// Searcher answers knowledge-base queries with a plain-text context block.
type Searcher struct {
	embedder   Embedder
	store      store.Store
	matchCount int
	logger     *slog.Logger
}

// NewSearcher builds a Searcher. A matchCount of zero or less uses the
// default of 5.
func NewSearcher(embedder Embedder, st store.Store, matchCount int, logger *slog.Logger) *Searcher {
	if matchCount <= 0 {
		matchCount = defaultMatchCount
	}
	return &Searcher{
		embedder:   embedder,
		store:      st,
		matchCount: matchCount,
		logger:     logger,
	}
}

// Search embeds the query, runs the similarity search, and joins the matched
// chunks with blank lines. It never returns an error: failures come back as
// a readable sentence the model can relay or work around.
func (s *Searcher) Search(ctx context.Context, query string) string {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Error("knowledge base embed failed", "error", err)
		return ErrorMessage
	}

	docs, err := s.store.MatchDocuments(ctx, embedding, s.matchCount)
	if err != nil {
		s.logger.Error("knowledge base search failed", "error", err)
		return ErrorMessage
	}
	if len(docs) == 0 {
		return NoResultsMessage
	}

	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Content != "" {
			parts = append(parts, d.Content)
		}
	}
	s.logger.Debug("knowledge base search", "query", query, "matches", len(docs))
	return strings.Join(parts, "\n\n---\n\n")
}
