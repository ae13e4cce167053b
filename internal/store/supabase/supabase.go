// Package supabase implements store.Store against a hosted Supabase
// project over its PostgREST API. Tables: users, chat_logs, minimal_context
// and the pgvector-indexed guest_info table. Window trimming and similarity
// search are server-side RPCs (trim_minimal_context, match_documents) so the
// datastore stays the arbiter of consistency for concurrent writers.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/verdevalley/concierge/internal/store"
)

// Store implements store.Store over the Supabase REST API.
type Store struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

var _ store.Store = (*Store)(nil)

// New creates a Store for the project at baseURL, authenticated with the
// service-role key.
func New(baseURL, serviceKey string) *Store {
	return &Store{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Close implements store.Store; the HTTP client holds no resources to release.
func (s *Store) Close() error { return nil }

// --- Users ---

func (s *Store) EnsureUser(ctx context.Context, u store.User) (bool, error) {
	q := url.Values{}
	q.Set("select", "user_id")
	q.Set("user_id", fmt.Sprintf("eq.%d", u.UserID))

	var existing []struct {
		UserID int64 `json:"user_id"`
	}
	if err := s.do(ctx, http.MethodGet, "users", q, nil, &existing); err != nil {
		return false, fmt.Errorf("check user %d: %w", u.UserID, err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := map[string]any{
		"user_id":       u.UserID,
		"chat_id":       u.ChatID,
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"language_code": u.LanguageCode,
		"created_at":    createdAt.Format(time.RFC3339),
	}
	if err := s.do(ctx, http.MethodPost, "users", nil, row, nil); err != nil {
		return false, fmt.Errorf("insert user %d: %w", u.UserID, err)
	}
	return true, nil
}

// --- Chat log ---

func (s *Store) LogMessage(ctx context.Context, m store.Message) error {
	if err := s.do(ctx, http.MethodPost, "chat_logs", nil, messageRow(m), nil); err != nil {
		return fmt.Errorf("insert chat log: %w", err)
	}
	return nil
}

func (s *Store) PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := url.Values{}
	q.Set("timestamp", "lt."+cutoff.UTC().Format(time.RFC3339))
	if err := s.do(ctx, http.MethodDelete, "chat_logs", q, nil, nil); err != nil {
		return 0, fmt.Errorf("purge chat logs: %w", err)
	}
	// PostgREST does not report the deleted row count without a
	// return=representation round trip; callers treat 0 as "unknown".
	return 0, nil
}

// --- Context window ---

func (s *Store) AppendContext(ctx context.Context, m store.Message) error {
	if err := s.do(ctx, http.MethodPost, "minimal_context", nil, messageRow(m), nil); err != nil {
		return fmt.Errorf("append context: %w", err)
	}
	return nil
}

func (s *Store) TrimContext(ctx context.Context, userID int64, limit int) error {
	payload := map[string]any{"p_user_id": userID, "p_limit": limit}
	if err := s.do(ctx, http.MethodPost, "rpc/trim_minimal_context", nil, payload, nil); err != nil {
		return fmt.Errorf("trim context for %d: %w", userID, err)
	}
	return nil
}

func (s *Store) LoadContext(ctx context.Context, userID int64) ([]store.Entry, error) {
	q := url.Values{}
	q.Set("select", "role,text,timestamp")
	q.Set("user_id", fmt.Sprintf("eq.%d", userID))
	q.Set("order", "timestamp.asc")

	var rows []struct {
		Role      string    `json:"role"`
		Text      string    `json:"text"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := s.do(ctx, http.MethodGet, "minimal_context", q, nil, &rows); err != nil {
		return nil, fmt.Errorf("load context for %d: %w", userID, err)
	}

	out := make([]store.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.Entry{Role: r.Role, Text: r.Text, Timestamp: r.Timestamp})
	}
	return out, nil
}

func (s *Store) ContextUserIDs(ctx context.Context) ([]int64, error) {
	q := url.Values{}
	q.Set("select", "user_id")

	var rows []struct {
		UserID int64 `json:"user_id"`
	}
	if err := s.do(ctx, http.MethodGet, "minimal_context", q, nil, &rows); err != nil {
		return nil, fmt.Errorf("list context users: %w", err)
	}

	seen := make(map[int64]bool, len(rows))
	var ids []int64
	for _, r := range rows {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	return ids, nil
}

// --- Knowledge base ---

func (s *Store) MatchDocuments(ctx context.Context, embedding []float64, count int) ([]store.Document, error) {
	payload := map[string]any{
		"query_embedding": embedding,
		"match_count":     count,
		"filter":          map[string]any{"table": "guest_info"},
	}
	var rows []struct {
		Content  string         `json:"content"`
		Metadata store.Metadata `json:"metadata"`
	}
	if err := s.do(ctx, http.MethodPost, "rpc/match_documents", nil, payload, &rows); err != nil {
		return nil, fmt.Errorf("match documents: %w", err)
	}

	out := make([]store.Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, store.Document{Content: r.Content, Metadata: r.Metadata})
	}
	return out, nil
}

func (s *Store) InsertDocuments(ctx context.Context, docs []store.Document) error {
	rows := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, map[string]any{
			"content":   d.Content,
			"embedding": d.Embedding,
			"metadata":  d.Metadata,
		})
	}
	if err := s.do(ctx, http.MethodPost, "guest_info", nil, rows, nil); err != nil {
		return fmt.Errorf("insert documents: %w", err)
	}
	return nil
}

func (s *Store) DeleteDocumentsByFile(ctx context.Context, fileName string) error {
	q := url.Values{}
	q.Set("metadata->>fileName", "like.*"+fileName+"*")
	if err := s.do(ctx, http.MethodDelete, "guest_info", q, nil, nil); err != nil {
		return fmt.Errorf("delete documents for %s: %w", fileName, err)
	}
	return nil
}

// --- HTTP plumbing ---

func messageRow(m store.Message) map[string]any {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	row := map[string]any{
		"user_id":   m.UserID,
		"chat_id":   m.ChatID,
		"role":      m.Role,
		"text":      m.Text,
		"update_id": m.UpdateID,
		"timestamp": ts.Format(time.RFC3339),
	}
	if m.MessageID != 0 {
		row["message_id"] = m.MessageID
	}
	return row
}

// do performs one REST call against /rest/v1/<path>, marshalling body in and
// out as JSON. A nil out discards the response body.
func (s *Store) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := s.baseURL + "/rest/v1/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		if len(detail) > 300 {
			detail = detail[:300]
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, detail)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
