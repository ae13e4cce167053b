package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/verdevalley/concierge/internal/store"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   []byte
}

func recordingServer(t *testing.T, respond func(r *http.Request) (int, string)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") == "" || r.Header.Get("Authorization") == "" {
			t.Error("missing auth headers")
		}
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   body,
		})
		status, resp := respond(r)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestEnsureUser_New(t *testing.T) {
	srv, seen := recordingServer(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodGet {
			return 200, `[]`
		}
		return 201, ``
	})
	s := New(srv.URL, "key")

	created, err := s.EnsureUser(context.Background(), store.User{UserID: 42, ChatID: 42, FirstName: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected user creation")
	}

	reqs := *seen
	if len(reqs) != 2 {
		t.Fatalf("expected lookup then insert, got %d requests", len(reqs))
	}
	if reqs[0].path != "/rest/v1/users" || reqs[0].method != http.MethodGet {
		t.Errorf("unexpected lookup request %+v", reqs[0])
	}
	if reqs[1].method != http.MethodPost {
		t.Errorf("expected POST insert, got %s", reqs[1].method)
	}

	var row map[string]any
	if err := json.Unmarshal(reqs[1].body, &row); err != nil {
		t.Fatalf("insert body is not JSON: %v", err)
	}
	if row["user_id"] != float64(42) || row["first_name"] != "Ada" {
		t.Errorf("unexpected insert row %v", row)
	}
}

func TestEnsureUser_Existing(t *testing.T) {
	srv, seen := recordingServer(t, func(*http.Request) (int, string) {
		return 200, `[{"user_id":42}]`
	})
	s := New(srv.URL, "key")

	created, err := s.EnsureUser(context.Background(), store.User{UserID: 42})
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("existing user must not be recreated")
	}
	if len(*seen) != 1 {
		t.Errorf("expected only the lookup request, got %d", len(*seen))
	}
}

func TestTrimContext_CallsRPC(t *testing.T) {
	srv, seen := recordingServer(t, func(*http.Request) (int, string) { return 204, `` })
	s := New(srv.URL, "key")

	if err := s.TrimContext(context.Background(), 7, 10); err != nil {
		t.Fatal(err)
	}

	req := (*seen)[0]
	if req.path != "/rest/v1/rpc/trim_minimal_context" {
		t.Errorf("unexpected path %s", req.path)
	}
	var payload map[string]any
	_ = json.Unmarshal(req.body, &payload)
	if payload["p_user_id"] != float64(7) || payload["p_limit"] != float64(10) {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestMatchDocuments_CallsRPC(t *testing.T) {
	srv, seen := recordingServer(t, func(*http.Request) (int, string) {
		return 200, `[{"content":"Pets welcome.","metadata":{"fileName":"guide.md","date":"2026-01-01"}}]`
	})
	s := New(srv.URL, "key")

	docs, err := s.MatchDocuments(context.Background(), []float64{0.1, 0.2}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Content != "Pets welcome." {
		t.Errorf("unexpected docs %+v", docs)
	}
	if docs[0].Metadata.FileName != "guide.md" {
		t.Errorf("unexpected metadata %+v", docs[0].Metadata)
	}

	req := (*seen)[0]
	if req.path != "/rest/v1/rpc/match_documents" {
		t.Errorf("unexpected path %s", req.path)
	}
	var payload map[string]any
	_ = json.Unmarshal(req.body, &payload)
	if payload["match_count"] != float64(5) {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestLoadContext_OrdersAscending(t *testing.T) {
	srv, seen := recordingServer(t, func(*http.Request) (int, string) {
		return 200, `[{"role":"user","text":"hi","timestamp":"2026-01-01T10:00:00Z"},
		              {"role":"assistant","text":"hello","timestamp":"2026-01-01T10:00:05Z"}]`
	})
	s := New(srv.URL, "key")

	entries, err := s.LoadContext(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Role != "user" || entries[1].Role != "assistant" {
		t.Errorf("unexpected entries %+v", entries)
	}

	req := (*seen)[0]
	if !strings.Contains(req.query, "order=timestamp.asc") {
		t.Errorf("expected ascending order in query, got %q", req.query)
	}
}

func TestDo_HTTPError(t *testing.T) {
	srv, _ := recordingServer(t, func(*http.Request) (int, string) {
		return 500, `{"message":"boom"}`
	})
	s := New(srv.URL, "key")

	if err := s.LogMessage(context.Background(), store.Message{UserID: 1, Role: "user", Text: "x"}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}
