package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/contactnotes/internal/notestore"
	"github.com/starford/contactnotes/internal/testutil"
)

func testServer(t *testing.T) (*Server, notestore.Store) {
	t.Helper()
	store := testutil.FileStore(t)
	return New(store, "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "set_note":
		result, err = srv.setNote(ctx, req)
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSetAndGetNote(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "set_note", map[string]any{"email": "a@x.com", "note": "likes tea"})
	if r.IsError || resultText(r) != "saved: a@x.com" {
		t.Errorf("set result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_note", map[string]any{"email": "a@x.com"})
	if got := resultText(r); got != "likes tea" {
		t.Errorf("get result = %q", got)
	}

	if got, _ := store.Get(context.Background(), "a@x.com"); got != "likes tea" {
		t.Errorf("store = %q", got)
	}
}

func TestGetNoteMissingIsEmpty(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_note", map[string]any{"email": "nobody@x.com"})
	if r.IsError || resultText(r) != "" {
		t.Errorf("result = %+v", r)
	}
}

func TestSetNoteRequiresArgs(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "set_note", map[string]any{"email": "a@x.com"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
	r = callTool(t, srv, "get_note", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing email")
	}
}

func TestListNotes(t *testing.T) {
	srv, store := testServer(t)
	ctx := context.Background()
	_ = store.Set(ctx, "a@x.com", "one")
	_ = store.Set(ctx, "b@x.com", "two")

	r := callTool(t, srv, "list_notes", map[string]any{})
	var got map[string]string
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got["b@x.com"] != "two" {
		t.Errorf("list = %v", got)
	}
}

func TestSearchNotes(t *testing.T) {
	srv, store := testServer(t)
	ctx := context.Background()
	_ = store.Set(ctx, "a@x.com", "Met at GopherCon")
	_ = store.Set(ctx, "b@x.com", "neighbour")
	_ = store.Set(ctx, "gopher@x.com", "")

	r := callTool(t, srv, "search_notes", map[string]any{"query": "gopher"})
	var got []notestore.Match
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0].Email != "a@x.com" || got[1].Email != "gopher@x.com" {
		t.Errorf("matches = %+v", got)
	}

	r = callTool(t, srv, "search_notes", map[string]any{"query": "gopher", "limit": float64(1)})
	got = nil
	_ = json.Unmarshal([]byte(resultText(r)), &got)
	if len(got) != 1 {
		t.Errorf("limited matches = %+v", got)
	}
}

func TestNotesResource(t *testing.T) {
	srv, store := testServer(t)
	_ = store.Set(context.Background(), "a@x.com", "one")

	contents, err := srv.readNotesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != NotesURI {
		t.Fatalf("unexpected content %+v", contents[0])
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(tc.Text), &got); err != nil || got["a@x.com"] != "one" {
		t.Errorf("resource = %q, %v", tc.Text, err)
	}
}

func TestSearchNotes_SQLite(t *testing.T) {
	store := testutil.SQLiteStore(t)
	srv := New(store, "test")
	ctx := context.Background()
	_ = store.Set(ctx, "a@x.com", "Met at GopherCon")
	_ = store.Set(ctx, "b@x.com", "neighbour")

	r := callTool(t, srv, "search_notes", map[string]any{"query": "gopher"})
	var got []notestore.Match
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Email != "a@x.com" {
		t.Errorf("matches = %+v", got)
	}
}
