// Package mcpserver exposes the note store to LLM clients over the Model
// Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/contactnotes/internal/notestore"
)

// NotesURI is the resource holding the full note snapshot.
const NotesURI = "contactnotes://notes"

const defaultSearchLimit = 20

// Server wraps the MCP server with the note tools.
type Server struct {
	mcp   *server.MCPServer
	notes notestore.Store
}

// New creates an MCP server backed by notes.
func New(notes notestore.Store, version string) *Server {
	s := &Server{notes: notes}

	s.mcp = server.NewMCPServer(
		"contactnotes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read the note attached to a contact's email address. Returns an empty string when there is none."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Contact email address, matched exactly")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("set_note",
		mcp.WithDescription("Create or replace the note for a contact. An empty note clears the text but keeps the entry."),
		mcp.WithString("email", mcp.Required(), mcp.Description("Contact email address")),
		mcp.WithString("note", mcp.Required(), mcp.Description("Free-text note")),
	), s.setNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every stored note as a JSON object keyed by email."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Case-insensitive search over emails and note text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of matches (default 20)")),
	), s.searchNotes)

	s.mcp.AddResource(
		mcp.NewResource(NotesURI, "Contact notes",
			mcp.WithResourceDescription("All contact notes keyed by email."),
			mcp.WithMIMEType("application/json"),
		),
		s.readNotesResource,
	)

	return s
}

// ServeStdio serves on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := req.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.Get(ctx, email)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(note), nil
}

func (s *Server) setNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := req.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.notes.Set(ctx, email, note); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", email)), nil
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.snapshotJSON(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := notestore.Search(ctx, s.notes, query, req.GetInt("limit", defaultSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(matches, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNotesResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := s.snapshotJSON(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NotesURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) snapshotJSON(ctx context.Context) ([]byte, error) {
	notes, err := s.notes.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(notes, "", "  ")
}
