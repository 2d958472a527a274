// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes notat tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkarlsen/notat/internal/models"
	"github.com/mkarlsen/notat/internal/store"
)

const defaultSearchLimit = 20

// Server wraps the MCP server with notat tools.
type Server struct {
	mcp   *server.MCPServer
	store store.NoteStore
}

// New creates a new MCP server with all notat tools registered. The tools
// operate on whichever store the CLI selected, so an agent edits the same
// notes the user sees.
func New(st store.NoteStore) *Server {
	s := &Server{store: st}

	s.mcp = server.NewMCPServer(
		"notat",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, pinned first, most recently updated first. "+
			"Optional filters narrow the result."),
		mcp.WithString("query", mcp.Description("Case-insensitive match against title and content")),
		mcp.WithString("color", mcp.Description("Only notes with this color (blue, amber, emerald, violet, slate)")),
		mcp.WithBoolean("pinned", mcp.Description("Only pinned notes when true")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single note as JSON."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. All fields are optional; omitted ones "+
			"fall back to the defaults described by the notat://note-record resource."),
		mcp.WithString("title", mcp.Description("Note title (default \"Untitled note\")")),
		mcp.WithString("content", mcp.Description("Note body")),
		mcp.WithString("color", mcp.Description("Accent color (default blue)")),
		mcp.WithBoolean("pinned", mcp.Description("Pin the note on creation")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Patch an existing note. Only the supplied fields change."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New body")),
		mcp.WithString("color", mcp.Description("New accent color")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("toggle_pin_note",
		mcp.WithDescription("Flip a note's pinned flag. Pinning does not count as an "+
			"edit, so the note keeps its place in the recency order."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.togglePinNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note. Deleting an unknown id is not an error."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by a case-insensitive query against title and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical notat note record contract. "+
			"Call this before creating or updating notes to learn the field semantics."),
	), s.getNoteContract)

	// Resource: note record contract.
	s.mcp.AddResource(
		mcp.NewResource("notat://note-record", "Note Record Contract",
			mcp.WithResourceDescription("Canonical note record shape and field semantics."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteRecordResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// findNote loads the note with the given id, or reports that it is missing.
func (s *Server) findNote(ctx context.Context, id string) (models.Note, bool, error) {
	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return models.Note{}, false, err
	}
	for _, n := range notes {
		if n.ID == id {
			return n, true, nil
		}
	}
	return models.Note{}, false, nil
}

func notesJSON(notes []models.Note) *mcp.CallToolResult {
	if notes == nil {
		notes = []models.Note{}
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func noteJSON(n models.Note) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(n, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f models.Filter
	if v, err := req.RequireString("query"); err == nil {
		f.Query = v
	}
	if v, err := req.RequireString("color"); err == nil {
		f.Color = models.Color(v)
	}
	if v, err := req.RequireBool("pinned"); err == nil {
		f.PinnedOnly = v
	}

	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return notesJSON(models.ApplyFilter(models.SortedNotes(notes), f)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, found, err := s.findNote(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return noteJSON(n), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var d models.Draft
	if v, err := req.RequireString("title"); err == nil {
		d.Title = v
	}
	if v, err := req.RequireString("content"); err == nil {
		d.Content = v
	}
	if v, err := req.RequireString("color"); err == nil {
		c := models.Color(v)
		if !c.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported color: %s", v)), nil
		}
		d.Color = c
	}
	if v, err := req.RequireBool("pinned"); err == nil {
		d.Pinned = v
	}

	stored, err := s.store.CreateNote(ctx, models.NewNote(d))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return noteJSON(stored), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var patch models.NotePatch
	if v, err := req.RequireString("title"); err == nil {
		patch.Title = &v
	}
	if v, err := req.RequireString("content"); err == nil {
		patch.Content = &v
	}
	if v, err := req.RequireString("color"); err == nil {
		c := models.Color(v)
		if !c.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported color: %s", v)), nil
		}
		patch.Color = &c
	}
	if patch.IsZero() {
		return mcp.NewToolResultError("nothing to update: provide title, content, or color"), nil
	}

	// Content edits refresh the recency order.
	now := time.Now().UTC()
	patch.UpdatedAt = &now

	updated, err := s.store.UpdateNote(ctx, id, patch)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return noteJSON(updated), nil
}

func (s *Server) togglePinNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, found, err := s.findNote(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}

	pinned := !n.IsPinned
	if _, err := s.store.UpdateNote(ctx, id, models.NotePatch{IsPinned: &pinned}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if pinned {
		return mcp.NewToolResultText(fmt.Sprintf("pinned: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("unpinned: %s", id)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.store.DeleteNote(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := defaultSearchLimit
	if v, err := req.RequireInt("limit"); err == nil && v > 0 {
		limit = v
	}

	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matched := models.ApplyFilter(models.SortedNotes(notes), models.Filter{Query: query})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return notesJSON(matched), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteRecordContract), nil
}

func (s *Server) readNoteRecordResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "notat://note-record",
			MIMEType: "text/markdown",
			Text:     NoteRecordContract,
		},
	}, nil
}
