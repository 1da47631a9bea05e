// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the preview catalog and project notes via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/previewdeck/internal/catalog"
	"github.com/starford/previewdeck/internal/notestore"
)

// Server wraps the MCP server with previewdeck tools.
type Server struct {
	mcp     *server.MCPServer
	catalog *catalog.Service
	store   notestore.Store
}

// New creates a new MCP server with all previewdeck tools registered.
func New(catalogSvc *catalog.Service, store notestore.Store) *Server {
	s := &Server{catalog: catalogSvc, store: store}

	s.mcp = server.NewMCPServer(
		"Previewdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects with their latest preview, ordered most recently updated first."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Get one project with its full version history, newest first."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
	), s.getProject)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read the feedback note attached to a project, if any."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("save_note",
		mcp.WithDescription("Create or overwrite the feedback note for a project. "+
			"Each project holds at most one note; saving replaces the previous content."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content")),
	), s.saveNote)

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

func (s *Server) listProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.catalog.Projects(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type item struct {
		Name        string `json:"name"`
		LastUpdated string `json:"lastUpdated"`
		Versions    int    `json:"versions"`
		LatestURL   string `json:"latestUrl"`
	}
	items := make([]item, 0, len(projects))
	for _, p := range projects {
		items = append(items, item{
			Name:        p.Name,
			LastUpdated: p.LastUpdated.Format(time.RFC3339),
			Versions:    len(p.Versions),
			LatestURL:   p.LatestPreview.URL,
		})
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	projects, err := s.catalog.Projects(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, p := range projects {
		if p.Name == name {
			out, _ := json.MarshalIndent(p, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("no such project: %s", name)), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.store.GetNote(ctx, project)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if note == nil {
		return mcp.NewToolResultText("no note for this project"), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) saveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.store.SaveNote(ctx, project, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
