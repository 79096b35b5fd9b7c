// Package mcp exposes an editing session to AI assistants over the Model
// Context Protocol.
//
// # Usage with Claude Desktop
//
// Add to your claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "offerdeck": {
//	      "command": "offerdeck-mcp"
//	    }
//	  }
//	}
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lvillar/offerdeck/render"
	"github.com/lvillar/offerdeck/session"
)

// Server identity reported during initialize.
const (
	ServerName    = "offerdeck-mcp"
	ServerVersion = "1.0.0"
)

// Options configure a Server.
type Options struct {
	ContactCode string
	Renderer    *render.Renderer
	Logger      *slog.Logger
}

// Server is the MCP server for one editing session.
type Server struct {
	mcp      *server.MCPServer
	sess     *session.Session
	renderer *render.Renderer
	code     string
	logger   *slog.Logger
}

// New creates a server with all tools and resources registered.
func New(sess *session.Session, opts Options) *Server {
	s := &Server{
		sess:     sess,
		renderer: opts.Renderer,
		code:     opts.ContactCode,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.renderer == nil {
		s.renderer = render.New(nil, s.logger)
	}

	s.mcp = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)
	s.registerDocumentTools()
	s.registerImageTools()
	s.registerOutputTools()
	s.registerResources()
	return s
}

// ServeStdio serves JSON-RPC on stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp: serving on stdio", "server", ServerName)
	return server.ServeStdio(s.mcp)
}

// HandleMessage processes one raw JSON-RPC message.
func (s *Server) HandleMessage(ctx context.Context, msg json.RawMessage) mcp.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, msg)
}

func textResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult reports a domain failure as a tool error so the assistant can
// read it; protocol errors are left to the caller.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

var errMissingArg = errors.New("missing required argument")

func requireString(req mcp.CallToolRequest, name string) (string, error) {
	v := req.GetString(name, "")
	if v == "" {
		return "", fmt.Errorf("%w %q", errMissingArg, name)
	}
	return v, nil
}
