// Command offerdeck-mcp is an MCP (Model Context Protocol) server that lets
// AI assistants edit, preview and export a commercial proposal.
//
// # Installation
//
//	go install github.com/lvillar/offerdeck/cmd/offerdeck-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "offerdeck": {
//	      "command": "offerdeck-mcp",
//	      "env": {"OPENAI_API_KEY": "sk-..."}
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - get_document, update_document: read and merge proposal fields
//   - append_item, remove_item: edit list sections within their caps
//   - set_image, generate_image, generate_process_diagram: fill image slots
//   - autofill: generate proposal texts from a topic
//   - list_pages, render_page: inspect the A4 layout
//   - export_pdf, pdf_info: produce and check the PDF
//   - list_notices: recent operation outcomes
//
// # Available Resources
//
//   - offerdeck://document : the proposal JSON
//   - offerdeck://palette : preset theme colors
//   - offerdeck://pages : page layout
//   - offerdeck://pages/{number} : PNG page preview
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lvillar/offerdeck/ai"
	"github.com/lvillar/offerdeck/config"
	"github.com/lvillar/offerdeck/export"
	"github.com/lvillar/offerdeck/mcp"
	"github.com/lvillar/offerdeck/model"
	"github.com/lvillar/offerdeck/render"
	"github.com/lvillar/offerdeck/session"
)

func main() {
	in := flag.String("in", "", "proposal JSON to start from (default: built-in seed)")
	flag.Parse()

	if err := run(*in); err != nil {
		fmt.Fprintf(os.Stderr, "offerdeck-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(in string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	doc := model.Default()
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		doc, err = model.Decode(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	renderer := render.New(render.NewLoader(cfg.RemoteImages, render.DefaultFetchTimeout), logger)
	opts := []session.Option{
		session.WithDocument(doc),
		session.WithExporter(export.New(renderer, cfg.ExportOptions(logger)...)),
		session.WithLogger(logger),
	}
	if cfg.AIEnabled() {
		client, err := ai.NewClient(cfg.AI(), logger)
		if err != nil {
			return err
		}
		opts = append(opts, session.WithTextFiller(client), session.WithImageGenerator(client))
	}

	server := mcp.New(session.New(opts...), mcp.Options{
		ContactCode: cfg.ContactCode,
		Renderer:    renderer,
		Logger:      logger,
	})
	return server.ServeStdio()
}
