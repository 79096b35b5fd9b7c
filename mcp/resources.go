package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lvillar/offerdeck/model"
	"github.com/lvillar/offerdeck/render"
)

// Resource URIs.
const (
	documentURI = "offerdeck://document"
	paletteURI  = "offerdeck://palette"
	pagesURI    = "offerdeck://pages"
	pageURIBase = "offerdeck://pages/"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(documentURI, "Proposal Document",
		mcp.WithResourceDescription("The proposal being edited"),
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentResource)

	s.mcp.AddResource(mcp.NewResource(paletteURI, "Theme Palette",
		mcp.WithResourceDescription("Preset theme colors"),
		mcp.WithMIMEType("application/json"),
	), s.handlePaletteResource)

	s.mcp.AddResource(mcp.NewResource(pagesURI, "Page Layout",
		mcp.WithResourceDescription("Pages and sections of the current layout"),
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	s.mcp.AddResourceTemplate(mcp.NewResourceTemplate(pageURIBase+"{number}", "Page Preview",
		mcp.WithTemplateDescription("PNG preview of one page at the default zoom"),
		mcp.WithTemplateMIMEType("image/png"),
	), s.handlePageResource)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(documentURI, s.sess.Snapshot())
}

func (s *Server) handlePaletteResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(paletteURI, model.Palette)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(pagesURI, summarizePages(s.sess.Pages()))
}

func (s *Server) handlePageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	n, err := strconv.Atoi(strings.TrimPrefix(uri, pageURIBase))
	if err != nil {
		return nil, fmt.Errorf("could not extract page number from URI: %s", uri)
	}
	png, err := s.renderPNG(ctx, n, render.DefaultZoom)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.BlobResourceContents{URI: uri, MIMEType: "image/png", Blob: base64.StdEncoding.EncodeToString(png)},
	}, nil
}
