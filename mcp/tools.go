package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lvillar/offerdeck/export"
	"github.com/lvillar/offerdeck/layout"
	"github.com/lvillar/offerdeck/model"
	"github.com/lvillar/offerdeck/pageops"
	"github.com/lvillar/offerdeck/render"
)

var listNames = []string{
	string(model.ListMetrics), string(model.ListCases), string(model.ListReviews),
	string(model.ListProcessSteps), string(model.ListTariffs), string(model.ListGallery),
	string(model.ListCompanyStats),
}

func (s *Server) registerDocumentTools() {
	s.mcp.AddTool(mcp.NewTool("get_document",
		mcp.WithDescription("Return the proposal document as JSON."),
	), s.handleGetDocument)

	s.mcp.AddTool(mcp.NewTool("update_document",
		mcp.WithDescription("Merge a JSON object of document fields over the current proposal. Lists are replaced and cut to their section caps."),
		mcp.WithString("fields",
			mcp.Description(`JSON object, e.g. {"companyName":"Acme","showGallery":true}`),
			mcp.Required(),
		),
	), s.handleUpdateDocument)

	s.mcp.AddTool(mcp.NewTool("append_item",
		mcp.WithDescription("Append an item to a list section. A full list is left unchanged."),
		mcp.WithString("list",
			mcp.Description("List to append to"),
			mcp.Enum(listNames...),
			mcp.Required(),
		),
		mcp.WithString("item",
			mcp.Description("JSON object for the new item; empty for a blank item"),
		),
	), s.handleAppendItem)

	s.mcp.AddTool(mcp.NewTool("remove_item",
		mcp.WithDescription("Remove the item at a zero-based index from a list section."),
		mcp.WithString("list",
			mcp.Description("List to remove from"),
			mcp.Enum(listNames...),
			mcp.Required(),
		),
		mcp.WithNumber("index",
			mcp.Description("Zero-based item index"),
			mcp.Required(),
		),
	), s.handleRemoveItem)

	s.mcp.AddTool(mcp.NewTool("autofill",
		mcp.WithDescription("Fill the proposal texts from a business topic using the configured AI model."),
		mcp.WithString("topic",
			mcp.Description("Business niche or topic, e.g. \"CRM for dental clinics\""),
			mcp.Required(),
		),
	), s.handleAutofill)

	s.mcp.AddTool(mcp.NewTool("list_notices",
		mcp.WithDescription("List recent operation notices, oldest first."),
	), s.handleListNotices)
}

func (s *Server) registerImageTools() {
	s.mcp.AddTool(mcp.NewTool("set_image",
		mcp.WithDescription("Store an image in a slot from base64 file content. Empty data clears the slot."),
		mcp.WithString("slot",
			mcp.Description("main, process, logo, footer or review:<n>"),
			mcp.Required(),
		),
		mcp.WithString("data",
			mcp.Description("Base64-encoded image file (PNG, JPEG, GIF, WebP, BMP or TIFF)"),
		),
	), s.handleSetImage)

	s.mcp.AddTool(mcp.NewTool("generate_image",
		mcp.WithDescription("Generate an image for the main, process or footer slot from a prompt."),
		mcp.WithString("slot",
			mcp.Description("Target slot"),
			mcp.Enum("main", "process", "footer"),
			mcp.Required(),
		),
		mcp.WithString("prompt",
			mcp.Description("Image description"),
			mcp.Required(),
		),
	), s.handleGenerateImage)

	s.mcp.AddTool(mcp.NewTool("generate_process_diagram",
		mcp.WithDescription("Generate a flowchart of the current process steps into the process slot."),
	), s.handleGenerateDiagram)
}

func (s *Server) registerOutputTools() {
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the pages the current document lays out to."),
	), s.handleListPages)

	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render one page as a PNG preview."),
		mcp.WithNumber("page",
			mcp.Description("1-based page number"),
			mcp.Required(),
		),
		mcp.WithNumber("zoom",
			mcp.Description("Preview zoom, default 0.6"),
		),
	), s.handleRenderPage)

	s.mcp.AddTool(mcp.NewTool("export_pdf",
		mcp.WithDescription("Export the proposal as an A4 PDF file."),
		mcp.WithString("path",
			mcp.Description("Output path, default "+export.DefaultFilename),
		),
	), s.handleExportPDF)

	s.mcp.AddTool(mcp.NewTool("pdf_info",
		mcp.WithDescription("Get page count and page sizes of a PDF file."),
		mcp.WithString("path",
			mcp.Description("Path to the PDF file"),
			mcp.Required(),
		),
	), s.handlePDFInfo)
}

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.sess.Snapshot())
}

func (s *Server) handleUpdateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := requireString(req, "fields")
	if err != nil {
		return errorResult(err), nil
	}
	var merr error
	d, _ := s.sess.Modify(func(cur model.Document) (model.Document, bool) {
		next, err := model.Merge(cur, []byte(fields))
		if err != nil {
			merr = err
			return cur, false
		}
		return next.Clamped(), true
	})
	if merr != nil {
		return errorResult(fmt.Errorf("fields: %w", merr)), nil
	}
	return jsonResult(d)
}

func (s *Server) handleAppendItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := model.ListKind(req.GetString("list", ""))
	if kind.Cap() == 0 {
		return errorResult(fmt.Errorf("unknown list %q", kind)), nil
	}
	ok, err := s.sess.AppendItem(kind, []byte(req.GetString("item", "")))
	if err != nil {
		return errorResult(err), nil
	}
	if !ok {
		return textResult(fmt.Sprintf("%s is full (%d items)", kind, kind.Cap())), nil
	}
	return textResult(fmt.Sprintf("%s now has %d items", kind, kind.Len(s.sess.Snapshot()))), nil
}

func (s *Server) handleRemoveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := model.ListKind(req.GetString("list", ""))
	i := req.GetInt("index", -1)
	if !s.sess.RemoveItem(kind, i) {
		return errorResult(fmt.Errorf("no item %d in %q", i, kind)), nil
	}
	return textResult(fmt.Sprintf("removed %s[%d]", kind, i)), nil
}

func (s *Server) handleAutofill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := requireString(req, "topic")
	if err != nil {
		return errorResult(err), nil
	}
	if err := s.sess.AutoFill(ctx, topic); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.sess.Snapshot())
}

func (s *Server) handleListNotices(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.sess.Notices())
}

func (s *Server) handleSetImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req, "slot")
	if err != nil {
		return errorResult(err), nil
	}
	slot, err := model.ParseSlot(name)
	if err != nil {
		return errorResult(err), nil
	}
	data := req.GetString("data", "")
	if data == "" {
		if !s.sess.SetImage(slot, "") {
			return errorResult(fmt.Errorf("no slot %s", slot)), nil
		}
		return textResult("cleared " + slot.String()), nil
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return errorResult(fmt.Errorf("data: %w", err)), nil
	}
	if _, err := s.sess.ResolveImage(ctx, slot, model.FromUpload(bytes.NewReader(raw))); err != nil {
		return errorResult(err), nil
	}
	return textResult("stored image in " + slot.String()), nil
}

func (s *Server) handleGenerateImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot, err := model.ParseSlot(req.GetString("slot", ""))
	if err != nil {
		return errorResult(err), nil
	}
	prompt, err := requireString(req, "prompt")
	if err != nil {
		return errorResult(err), nil
	}
	if _, err := s.sess.GenerateImage(ctx, slot, prompt); err != nil {
		return errorResult(err), nil
	}
	return textResult("generated image for " + slot.String()), nil
}

func (s *Server) handleGenerateDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.sess.GenerateProcessDiagram(ctx); err != nil {
		return errorResult(err), nil
	}
	return textResult("generated process diagram"), nil
}

type pageSummary struct {
	Number   int                  `json:"number"`
	Kind     layout.PageKind      `json:"kind"`
	Caption  string               `json:"caption"`
	Sections []layout.SectionKind `json:"sections"`
}

func summarizePages(pages []layout.PageDescriptor) []pageSummary {
	out := make([]pageSummary, len(pages))
	for i, p := range pages {
		out[i] = pageSummary{Number: p.Number, Kind: p.Kind, Caption: p.Caption}
		for _, sec := range p.Sections {
			out[i].Sections = append(out[i].Sections, sec.Kind)
		}
	}
	return out
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(summarizePages(s.sess.Pages()))
}

func (s *Server) handleRenderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	png, err := s.renderPNG(ctx, req.GetInt("page", 0), req.GetFloat("zoom", render.DefaultZoom))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultImage("page preview", base64.StdEncoding.EncodeToString(png), "image/png"), nil
}

func (s *Server) renderPNG(ctx context.Context, n int, zoom float64) ([]byte, error) {
	doc := s.sess.Snapshot()
	pages := layout.Build(doc)
	if n < 1 || n > len(pages) {
		return nil, fmt.Errorf("page %d out of range 1..%d", n, len(pages))
	}
	img, err := s.renderer.Preview(ctx, pages[n-1], render.ThemeFor(doc), render.PreviewOptions{Zoom: zoom, ContactCode: s.code})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleExportPDF(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", export.DefaultFilename)
	abs, err := filepath.Abs(path)
	if err != nil {
		return errorResult(err), nil
	}
	res, err := s.sess.ExportFile(ctx, abs)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(fmt.Sprintf("exported %d pages (%d bytes) to %s", res.Pages, res.Bytes, abs)), nil
}

func (s *Server) handlePDFInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := requireString(req, "path")
	if err != nil {
		return errorResult(err), nil
	}
	info, err := pageops.Inspect(path)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(info)
}
