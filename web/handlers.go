// Package web serves the proposal editor API over HTTP.
package web

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lvillar/offerdeck"
	"github.com/lvillar/offerdeck/export"
	"github.com/lvillar/offerdeck/layout"
	"github.com/lvillar/offerdeck/model"
	"github.com/lvillar/offerdeck/render"
	"github.com/lvillar/offerdeck/session"
)

// Request size limits.
const (
	maxJSONBody   = 4 << 20
	maxUploadBody = model.MaxGalleryImages*model.MaxImageBytes + 1<<20
)

// Options configure a Handler.
type Options struct {
	Origins     string // comma separated CORS origins
	ContactCode string
	Renderer    *render.Renderer
	Logger      *slog.Logger
}

// Handler holds the session and the chi router.
type Handler struct {
	sess     *session.Session
	renderer *render.Renderer
	code     string
	logger   *slog.Logger
	router   chi.Router
}

// NewHandler wires the chi router for sess.
func NewHandler(sess *session.Session, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.New(nil, logger)
	}
	h := &Handler{sess: sess, renderer: renderer, code: opts.ContactCode, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(opts.Origins))

	r.Get("/api/health", h.health)

	// Multipart uploads carry their own limit.
	r.Post("/api/images/{slot}", h.uploadImage)
	r.Post("/api/gallery", h.uploadGallery)

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(maxJSONBody))

		r.Get("/api/document", h.getDocument)
		r.Put("/api/document", h.putDocument)
		r.Post("/api/document/reset", h.resetDocument)
		r.Get("/api/palette", h.palette)

		r.Post("/api/lists/{kind}", h.appendItem)
		r.Delete("/api/lists/{kind}/{index}", h.removeItem)

		r.Delete("/api/images/{slot}", h.clearImage)
		r.Post("/api/images/{slot}/generate", h.generateImage)
		r.Post("/api/images/process/diagram", h.generateDiagram)

		r.Get("/api/pages", h.pages)
		r.Get("/api/pages/{number}/preview.png", h.preview)

		r.Post("/api/ai/fill", h.autoFill)
		r.Post("/api/export", h.export)
		r.Get("/api/notices", h.notices)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status  string `json:"status"`
		Version uint64 `json:"version"`
	}
	writeJSON(w, response{Status: "ok", Version: h.sess.Version()})
}

type documentResponse struct {
	Version  uint64         `json:"version"`
	Document model.Document `json:"document"`
}

func (h *Handler) writeDocument(w http.ResponseWriter) {
	writeJSON(w, documentResponse{Version: h.sess.Version(), Document: h.sess.Snapshot()})
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	h.writeDocument(w)
}

// putDocument replaces the whole document. Missing fields take seed values.
func (h *Handler) putDocument(w http.ResponseWriter, r *http.Request) {
	d, err := model.Decode(r.Body)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	h.sess.Replace(d)
	h.writeDocument(w)
}

func (h *Handler) resetDocument(w http.ResponseWriter, r *http.Request) {
	h.sess.Replace(model.Default())
	h.writeDocument(w)
}

func (h *Handler) palette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, model.Palette)
}

func listKind(r *http.Request) (model.ListKind, error) {
	kind := model.ListKind(chi.URLParam(r, "kind"))
	if kind.Cap() == 0 {
		return "", fmt.Errorf("%w: unknown list %q", offerdeck.ErrInvalidParam, kind)
	}
	return kind, nil
}

type listResponse struct {
	Changed bool `json:"changed"`
	Length  int  `json:"length"`
	Cap     int  `json:"cap"`
}

// appendItem appends the request body as a new item. A full list answers
// 200 with changed=false.
func (h *Handler) appendItem(w http.ResponseWriter, r *http.Request) {
	kind, err := listKind(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	ok, err := h.sess.AppendItem(kind, raw)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, listResponse{Changed: ok, Length: kind.Len(h.sess.Snapshot()), Cap: kind.Cap()})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	kind, err := listKind(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, "index must be an integer", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if !h.sess.RemoveItem(kind, i) {
		writeError(w, r, "index out of range", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, listResponse{Changed: true, Length: kind.Len(h.sess.Snapshot()), Cap: kind.Cap()})
}

func slotParam(r *http.Request) (model.Slot, error) {
	slot, err := model.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		return model.Slot{}, fmt.Errorf("%w: %v", offerdeck.ErrInvalidParam, err)
	}
	return slot, nil
}

type imageResponse struct {
	Slot  string         `json:"slot"`
	Image model.ImageRef `json:"image"`
}

// uploadImage stores the multipart "file" field in the slot.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	files, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	f, err := files[0].Open()
	if err != nil {
		writeError(w, r, "failed to open uploaded file", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	ref, err := h.sess.ResolveImage(r.Context(), slot, model.FromUpload(f))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, imageResponse{Slot: slot.String(), Image: ref})
}

// uploadGallery appends every "file" field to the gallery, dropping files
// beyond the gallery cap.
func (h *Handler) uploadGallery(w http.ResponseWriter, r *http.Request) {
	files, ok := h.parseUpload(w, r)
	if !ok {
		return
	}
	refs := make([]model.ImageRef, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, "failed to open uploaded file", "INTERNAL_ERROR", http.StatusInternalServerError)
			return
		}
		ref, err := model.EncodeImage(f)
		f.Close()
		if err != nil {
			writeFailure(w, r, fmt.Errorf("%s: %w", fh.Filename, err))
			return
		}
		refs = append(refs, ref)
	}
	changed := h.sess.AddGalleryImages(refs...)
	writeJSON(w, listResponse{
		Changed: changed,
		Length:  model.ListGallery.Len(h.sess.Snapshot()),
		Cap:     model.ListGallery.Cap(),
	})
}

func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(model.MaxImageBytes); err != nil {
		writeError(w, r, "request too large or malformed", "BAD_REQUEST", http.StatusBadRequest)
		return nil, false
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, r, "no file provided", "BAD_REQUEST", http.StatusBadRequest)
		return nil, false
	}
	return files, true
}

func (h *Handler) clearImage(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if !h.sess.SetImage(slot, "") {
		writeError(w, r, "no such image slot", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, imageResponse{Slot: slot.String()})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) generateImage(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	var req promptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, r, "prompt is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	ref, err := h.sess.GenerateImage(r.Context(), slot, req.Prompt)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, imageResponse{Slot: slot.String(), Image: ref})
}

func (h *Handler) generateDiagram(w http.ResponseWriter, r *http.Request) {
	ref, err := h.sess.GenerateProcessDiagram(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, imageResponse{Slot: model.SlotProcess.String(), Image: ref})
}

func (h *Handler) pages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.sess.Pages())
}

// preview renders one page as PNG. Query parameters: zoom (default 0.6) and
// frame (desk, shadow and caption).
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, r, "page number must be an integer", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	po := render.PreviewOptions{ContactCode: h.code}
	if v := r.URL.Query().Get("zoom"); v != "" {
		z, err := strconv.ParseFloat(v, 64)
		if err != nil || z <= 0 || z > 4 {
			writeError(w, r, "zoom must be in (0, 4]", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		po.Zoom = z
	}
	if v := r.URL.Query().Get("frame"); v != "" {
		po.Frame, _ = strconv.ParseBool(v)
	}

	doc := h.sess.Snapshot()
	pages := layout.Build(doc)
	if n < 1 || n > len(pages) {
		writeError(w, r, "no such page", "NOT_FOUND", http.StatusNotFound)
		return
	}
	img, err := h.renderer.Preview(r.Context(), pages[n-1], render.ThemeFor(doc), po)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

type fillRequest struct {
	Topic string `json:"topic"`
}

func (h *Handler) autoFill(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.sess.AutoFill(r.Context(), req.Topic); err != nil {
		writeFailure(w, r, err)
		return
	}
	h.writeDocument(w)
}

// export answers with the PDF as an attachment. The artifact is buffered so
// a failed export still gets a JSON error.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	res, err := h.sess.Export(r.Context(), &buf)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Export-ID", res.ID)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) notices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.sess.Notices())
}
