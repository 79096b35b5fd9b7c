// Package session holds the proposal being edited and mediates every change
// to it.
//
// The document is replaced wholesale through Update; callers never mutate
// it in place. Long-running operations (AI text fill, image generation per
// slot and export) are guarded so a second request while one is in flight
// returns offerdeck.ErrBusy and does nothing. Failures leave the document
// untouched and are reported as notices.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lvillar/offerdeck"
	"github.com/lvillar/offerdeck/ai"
	"github.com/lvillar/offerdeck/export"
	"github.com/lvillar/offerdeck/layout"
	"github.com/lvillar/offerdeck/model"
)

// User-facing messages.
const (
	msgFillFailed     = "Ошибка при генерации AI. Проверьте API Key и консоль."
	msgFillDone       = "Данные предложения заполнены"
	msgFillEmpty      = "AI не вернул данных для заполнения. Попробуйте уточнить тему."
	msgImageFailed    = "Не удалось сгенерировать изображение. Попробуйте другой запрос."
	msgDiagramFailed  = "Не удалось сгенерировать изображение схемы."
	msgNoSteps        = "Сначала заполните этапы работы, чтобы сгенерировать схему."
	msgImageError     = "Ошибка генерации изображения"
	msgExportFailed   = "Ошибка при создании PDF"
	msgExportDone     = "PDF готов"
	msgAIDisabled     = "AI недоступен: не задан API ключ"
	msgUploadRejected = "Файл не является изображением"
)

// Exporter produces the PDF artifact for a document.
type Exporter interface {
	Export(ctx context.Context, doc model.Document, w io.Writer) (export.Result, error)
	ExportFile(ctx context.Context, doc model.Document, path string) (export.Result, error)
}

// Session is one editing session.
type Session struct {
	mu      sync.RWMutex
	doc     model.Document
	version uint64

	guard   inFlightGuard
	notices noticeRing

	text     ai.TextFiller
	images   ai.ImageGenerator
	exporter Exporter
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithDocument sets the initial document instead of the built-in seed.
func WithDocument(d model.Document) Option {
	return func(s *Session) { s.doc = d.Clone() }
}

// WithTextFiller enables AI text fill.
func WithTextFiller(f ai.TextFiller) Option {
	return func(s *Session) { s.text = f }
}

// WithImageGenerator enables AI image generation.
func WithImageGenerator(g ai.ImageGenerator) Option {
	return func(s *Session) { s.images = g }
}

// WithExporter sets the export pipeline.
func WithExporter(e Exporter) Option {
	return func(s *Session) { s.exporter = e }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session holding the seed document. Without a text filler or
// image generator the AI operations return offerdeck.ErrAIDisabled.
func New(opts ...Option) *Session {
	s := &Session{doc: model.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.exporter == nil {
		s.exporter = export.New(nil, offerdeck.WithLogger(s.logger))
	}
	return s
}

// Snapshot returns a deep copy of the current document.
func (s *Session) Snapshot() model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Version increases with every accepted update.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update applies fn to a copy of the document and stores the result. The
// version advances on every call.
func (s *Session) Update(fn func(model.Document) model.Document) model.Document {
	d, _ := s.Modify(func(d model.Document) (model.Document, bool) {
		return fn(d), true
	})
	return d
}

// Modify is Update for edits that may turn out to be no-ops: the result is
// stored and the version advanced only when fn reports a change.
func (s *Session) Modify(fn func(model.Document) (model.Document, bool)) (model.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := fn(s.doc.Clone())
	if changed {
		s.doc = next.Clone()
		s.version++
	}
	return s.doc.Clone(), changed
}

// Replace swaps in a whole new document.
func (s *Session) Replace(d model.Document) {
	s.Update(func(model.Document) model.Document { return d })
}

// Pages returns the page descriptors of the current document.
func (s *Session) Pages() []layout.PageDescriptor {
	return layout.Build(s.Snapshot())
}

// AppendItem appends a JSON-encoded item to a list. At the section cap it
// returns false and changes nothing.
func (s *Session) AppendItem(kind model.ListKind, raw []byte) (bool, error) {
	var err error
	_, ok := s.Modify(func(d model.Document) (model.Document, bool) {
		next, ok, aerr := d.AppendItem(kind, raw)
		err = aerr
		return next, ok && aerr == nil
	})
	return ok, err
}

// RemoveItem removes item i from a list. Out of range indexes return false.
func (s *Session) RemoveItem(kind model.ListKind, i int) bool {
	_, ok := s.Modify(func(d model.Document) (model.Document, bool) {
		return d.RemoveItem(kind, i)
	})
	return ok
}

// AddGalleryImages appends images to the gallery, dropping any beyond the
// cap. It returns false when nothing was added.
func (s *Session) AddGalleryImages(refs ...model.ImageRef) bool {
	_, ok := s.Modify(func(d model.Document) (model.Document, bool) {
		return d.AddGalleryImages(refs...)
	})
	return ok
}

// SetImage stores ref in slot. It returns false for an unknown slot.
func (s *Session) SetImage(slot model.Slot, ref model.ImageRef) bool {
	_, ok := s.Modify(func(d model.Document) (model.Document, bool) {
		return d.WithImage(slot, ref)
	})
	return ok
}

// ResolveImage turns an upload or a generation prompt into an image and
// stores it in slot.
func (s *Session) ResolveImage(ctx context.Context, slot model.Slot, src model.ImageSource) (model.ImageRef, error) {
	switch src.Kind {
	case model.SourceUpload:
		ref, err := model.EncodeImage(src.Upload)
		if err != nil {
			s.notify(LevelError, "", msgUploadRejected, err)
			return "", err
		}
		if !s.SetImage(slot, ref) {
			return "", fmt.Errorf("%w: slot %s", offerdeck.ErrInvalidParam, slot)
		}
		return ref, nil
	case model.SourceGenerated:
		return s.GenerateImage(ctx, slot, src.Prompt)
	default:
		return "", fmt.Errorf("%w: image source %s", offerdeck.ErrInvalidParam, src.Kind)
	}
}

// Busy reports whether op is in flight.
func (s *Session) Busy(op Op) bool { return s.guard.Running(op) }

// Wait blocks until in-flight operations finish or ctx ends.
func (s *Session) Wait(ctx context.Context) { s.guard.WaitAll(ctx) }

// Notices returns the retained notices, oldest first.
func (s *Session) Notices() []Notice { return s.notices.list() }

func (s *Session) notify(level Level, op Op, msg string, err error) {
	n := Notice{Time: time.Now(), Level: level, Op: op, Message: msg}
	if err != nil {
		n.Err = err.Error()
		s.logger.Error(msg, "op", op, "err", err)
	} else {
		s.logger.Info(msg, "op", op)
	}
	s.notices.add(n)
}

// AutoFill asks the text filler for content on topic and merges the clamped
// result into the document.
func (s *Session) AutoFill(ctx context.Context, topic string) error {
	if s.text == nil {
		s.notify(LevelError, OpTextFill, msgAIDisabled, offerdeck.ErrAIDisabled)
		return offerdeck.ErrAIDisabled
	}
	if !s.guard.TryLock(OpTextFill) {
		return offerdeck.ErrBusy
	}
	defer s.guard.Unlock(OpTextFill)

	patch, err := s.text.Fill(ctx, topic)
	if err != nil {
		s.notify(LevelError, OpTextFill, msgFillFailed, err)
		return offerdeck.NewOpError(string(OpTextFill), 0, err)
	}
	if patch.IsEmpty() {
		s.notify(LevelError, OpTextFill, msgFillEmpty, ai.ErrEmptyReply)
		return offerdeck.NewOpError(string(OpTextFill), 0, ai.ErrEmptyReply)
	}
	s.Update(func(d model.Document) model.Document { return d.Apply(patch) })
	s.notify(LevelInfo, OpTextFill, msgFillDone, nil)
	return nil
}

// slotOp maps an image slot to the operation guarding its generation.
func slotOp(slot model.Slot) (Op, bool) {
	switch slot {
	case model.SlotMain:
		return OpMainImage, true
	case model.SlotProcess:
		return OpProcessImage, true
	case model.SlotFooter:
		return OpFooterImage, true
	}
	return "", false
}

// GenerateImage generates an image for slot from prompt and stores it.
// Generation is available for the main, process and footer slots.
func (s *Session) GenerateImage(ctx context.Context, slot model.Slot, prompt string) (model.ImageRef, error) {
	op, ok := slotOp(slot)
	if !ok {
		return "", fmt.Errorf("%w: no image generation for slot %s", offerdeck.ErrInvalidParam, slot)
	}
	return s.generate(ctx, op, slot, prompt, msgImageFailed)
}

// GenerateProcessDiagram generates a flowchart of the current process steps
// into the process slot.
func (s *Session) GenerateProcessDiagram(ctx context.Context) (model.ImageRef, error) {
	prompt, err := ai.ProcessDiagramPrompt(s.Snapshot().ProcessSteps)
	if err != nil {
		s.notify(LevelError, OpProcessImage, msgNoSteps, err)
		return "", err
	}
	return s.generate(ctx, OpProcessImage, model.SlotProcess, prompt, msgDiagramFailed)
}

func (s *Session) generate(ctx context.Context, op Op, slot model.Slot, prompt, failMsg string) (model.ImageRef, error) {
	if s.images == nil {
		s.notify(LevelError, op, msgAIDisabled, offerdeck.ErrAIDisabled)
		return "", offerdeck.ErrAIDisabled
	}
	if !s.guard.TryLock(op) {
		return "", offerdeck.ErrBusy
	}
	defer s.guard.Unlock(op)

	ref, err := s.images.Generate(ctx, prompt)
	switch {
	case errors.Is(err, ai.ErrNoImage):
		s.notify(LevelError, op, failMsg, err)
		return "", err
	case err != nil:
		s.notify(LevelError, op, msgImageError, err)
		return "", offerdeck.NewOpError(string(op), 0, err)
	}
	s.SetImage(slot, ref)
	return ref, nil
}

// Export writes the PDF of the current document to w.
func (s *Session) Export(ctx context.Context, w io.Writer) (export.Result, error) {
	return s.runExport(func(doc model.Document) (export.Result, error) {
		return s.exporter.Export(ctx, doc, w)
	})
}

// ExportFile writes the PDF of the current document to path.
func (s *Session) ExportFile(ctx context.Context, path string) (export.Result, error) {
	return s.runExport(func(doc model.Document) (export.Result, error) {
		return s.exporter.ExportFile(ctx, doc, path)
	})
}

func (s *Session) runExport(run func(model.Document) (export.Result, error)) (export.Result, error) {
	if !s.guard.TryLock(OpExport) {
		return export.Result{}, offerdeck.ErrBusy
	}
	defer s.guard.Unlock(OpExport)

	res, err := run(s.Snapshot())
	if err != nil {
		s.notify(LevelError, OpExport, msgExportFailed, err)
		return export.Result{}, err
	}
	s.notify(LevelInfo, OpExport, msgExportDone, nil)
	return res, nil
}
