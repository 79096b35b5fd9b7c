package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lvillar/offerdeck"
	"github.com/lvillar/offerdeck/ai"
	"github.com/lvillar/offerdeck/export"
	"github.com/lvillar/offerdeck/model"
)

// blockingExporter holds every export until release is closed.
type blockingExporter struct {
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func newBlockingExporter() *blockingExporter {
	return &blockingExporter{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (b *blockingExporter) Export(ctx context.Context, doc model.Document, w io.Writer) (export.Result, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- struct{}{}
	<-b.release
	n, err := io.WriteString(w, "%PDF-1.3")
	return export.Result{Pages: 5, Bytes: int64(n)}, err
}

func (b *blockingExporter) ExportFile(ctx context.Context, doc model.Document, path string) (export.Result, error) {
	return b.Export(ctx, doc, io.Discard)
}

type failingExporter struct{ err error }

func (f failingExporter) Export(context.Context, model.Document, io.Writer) (export.Result, error) {
	return export.Result{}, f.err
}

func (f failingExporter) ExportFile(context.Context, model.Document, string) (export.Result, error) {
	return export.Result{}, f.err
}

type stubFiller struct {
	patch model.Patch
	err   error
}

func (f stubFiller) Fill(context.Context, string) (model.Patch, error) { return f.patch, f.err }

type stubImages struct {
	ref    model.ImageRef
	err    error
	prompt *string
}

func (g stubImages) Generate(_ context.Context, prompt string) (model.ImageRef, error) {
	if g.prompt != nil {
		*g.prompt = prompt
	}
	return g.ref, g.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestGuard(t *testing.T) {
	var g inFlightGuard
	if !g.TryLock(OpExport) {
		t.Fatal("first TryLock should succeed")
	}
	if g.TryLock(OpExport) {
		t.Fatal("second TryLock should fail while running")
	}
	if !g.TryLock(OpTextFill) {
		t.Fatal("other operations are independent")
	}
	g.Unlock(OpExport)
	g.Unlock(OpTextFill)
	if g.Running(OpExport) {
		t.Fatal("export still marked running")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	g.WaitAll(ctx)
	if ctx.Err() != nil {
		t.Fatal("WaitAll blocked with nothing running")
	}
}

func TestNoticeRingWraps(t *testing.T) {
	var r noticeRing
	for i := 0; i < MaxNotices+5; i++ {
		r.add(Notice{Message: string(rune('a' + i%26))})
	}
	got := r.list()
	if len(got) != MaxNotices {
		t.Fatalf("len = %d, want %d", len(got), MaxNotices)
	}
	if got[0].Message != string(rune('a'+5)) {
		t.Fatalf("oldest = %q, want %q", got[0].Message, string(rune('a'+5)))
	}
}

func TestConcurrentExportIsRejected(t *testing.T) {
	exp := newBlockingExporter()
	s := New(WithExporter(exp))

	var first bytes.Buffer
	errc := make(chan error, 1)
	go func() {
		_, err := s.Export(context.Background(), &first)
		errc <- err
	}()
	<-exp.started

	if !s.Busy(OpExport) {
		t.Fatal("export should be in flight")
	}
	var second bytes.Buffer
	if _, err := s.Export(context.Background(), &second); !errors.Is(err, offerdeck.ErrBusy) {
		t.Fatalf("second export err = %v, want ErrBusy", err)
	}
	if second.Len() != 0 {
		t.Fatal("rejected export wrote output")
	}

	close(exp.release)
	if err := <-errc; err != nil {
		t.Fatalf("first export: %v", err)
	}
	exp.mu.Lock()
	calls := exp.calls
	exp.mu.Unlock()
	if calls != 1 {
		t.Fatalf("exporter calls = %d, want 1", calls)
	}
	if !strings.HasPrefix(first.String(), "%PDF") {
		t.Fatalf("artifact = %q", first.String())
	}
	if s.Busy(OpExport) {
		t.Fatal("guard not released")
	}
}

func TestExportFailureNotice(t *testing.T) {
	s := New(WithExporter(failingExporter{err: offerdeck.NewOpError("export", 3, offerdeck.ErrExport)}))
	before := s.Snapshot()
	if _, err := s.Export(context.Background(), io.Discard); !errors.Is(err, offerdeck.ErrExport) {
		t.Fatalf("err = %v", err)
	}
	notices := s.Notices()
	if len(notices) != 1 || notices[0].Level != LevelError || notices[0].Message != msgExportFailed {
		t.Fatalf("notices = %+v", notices)
	}
	if s.Snapshot().CompanyName != before.CompanyName || s.Version() != 0 {
		t.Fatal("failed export changed the document")
	}
}

func TestAIDisabled(t *testing.T) {
	s := New()
	if err := s.AutoFill(context.Background(), "кофейня"); !errors.Is(err, offerdeck.ErrAIDisabled) {
		t.Fatalf("AutoFill err = %v", err)
	}
	if _, err := s.GenerateImage(context.Background(), model.SlotMain, "офис"); !errors.Is(err, offerdeck.ErrAIDisabled) {
		t.Fatalf("GenerateImage err = %v", err)
	}
	if s.Version() != 0 {
		t.Fatal("document changed")
	}
}

func TestAutoFillMergesPatch(t *testing.T) {
	title := "Автоматизация продаж"
	metrics := make([]model.Metric, 5)
	for i := range metrics {
		metrics[i] = model.Metric{Indicator: "m"}
	}
	s := New(WithTextFiller(stubFiller{patch: model.Patch{SolutionTitle: &title, Metrics: metrics}}))
	company := s.Snapshot().CompanyName

	if err := s.AutoFill(context.Background(), "CRM"); err != nil {
		t.Fatalf("AutoFill: %v", err)
	}
	d := s.Snapshot()
	if d.SolutionTitle != title {
		t.Fatalf("SolutionTitle = %q", d.SolutionTitle)
	}
	if len(d.Metrics) != model.MaxMetrics {
		t.Fatalf("metrics = %d, want %d", len(d.Metrics), model.MaxMetrics)
	}
	if d.CompanyName != company {
		t.Fatal("fields outside the patch changed")
	}
}

func TestAutoFillFailureLeavesDocument(t *testing.T) {
	s := New(WithTextFiller(stubFiller{err: ai.ErrEmptyReply}))
	before := s.Snapshot()
	err := s.AutoFill(context.Background(), "CRM")
	if !errors.Is(err, ai.ErrEmptyReply) {
		t.Fatalf("err = %v", err)
	}
	var opErr *offerdeck.OpError
	if !errors.As(err, &opErr) || opErr.Op != string(OpTextFill) {
		t.Fatalf("err = %#v, want OpError textFill", err)
	}
	if s.Version() != 0 || s.Snapshot().SolutionTitle != before.SolutionTitle {
		t.Fatal("failed fill changed the document")
	}
	if n := s.Notices(); len(n) != 1 || n[0].Message != msgFillFailed {
		t.Fatalf("notices = %+v", n)
	}
}

func TestAutoFillEmptyPatch(t *testing.T) {
	s := New(WithTextFiller(stubFiller{}))
	err := s.AutoFill(context.Background(), "CRM")
	if !errors.Is(err, ai.ErrEmptyReply) {
		t.Fatalf("err = %v, want ErrEmptyReply", err)
	}
	if s.Version() != 0 {
		t.Fatal("empty fill changed the document")
	}
	if n := s.Notices(); len(n) != 1 || n[0].Message != msgFillEmpty || n[0].Level != LevelError {
		t.Fatalf("notices = %+v", n)
	}
}

func TestGenerateImage(t *testing.T) {
	ref := model.DataURL("image/png", []byte("x"))
	s := New(WithImageGenerator(stubImages{ref: ref}))

	got, err := s.GenerateImage(context.Background(), model.SlotFooter, "офис")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if got != ref || s.Snapshot().CompanyFooterImage != ref {
		t.Fatal("footer image not stored")
	}
	if _, err := s.GenerateImage(context.Background(), model.SlotLogo, "лого"); !errors.Is(err, offerdeck.ErrInvalidParam) {
		t.Fatalf("logo slot err = %v, want ErrInvalidParam", err)
	}
}

func TestGenerateImageNoImage(t *testing.T) {
	s := New(WithImageGenerator(stubImages{err: ai.ErrNoImage}))
	if _, err := s.GenerateImage(context.Background(), model.SlotMain, "офис"); !errors.Is(err, ai.ErrNoImage) {
		t.Fatalf("err = %v", err)
	}
	if n := s.Notices(); len(n) != 1 || n[0].Message != msgImageFailed || n[0].Op != OpMainImage {
		t.Fatalf("notices = %+v", n)
	}
	if !s.Snapshot().MainImage.IsZero() && s.Snapshot().MainImage != model.Default().MainImage {
		t.Fatal("document changed")
	}
}

func TestGenerateProcessDiagram(t *testing.T) {
	var prompt string
	ref := model.DataURL("image/png", []byte("d"))
	s := New(WithImageGenerator(stubImages{ref: ref, prompt: &prompt}))
	steps := s.Snapshot().ProcessSteps

	if _, err := s.GenerateProcessDiagram(context.Background()); err != nil {
		t.Fatalf("GenerateProcessDiagram: %v", err)
	}
	if s.Snapshot().ProcessImage != ref {
		t.Fatal("process image not stored")
	}
	if len(steps) > 0 && !strings.Contains(prompt, steps[0].Title) {
		t.Fatalf("prompt %q does not mention the first step", prompt)
	}

	s.Update(func(d model.Document) model.Document {
		d.ProcessSteps = nil
		return d
	})
	if _, err := s.GenerateProcessDiagram(context.Background()); !errors.Is(err, ai.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	notices := s.Notices()
	if last := notices[len(notices)-1]; last.Message != msgNoSteps {
		t.Fatalf("last notice = %+v", last)
	}
}

func TestAppendAtCap(t *testing.T) {
	s := New()
	for model.ListMetrics.Len(s.Snapshot()) < model.MaxMetrics {
		if ok, err := s.AppendItem(model.ListMetrics, []byte(`{"indicator":"n"}`)); err != nil || !ok {
			t.Fatalf("append: ok=%v err=%v", ok, err)
		}
	}
	before := s.Snapshot()
	ok, err := s.AppendItem(model.ListMetrics, []byte(`{"indicator":"extra"}`))
	if err != nil || ok {
		t.Fatalf("append at cap: ok=%v err=%v", ok, err)
	}
	if len(s.Snapshot().Metrics) != len(before.Metrics) {
		t.Fatal("append at cap changed the list")
	}
	v := s.Version()
	if _, err := s.AppendItem(model.ListMetrics, []byte(`{`)); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := s.AppendItem(model.ListMetrics, []byte(`{"indicator":"again"}`)); err != nil {
		t.Fatal(err)
	}
	if s.Version() != v {
		t.Fatalf("version moved from %d to %d on rejected appends", v, s.Version())
	}
}

func TestNoOpEditsKeepVersion(t *testing.T) {
	s := New()
	if s.RemoveItem(model.ListCases, 99) {
		t.Fatal("out of range remove succeeded")
	}
	if s.SetImage(model.SlotReview(9), model.DataURL("image/png", []byte("x"))) {
		t.Fatal("out of range review slot accepted")
	}
	if _, changed := s.Modify(func(d model.Document) (model.Document, bool) {
		d.CompanyName = "discarded"
		return d, false
	}); changed {
		t.Fatal("Modify reported a change")
	}
	if s.Version() != 0 || s.Snapshot().CompanyName == "discarded" {
		t.Fatalf("no-op edits changed the session: version %d", s.Version())
	}
	if !s.RemoveItem(model.ListCases, 0) || s.Version() != 1 {
		t.Fatalf("version = %d after one removal", s.Version())
	}
}

func TestRemoveItem(t *testing.T) {
	s := New()
	n := len(s.Snapshot().Cases)
	if n == 0 {
		t.Skip("seed has no cases")
	}
	if !s.RemoveItem(model.ListCases, 0) {
		t.Fatal("remove failed")
	}
	if got := len(s.Snapshot().Cases); got != n-1 {
		t.Fatalf("cases = %d, want %d", got, n-1)
	}
	if s.RemoveItem(model.ListCases, 99) {
		t.Fatal("out of range remove succeeded")
	}
}

func TestResolveUpload(t *testing.T) {
	s := New()
	ref, err := s.ResolveImage(context.Background(), model.SlotLogo, model.FromUpload(bytes.NewReader(pngBytes(t))))
	if err != nil {
		t.Fatalf("ResolveImage: %v", err)
	}
	if !ref.IsData() || s.Snapshot().CompanyLogo != ref {
		t.Fatalf("logo = %q", s.Snapshot().CompanyLogo)
	}
	if _, err := s.ResolveImage(context.Background(), model.SlotLogo, model.FromUpload(strings.NewReader("not an image"))); !errors.Is(err, model.ErrNotImage) {
		t.Fatalf("err = %v, want ErrNotImage", err)
	}
	if s.Snapshot().CompanyLogo != ref {
		t.Fatal("rejected upload replaced the logo")
	}
}

func TestUpdateIsolatesSnapshots(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	snap.CompanyName = "changed"
	if s.Snapshot().CompanyName == "changed" {
		t.Fatal("snapshot aliases session state")
	}
	s.Update(func(d model.Document) model.Document {
		d.CompanyName = "Новая"
		return d
	})
	if s.Snapshot().CompanyName != "Новая" || s.Version() != 1 {
		t.Fatal("update not applied")
	}
}
