// Command offerdeck edits, previews and exports commercial proposals.
//
// Usage:
//
//	offerdeck seed    [-o proposal.json]
//	offerdeck pages   [-in proposal.json]
//	offerdeck preview [-in proposal.json] -page N [-zoom 0.6] [-frame] [-o page.png]
//	offerdeck export  [-in proposal.json] [-o commercial-proposal.pdf]
//	offerdeck fill    [-in proposal.json] -topic "..." [-o proposal.json]
//	offerdeck serve   [-in proposal.json] [-addr :8080]
//	offerdeck watch   -in proposal.json [-o commercial-proposal.pdf]
//	offerdeck mcp     [-in proposal.json]
//
// Settings are read from the environment and an optional .env file:
// OPENAI_API_KEY, OFFERDECK_ADDR, OFFERDECK_SETTLE, OFFERDECK_JPEG_QUALITY,
// OFFERDECK_CONTACT_CODE, OFFERDECK_REMOTE_IMAGES, OFFERDECK_LOG_LEVEL and
// ALLOWED_ORIGINS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lvillar/offerdeck/ai"
	"github.com/lvillar/offerdeck/config"
	"github.com/lvillar/offerdeck/export"
	"github.com/lvillar/offerdeck/layout"
	"github.com/lvillar/offerdeck/mcp"
	"github.com/lvillar/offerdeck/model"
	"github.com/lvillar/offerdeck/render"
	"github.com/lvillar/offerdeck/session"
	"github.com/lvillar/offerdeck/watch"
	"github.com/lvillar/offerdeck/web"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "offerdeck: %v\n", err)
		os.Exit(2)
	}
	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "offerdeck: %v\n", err)
		os.Exit(1)
	}
}

// app is the wiring shared by the subcommands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	renderer *render.Renderer
	exporter *export.Pipeline
}

func newApp(cfg config.Config) *app {
	logger := cfg.Logger()
	renderer := render.New(render.NewLoader(cfg.RemoteImages, render.DefaultFetchTimeout), logger)
	return &app{
		cfg:      cfg,
		logger:   logger,
		renderer: renderer,
		exporter: export.New(renderer, cfg.ExportOptions(logger)...),
	}
}

// session builds an editing session on doc. AI is enabled when a key is
// configured.
func (a *app) session(doc model.Document) (*session.Session, error) {
	opts := []session.Option{
		session.WithDocument(doc),
		session.WithExporter(a.exporter),
		session.WithLogger(a.logger),
	}
	if a.cfg.AIEnabled() {
		client, err := ai.NewClient(a.cfg.AI(), a.logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, session.WithTextFiller(client), session.WithImageGenerator(client))
	} else {
		a.logger.Warn("OPENAI_API_KEY is not set; AI features are disabled")
	}
	return session.New(opts...), nil
}

func run(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage()
		return errUsage
	}
	a := newApp(cfg)
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "seed":
		return a.seed(rest, stdout)
	case "pages":
		return a.pages(rest, stdout)
	case "preview":
		return a.preview(ctx, rest)
	case "export":
		return a.export(ctx, rest, stdout)
	case "fill":
		return a.fill(ctx, rest, stdout)
	case "serve":
		return a.serve(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	case "mcp":
		return a.mcp(rest)
	case "help", "-h", "-help", "--help":
		usage()
		return nil
	}
	usage()
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: offerdeck <seed|pages|preview|export|fill|serve|watch|mcp> [flags]")
}

func newFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	in := fs.String("in", "", "proposal JSON (default: built-in seed)")
	return fs, in
}

func loadDocument(path string) (model.Document, error) {
	if path == "" {
		return model.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Document{}, err
	}
	defer f.Close()
	return model.Decode(f)
}

// create opens path for writing, or returns stdout for "" and "-".
func create(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeDocument(path string, d model.Document, stdout io.Writer) error {
	w, err := create(path, stdout)
	if err != nil {
		return err
	}
	if err := model.Encode(w, d); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (a *app) seed(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	out := fs.String("o", "-", "output file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return writeDocument(*out, model.Default(), stdout)
}

func (a *app) pages(args []string, stdout io.Writer) error {
	fs, in := newFlags("pages")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	doc, err := loadDocument(*in)
	if err != nil {
		return err
	}
	for _, p := range layout.Build(doc) {
		fmt.Fprintf(stdout, "%d\t%s\t%s\t%d sections\n", p.Number, p.Kind, p.Caption, len(p.Sections))
	}
	return nil
}

func (a *app) preview(ctx context.Context, args []string) error {
	fs, in := newFlags("preview")
	page := fs.Int("page", 1, "1-based page number")
	zoom := fs.Float64("zoom", render.DefaultZoom, "preview zoom")
	frame := fs.Bool("frame", false, "draw the desk frame and caption")
	out := fs.String("o", "", "output PNG (default page-N.png)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	doc, err := loadDocument(*in)
	if err != nil {
		return err
	}
	pages := layout.Build(doc)
	if *page < 1 || *page > len(pages) {
		return fmt.Errorf("page %d out of range 1..%d", *page, len(pages))
	}
	img, err := a.renderer.Preview(ctx, pages[*page-1], render.ThemeFor(doc), render.PreviewOptions{
		Zoom:        *zoom,
		Frame:       *frame,
		ContactCode: a.cfg.ContactCode,
	})
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = "page-" + strconv.Itoa(*page) + ".png"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) export(ctx context.Context, args []string, stdout io.Writer) error {
	fs, in := newFlags("export")
	out := fs.String("o", export.DefaultFilename, "output PDF")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	doc, err := loadDocument(*in)
	if err != nil {
		return err
	}
	res, err := a.exporter.ExportFile(ctx, doc, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d pages, %d bytes in %s\n", *out, res.Pages, res.Bytes, res.Duration.Round(time.Millisecond))
	return nil
}

func (a *app) fill(ctx context.Context, args []string, stdout io.Writer) error {
	fs, in := newFlags("fill")
	topic := fs.String("topic", "", "business niche or topic")
	out := fs.String("o", "-", "output JSON")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	doc, err := loadDocument(*in)
	if err != nil {
		return err
	}
	sess, err := a.session(doc)
	if err != nil {
		return err
	}
	if err := sess.AutoFill(ctx, *topic); err != nil {
		return err
	}
	return writeDocument(*out, sess.Snapshot(), stdout)
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs, in := newFlags("serve")
	addr := fs.String("addr", a.cfg.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	doc, err := loadDocument(*in)
	if err != nil {
		return err
	}
	sess, err := a.session(doc)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr: *addr,
		Handler: web.NewHandler(sess, web.Options{
			Origins:     a.cfg.Origins,
			ContactCode: a.cfg.ContactCode,
			Renderer:    a.renderer,
			Logger:      a.logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", *addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	sess.Wait(shutdownCtx)
	return err
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs, in := newFlags("watch")
	out := fs.String("o", export.DefaultFilename, "output PDF")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *in == "" {
		return fmt.Errorf("%w: watch needs -in", errUsage)
	}
	w := &watch.Watcher{
		Source:   *in,
		Output:   *out,
		Exporter: a.exporter,
		Logger:   a.logger,
	}
	return w.Run(ctx)
}

func (a *app) mcp(args []string) error {
	fs, in := newFlags("mcp")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	doc, err := loadDocument(*in)
	if err != nil {
		return err
	}
	sess, err := a.session(doc)
	if err != nil {
		return err
	}
	return mcp.New(sess, mcp.Options{
		ContactCode: a.cfg.ContactCode,
		Renderer:    a.renderer,
		Logger:      a.logger,
	}).ServeStdio()
}
