package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lvillar/offerdeck/config"
	"github.com/lvillar/offerdeck/model"
)

func testConfig() config.Config {
	return config.Config{JPEGQuality: 90, ContactCode: "qr", LogLevel: slog.LevelError}
}

func TestSeedAndPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proposal.json")
	var out bytes.Buffer
	if err := run(context.Background(), testConfig(), []string{"seed", "-o", path}, &out); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	d, err := model.Decode(f)
	if err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	if d.CompanyName != model.Default().CompanyName {
		t.Fatalf("company = %q", d.CompanyName)
	}

	out.Reset()
	if err := run(context.Background(), testConfig(), []string{"pages", "-in", path}, &out); err != nil {
		t.Fatalf("pages: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("pages output:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[0], "1\ttitle") {
		t.Fatalf("first line = %q", lines[0])
	}
}

func TestPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.png")
	args := []string{"preview", "-page", "5", "-zoom", "0.2", "-o", path}
	if err := run(context.Background(), testConfig(), args, &bytes.Buffer{}); err != nil {
		t.Fatalf("preview: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.DecodeConfig(f); err != nil {
		t.Fatalf("png: %v", err)
	}

	if err := run(context.Background(), testConfig(), []string{"preview", "-page", "9"}, &bytes.Buffer{}); err == nil {
		t.Fatal("out of range page accepted")
	}
}

func TestFillWithoutKey(t *testing.T) {
	err := run(context.Background(), testConfig(), []string{"fill", "-topic", "CRM"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("err = %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(context.Background(), testConfig(), []string{"frobnicate"}, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want usage error", err)
	}
	if err := run(context.Background(), testConfig(), nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want usage error", err)
	}
}
