package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/lvillar/offerdeck/render"
)

var keys = []string{
	"OPENAI_API_KEY", "OFFERDECK_TEXT_MODEL", "OFFERDECK_IMAGE_MODEL", "OFFERDECK_AI_BASE_URL",
	"OFFERDECK_AI_RETRIES", "OFFERDECK_ADDR", "OFFERDECK_SETTLE", "OFFERDECK_JPEG_QUALITY",
	"OFFERDECK_CONTACT_CODE", "OFFERDECK_REMOTE_IMAGES", "OFFERDECK_LOG_LEVEL", "ALLOWED_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.AIEnabled() {
		t.Fatal("AI enabled without a key")
	}
	if c.Addr != DefaultAddr || c.MaxRetries != DefaultMaxRetries {
		t.Fatalf("addr=%q retries=%d", c.Addr, c.MaxRetries)
	}
	if c.SettleDelay != 100*time.Millisecond || c.JPEGQuality != 95 {
		t.Fatalf("settle=%v quality=%d", c.SettleDelay, c.JPEGQuality)
	}
	if c.ContactCode != render.CodeQR || !c.RemoteImages || c.LogLevel != slog.LevelInfo {
		t.Fatalf("code=%q remote=%v level=%v", c.ContactCode, c.RemoteImages, c.LogLevel)
	}
	if c.TextModel != "gpt-4o" || c.ImageModel != "dall-e-3" {
		t.Fatalf("models = %q, %q", c.TextModel, c.ImageModel)
	}
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OFFERDECK_SETTLE", "250ms")
	t.Setenv("OFFERDECK_JPEG_QUALITY", "80")
	t.Setenv("OFFERDECK_CONTACT_CODE", "PDF417")
	t.Setenv("OFFERDECK_REMOTE_IMAGES", "false")
	t.Setenv("OFFERDECK_LOG_LEVEL", "debug")
	t.Setenv("OFFERDECK_AI_RETRIES", "0")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !c.AIEnabled() || c.AI().APIKey != "sk-test" || c.AI().MaxRetries != 0 {
		t.Fatalf("ai config = %+v", c.AI())
	}
	if c.SettleDelay != 250*time.Millisecond || c.JPEGQuality != 80 {
		t.Fatalf("settle=%v quality=%d", c.SettleDelay, c.JPEGQuality)
	}
	if c.ContactCode != render.CodePDF417 || c.RemoteImages || c.LogLevel != slog.LevelDebug {
		t.Fatalf("code=%q remote=%v level=%v", c.ContactCode, c.RemoteImages, c.LogLevel)
	}
	if n := len(c.ExportOptions(nil)); n != 4 {
		t.Fatalf("export options = %d", n)
	}
}

func TestInvalidValues(t *testing.T) {
	cases := map[string]string{
		"OFFERDECK_SETTLE":        "soon",
		"OFFERDECK_JPEG_QUALITY":  "101",
		"OFFERDECK_CONTACT_CODE":  "aztec",
		"OFFERDECK_REMOTE_IMAGES": "maybe",
		"OFFERDECK_LOG_LEVEL":     "loud",
		"OFFERDECK_AI_RETRIES":    "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := FromEnv(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("%s=%q: err = %v, want ErrInvalid", key, val, err)
			}
		})
	}
}
