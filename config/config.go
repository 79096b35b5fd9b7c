// Package config reads offerdeck settings from the environment. A .env file
// in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lvillar/offerdeck"
	"github.com/lvillar/offerdeck/ai"
	"github.com/lvillar/offerdeck/render"
)

// Defaults.
const (
	DefaultAddr       = ":8080"
	DefaultMaxRetries = 2
)

// ErrInvalid reports a malformed environment value.
var ErrInvalid = errors.New("config: invalid value")

// Config is the process configuration.
type Config struct {
	APIKey       string
	TextModel    string
	ImageModel   string
	AIBaseURL    string
	MaxRetries   int
	Addr         string
	SettleDelay  time.Duration
	JPEGQuality  int
	ContactCode  string
	RemoteImages bool
	LogLevel     slog.Level
	Origins      string // comma separated, empty disables CORS
}

// Load loads .env (if any) and then reads the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (Config, error) {
	c := Config{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		TextModel:  envOr("OFFERDECK_TEXT_MODEL", ai.DefaultTextModel),
		ImageModel: envOr("OFFERDECK_IMAGE_MODEL", ai.DefaultImageModel),
		AIBaseURL:  os.Getenv("OFFERDECK_AI_BASE_URL"),
		Addr:       envOr("OFFERDECK_ADDR", DefaultAddr),
		Origins:    os.Getenv("ALLOWED_ORIGINS"),
	}

	var errs []error
	var err error
	if c.MaxRetries, err = intEnv("OFFERDECK_AI_RETRIES", DefaultMaxRetries, 0, 10); err != nil {
		errs = append(errs, err)
	}
	if c.SettleDelay, err = durationEnv("OFFERDECK_SETTLE", offerdeck.DefaultSettleDelay); err != nil {
		errs = append(errs, err)
	}
	if c.JPEGQuality, err = intEnv("OFFERDECK_JPEG_QUALITY", offerdeck.DefaultJPEGQuality, 1, 100); err != nil {
		errs = append(errs, err)
	}
	if c.RemoteImages, err = boolEnv("OFFERDECK_REMOTE_IMAGES", true); err != nil {
		errs = append(errs, err)
	}
	code := envOr("OFFERDECK_CONTACT_CODE", render.CodeQR)
	if c.ContactCode, err = render.ParseCodeKind(code); err != nil {
		errs = append(errs, fmt.Errorf("%w: OFFERDECK_CONTACT_CODE=%q", ErrInvalid, code))
	}
	level := envOr("OFFERDECK_LOG_LEVEL", "info")
	if err = c.LogLevel.UnmarshalText([]byte(level)); err != nil {
		errs = append(errs, fmt.Errorf("%w: OFFERDECK_LOG_LEVEL=%q", ErrInvalid, level))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return c, nil
}

// AIEnabled reports whether an AI credential is configured.
func (c Config) AIEnabled() bool { return strings.TrimSpace(c.APIKey) != "" }

// AI returns the adapter configuration.
func (c Config) AI() ai.Config {
	return ai.Config{
		APIKey:     c.APIKey,
		TextModel:  c.TextModel,
		ImageModel: c.ImageModel,
		BaseURL:    c.AIBaseURL,
		MaxRetries: c.MaxRetries,
	}
}

// ExportOptions returns the pipeline options derived from c.
func (c Config) ExportOptions(logger *slog.Logger) []offerdeck.Option {
	return []offerdeck.Option{
		offerdeck.WithSettleDelay(c.SettleDelay),
		offerdeck.WithJPEGQuality(c.JPEGQuality),
		offerdeck.WithContactCode(c.ContactCode),
		offerdeck.WithLogger(logger),
	}
}

// Logger builds a text logger on stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def, lo, hi int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s=%q (want %d..%d)", ErrInvalid, key, v, lo, hi)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return b, nil
}
