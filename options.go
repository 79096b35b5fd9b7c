package offerdeck

import (
	"log/slog"
	"time"
)

// Defaults for the capture stage of an export.
const (
	DefaultSettleDelay = 100 * time.Millisecond
	DefaultScale       = 2.0
	DefaultJPEGQuality = 95
)

// Option is a functional option for configuring an export pipeline.
type Option func(*Settings)

// Settings collects the values configured through Options. Packages that
// accept Options call Apply to resolve them against the defaults.
type Settings struct {
	SettleDelay time.Duration
	Scale       float64
	JPEGQuality int
	TempDir     string
	ContactCode string
	Logger      *slog.Logger
}

// WithSettleDelay sets the fixed delay waited before each page capture.
func WithSettleDelay(d time.Duration) Option {
	return func(s *Settings) {
		if d >= 0 {
			s.SettleDelay = d
		}
	}
}

// WithScale sets the supersampling factor relative to the nominal page size.
func WithScale(scale float64) Option {
	return func(s *Settings) {
		if scale > 0 {
			s.Scale = scale
		}
	}
}

// WithJPEGQuality sets the lossy compression quality (1-100) of captured pages.
func WithJPEGQuality(q int) Option {
	return func(s *Settings) {
		if q >= 1 && q <= 100 {
			s.JPEGQuality = q
		}
	}
}

// WithTempDir sets the parent directory of the per-export scratch container.
// An empty value means os.TempDir.
func WithTempDir(dir string) Option {
	return func(s *Settings) {
		s.TempDir = dir
	}
}

// WithContactCode selects the scannable code drawn in the closing contact
// block: "qr", "pdf417" or "none".
func WithContactCode(kind string) Option {
	return func(s *Settings) {
		s.ContactCode = kind
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// Apply resolves opts against the defaults.
//
// Example:
//
//	s := offerdeck.Apply(
//	    offerdeck.WithSettleDelay(0),
//	    offerdeck.WithJPEGQuality(90),
//	)
func Apply(opts ...Option) Settings {
	s := Settings{
		SettleDelay: DefaultSettleDelay,
		Scale:       DefaultScale,
		JPEGQuality: DefaultJPEGQuality,
		ContactCode: "qr",
		Logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
