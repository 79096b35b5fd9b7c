// Package ai fills proposal content and generates images through OpenAI.
//
// Text fill asks the Responses API for a JSON object constrained by a strict
// schema reflected from a Go struct, then converts the answer into a
// model.Patch with every list cut to its section cap. Image generation
// returns the picture as a self-contained data URL.
package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lvillar/offerdeck/model"
)

// Adapter errors.
var (
	ErrNoCredential = errors.New("ai: no API key configured")
	ErrNoImage      = errors.New("ai: no image produced")
	ErrEmptyInput   = errors.New("ai: empty input")
	ErrEmptyReply   = errors.New("ai: empty response")
)

// Default models.
const (
	DefaultTextModel  = "gpt-4o"
	DefaultImageModel = "dall-e-3"
)

// TextFiller proposes document content for a topic.
type TextFiller interface {
	Fill(ctx context.Context, topic string) (model.Patch, error)
}

// ImageGenerator turns a prompt into an image.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (model.ImageRef, error)
}

// Config configures a Client.
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
	BaseURL    string // optional API endpoint override
	MaxRetries int
}

// Client implements TextFiller and ImageGenerator.
type Client struct {
	client     *openai.Client
	textModel  string
	imageModel string
	logger     *slog.Logger
}

// NewClient creates a Client. It returns ErrNoCredential when cfg carries no
// API key.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoCredential
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	c := &Client{
		client:     &client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		logger:     logger,
	}
	if c.textModel == "" {
		c.textModel = DefaultTextModel
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}
	return c, nil
}
