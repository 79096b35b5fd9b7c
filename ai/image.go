package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/lvillar/offerdeck/model"
)

// ProcessDiagramPrompt builds the flowchart prompt from the step titles.
func ProcessDiagramPrompt(steps []model.Step) (string, error) {
	if len(steps) == 0 {
		return "", fmt.Errorf("%w: no process steps", ErrEmptyInput)
	}
	titles := make([]string, len(steps))
	for i, s := range steps {
		titles[i] = s.Title
	}
	return "Minimalist professional business process flowchart diagram showing the following steps: " +
		strings.Join(titles, " -> ") +
		". White background, corporate blue and gray colors. High quality infographic.", nil
}

// Generate implements ImageGenerator.
func (c *Client) Generate(ctx context.Context, prompt string) (model.ImageRef, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyInput
	}

	start := time.Now()
	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(c.imageModel),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
		Size:           openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		return "", fmt.Errorf("ai: image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", ErrNoImage
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoImage, err)
	}
	ref, err := model.EncodeImage(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoImage, err)
	}
	c.logger.Info("image generated", "model", c.imageModel, "bytes", len(raw), "duration", time.Since(start))
	return ref, nil
}
