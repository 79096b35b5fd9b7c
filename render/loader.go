package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/lvillar/offerdeck/model"
)

// ErrRemoteImage reports an http(s) image that could not be fetched or
// decoded. Painters draw the slot placeholder instead.
var ErrRemoteImage = errors.New("render: remote image unavailable")

// DefaultFetchTimeout bounds a single remote image request.
const DefaultFetchTimeout = 10 * time.Second

// ImageLoader decodes the image behind a reference.
type ImageLoader interface {
	Load(ctx context.Context, ref model.ImageRef) (image.Image, error)
}

// HTTPLoader decodes data URLs in place and fetches http(s) URLs.
type HTTPLoader struct {
	Client      *http.Client
	AllowRemote bool
}

// NewLoader returns a loader that fetches remote images with the given
// timeout, or refuses them when allowRemote is false.
func NewLoader(allowRemote bool, timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPLoader{
		Client:      &http.Client{Timeout: timeout},
		AllowRemote: allowRemote,
	}
}

// Load implements ImageLoader.
func (l *HTTPLoader) Load(ctx context.Context, ref model.ImageRef) (image.Image, error) {
	switch {
	case ref.IsData():
		_, payload, err := ref.Bytes()
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		img, _, err := image.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("render: decoding embedded image: %w", err)
		}
		return img, nil

	case ref.IsRemote():
		if !l.AllowRemote {
			return nil, fmt.Errorf("%w: remote images disabled", ErrRemoteImage)
		}
		return l.fetch(ctx, string(ref))

	default:
		return nil, fmt.Errorf("render: unsupported image reference %.32q", string(ref))
	}
}

func (l *HTTPLoader) fetch(ctx context.Context, url string) (image.Image, error) {
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteImage, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteImage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrRemoteImage, url, resp.StatusCode)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, model.MaxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteImage, url, err)
	}
	return img, nil
}
