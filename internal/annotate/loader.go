package annotate

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageInfo describes a loaded image.
type ImageInfo struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// ImageLoader resolves an image source to its metadata.
type ImageLoader interface {
	Load(ctx context.Context, src string) (*ImageInfo, error)
}

// SourceLoader loads images from http(s) URLs, data URLs and local files.
// Only the image header is decoded.
type SourceLoader struct {
	Client   *http.Client
	MaxBytes int64
}

const defaultMaxImageBytes = 32 << 20

// NewSourceLoader creates a SourceLoader whose HTTP requests time out
// after timeout. A zero timeout means no limit.
func NewSourceLoader(timeout time.Duration) *SourceLoader {
	return &SourceLoader{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: defaultMaxImageBytes,
	}
}

func (l *SourceLoader) Load(ctx context.Context, src string) (*ImageInfo, error) {
	if src == "" {
		return nil, fmt.Errorf("empty image source")
	}

	var (
		r   io.ReadCloser
		err error
	)
	switch {
	case strings.HasPrefix(src, "data:"):
		r, err = openDataURL(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		r, err = l.openHTTP(ctx, src)
	default:
		r, err = openFile(src)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	limit := l.MaxBytes
	if limit <= 0 {
		limit = defaultMaxImageBytes
	}
	cfg, format, err := image.DecodeConfig(io.LimitReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return &ImageInfo{Src: src, Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

func (l *SourceLoader) openHTTP(ctx context.Context, src string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch image: %s", resp.Status)
	}
	return resp.Body, nil
}

func openFile(src string) (io.ReadCloser, error) {
	path := src
	if strings.HasPrefix(src, "file://") {
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse file url: %w", err)
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}

// openDataURL decodes "data:[<mime>][;base64],<payload>".
func openDataURL(src string) (io.ReadCloser, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		data = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		data = []byte(s)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
