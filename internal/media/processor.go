package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxBytes     = int64(2 * 1024 * 1024)
	DefaultMaxDimension = 3840
)

var ErrInvalidImage = errors.New("invalid image")

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// Image is an upload that has been read fully and identified by its bytes,
// not by the client supplied content type.
type Image struct {
	Bytes       []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

type Processor interface {
	Process(ctx context.Context, upload Upload) (*Image, error)
}

var formats = map[string]struct{ contentType, ext string }{
	"jpeg": {"image/jpeg", ".jpg"},
	"png":  {"image/png", ".png"},
	"webp": {"image/webp", ".webp"},
	"gif":  {"image/gif", ".gif"},
}

type ThumbnailProcessor struct {
	maxBytes     int64
	maxDimension int
}

func NewThumbnailProcessor(maxBytes int64, maxDimension int) *ThumbnailProcessor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &ThumbnailProcessor{maxBytes: maxBytes, maxDimension: maxDimension}
}

func (p *ThumbnailProcessor) MaxBytes() int64 { return p.maxBytes }

func (p *ThumbnailProcessor) Process(ctx context.Context, upload Upload) (*Image, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	if upload.Size > p.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidImage, p.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidImage, p.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unrecognised image data", ErrInvalidImage)
	}
	info, ok := formats[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidImage, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	if cfg.Width > p.maxDimension || cfg.Height > p.maxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dpx", ErrInvalidImage, cfg.Width, cfg.Height, p.maxDimension)
	}

	return &Image{
		Bytes:       data,
		ContentType: info.contentType,
		Extension:   info.ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
