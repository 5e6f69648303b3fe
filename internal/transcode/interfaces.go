package transcode

import (
	"context"

	"github.com/ytget/yt-grabber/internal/acquire"
)

// Converter defines the interface for the transcoding service.
type Converter interface {
	Transcode(ctx context.Context, inputPath, outputPath, format string) error
	SupportedFormats() []string
}

var (
	_ Converter          = (*Service)(nil)
	_ acquire.Transcoder = (*Service)(nil)
)
