package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/model"
)

// Transfer constants
const (
	TransferBufferSize = 256 * 1024
	FilePermissions    = 0644
)

// Mime type prefixes used to classify formats
const (
	AudioMimePrefix = "audio/"
	VideoMimePrefix = "video/"
)

// containerAliases maps mime subtypes to file extensions where they differ
var containerAliases = map[string]string{
	"3gpp":      "3gp",
	"x-flv":     "flv",
	"quicktime": "mov",
}

// streamHandle is the opaque data YouTubeClient stores in a descriptor
type streamHandle struct {
	video  *youtube.Video
	format youtube.Format
}

// YouTubeClient resolves stream metadata and transfers streams from YouTube
type YouTubeClient struct {
	client *youtube.Client
}

// NewYouTubeClient creates a client. A nil httpClient uses the library default.
func NewYouTubeClient(httpClient *http.Client) *YouTubeClient {
	c := &youtube.Client{}
	if httpClient != nil {
		c.HTTPClient = httpClient
	}
	return &YouTubeClient{client: c}
}

// ResolveMetadata fetches the video and its formats. identifier may be a
// video ID or any URL youtube.ExtractVideoID understands.
func (y *YouTubeClient) ResolveMetadata(ctx context.Context, identifier string) (*acquire.Metadata, error) {
	video, err := y.client.GetVideoContext(ctx, identifier)
	if err != nil {
		return nil, classifyYouTubeError(err)
	}
	audio, combined := describeFormats(video)
	return &acquire.Metadata{
		VideoID:  video.ID,
		Title:    video.Title,
		Audio:    audio,
		Combined: combined,
	}, nil
}

// Transfer streams the selected format into dest
func (y *YouTubeClient) Transfer(ctx context.Context, stream model.StreamDescriptor, dest string, onProgress func(float64)) error {
	handle, ok := stream.Handle.(*streamHandle)
	if !ok || handle == nil {
		return acquire.Permanent(fmt.Errorf("descriptor %s was not produced by this client", stream))
	}

	body, size, err := y.client.GetStreamContext(ctx, handle.video, &handle.format)
	if err != nil {
		return classifyYouTubeError(err)
	}
	defer body.Close()

	file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return acquire.Permanent(fmt.Errorf("failed to create %s: %w", dest, err))
	}

	if size <= 0 {
		size = stream.Size
	}
	_, copyErr := copyWithProgress(ctx, file, body, size, onProgress)
	closeErr := file.Close()
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", dest, closeErr)
	}
	return nil
}

// describeFormats splits formats into audio-only and combined descriptors,
// keeping the library's order.
func describeFormats(video *youtube.Video) (audio, combined []model.StreamDescriptor) {
	for _, f := range video.Formats {
		desc := model.StreamDescriptor{
			Itag:      f.ItagNo,
			MimeType:  f.MimeType,
			Container: containerFromMime(f.MimeType),
			Bitrate:   formatBitrate(f),
			Quality:   f.Height,
			Size:      f.ContentLength,
			Handle:    &streamHandle{video: video, format: f},
		}

		switch {
		case strings.HasPrefix(f.MimeType, AudioMimePrefix):
			desc.Kind = model.StreamKindAudio
			audio = append(audio, desc)
		case strings.HasPrefix(f.MimeType, VideoMimePrefix) && f.AudioChannels > 0:
			desc.Kind = model.StreamKindCombined
			combined = append(combined, desc)
		}
	}
	return audio, combined
}

func formatBitrate(f youtube.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

// containerFromMime turns `audio/webm; codecs="opus"` into "webm"
func containerFromMime(mime string) string {
	mediaType, _, _ := strings.Cut(mime, ";")
	_, subtype, found := strings.Cut(strings.TrimSpace(mediaType), "/")
	if !found || subtype == "" {
		return ""
	}
	subtype = strings.ToLower(subtype)
	if alias, ok := containerAliases[subtype]; ok {
		return alias
	}
	return subtype
}

// classifyYouTubeError marks failures another attempt cannot fix
func classifyYouTubeError(err error) error {
	switch {
	case errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrNotPlayableInEmbed),
		errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return acquire.Permanent(err)
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return acquire.Permanent(err)
	}
	return err
}

// copyWithProgress copies src to dst reporting written/size after every
// chunk. With an unknown size no fractions are reported.
func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, size int64, onProgress func(float64)) (int64, error) {
	buf := make([]byte, TransferBufferSize)
	var written int64
	lastReport := time.Time{}

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			m, writeErr := dst.Write(buf[:n])
			written += int64(m)
			if writeErr != nil {
				return written, fmt.Errorf("write failed: %w", writeErr)
			}
			if m != n {
				return written, io.ErrShortWrite
			}
			if size > 0 && onProgress != nil && time.Since(lastReport) >= ProgressInterval {
				lastReport = time.Now()
				onProgress(min(float64(written)/float64(size), 1))
			}
		}

		if readErr == io.EOF {
			if size > 0 && onProgress != nil {
				onProgress(min(float64(written)/float64(size), 1))
			}
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("read failed: %w", readErr)
		}
	}
}

// ProgressInterval throttles progress callbacks during a transfer
var ProgressInterval = 100 * time.Millisecond
