package model

import "fmt"

// StreamKind tells audio-only encodings apart from combined audio+video ones
type StreamKind string

const (
	StreamKindAudio    StreamKind = "audio"
	StreamKindCombined StreamKind = "combined"
)

// StreamDescriptor describes one available encoding of a media item. It is
// immutable after resolution and lives for a single acquisition run.
type StreamDescriptor struct {
	Kind      StreamKind
	Itag      int
	MimeType  string
	Container string // file extension without the dot, e.g. "webm"
	Bitrate   int    // bits per second, audio ranking key
	Quality   int    // vertical resolution, combined ranking key
	Size      int64  // content length in bytes, 0 if unknown

	// Handle is opaque data owned by the collaborator that produced the
	// descriptor; the workflow never looks inside it.
	Handle any
}

// String returns a short human readable description
func (d StreamDescriptor) String() string {
	if d.Kind == StreamKindAudio {
		return fmt.Sprintf("itag %d %s %dkbps", d.Itag, d.Container, d.Bitrate/1000)
	}
	return fmt.Sprintf("itag %d %s %dp", d.Itag, d.Container, d.Quality)
}
