package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-grabber/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// Default values
const (
	DefaultPlaylistName = "Unknown Playlist"
	PlaylistSuffix      = " Playlist"
	MinPrefixLength     = 10
)

// playlistLister fetches every entry of a playlist
type playlistLister func(ctx context.Context, playlistID string) ([]*model.PlaylistEntry, error)

// PlaylistParser expands YouTube playlists into video identifiers
type PlaylistParser struct {
	timeout time.Duration
	lister  playlistLister
}

// NewPlaylistParser creates a new parser service
func NewPlaylistParser() *PlaylistParser {
	return &PlaylistParser{
		timeout: DefaultParseTimeout,
		lister:  listWithYTDLP,
	}
}

// listWithYTDLP pages through the playlist with the ytdlp library
func listWithYTDLP(ctx context.Context, playlistID string) ([]*model.PlaylistEntry, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, &model.PlaylistEntry{VideoID: it.VideoID, Title: it.Title})
	}
	return entries, nil
}

// SetTimeout sets the timeout for parsing operations
func (p *PlaylistParser) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// ParsePlaylist lists every video of the playlist referenced by rawURL
func (p *PlaylistParser) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	playlistID := ExtractPlaylistID(rawURL)
	if playlistID == "" {
		return nil, fmt.Errorf("invalid playlist URL: %s", rawURL)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	entries, err := p.lister(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := model.NewPlaylist(playlistID, rawURL)
	for _, entry := range entries {
		playlist.AddEntry(entry)
	}
	if len(playlist.Entries) == 0 {
		return nil, fmt.Errorf("playlist %s has no videos", playlistID)
	}
	playlist.Title = extractPlaylistTitle(playlist.Entries)

	return playlist, nil
}

// LooksLikePlaylist reports whether input carries a playlist reference
func LooksLikePlaylist(input string) bool {
	return ExtractPlaylistID(input) != ""
}

// ExtractPlaylistID returns the list= parameter of a YouTube URL. Supported:
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&index=2
func ExtractPlaylistID(rawURL string) string {
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil && u.Host != "" {
		return u.Query().Get("list")
	}

	if !strings.Contains(rawURL, PlaylistParam) {
		return ""
	}
	parts := strings.SplitN(rawURL, PlaylistParam, 2)
	id, _, _ := strings.Cut(parts[1], ParamSeparator)
	return strings.TrimSpace(id)
}

// extractPlaylistTitle derives a display title from the entry titles
func extractPlaylistTitle(entries []*model.PlaylistEntry) string {
	if len(entries) == 0 {
		return DefaultPlaylistName
	}
	if len(entries) > 1 {
		prefix := findCommonPrefix(entries[0].Title, entries[1].Title)
		if len(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix) + PlaylistSuffix
		}
	}
	return entries[0].Title + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings
func findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
