package model

import "time"

// PlaylistEntry is a single video listed in a playlist
type PlaylistEntry struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// Playlist represents a YouTube playlist expanded into its entries
type Playlist struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	Entries   []*PlaylistEntry `json:"entries"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(id, url string) *Playlist {
	return &Playlist{
		ID:        id,
		URL:       url,
		Entries:   make([]*PlaylistEntry, 0),
		CreatedAt: time.Now(),
	}
}

// AddEntry appends an entry, skipping blanks and duplicates
func (p *Playlist) AddEntry(entry *PlaylistEntry) {
	if entry == nil || entry.VideoID == "" {
		return
	}
	for _, e := range p.Entries {
		if e.VideoID == entry.VideoID {
			return
		}
	}
	p.Entries = append(p.Entries, entry)
}

// VideoIDs returns the identifiers in playlist order
func (p *Playlist) VideoIDs() []string {
	ids := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		ids = append(ids, e.VideoID)
	}
	return ids
}
