package model

import "testing"

func TestPlaylist_AddEntry(t *testing.T) {
	p := NewPlaylist("PL123", "https://www.youtube.com/playlist?list=PL123")

	p.AddEntry(&PlaylistEntry{VideoID: "a", Title: "First"})
	p.AddEntry(&PlaylistEntry{VideoID: "b", Title: "Second"})
	p.AddEntry(&PlaylistEntry{VideoID: "a", Title: "First again"})
	p.AddEntry(&PlaylistEntry{VideoID: ""})
	p.AddEntry(nil)

	ids := p.VideoIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ids))
	}
	if ids[0] != "a" || ids[1] != "b" {
		t.Errorf("unexpected order: %v", ids)
	}
}
