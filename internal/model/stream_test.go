package model

import "testing"

func TestStreamDescriptor_String(t *testing.T) {
	tests := []struct {
		desc     StreamDescriptor
		expected string
	}{
		{StreamDescriptor{Kind: StreamKindAudio, Itag: 251, Container: "webm", Bitrate: 160000}, "itag 251 webm 160kbps"},
		{StreamDescriptor{Kind: StreamKindCombined, Itag: 18, Container: "mp4", Quality: 360}, "itag 18 mp4 360p"},
	}

	for _, test := range tests {
		if got := test.desc.String(); got != test.expected {
			t.Errorf("String() = %q, expected %q", got, test.expected)
		}
	}
}
