package acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/yt-grabber/internal/model"
)

func audio(itag, kbps int) model.StreamDescriptor {
	return model.StreamDescriptor{Kind: model.StreamKindAudio, Itag: itag, Bitrate: kbps}
}

func combined(itag, height int) model.StreamDescriptor {
	return model.StreamDescriptor{Kind: model.StreamKindCombined, Itag: itag, Quality: height}
}

func TestSelectAudio(t *testing.T) {
	best, ok := SelectAudio([]model.StreamDescriptor{audio(1, 64), audio(2, 128), audio(3, 96)})

	assert.True(t, ok)
	assert.Equal(t, 128, best.Bitrate)
	assert.Equal(t, 2, best.Itag)
}

func TestSelectAudio_LastWinsOnTie(t *testing.T) {
	best, ok := SelectAudio([]model.StreamDescriptor{audio(1, 128), audio(2, 64), audio(3, 128)})

	assert.True(t, ok)
	assert.Equal(t, 3, best.Itag)
}

func TestSelectCombined(t *testing.T) {
	best, ok := SelectCombined([]model.StreamDescriptor{combined(18, 360), combined(22, 720), combined(17, 144), combined(59, 720)})

	assert.True(t, ok)
	assert.Equal(t, 59, best.Itag)
}

func TestSelect_Empty(t *testing.T) {
	_, ok := SelectAudio(nil)
	assert.False(t, ok)

	_, ok = SelectCombined([]model.StreamDescriptor{})
	assert.False(t, ok)
}
