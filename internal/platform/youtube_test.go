package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/model"
)

func TestContainerFromMime(t *testing.T) {
	tests := []struct {
		mime     string
		expected string
	}{
		{`audio/webm; codecs="opus"`, "webm"},
		{`audio/mp4; codecs="mp4a.40.2"`, "mp4"},
		{`video/mp4; codecs="avc1.42001E, mp4a.40.2"`, "mp4"},
		{`video/3gpp; codecs="mp4v.20.3, mp4a.40.2"`, "3gp"},
		{"VIDEO/WEBM", "webm"},
		{"garbage", ""},
		{"", ""},
	}

	for _, test := range tests {
		if got := containerFromMime(test.mime); got != test.expected {
			t.Errorf("containerFromMime(%q) = %q, expected %q", test.mime, got, test.expected)
		}
	}
}

func TestDescribeFormats(t *testing.T) {
	video := &youtube.Video{
		ID:    "abc",
		Title: "Sample",
		Formats: youtube.FormatList{
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Height: 360, AudioChannels: 2, Bitrate: 500000},
			{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Height: 1080},
			{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, Bitrate: 130000, AverageBitrate: 128000, ContentLength: 4096},
			{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, Bitrate: 160000},
		},
	}

	audio, combined := describeFormats(video)

	require.Len(t, audio, 2)
	require.Len(t, combined, 1, "video-only streams are skipped")

	assert.Equal(t, model.StreamKindAudio, audio[0].Kind)
	assert.Equal(t, 140, audio[0].Itag)
	assert.Equal(t, 128000, audio[0].Bitrate, "average bitrate preferred")
	assert.Equal(t, int64(4096), audio[0].Size)
	assert.Equal(t, "webm", audio[1].Container)

	assert.Equal(t, model.StreamKindCombined, combined[0].Kind)
	assert.Equal(t, 360, combined[0].Quality)
	assert.Equal(t, "mp4", combined[0].Container)

	handle, ok := combined[0].Handle.(*streamHandle)
	require.True(t, ok)
	assert.Equal(t, video, handle.video)
	assert.Equal(t, 18, handle.format.ItagNo)
}

func TestClassifyYouTubeError(t *testing.T) {
	assert.True(t, acquire.IsPermanent(classifyYouTubeError(youtube.ErrVideoPrivate)))
	assert.True(t, acquire.IsPermanent(classifyYouTubeError(fmt.Errorf("get: %w", youtube.ErrLoginRequired))))
	assert.True(t, acquire.IsPermanent(classifyYouTubeError(&youtube.ErrPlayabiltyStatus{Status: "UNPLAYABLE", Reason: "region"})))

	transient := errors.New("connection reset")
	assert.False(t, acquire.IsPermanent(classifyYouTubeError(transient)))
	assert.ErrorIs(t, classifyYouTubeError(youtube.ErrVideoPrivate), youtube.ErrVideoPrivate)
}

func TestTransfer_RejectsForeignDescriptor(t *testing.T) {
	client := NewYouTubeClient(nil)

	err := client.Transfer(context.Background(), model.StreamDescriptor{Itag: 1}, t.TempDir()+"/x", nil)

	assert.Error(t, err)
	assert.True(t, acquire.IsPermanent(err))
}

func TestCopyWithProgress(t *testing.T) {
	saved := ProgressInterval
	ProgressInterval = 0
	defer func() { ProgressInterval = saved }()

	payload := strings.Repeat("a", TransferBufferSize*3+17)
	var dst bytes.Buffer
	var fractions []float64

	n, err := copyWithProgress(context.Background(), &dst, strings.NewReader(payload), int64(len(payload)), func(p float64) {
		fractions = append(fractions, p)
	})

	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, dst.String())
	require.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestCopyWithProgress_UnknownSize(t *testing.T) {
	called := false
	var dst bytes.Buffer

	_, err := copyWithProgress(context.Background(), &dst, strings.NewReader("data"), 0, func(float64) { called = true })

	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, "data", dst.String())
}

func TestCopyWithProgress_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := copyWithProgress(ctx, &bytes.Buffer{}, strings.NewReader("data"), 4, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stream reset") }

func TestCopyWithProgress_ReadError(t *testing.T) {
	_, err := copyWithProgress(context.Background(), &bytes.Buffer{}, failingReader{}, 10, nil)

	assert.ErrorContains(t, err, "stream reset")
}
