package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cover art first, then the real H.264 stream and an AAC track.
const sampleMP4 = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mjpeg",
      "codec_type": "video",
      "width": 600,
      "height": 900,
      "r_frame_rate": "90000/1",
      "disposition": { "default": 0, "attached_pic": 1 }
    },
    {
      "index": 1,
      "codec_name": "h264",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "r_frame_rate": "30000/1001",
      "disposition": { "default": 1, "attached_pic": 0 }
    },
    {
      "index": 2,
      "codec_name": "aac",
      "codec_type": "audio",
      "disposition": { "default": 1 }
    }
  ],
  "format": {
    "filename": "/media/clip.mp4",
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "duration": "12.345000",
    "size": "15432100",
    "bit_rate": "10000800"
  }
}`

const sampleAudioOnly = `{
  "streams": [
    { "index": 0, "codec_name": "mp3", "codec_type": "audio" }
  ],
  "format": { "format_name": "mp3", "duration": "200.0" }
}`

func TestParseProbe(t *testing.T) {
	meta, err := ParseProbe([]byte(sampleMP4))
	require.NoError(t, err)

	assert.InDelta(t, 12.345, meta.Duration, 1e-9)
	assert.Equal(t, int64(12345), meta.DurationMillis())
	assert.Equal(t, 1920, meta.Width)
	assert.Equal(t, 1080, meta.Height)
	assert.InDelta(t, 29.97, meta.FrameRate, 0.01)
	assert.Equal(t, int64(10000800), meta.BitRate)
	assert.Equal(t, "mov,mp4,m4a,3gp,3g2,mj2", meta.Format)
	assert.Equal(t, "h264", meta.Codec)
	assert.Equal(t, int64(15432100), meta.Size)
	assert.True(t, meta.HasAudio)
}

func TestParseProbe_NoVideo(t *testing.T) {
	_, err := ParseProbe([]byte(sampleAudioOnly))
	assert.ErrorIs(t, err, ErrNoVideoStream)
}

func TestParseProbe_BadJSON(t *testing.T) {
	_, err := ParseProbe([]byte(`{"streams": [`))
	assert.Error(t, err)
}

func TestParseRate(t *testing.T) {
	assert.Equal(t, 25.0, parseRate("25/1"))
	assert.Equal(t, 0.0, parseRate("0/0"))
	assert.Equal(t, 24.0, parseRate("24"))
	assert.Equal(t, 0.0, parseRate(""))
}
