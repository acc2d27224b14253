package ffmpeg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ffclip/media"
)

func TestBuildArgs_Extract(t *testing.T) {
	spec := &media.TransformSpec{
		Inputs:   []media.Input{{Path: "/in/clip.mkv", Seek: 1500 * time.Millisecond}},
		Output:   "/out/cut.mp4",
		Duration: 2250 * time.Millisecond,
		Encoding: media.EncodingOptions{VideoCodec: "libx264", AudioCodec: "aac", Quality: "fast", ExtraArgs: []string{"-crf", "20"}},
	}

	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-ss", "1.500", "-i", "/in/clip.mkv",
		"-t", "2.250",
		"-c:v", "libx264", "-c:a", "aac", "-preset", "fast", "-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-crf", "20",
		"/out/cut.mp4",
	}, BuildArgs(spec))
}

func TestBuildArgs_StreamCopyConcat(t *testing.T) {
	spec := &media.TransformSpec{
		Inputs:     []media.Input{{Path: "/out/concat_x.txt", Format: "concat", Options: []string{"-safe", "0"}}},
		Output:     "/out/joined.mkv",
		StreamCopy: true,
	}

	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-f", "concat", "-safe", "0", "-i", "/out/concat_x.txt",
		"-c", "copy",
		"/out/joined.mkv",
	}, BuildArgs(spec))
}

func TestBuildArgs_FilterGraphWithoutAudio(t *testing.T) {
	spec := &media.TransformSpec{
		Inputs:        []media.Input{{Path: "a.mp4"}, {Path: "b.mp4"}},
		Output:        "joined.MP4",
		FilterComplex: "[0:v][1:v]concat=n=2:v=1:a=0[outv]",
		Maps:          []string{"[outv]"},
		NoAudio:       true,
		Encoding:      media.EncodingOptions{VideoCodec: "libx265", AudioCodec: "aac"},
	}

	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-i", "a.mp4", "-i", "b.mp4",
		"-filter_complex", "[0:v][1:v]concat=n=2:v=1:a=0[outv]",
		"-map", "[outv]",
		"-c:v", "libx265", "-an", "-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"joined.MP4",
	}, BuildArgs(spec))
}
