package ffmpeg

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ffclip/media"
)

// containers that benefit from moving the moov atom to the front
var faststartExts = map[string]bool{".mp4": true, ".mov": true, ".m4v": true}

// BuildArgs constructs the ffmpeg argument slice (without the binary) for spec.
func BuildArgs(spec *media.TransformSpec) []string {
	args := make([]string, 0, 32)
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	for _, in := range spec.Inputs {
		if in.Format != "" {
			args = append(args, "-f", in.Format)
		}
		args = append(args, in.Options...)
		if in.Seek > 0 {
			args = append(args, "-ss", seconds(in.Seek))
		}
		args = append(args, "-i", in.Path)
	}

	if spec.FilterComplex != "" {
		args = append(args, "-filter_complex", spec.FilterComplex)
	}
	for _, m := range spec.Maps {
		args = append(args, "-map", m)
	}
	if spec.Duration > 0 {
		args = append(args, "-t", seconds(spec.Duration))
	}

	if spec.StreamCopy {
		args = append(args, "-c", "copy")
	} else {
		enc := spec.Encoding
		if enc.VideoCodec != "" {
			args = append(args, "-c:v", enc.VideoCodec)
		}
		if spec.NoAudio {
			args = append(args, "-an")
		} else if enc.AudioCodec != "" {
			args = append(args, "-c:a", enc.AudioCodec)
		}
		if enc.Quality != "" {
			args = append(args, "-preset", enc.Quality)
		}
		args = append(args, "-pix_fmt", "yuv420p")
	}

	if faststartExts[strings.ToLower(filepath.Ext(spec.Output))] {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, spec.Encoding.ExtraArgs...)
	return append(args, spec.Output)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
