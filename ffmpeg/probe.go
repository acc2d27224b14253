package ffmpeg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ffclip/media"
)

var ErrNoVideoStream = errors.New("no video stream found")

// ParseProbe converts raw ffprobe JSON output into media metadata.
// Exported for testing without a real ffprobe binary.
func ParseProbe(data []byte) (*media.Metadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	var video *ffprobeStream
	hasAudio := false
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			if video == nil && s.Disposition["attached_pic"] != 1 {
				video = s
			}
		case "audio":
			hasAudio = true
		}
	}
	if video == nil {
		return nil, ErrNoVideoStream
	}

	return &media.Metadata{
		Duration:  parseFloat(raw.Format.Duration),
		Width:     video.Width,
		Height:    video.Height,
		FrameRate: parseRate(video.RFrameRate),
		BitRate:   parseInt64(raw.Format.BitRate),
		Format:    raw.Format.FormatName,
		Codec:     video.CodecName,
		Size:      parseInt64(raw.Format.Size),
		HasAudio:  hasAudio,
	}, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecName   string         `json:"codec_name"`
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	RFrameRate  string         `json:"r_frame_rate"`
	Disposition map[string]int `json:"disposition"`
}

// parseRate turns "30000/1001" into 29.97; malformed or zero denominators give 0.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return parseFloat(num)
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return parseFloat(num) / d
}

// ffprobe returns numbers as strings
func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
