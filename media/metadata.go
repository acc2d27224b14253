package media

import "math"

// Metadata is the probed, read-only description of a media file.
type Metadata struct {
	Duration  float64 `json:"duration"` // seconds
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"fps"`
	BitRate   int64   `json:"bitrate"` // bits per second
	Format    string  `json:"format"`
	Codec     string  `json:"codec"`
	Size      int64   `json:"size"` // bytes
	HasAudio  bool    `json:"hasAudio"`
}

func (m *Metadata) DurationMillis() int64 {
	return int64(math.Round(m.Duration * 1000))
}
