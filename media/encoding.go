package media

import "slices"

var (
	VideoCodecs    = []string{"libx264", "libx265", "libvpx-vp9", "libaom-av1"}
	AudioCodecs    = []string{"aac", "libmp3lame", "libopus", "libvorbis"}
	QualityPresets = []string{"ultrafast", "superfast", "veryfast", "faster", "fast", "medium", "slow", "slower", "veryslow"}

	InputFormats  = []string{"mp4", "avi", "mov", "mkv", "webm", "flv", "m4v", "3gp", "wmv"}
	OutputFormats = []string{"mp4", "avi", "mov", "mkv", "webm"}
)

// EncodingOptions are the re-encoding knobs shared by every operation kind.
// ExtraArgs are already-split encoder arguments appended before the output.
type EncodingOptions struct {
	VideoCodec string   `json:"videoCodec,omitempty"`
	AudioCodec string   `json:"audioCodec,omitempty"`
	Quality    string   `json:"quality,omitempty"`
	ExtraArgs  []string `json:"-"`
}

func (o EncodingOptions) IsZero() bool {
	return o.VideoCodec == "" && o.AudioCodec == "" && o.Quality == "" && len(o.ExtraArgs) == 0
}

func (o EncodingOptions) Validate() error {
	if o.VideoCodec != "" && !slices.Contains(VideoCodecs, o.VideoCodec) {
		return Invalidf("unsupported video codec %q", o.VideoCodec)
	}
	if o.AudioCodec != "" && !slices.Contains(AudioCodecs, o.AudioCodec) {
		return Invalidf("unsupported audio codec %q", o.AudioCodec)
	}
	if o.Quality != "" && !slices.Contains(QualityPresets, o.Quality) {
		return Invalidf("unknown quality preset %q", o.Quality)
	}
	return nil
}
