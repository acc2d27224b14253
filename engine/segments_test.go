package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffclip/media"
)

func seg(start, end int64) media.TimeSegment { return media.TimeSegment{Start: start, End: end} }

func TestSegments_ByDuration(t *testing.T) {
	meta := &media.Metadata{Duration: 10}
	segs, err := Segments(meta, media.SplitByDuration, media.SplitParams{Duration: 3})
	require.NoError(t, err)
	assert.Equal(t, []media.TimeSegment{seg(0, 3000), seg(3000, 6000), seg(6000, 9000), seg(9000, 10000)}, segs)
}

func TestSegments_ByCount(t *testing.T) {
	meta := &media.Metadata{Duration: 10}
	segs, err := Segments(meta, media.SplitBySegments, media.SplitParams{SegmentCount: 3})
	require.NoError(t, err)
	assert.Equal(t, []media.TimeSegment{seg(0, 3333), seg(3333, 6667), seg(6667, 10000)}, segs)
}

func TestSegments_BySize(t *testing.T) {
	assert.Equal(t, int64(1049), SizeWindow(1, 8_000_000))

	meta := &media.Metadata{Duration: 10, BitRate: 8_000_000}
	segs, err := Segments(meta, media.SplitBySize, media.SplitParams{MaxSize: 1})
	require.NoError(t, err)
	require.Len(t, segs, 10)
	assert.Equal(t, seg(0, 1049), segs[0])
	assert.Equal(t, seg(1049, 2098), segs[1])
	assert.Equal(t, seg(9441, 10000), segs[9])
}

func TestSegments_ContiguousCoverage(t *testing.T) {
	meta := &media.Metadata{Duration: 7.777}
	for count := 1; count <= 12; count++ {
		segs, err := Segments(meta, media.SplitBySegments, media.SplitParams{SegmentCount: count})
		require.NoError(t, err)
		require.Len(t, segs, count)
		assert.Equal(t, int64(0), segs[0].Start)
		assert.Equal(t, int64(7777), segs[len(segs)-1].End)
		for i := 1; i < len(segs); i++ {
			assert.Equal(t, segs[i-1].End, segs[i].Start)
			assert.NoError(t, segs[i].Validate())
		}
	}
}

func TestSegments_InvalidParams(t *testing.T) {
	meta := &media.Metadata{Duration: 10}

	cases := []struct {
		name string
		by   media.SplitBy
		p    media.SplitParams
		meta *media.Metadata
	}{
		{"missing duration", media.SplitByDuration, media.SplitParams{}, meta},
		{"missing count", media.SplitBySegments, media.SplitParams{}, meta},
		{"missing size", media.SplitBySize, media.SplitParams{}, meta},
		{"unknown bit rate", media.SplitBySize, media.SplitParams{MaxSize: 1}, meta},
		{"unknown mode", media.SplitBy("frames"), media.SplitParams{Duration: 1}, meta},
		{"no duration", media.SplitByDuration, media.SplitParams{Duration: 1}, &media.Metadata{}},
		{"window rounds to zero", media.SplitByDuration, media.SplitParams{Duration: 0.0001}, meta},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Segments(tc.meta, tc.by, tc.p)
			assert.True(t, media.IsValidation(err), "got %v", err)
		})
	}
}

func TestSegmentFileName(t *testing.T) {
	assert.Equal(t, "clip_001.mp4", SegmentFileName("{name}_{index}.{ext}", "/media/clip.mp4", 0))
	assert.Equal(t, "segment_001.mp4", SegmentFileName("", "/media/clip.mp4", 0))
	assert.Equal(t, "segment_012.mkv", SegmentFileName("", "clip.mkv", 11))
	assert.Equal(t, "part-002-clip-002.mov", SegmentFileName("part-{index}-{name}-{index}.{ext}", "clip.mov", 1))
	assert.Equal(t, "segment_001", SegmentFileName("", "noext", 0))
}
