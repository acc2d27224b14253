package engine

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"ffclip/media"
)

// Segments computes the ordered partition windows for meta.
func Segments(meta *media.Metadata, by media.SplitBy, p media.SplitParams) ([]media.TimeSegment, error) {
	total := meta.DurationMillis()
	if total <= 0 {
		return nil, media.Invalidf("media reports no duration")
	}

	switch by {
	case media.SplitByDuration:
		if p.Duration <= 0 {
			return nil, media.Invalidf("split by duration requires a positive duration")
		}
		return tile(total, int64(math.Round(p.Duration*1000)))
	case media.SplitBySegments:
		if p.SegmentCount <= 0 {
			return nil, media.Invalidf("split by segments requires a positive segment count")
		}
		return EqualSegments(total, p.SegmentCount), nil
	case media.SplitBySize:
		if p.MaxSize <= 0 {
			return nil, media.Invalidf("split by size requires a positive max size")
		}
		if meta.BitRate <= 0 {
			return nil, media.Invalidf("split by size requires a known bit rate")
		}
		return tile(total, SizeWindow(p.MaxSize, meta.BitRate))
	default:
		return nil, media.Invalidf("unknown split mode %q", by)
	}
}

func tile(total, window int64) ([]media.TimeSegment, error) {
	if window <= 0 {
		return nil, media.Invalidf("segment window rounds to zero milliseconds")
	}
	return TileSegments(total, window), nil
}

// TileSegments covers [0, total) with fixed windows, clamping the last one.
func TileSegments(total, window int64) []media.TimeSegment {
	segs := make([]media.TimeSegment, 0, total/window+1)
	for start := int64(0); start < total; start += window {
		segs = append(segs, media.TimeSegment{Start: start, End: min(start+window, total)})
	}
	return segs
}

// EqualSegments divides [0, total) into count windows of total/count,
// rounding each boundary to the nearest millisecond.
func EqualSegments(total int64, count int) []media.TimeSegment {
	length := float64(total) / float64(count)
	segs := make([]media.TimeSegment, 0, count)
	for i := 0; i < count; i++ {
		start := int64(math.Round(float64(i) * length))
		end := min(int64(math.Round(float64(i+1)*length)), total)
		if end <= start {
			continue
		}
		segs = append(segs, media.TimeSegment{Start: start, End: end})
	}
	return segs
}

// SizeWindow estimates how many milliseconds of a bitRate stream fit in
// maxSizeMB megabytes.
func SizeWindow(maxSizeMB float64, bitRate int64) int64 {
	bytes := maxSizeMB * 1024 * 1024
	return int64(math.Round(bytes * 8 / float64(bitRate) * 1000))
}

// SegmentFileName names the index-th (0-based) partition output. Indices are
// rendered 1-based with three digits.
func SegmentFileName(pattern, inputPath string, index int) string {
	ext := filepath.Ext(inputPath)
	num := fmt.Sprintf("%03d", index+1)
	if pattern == "" {
		return "segment_" + num + ext
	}
	name := strings.TrimSuffix(filepath.Base(inputPath), ext)
	return strings.NewReplacer(
		"{name}", name,
		"{index}", num,
		"{ext}", strings.TrimPrefix(ext, "."),
	).Replace(pattern)
}
