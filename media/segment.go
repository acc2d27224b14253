package media

import (
	"fmt"
	"time"
)

// TimeSegment is a half-open window [Start, End) in milliseconds.
type TimeSegment struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (s TimeSegment) Duration() int64 { return s.End - s.Start }

// Validate checks 0 <= Start < End.
func (s TimeSegment) Validate() error {
	if s.Start < 0 {
		return Invalidf("segment start %dms is negative", s.Start)
	}
	if s.End <= s.Start {
		return Invalidf("segment end %dms must be after start %dms", s.End, s.Start)
	}
	return nil
}

// Within reports an out-of-bounds error when the segment ends after totalMs.
func (s TimeSegment) Within(totalMs int64) error {
	if s.End > totalMs {
		return Invalidf("segment out of bounds: end %dms exceeds media duration %dms", s.End, totalMs)
	}
	return nil
}

func (s TimeSegment) String() string {
	return fmt.Sprintf("[%s, %s)", Millis(s.Start), Millis(s.End))
}

// Millis converts a millisecond count to a time.Duration.
func Millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
