package media

import "time"

// Input is one backend input with its demuxer settings.
type Input struct {
	Path    string
	Seek    time.Duration // applied before the input, 0 = none
	Format  string        // forced demuxer, e.g. "concat"
	Options []string      // demuxer options placed before -i
}

// TransformSpec describes one backend invocation without tying it to a
// particular command line.
type TransformSpec struct {
	Inputs        []Input
	Output        string
	Duration      time.Duration // output duration limit, 0 = none
	StreamCopy    bool
	FilterComplex string
	Maps          []string
	NoAudio       bool
	Encoding      EncodingOptions
}
