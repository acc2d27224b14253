package media

// Kind names an operation family.
type Kind string

const (
	KindExtract     Kind = "extract"
	KindConcatenate Kind = "concatenate"
	KindPartition   Kind = "partition"
)

// Operation is one of ExtractOptions, ConcatOptions or PartitionOptions.
type Operation interface {
	Kind() Kind
	isOperation()
}

// Resolution is a target frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r *Resolution) Valid() bool {
	return r != nil && r.Width > 0 && r.Height > 0
}

type ExtractOptions struct {
	Input    string          `json:"inputPath"`
	Output   string          `json:"outputPath"`
	Segment  TimeSegment     `json:"timeSegment"`
	Encoding EncodingOptions `json:"encoding"`
}

type ConcatOptions struct {
	Inputs     []string        `json:"inputPaths"`
	Output     string          `json:"outputPath"`
	Encoding   EncodingOptions `json:"encoding"`
	Resolution *Resolution     `json:"resolution,omitempty"`
	FPS        float64         `json:"fps,omitempty"`
}

// Reencode reports whether the filter-graph normalization path is required.
func (o ConcatOptions) Reencode() bool {
	return !o.Encoding.IsZero() || o.Resolution != nil || o.FPS > 0
}

// SplitBy selects how Partition computes its windows.
type SplitBy string

const (
	SplitByDuration SplitBy = "duration"
	SplitBySegments SplitBy = "segments"
	SplitBySize     SplitBy = "size"
)

// SplitParams carries the parameter matching SplitBy; the others are ignored.
type SplitParams struct {
	Duration     float64 `json:"duration,omitempty"`     // seconds
	SegmentCount int     `json:"segmentCount,omitempty"` // number of windows
	MaxSize      float64 `json:"maxSize,omitempty"`      // megabytes
}

type PartitionOptions struct {
	Input       string          `json:"inputPath"`
	OutputDir   string          `json:"outputDir"`
	SplitBy     SplitBy         `json:"splitBy"`
	Params      SplitParams     `json:"params"`
	NamePattern string          `json:"namePattern,omitempty"`
	Encoding    EncodingOptions `json:"encoding"`
}

func (ExtractOptions) Kind() Kind   { return KindExtract }
func (ConcatOptions) Kind() Kind    { return KindConcatenate }
func (PartitionOptions) Kind() Kind { return KindPartition }

func (ExtractOptions) isOperation()   {}
func (ConcatOptions) isOperation()    {}
func (PartitionOptions) isOperation() {}
