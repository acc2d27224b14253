package media

import "time"

// Result is the outcome of one operation. A result may carry output paths and
// an error at the same time when only part of the work succeeded.
type Result struct {
	Success     bool     `json:"success"`
	OutputPaths []string `json:"outputPaths"`
	ElapsedMs   int64    `json:"elapsedMs"`
	Error       string   `json:"error,omitempty"`
}

// NewResult builds a result from the produced paths and the terminal error.
func NewResult(started time.Time, outputs []string, err error) Result {
	r := Result{
		Success:     err == nil && len(outputs) > 0,
		OutputPaths: outputs,
		ElapsedMs:   time.Since(started).Milliseconds(),
	}
	if r.OutputPaths == nil {
		r.OutputPaths = []string{}
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Failure is a result with no outputs.
func Failure(started time.Time, err error) Result {
	return NewResult(started, nil, err)
}
