// Package engine turns operation requests into media backend invocations.
//
// Every operation runs the same pre-flight (inputs exist and fit the size
// limit, output directory exists), then probes, validates and transforms.
// Failures never escape as panics or bare errors: each public operation
// returns a media.Result.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"ffclip/config"
	"ffclip/media"
)

// Backend probes and transforms media files. Cancelling ctx aborts an
// in-flight transform.
type Backend interface {
	Probe(ctx context.Context, path string) (*media.Metadata, error)
	Transform(ctx context.Context, spec *media.TransformSpec) error
}

type Engine struct {
	cfg     *config.Config
	backend Backend
	log     zerolog.Logger
}

func New(cfg *config.Config, backend Backend, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		backend: backend,
		log:     logger.With().Str("component", "engine").Logger(),
	}
}

// Execute runs op and reports its outcome.
func (e *Engine) Execute(ctx context.Context, op media.Operation) media.Result {
	switch o := op.(type) {
	case media.ExtractOptions:
		return e.Extract(ctx, o)
	case media.ConcatOptions:
		return e.Concatenate(ctx, o)
	case media.PartitionOptions:
		return e.Partition(ctx, o)
	default:
		return media.Failure(time.Now(), media.Invalidf("unknown operation kind %T", op))
	}
}

// Probe validates path and returns its metadata.
func (e *Engine) Probe(ctx context.Context, path string) (*media.Metadata, error) {
	if err := e.checkInput(path); err != nil {
		return nil, err
	}
	return e.probe(ctx, path)
}

func (e *Engine) preflight(inputs []string, outputDir string) error {
	for _, in := range inputs {
		if err := e.checkInput(in); err != nil {
			return err
		}
	}
	if outputDir == "" {
		return media.Invalidf("output location is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", outputDir, err)
	}
	return nil
}

func (e *Engine) checkInput(path string) error {
	if path == "" {
		return media.Invalidf("input path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return media.Invalidf("input file does not exist: %s", path)
	}
	if info.IsDir() {
		return media.Invalidf("input is a directory: %s", path)
	}
	if e.cfg.MaxInputSize > 0 && info.Size() > e.cfg.MaxInputSize {
		return media.Invalidf("input file %s is %d bytes, limit is %d", path, info.Size(), e.cfg.MaxInputSize)
	}
	return nil
}

func (e *Engine) probe(ctx context.Context, path string) (*media.Metadata, error) {
	meta, err := e.backend.Probe(ctx, path)
	if err != nil {
		return nil, &media.BackendError{Op: "probe " + filepath.Base(path), Err: err}
	}
	return meta, nil
}

func (e *Engine) transform(ctx context.Context, spec *media.TransformSpec) error {
	if err := e.backend.Transform(ctx, spec); err != nil {
		return &media.BackendError{Op: "transform " + filepath.Base(spec.Output), Err: err}
	}
	return nil
}
