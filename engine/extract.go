package engine

import (
	"context"
	"path/filepath"
	"time"

	"ffclip/media"
)

// Extract cuts opts.Segment out of opts.Input into opts.Output.
func (e *Engine) Extract(ctx context.Context, opts media.ExtractOptions) media.Result {
	started := time.Now()

	if opts.Output == "" {
		return media.Failure(started, media.Invalidf("output path is required"))
	}
	if err := e.preflight([]string{opts.Input}, filepath.Dir(opts.Output)); err != nil {
		return media.Failure(started, err)
	}
	meta, err := e.probe(ctx, opts.Input)
	if err != nil {
		return media.Failure(started, err)
	}
	if err := e.extract(ctx, opts, meta); err != nil {
		e.log.Warn().Err(err).Str("input", opts.Input).Msg("extract failed")
		return media.Failure(started, err)
	}

	e.log.Info().
		Str("input", opts.Input).
		Str("output", opts.Output).
		Stringer("segment", opts.Segment).
		Dur("elapsed", time.Since(started)).
		Msg("extract completed")
	return media.NewResult(started, []string{opts.Output}, nil)
}

// extract validates the window against already-probed metadata and runs a
// seek-then-limit transform.
func (e *Engine) extract(ctx context.Context, opts media.ExtractOptions, meta *media.Metadata) error {
	if err := opts.Segment.Validate(); err != nil {
		return err
	}
	if err := opts.Segment.Within(meta.DurationMillis()); err != nil {
		return err
	}
	if err := opts.Encoding.Validate(); err != nil {
		return err
	}

	return e.transform(ctx, &media.TransformSpec{
		Inputs:   []media.Input{{Path: opts.Input, Seek: media.Millis(opts.Segment.Start)}},
		Output:   opts.Output,
		Duration: media.Millis(opts.Segment.Duration()),
		Encoding: opts.Encoding,
	})
}
