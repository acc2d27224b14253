package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"ffclip/media"
)

// Partition splits opts.Input into consecutive windows, one extract per
// window. Windows run one after another with a pause in between; a failing
// window is recorded and the rest still run.
func (e *Engine) Partition(ctx context.Context, opts media.PartitionOptions) media.Result {
	started := time.Now()

	if err := e.preflight([]string{opts.Input}, opts.OutputDir); err != nil {
		return media.Failure(started, err)
	}
	if err := opts.Encoding.Validate(); err != nil {
		return media.Failure(started, err)
	}
	meta, err := e.probe(ctx, opts.Input)
	if err != nil {
		return media.Failure(started, err)
	}
	segments, err := Segments(meta, opts.SplitBy, opts.Params)
	if err != nil {
		return media.Failure(started, err)
	}

	names := make([]string, len(segments))
	seen := make(map[string]struct{}, len(segments))
	for i := range segments {
		name := SegmentFileName(opts.NamePattern, opts.Input, i)
		if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
			return media.Failure(started, media.Invalidf("name pattern %q produces invalid file name %q", opts.NamePattern, name))
		}
		if _, dup := seen[name]; dup {
			return media.Failure(started, media.Invalidf("name pattern %q repeats file name %q at segment %d", opts.NamePattern, name, i+1))
		}
		seen[name] = struct{}{}
		names[i] = name
	}

	log := e.log.With().Str("input", opts.Input).Int("segments", len(segments)).Logger()
	log.Info().Str("split_by", string(opts.SplitBy)).Msg("partition started")

	var gap *rate.Limiter
	var outputs []string
	var errs error
	for i, seg := range segments {
		if i > 0 {
			if err := gap.Wait(ctx); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("partition interrupted before segment %d: %w", i+1, err))
				break
			}
		}

		out := filepath.Join(opts.OutputDir, names[i])
		err := e.extract(ctx, media.ExtractOptions{
			Input:    opts.Input,
			Output:   out,
			Segment:  seg,
			Encoding: opts.Encoding,
		}, meta)
		gap = e.pause()
		if err != nil {
			log.Warn().Err(err).Int("segment", i+1).Msg("segment failed")
			errs = multierr.Append(errs, fmt.Errorf("segment %d failed: %w", i+1, err))
			continue
		}

		outputs = append(outputs, out)
		info, err := os.Stat(out)
		switch {
		case err != nil:
			errs = multierr.Append(errs, fmt.Errorf("segment %d: cannot verify output: %w", i+1, err))
		case info.Size() == 0:
			errs = multierr.Append(errs, fmt.Errorf("segment %d produced an empty file", i+1))
		}
	}

	res := media.NewResult(started, outputs, nil)
	switch {
	case errs != nil && res.Success:
		res.Error = "partial failure: " + errs.Error()
	case errs != nil:
		res.Error = errs.Error()
	case !res.Success:
		res.Error = "all segments failed"
	}

	log.Info().
		Int("produced", len(outputs)).
		Int("errors", len(multierr.Errors(errs))).
		Dur("elapsed", time.Since(started)).
		Msg("partition finished")
	return res
}

// pause returns a drained limiter: its next Wait blocks for one full
// SEGMENT_PAUSE counted from now.
func (e *Engine) pause() *rate.Limiter {
	if e.cfg.SegmentPause <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	lim := rate.NewLimiter(rate.Every(e.cfg.SegmentPause), 1)
	lim.Allow()
	return lim
}
