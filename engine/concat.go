package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"ffclip/media"
)

const (
	defaultVideoCodec = "libx264"
	defaultAudioCodec = "aac"
)

// Concatenate joins opts.Inputs in order. Without re-encoding parameters the
// inputs are stream-copied through a concat list; otherwise every input is
// scaled and padded to a common frame and re-encoded through a filter graph.
func (e *Engine) Concatenate(ctx context.Context, opts media.ConcatOptions) media.Result {
	started := time.Now()

	if len(opts.Inputs) < 2 {
		return media.Failure(started, media.Invalidf("concatenation needs at least two inputs, got %d", len(opts.Inputs)))
	}
	if opts.Output == "" {
		return media.Failure(started, media.Invalidf("output path is required"))
	}
	if err := e.preflight(opts.Inputs, filepath.Dir(opts.Output)); err != nil {
		return media.Failure(started, err)
	}
	if err := opts.Encoding.Validate(); err != nil {
		return media.Failure(started, err)
	}
	if opts.Resolution != nil && !opts.Resolution.Valid() {
		return media.Failure(started, media.Invalidf("invalid target resolution %dx%d", opts.Resolution.Width, opts.Resolution.Height))
	}
	if opts.FPS < 0 {
		return media.Failure(started, media.Invalidf("invalid target frame rate %v", opts.FPS))
	}

	var err error
	strategy := "stream-copy"
	if opts.Reencode() {
		strategy = "normalize"
		err = e.concatNormalized(ctx, opts)
	} else {
		err = e.concatCopy(ctx, opts)
	}
	if err != nil {
		e.log.Warn().Err(err).Str("strategy", strategy).Int("inputs", len(opts.Inputs)).Msg("concatenate failed")
		return media.Failure(started, err)
	}

	e.log.Info().
		Str("strategy", strategy).
		Int("inputs", len(opts.Inputs)).
		Str("output", opts.Output).
		Dur("elapsed", time.Since(started)).
		Msg("concatenate completed")
	return media.NewResult(started, []string{opts.Output}, nil)
}

func (e *Engine) concatCopy(ctx context.Context, opts media.ConcatOptions) error {
	list, err := concatList(opts.Inputs)
	if err != nil {
		return err
	}
	listPath := filepath.Join(filepath.Dir(opts.Output), "concat_"+shortuuid.New()+".txt")
	if err := os.WriteFile(listPath, []byte(list), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer func() {
		if err := os.Remove(listPath); err != nil && !os.IsNotExist(err) {
			e.log.Warn().Err(err).Str("path", listPath).Msg("could not remove concat list")
		}
	}()

	return e.transform(ctx, &media.TransformSpec{
		Inputs: []media.Input{{
			Path:    listPath,
			Format:  "concat",
			Options: []string{"-safe", "0"},
		}},
		Output:     opts.Output,
		StreamCopy: true,
	})
}

func (e *Engine) concatNormalized(ctx context.Context, opts media.ConcatOptions) error {
	withAudio := true
	var first *media.Metadata
	inputs := make([]media.Input, 0, len(opts.Inputs))
	for i, in := range opts.Inputs {
		meta, err := e.probe(ctx, in)
		if err != nil {
			return err
		}
		if i == 0 {
			first = meta
		}
		withAudio = withAudio && meta.HasAudio
		inputs = append(inputs, media.Input{Path: in})
	}

	target := opts.Resolution
	if !target.Valid() {
		target = &media.Resolution{Width: first.Width, Height: first.Height}
		if !target.Valid() {
			return media.Invalidf("cannot determine target resolution from %s", opts.Inputs[0])
		}
	}

	enc := opts.Encoding
	if enc.VideoCodec == "" {
		enc.VideoCodec = defaultVideoCodec
	}
	if enc.AudioCodec == "" && withAudio {
		enc.AudioCodec = defaultAudioCodec
	}

	graph, maps := normalizeGraph(len(inputs), *target, opts.FPS, withAudio)
	return e.transform(ctx, &media.TransformSpec{
		Inputs:        inputs,
		Output:        opts.Output,
		FilterComplex: graph,
		Maps:          maps,
		NoAudio:       !withAudio,
		Encoding:      enc,
	})
}

// concatList renders the concat demuxer file list with absolute paths.
func concatList(inputs []string) (string, error) {
	var b strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", in, err)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String(), nil
}

// normalizeGraph scales and pads every input to res (letterboxing as needed),
// optionally resamples the frame rate, and concatenates the results.
func normalizeGraph(n int, res media.Resolution, fps float64, withAudio bool) (string, []string) {
	chains := make([]string, 0, 2*n+1)
	var pads strings.Builder
	for i := 0; i < n; i++ {
		v := fmt.Sprintf("[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
			i, res.Width, res.Height, res.Width, res.Height)
		if fps > 0 {
			v += ",fps=" + strconv.FormatFloat(fps, 'f', -1, 64)
		}
		chains = append(chains, v+fmt.Sprintf("[v%d]", i))
		fmt.Fprintf(&pads, "[v%d]", i)

		if withAudio {
			chains = append(chains, fmt.Sprintf("[%d:a]aresample=48000[a%d]", i, i))
			fmt.Fprintf(&pads, "[a%d]", i)
		}
	}

	audio := 0
	maps := []string{"[outv]"}
	outs := "[outv]"
	if withAudio {
		audio = 1
		maps = append(maps, "[outa]")
		outs += "[outa]"
	}
	chains = append(chains, fmt.Sprintf("%sconcat=n=%d:v=1:a=%d%s", pads.String(), n, audio, outs))
	return strings.Join(chains, ";"), maps
}
