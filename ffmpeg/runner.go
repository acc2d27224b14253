package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"ffclip/config"
	"ffclip/media"
)

// stderrTail bounds how much ffmpeg output is carried in an error.
const stderrTail = 600

// Runner is the ffmpeg/ffprobe backed media backend.
type Runner struct {
	cfg *config.Config
	log zerolog.Logger
}

func NewRunner(cfg *config.Config, logger zerolog.Logger) (*Runner, error) {
	// Ensure ffmpeg and ffprobe are executable
	if _, err := exec.LookPath(cfg.FFBin); err != nil {
		return nil, fmt.Errorf("ffmpeg binary not found or not in PATH: %s", cfg.FFBin)
	}
	if _, err := exec.LookPath(cfg.FFProbeBin); err != nil {
		return nil, fmt.Errorf("ffprobe binary not found or not in PATH: %s", cfg.FFProbeBin)
	}
	return &Runner{
		cfg: cfg,
		log: logger.With().Str("component", "ffmpeg").Logger(),
	}, nil
}

// Probe runs a single ffprobe JSON call against path.
func (r *Runner) Probe(ctx context.Context, path string) (*media.Metadata, error) {
	cmd := exec.CommandContext(ctx, r.cfg.FFProbeBin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseProbe(out)
}

// Transform executes one ffmpeg invocation described by spec. Cancelling ctx
// kills the process; a partial output file is removed on any failure.
func (r *Runner) Transform(ctx context.Context, spec *media.TransformSpec) error {
	if r.cfg.ThrottleEnable {
		if err := r.checkResources(filepath.Dir(spec.Output)); err != nil {
			return fmt.Errorf("insufficient system resources: %w", err)
		}
	}

	if r.cfg.FFTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.FFTimeout)
		defer cancel()
	}

	args := BuildArgs(spec)
	cmd := exec.CommandContext(ctx, r.cfg.FFBin, args...)
	cmd.WaitDelay = 5 * time.Second
	var outputBuf bytes.Buffer
	cmd.Stdout = &outputBuf
	cmd.Stderr = &outputBuf

	r.log.Debug().Str("cmd", cmd.Path+" "+strings.Join(args, " ")).Msg("executing")

	started := time.Now()
	err := cmd.Run()
	if err != nil {
		os.Remove(spec.Output)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg aborted: %w", ctxErr)
		}
		return fmt.Errorf("ffmpeg execution failed: %w: %s", err, tail(outputBuf.String(), stderrTail))
	}

	r.log.Debug().Str("output", spec.Output).Dur("elapsed", time.Since(started)).Msg("ffmpeg finished")
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// checkResources verifies that the system has enough free resources to start a new job.
func (r *Runner) checkResources(dir string) error {
	// CPU
	p, err := cpu.Percent(time.Second, false)
	if err != nil {
		r.log.Warn().Err(err).Msg("could not get CPU usage")
	} else if len(p) > 0 && p[0] > (100.0-r.cfg.ThrottleCPU) {
		return fmt.Errorf("not enough idle CPU. Current usage: %.2f%%, Idle threshold: %.2f%%", p[0], r.cfg.ThrottleCPU)
	}

	// Memory
	vm, err := mem.VirtualMemory()
	if err != nil {
		r.log.Warn().Err(err).Msg("could not get memory usage")
	} else if vm.Available < uint64(r.cfg.ThrottleFreeMem) {
		return fmt.Errorf("not enough free memory. Available: %d, Required: %d", vm.Available, r.cfg.ThrottleFreeMem)
	}

	// Disk
	d, err := disk.Usage(dir)
	if err != nil {
		r.log.Warn().Err(err).Str("dir", dir).Msg("could not get disk usage")
	} else if d.Free < uint64(r.cfg.ThrottleFreeDisk) {
		return fmt.Errorf("not enough free disk space. Available: %d, Required: %d", d.Free, r.cfg.ThrottleFreeDisk)
	}
	return nil
}
