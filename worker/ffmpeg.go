package worker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"clipforge/config"
	"clipforge/logger"
	"clipforge/models"
)

// ErrRenderTimeout marks a render that exceeded the configured deadline and
// was killed.
var ErrRenderTimeout = errors.New("render timed out")

// stderrTailLines bounds how much diagnostic output is kept for error
// messages; the stream itself is consumed incrementally and never buffered
// whole.
const stderrTailLines = 20

// runEngine spawns the compositing engine with the compiled arguments plus
// the output path, consumes its diagnostic stream for progress, and waits
// for exit. Progress persistence is best-effort: a failed write is logged
// and ignored so a flaky status store never kills a healthy render.
func (o *Orchestrator) runEngine(ctx context.Context, job *models.ExportJob, args []string, outputPath string) error {
	runCtx := ctx
	timeout := config.GetRenderTimeout()
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fullArgs := append(append([]string{}, args...), outputPath)
	cmd := exec.CommandContext(runCtx, config.GetFFmpegPath(), fullArgs...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine diagnostic stream: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to spawn engine: %w", err)
	}

	var tail []string
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanStatusLines)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
		if elapsed, ok := ParseElapsed(line); ok {
			percent := ProgressPercent(elapsed, job.Duration)
			if err := o.jobs.UpdateProgress(ctx, job.ID, percent); err != nil {
				logger.Warnf("Failed to persist progress for job %s: %v", job.ID, err)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w after %s", ErrRenderTimeout, timeout)
		}
		return fmt.Errorf("engine failed: %v: %s", err, strings.Join(tail, " | "))
	}
	return nil
}

// scanStatusLines splits on \n or \r: the engine rewrites its status line
// in place with carriage returns, so plain line scanning would starve the
// progress parser until exit.
func scanStatusLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
