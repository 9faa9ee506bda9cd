package proc

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Request describes one external invocation.
type Request struct {
	Path string
	Args []string
	Dir  string
	Env  []string  // full child environment; nil inherits the driver's
	Out  io.Writer // stdout; nil discards
}

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, req Request, logger *slog.Logger) error
}

// ExecRunner spawns real processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, req Request, logger *slog.Logger) error {
	start := time.Now()

	cmdLine := strings.Join(append([]string{req.Path}, req.Args...), " ")
	logger.Debug("running command", "cmd_line", cmdLine)

	cmd := exec.CommandContext(ctx, req.Path, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = req.Env
	// keep the last 8KB of stderr for the failure log
	errTail := newTailWriter(stderrTail)
	if req.Out != nil {
		cmd.Stdout = req.Out
	}
	cmd.Stderr = errTail

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		logger.Error("exec failed",
			"cmd", req.Path,
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", errTail.String(),
		)
	} else {
		logger.Debug("exec ok",
			"cmd", req.Path,
			"args", strings.Join(req.Args, " "),
			"duration_ms", dur.Milliseconds(),
			"stderr_bytes", errTail.Total(),
		)
	}
	return err
}

// Environ returns the driver's environment with dir prepended to the
// search-path variable key. The driver's own environment is left untouched.
func Environ(key, dir string) []string {
	return PrependPath(os.Environ(), key, dir)
}

// PrependPath returns a copy of env where key is set to dir followed by its
// previous value, if any.
func PrependPath(env []string, key, dir string) []string {
	out := make([]string, 0, len(env)+1)
	prefix := key + "="
	value := dir
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			if old := strings.TrimPrefix(kv, prefix); old != "" {
				value = dir + ":" + old
			}
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix+value)
}

const stderrTail = 8 << 10

// tailWriter keeps only the last max bytes written to it.
type tailWriter struct {
	max   int
	buf   []byte
	total int64
}

func newTailWriter(max int) *tailWriter {
	return &tailWriter{max: max, buf: make([]byte, 0, max)}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	w.total += int64(n)
	if n >= w.max {
		w.buf = append(w.buf[:0], p[n-w.max:]...)
		return n, nil
	}
	if over := len(w.buf) + n - w.max; over > 0 {
		w.buf = append(w.buf[:0], w.buf[over:]...)
	}
	w.buf = append(w.buf, p...)
	return n, nil
}

// Total is the number of bytes written, kept or not.
func (w *tailWriter) Total() int64 { return w.total }

func (w *tailWriter) String() string {
	if w.total > int64(len(w.buf)) {
		return "(truncated)..." + string(w.buf)
	}
	return string(w.buf)
}
