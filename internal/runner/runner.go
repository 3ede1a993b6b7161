package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"

	"usbflash/internal/apperr"
	"usbflash/internal/command"
)

var (
	ErrWorkdirNotFound = errors.New("workdir does not exist in expected location")
	ErrInterrupted     = errors.New("interrupted by user")
	ErrChildFailed     = errors.New("running ESP script failed")
)

// Runner supervises one flashing command at a time: it spawns the command
// through the shell, streams its output line by line, and tears the whole
// process group down when the run is cancelled.
type Runner struct {
	// Out receives the child's combined output as it arrives.
	Out io.Writer

	mu  sync.Mutex // serializes writes to Out from both pipes
	log *slog.Logger
}

func New(out io.Writer, log *slog.Logger) *Runner {
	return &Runner{
		Out: out,
		log: log,
	}
}

// Run executes spec through the shell inside workdir. Cancelling ctx sends
// SIGTERM to the child's entire process group, flashusb.sh spawns helpers
// of its own and killing just the direct child would orphan them.
func (r *Runner) Run(ctx context.Context, spec command.Spec, workdir string) error {
	if _, err := os.Stat(workdir); err != nil {
		return apperr.Errorf(apperr.ConfigError,
			"%w '%s', required by '%s'", ErrWorkdirNotFound, workdir, spec.String())
	}

	r.log.Debug("running command", "cmd", spec.String(), "workdir", workdir)

	cmd := exec.Command("sh", "-c", spec.String())
	cmd.Dir = workdir
	// A fresh process group makes the child and its subtree one kill target.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return apperr.Errorf(apperr.RuntimeError, "failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return apperr.Errorf(apperr.RuntimeError, "failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return apperr.Errorf(apperr.RuntimeError, "failed to start command: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		r.stream(stdout)
	}()

	go func() {
		defer wg.Done()
		r.stream(stderr)
	}()

	// Wait may only run after both pipes are drained, it closes them.
	waitCh := make(chan error, 1)
	go func() {
		wg.Wait()
		waitCh <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		r.killGroup(cmd.Process.Pid)
		<-waitCh
		return apperr.Wrap(apperr.RuntimeError, ErrInterrupted)

	case err := <-waitCh:
		if err != nil {
			return apperr.Errorf(apperr.RuntimeError,
				"%w, inspect output and logs in %s", ErrChildFailed, filepath.Join(workdir, "builder.log"))
		}
	}

	r.log.Debug("command finished", "cmd", spec.String())

	return nil
}

// stream drains pipe to Out with readline granularity. ReadString has no
// line-length cap, so newline-free output (curl/dd style progress meters)
// keeps draining instead of wedging the child on a full pipe. Chunks are
// written verbatim, framing stays the child's.
func (r *Runner) stream(pipe io.Reader) {
	reader := bufio.NewReader(pipe)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			r.mu.Lock()
			fmt.Fprint(r.Out, line)
			r.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (r *Runner) killGroup(pid int) {
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		pgid = pid
	}

	r.log.Debug("terminating process group", "pgid", pgid)

	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		r.log.Warn("failed to signal process group", "pgid", pgid, "error", err)
	}
}
