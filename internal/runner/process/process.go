// Package process runs one external command with captured output and a
// hard wall-clock timeout.
package process

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	appErr "coderun/pkg/errors"
	"coderun/pkg/utils/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultOutputLimitBytes = 1 << 20
	// reapGrace bounds how long abandoned pipes stay open after a kill.
	reapGrace = 2 * time.Second
	// drainGrace bounds how long output is read after the child exits.
	drainGrace = 500 * time.Millisecond
)

// Command describes one process to spawn.
// An empty Stdin is the same as no stdin; a zero Timeout uses the runner default.
type Command struct {
	Args    []string
	Stdin   string
	Timeout time.Duration
}

// Outcome is what a finished or killed process left behind.
type Outcome struct {
	Stdout    string
	Stderr    string
	TimedOut  bool
	ExitCode  int
	PID       int
	Duration  time.Duration
	Truncated bool
}

// Runner spawns external processes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Outcome, error)
}

// Config controls runner defaults.
type Config struct {
	Timeout          time.Duration `yaml:"timeout"`
	OutputLimitBytes int           `yaml:"outputLimitBytes"`
}

// LocalRunner runs commands directly on the host.
type LocalRunner struct {
	cfg Config
}

// NewRunner creates a host runner.
func NewRunner(cfg Config) *LocalRunner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.OutputLimitBytes <= 0 {
		cfg.OutputLimitBytes = defaultOutputLimitBytes
	}
	return &LocalRunner{cfg: cfg}
}

// Run spawns the command and waits for it or for the timeout, whichever
// comes first. The context only carries log fields; it does not cancel.
func (r *LocalRunner) Run(ctx context.Context, command Command) (Outcome, error) {
	if len(command.Args) == 0 || strings.TrimSpace(command.Args[0]) == "" {
		return Outcome{}, appErr.New(appErr.InvalidParams).WithMessage("command is empty")
	}
	timeout := command.Timeout
	if timeout <= 0 {
		timeout = r.cfg.Timeout
	}

	cmd := exec.Command(command.Args[0], command.Args[1:]...)
	setProcessGroup(cmd)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return Outcome{}, appErr.Wrapf(err, appErr.InternalServerError, "create stdout pipe failed")
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return Outcome{}, appErr.Wrapf(err, appErr.InternalServerError, "create stderr pipe failed")
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	var stdinPipe io.WriteCloser
	if command.Stdin != "" {
		if stdinPipe, err = cmd.StdinPipe(); err != nil {
			closeAll(stdoutR, stdoutW, stderrR, stderrW)
			return Outcome{}, appErr.Wrapf(err, appErr.InternalServerError, "create stdin pipe failed")
		}
	}

	start := time.Now()
	err = cmd.Start()
	// The child holds its own copies of the write ends.
	closeAll(stdoutW, stderrW)
	if err != nil {
		closeAll(stdoutR, stderrR)
		return Outcome{}, appErr.Wrapf(err, appErr.ToolchainUnavailable, "start %s failed", command.Args[0]).
			WithDetail("command", command.Args[0])
	}
	pid := cmd.Process.Pid
	logger.Debug(ctx, "process started",
		zap.Strings("args", command.Args),
		zap.Int("pid", pid),
		zap.Duration("timeout", timeout),
	)

	stdout := newLimitedBuffer(r.cfg.OutputLimitBytes)
	stderr := newLimitedBuffer(r.cfg.OutputLimitBytes)

	// Both pipes are drained while the child runs, or a chatty child blocks forever.
	var drains errgroup.Group
	drains.Go(func() error { return drain(stdoutR, stdout) })
	drains.Go(func() error { return drain(stderrR, stderr) })
	var drainErr error
	drained := make(chan struct{})
	go func() {
		drainErr = drains.Wait()
		close(drained)
	}()

	if stdinPipe != nil {
		go writeStdin(ctx, stdinPipe, command.Stdin)
	}

	// Output goes to *os.File pipes, so Wait returns as soon as the child
	// exits even if a descendant still holds the write ends.
	var waitErr error
	exited := make(chan struct{})
	go func() {
		waitErr = cmd.Wait()
		close(exited)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-exited:
	case <-timer.C:
		if err := killProcessGroup(cmd); err != nil {
			logger.Warn(ctx, "kill process group failed", zap.Int("pid", pid), zap.Error(err))
		}
		go abandon(drained, stdoutR, stderrR)
		logger.Info(ctx, "process timed out", zap.Int("pid", pid), zap.Duration("timeout", timeout))
		return Outcome{
			Stdout:    stdout.String(),
			Stderr:    stderr.String(),
			TimedOut:  true,
			ExitCode:  -1,
			PID:       pid,
			Duration:  time.Since(start),
			Truncated: stdout.Truncated() || stderr.Truncated(),
		}, nil
	}
	duration := time.Since(start)

	// Anything the child left behind in its group dies with it.
	if err := killProcessGroup(cmd); err != nil {
		logger.Warn(ctx, "kill leftover processes failed", zap.Int("pid", pid), zap.Error(err))
	}
	drainTimer := time.NewTimer(drainGrace)
	select {
	case <-drained:
	case <-drainTimer.C:
		logger.Warn(ctx, "output still open after exit", zap.Int("pid", pid))
		closeAll(stdoutR, stderrR)
		<-drained
	}
	drainTimer.Stop()
	closeAll(stdoutR, stderrR)

	if drainErr != nil {
		logger.Warn(ctx, "drain process output failed", zap.Int("pid", pid), zap.Error(drainErr))
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		logger.Warn(ctx, "wait process failed", zap.Int("pid", pid), zap.Error(waitErr))
	}

	outcome := Outcome{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode(cmd, waitErr),
		PID:       pid,
		Duration:  duration,
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}
	logger.Debug(ctx, "process finished",
		zap.Int("pid", pid),
		zap.Int("exit_code", outcome.ExitCode),
		zap.Duration("duration", outcome.Duration),
	)
	return outcome, nil
}

func drain(r io.Reader, w io.Writer) error {
	_, err := io.Copy(w, r)
	if err == nil || errors.Is(err, fs.ErrClosed) {
		return nil
	}
	return err
}

func writeStdin(ctx context.Context, w io.WriteCloser, input string) {
	_, err := io.WriteString(w, input)
	closeErr := w.Close()
	if err == nil {
		err = closeErr
	}
	// A child that exits without reading its input is not a failure.
	if err != nil && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, fs.ErrClosed) {
		logger.Warn(ctx, "write process stdin failed", zap.Error(err))
	}
}

// abandon releases the read ends if a descendant outside the killed group
// still holds the pipes open.
func abandon(drained <-chan struct{}, closers ...io.Closer) {
	select {
	case <-drained:
	case <-time.After(reapGrace):
	}
	closeAll(closers...)
}

func closeAll(closers ...io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if waitErr != nil {
		return -1
	}
	return 0
}
