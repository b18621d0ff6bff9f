package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds one report generator run.
const DefaultTimeout = 10 * time.Minute

// Invoker runs the report generator over a set of log files.
type Invoker interface {
	Invoke(ctx context.Context, paths []string) (*Result, error)
}

// Result describes one generator run.
type Result struct {
	Command  []string
	Output   string
	ExitCode int
	Duration time.Duration
}

// ExecInvoker runs an external command with the log paths appended as
// arguments. Stdout and stderr are captured together.
type ExecInvoker struct {
	command []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecInvoker creates an invoker for command (argv, at least one element).
// timeout <= 0 means DefaultTimeout. If logger is nil, a no-op logger is used.
func NewExecInvoker(command []string, timeout time.Duration, logger *slog.Logger) (*ExecInvoker, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, errors.New("report: empty generator command")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ExecInvoker{
		command: append([]string(nil), command...),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// SelfCommand returns the argv that runs this executable's built-in
// generator.
func SelfCommand() ([]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("report: locate executable: %w", err)
	}
	return []string{exe, "-report"}, nil
}

// Command returns the configured argv.
func (e *ExecInvoker) Command() []string {
	return append([]string(nil), e.command...)
}

// Invoke runs the command and waits for it. A non-zero exit, a launch
// failure or a timeout is an error; the returned Result still carries
// whatever output was captured.
func (e *ExecInvoker) Invoke(ctx context.Context, paths []string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	argv := append(e.Command(), paths...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// Grandchildren may hold the output pipe open after the kill.
	cmd.WaitDelay = 2 * time.Second

	e.logger.Info("running report generator", "command", argv[0], "files", len(paths))

	start := time.Now()
	out, err := cmd.CombinedOutput()
	res := &Result{
		Command:  argv,
		Output:   string(out),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return res, fmt.Errorf("report: generator timed out after %s: %w", e.timeout, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, fmt.Errorf("report: generator exited with status %d: %w", res.ExitCode, err)
		}
		return res, fmt.Errorf("report: run generator: %w", err)
	}
	return res, nil
}
