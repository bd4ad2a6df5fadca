// Package executor wraps "os/exec" so that toolchain probing commands can be
// logged and replaced in tests.
package executor

import (
	"bytes"
	"os/exec"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a module to inject using fx.
var Module = fx.Options(
	fx.Supply(
		fx.Annotate(NewExecutor(
			WithExecFunc(func(cmd *exec.Cmd) error { return cmd.Run() }),
		), fx.As(new(Executor))),
	),
)

// Executor runs external commands on behalf of the toolchain discovery layer.
type Executor interface {
	// Run logs and executes the Cmd, overriding its Stdout/Stderr to return their content.
	Run(cmd *exec.Cmd) (stdout string, stderr string, exitCode int, err error)
}

type executorImpl struct {
	logger *zap.SugaredLogger
	// execFunc may be nil to use executorImpl in tests.
	execFunc func(e *exec.Cmd) error
}

// Option defines options to customize executorImpl's behavior.
type Option func(*executorImpl)

// WithLogger overrides the default noop logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *executorImpl) {
		e.logger = logger
	}
}

// WithExecFunc provides customized exec behavior for executorImpl.
func WithExecFunc(execFunc func(e *exec.Cmd) error) Option {
	return func(e *executorImpl) {
		e.execFunc = execFunc
	}
}

// NewExecutor creates a new executorImpl with the given options applied.
func NewExecutor(opts ...Option) Executor {
	e := &executorImpl{
		logger:   zap.NewNop().Sugar(),
		execFunc: func(cmd *exec.Cmd) error { return cmd.Run() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run logs the Path/Args and calls execFunc if it is set.
func (e *executorImpl) Run(cmd *exec.Cmd) (stdout string, stderr string, exitCode int, err error) {
	e.logger.Infow("Exec",
		"Path", cmd.Path,
		"Dir", cmd.Dir,
		"Args", cmd.Args[1:], // First arg is always the command itself
	)

	if e.execFunc == nil {
		e.logger.Warn("missing execFunc - skipped execution")
		return "", "", 0, nil
	}

	var stdoutB, stderrB bytes.Buffer
	cmd.Stdout = &stdoutB
	cmd.Stderr = &stderrB
	err = e.execFunc(cmd)

	exitCode = -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	return stdoutB.String(), stderrB.String(), exitCode, err
}
