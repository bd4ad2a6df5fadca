package executor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Instantiates the new Executor through fx provider
func fxExecutor(t *testing.T) (Executor, *observer.ObservedLogs) {
	var e Executor
	core, recorded := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	fxtest.New(t,
		fx.Provide(
			func() Executor {
				return NewExecutor(WithLogger(logger))
			},
		),
		fx.Populate(&e),
	).RequireStart().RequireStop()

	return e, recorded
}

func TestRun(t *testing.T) {
	tempDir := t.TempDir()
	e, recorded := fxExecutor(t)

	t.Run("captures stdout", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "1.txt"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "2.txt"), nil, 0o644))

		cmd := exec.Command("ls")
		cmd.Dir = tempDir
		stdOut, stdErr, exitCode, err := e.Run(cmd)

		assert.Equal(t, "1.txt\n2.txt\n", stdOut)
		assert.Empty(t, stdErr)
		assert.Equal(t, 0, exitCode)
		assert.NoError(t, err)
	})

	t.Run("logs path, dir and args", func(t *testing.T) {
		recorded.TakeAll()

		cmd := exec.Command("ls", tempDir)
		cmd.Dir = "/"
		_, _, _, err := e.Run(cmd)
		require.NoError(t, err)

		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, map[string]interface{}{
			"Path": cmd.Path,
			"Dir":  "/",
			"Args": []interface{}{tempDir},
		}, logs[0].ContextMap())
	})

	t.Run("captures stderr and exit code", func(t *testing.T) {
		cmd := exec.Command("rm", tempDir)
		cmd.Dir = tempDir
		stdOut, stdErr, exitCode, err := e.Run(cmd)

		assert.Empty(t, stdOut)
		assert.Contains(t, strings.ToLower(stdErr), "is a directory")
		assert.Equal(t, 1, exitCode)
		assert.Error(t, err)
	})

	t.Run("unknown command", func(t *testing.T) {
		cmd := exec.Command("no_valid_command_")
		cmd.Dir = tempDir
		stdOut, stdErr, exitCode, err := e.Run(cmd)

		assert.Empty(t, stdOut)
		assert.Empty(t, stdErr)
		assert.Equal(t, -1, exitCode)
		assert.Error(t, err)
	})
}

func TestRunWithExecFuncOverride(t *testing.T) {
	e := NewExecutor(WithExecFunc(func(cmd *exec.Cmd) error {
		_, err := cmd.Stdout.Write([]byte("fake output"))
		return err
	}))

	stdOut, stdErr, exitCode, err := e.Run(exec.Command("anything"))
	assert.Equal(t, "fake output", stdOut)
	assert.Empty(t, stdErr)
	assert.Equal(t, -1, exitCode)
	assert.NoError(t, err)
}
