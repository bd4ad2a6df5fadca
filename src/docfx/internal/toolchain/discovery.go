package toolchain

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tintoy/docfx/src/docfx/internal/errors"
	"github.com/tintoy/docfx/src/docfx/internal/executor"
	"github.com/tintoy/docfx/src/docfx/internal/fs"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a new Discovery.
var Module = fx.Provide(New)

// Discovery locates the installed .NET toolchain.
type Discovery interface {
	Discover(ctx context.Context) (*RuntimeInfo, error)
}

// Params are the parameters required to create a new Discovery.
type Params struct {
	fx.In

	Logger   *zap.SugaredLogger
	FS       fs.DocfxFS
	Executor executor.Executor
}

type discoveryImpl struct {
	logger   *zap.SugaredLogger
	fs       fs.DocfxFS
	executor executor.Executor
}

// New creates a new Discovery.
func New(p Params) Discovery {
	return &discoveryImpl{
		logger:   p.Logger,
		fs:       p.FS,
		executor: p.Executor,
	}
}

// Discover locates the newest installed SDK by asking the dotnet host,
// falling back to DOTNET_ROOT when the host is not on the PATH.
func (d *discoveryImpl) Discover(ctx context.Context) (*RuntimeInfo, error) {
	cmd := exec.CommandContext(ctx, "dotnet", "--list-sdks")
	stdout, stderr, _, err := d.executor.Run(cmd)
	if err == nil {
		if info, ok := parseSDKList(stdout); ok {
			return info, nil
		}
		d.logger.Warnf("dotnet --list-sdks produced no usable output: %q", stdout)
	} else {
		d.logger.Warnf("dotnet --list-sdks failed: %v (stderr: %s)", err, strings.TrimSpace(stderr))
	}

	if root := os.Getenv("DOTNET_ROOT"); root != "" {
		info, err := d.newestSDK(root)
		if err == nil {
			return info, nil
		}
		d.logger.Warnf("no SDK found under DOTNET_ROOT %q: %v", root, err)
	}

	return nil, &errors.InvalidConfigurationError{Reason: "cannot determine toolchain base directory"}
}

// parseSDKList parses `dotnet --list-sdks` output, one SDK per line in the
// form `8.0.100 [/usr/share/dotnet/sdk]`. The last line is the newest SDK.
func parseSDKList(output string) (*RuntimeInfo, bool) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		open := strings.Index(line, "[")
		if open < 1 || !strings.HasSuffix(line, "]") {
			continue
		}
		version := strings.TrimSpace(line[:open])
		sdkDir := line[open+1 : len(line)-1]
		if version == "" || sdkDir == "" {
			continue
		}
		return &RuntimeInfo{
			Version:       version,
			BaseDirectory: filepath.Join(sdkDir, version),
		}, true
	}
	return nil, false
}

// newestSDK scans $DOTNET_ROOT/sdk for installed SDK versions.
func (d *discoveryImpl) newestSDK(root string) (*RuntimeInfo, error) {
	sdkDir := filepath.Join(root, "sdk")
	entries, err := d.fs.ReadDir(sdkDir)
	if err != nil {
		return nil, err
	}

	version := ""
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Entries sort lexically; good enough for picking a usable SDK.
		if entry.Name() > version {
			version = entry.Name()
		}
	}
	if version == "" {
		return nil, errors.New("no SDK directories found in " + sdkDir)
	}

	return &RuntimeInfo{
		Version:       version,
		BaseDirectory: filepath.Join(sdkDir, version),
	}, nil
}
