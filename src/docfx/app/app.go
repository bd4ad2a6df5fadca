// Package app wires the docfx workspace loader together.
package app

import (
	"context"
	"time"

	tally "github.com/uber-go/tally/v4"
	"github.com/tintoy/docfx/src/docfx/controller/workspace"
	"github.com/tintoy/docfx/src/docfx/entity"
	"github.com/tintoy/docfx/src/docfx/internal/core"
	"github.com/tintoy/docfx/src/docfx/internal/executor"
	"github.com/tintoy/docfx/src/docfx/internal/fs"
	"github.com/tintoy/docfx/src/docfx/internal/msbuild"
	"github.com/tintoy/docfx/src/docfx/internal/textloader"
	"github.com/tintoy/docfx/src/docfx/internal/toolchain"
	"github.com/tintoy/docfx/src/docfx/mapper"
	"github.com/tintoy/docfx/src/docfx/repository/snapshot"
	uber_config "go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module defines the docfx application module.
var Module = fx.Options(
	fs.Module,
	executor.Module,
	toolchain.Module,
	msbuild.Module,
	textloader.Module,
	mapper.Module,
	snapshot.Module,
	workspace.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "docfx-workspace",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Invoke(registerStartupLoad),
)

// startupParams defines the dependencies of the startup load hook.
type startupParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *zap.SugaredLogger
	Config     uber_config.Provider
	Workspaces workspace.Controller
}

// registerStartupLoad loads the configured solution, logs a summary of the
// resulting snapshot, and shuts the application down.
func registerStartupLoad(p startupParams) {
	var cfg entity.WorkspaceConfig
	if err := p.Config.Get(entity.WorkspaceConfigKey).Populate(&cfg); err != nil {
		p.Logger.Warnf("reading %q configuration: %v", entity.WorkspaceConfigKey, err)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Solution == "" {
				p.Logger.Info("no solution configured; nothing to load")
				return p.Shutdowner.Shutdown()
			}

			go func() {
				defer p.Shutdowner.Shutdown()

				result, err := p.Workspaces.LoadSolution(context.Background(), cfg.Solution, cfg.Properties)
				if err != nil {
					p.Logger.Errorf("loading solution %s: %v", cfg.Solution, err)
					return
				}
				for _, project := range result.Projects() {
					p.Logger.Infow("loaded project",
						"name", project.Name,
						"language", project.Language.String(),
						"documents", len(project.Documents),
						"references", len(project.References),
					)
				}
			}()
			return nil
		},
	})
}
