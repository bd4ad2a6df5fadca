// Package workspace orchestrates solution and project loads into the current
// workspace snapshot.
package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tally "github.com/uber-go/tally/v4"
	"github.com/tintoy/docfx/src/docfx/entity"
	"github.com/tintoy/docfx/src/docfx/internal/errors"
	"github.com/tintoy/docfx/src/docfx/internal/fs"
	"github.com/tintoy/docfx/src/docfx/internal/msbuild"
	"github.com/tintoy/docfx/src/docfx/internal/sln"
	"github.com/tintoy/docfx/src/docfx/mapper"
	"github.com/tintoy/docfx/src/docfx/repository/snapshot"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _nameKey = "workspace"

// Module provides a new Controller.
var Module = fx.Provide(New)

// Controller loads solutions and single projects through the identical
// pipeline. Loads are synchronous and must not overlap on the same
// controller instance's evaluation session.
type Controller interface {
	// LoadSolution loads every member project of a solution, in
	// solution-declared order, and returns the resulting snapshot.
	LoadSolution(ctx context.Context, solutionFilePath string, propertyOverrides map[string]string) (*entity.Snapshot, error)

	// LoadProject loads a single, solution-less project. A nil project with
	// a nil error means the project file's kind is not recognized and the
	// project was skipped.
	LoadProject(ctx context.Context, projectFilePath string, propertyOverrides map[string]string) (*entity.Project, error)
}

// Params defines the dependencies of this controller.
type Params struct {
	fx.In

	Logger    *zap.SugaredLogger
	Stats     tally.Scope
	FS        fs.DocfxFS
	Sessions  msbuild.SessionFactory
	Builder   mapper.Builder
	Snapshots snapshot.Repository
}

type controller struct {
	logger    *zap.SugaredLogger
	stats     tally.Scope
	fs        fs.DocfxFS
	sessions  msbuild.SessionFactory
	builder   mapper.Builder
	snapshots snapshot.Repository
}

// New creates a new Controller.
func New(p Params) Controller {
	return &controller{
		logger:    p.Logger.With("component", _nameKey),
		stats:     p.Stats.SubScope(_nameKey),
		fs:        p.FS,
		sessions:  p.Sessions,
		builder:   p.Builder,
		snapshots: p.Snapshots,
	}
}

func (c *controller) LoadSolution(ctx context.Context, solutionFilePath string, propertyOverrides map[string]string) (*entity.Snapshot, error) {
	if err := c.checkPath("solutionFilePath", solutionFilePath); err != nil {
		return nil, err
	}
	solutionFilePath, err := filepath.Abs(solutionFilePath)
	if err != nil {
		return nil, err
	}
	solutionDir := filepath.Dir(solutionFilePath)

	memberProjects, err := c.memberProjects(solutionFilePath, solutionDir)
	if err != nil {
		return nil, err
	}

	session, err := c.sessions.CreateSession(ctx, solutionDir)
	if err != nil {
		return nil, err
	}
	defer session.Dispose()
	session.InjectProperties(propertyOverrides)

	// Member projects are folded strictly in solution-declared order, one at
	// a time, so later projects observe earlier projects' presence.
	for _, memberPath := range memberProjects {
		if _, err := c.loadOne(ctx, session, memberPath); err != nil {
			return nil, fmt.Errorf("loading member project %s: %w", memberPath, err)
		}
	}

	return c.snapshots.Current(ctx), nil
}

func (c *controller) LoadProject(ctx context.Context, projectFilePath string, propertyOverrides map[string]string) (*entity.Project, error) {
	if err := c.checkPath("projectFilePath", projectFilePath); err != nil {
		return nil, err
	}
	projectFilePath, err := filepath.Abs(projectFilePath)
	if err != nil {
		return nil, err
	}

	session, err := c.sessions.CreateSession(ctx, filepath.Dir(projectFilePath))
	if err != nil {
		return nil, err
	}
	defer session.Dispose()
	session.InjectProperties(propertyOverrides)

	return c.loadOne(ctx, session, projectFilePath)
}

// checkPath validates a required path argument before any I/O.
func (c *controller) checkPath(name, path string) error {
	if strings.TrimSpace(path) == "" {
		return &errors.InvalidArgumentError{Name: name, Reason: "must not be blank"}
	}
	exists, err := c.fs.FileExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return &errors.InvalidArgumentError{Name: name, Reason: "file " + path + " does not exist"}
	}
	return nil
}

// memberProjects parses the solution file into its ordered member-project paths.
func (c *controller) memberProjects(solutionFilePath, solutionDir string) ([]string, error) {
	solutionFile, err := c.fs.Open(solutionFilePath)
	if err != nil {
		return nil, err
	}
	defer solutionFile.Close()

	memberProjects, err := sln.ParseSolution(solutionFile, solutionDir)
	if err != nil {
		if len(memberProjects) == 0 {
			return nil, fmt.Errorf("parsing solution %s: %w", solutionFilePath, err)
		}
		// Parsing is best effort; keep the well-formed members.
		c.logger.Warnf("solution %s parsed with errors: %v", solutionFilePath, err)
	}
	return memberProjects, nil
}

// loadOne loads a single project into the current snapshot. Already-loaded
// paths are reused unchanged; unrecognized project kinds are skipped and
// reported as (nil, nil).
func (c *controller) loadOne(ctx context.Context, session *msbuild.Session, projectFilePath string) (*entity.Project, error) {
	if existing, ok := c.snapshots.ProjectByPath(ctx, projectFilePath); ok {
		c.stats.Counter("projects_reused").Inc(1)
		return existing, nil
	}

	loaded, err := session.LoadProject(projectFilePath)
	if err != nil {
		return nil, err
	}

	project, ok, err := c.builder.BuildProject(ctx, loaded, projectFilePath)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.stats.Counter("projects_skipped").Inc(1)
		c.logger.Infof("skipping %s: unsupported project kind", projectFilePath)
		return nil, nil
	}

	// Two-step fold: add the project, then apply the suppression overrides.
	// The overrides need the project's options entry, which only exists once
	// the project is part of a snapshot, and each fold produces a new
	// snapshot, so the handle is re-fetched after the final fold.
	current := c.snapshots.Current(ctx)
	next, err := current.WithProject(project)
	if err != nil {
		return nil, err
	}
	if err := c.snapshots.Apply(ctx, next); err != nil {
		return nil, err
	}
	next, err = next.WithCompilationOptions(project.ID, mapper.DefaultCompilationOptions())
	if err != nil {
		return nil, err
	}
	if err := c.snapshots.Apply(ctx, next); err != nil {
		return nil, err
	}

	c.stats.Counter("projects_loaded").Inc(1)
	folded, _ := next.ProjectByPath(projectFilePath)
	return folded, nil
}
