// Package msbuild is a design-time evaluation engine for MSBuild-style
// project files: it loads declarative project definitions into an isolated
// evaluation session, evaluates their properties and items, and executes the
// dependency-resolution target against them. It never performs real builds.
package msbuild

import (
	"context"

	"github.com/tintoy/docfx/src/docfx/entity"
	"github.com/tintoy/docfx/src/docfx/internal/errors"
	"github.com/tintoy/docfx/src/docfx/internal/fs"
	"github.com/tintoy/docfx/src/docfx/internal/toolchain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ToolsVersion is the fixed tool-version tag under which the session's single
// Toolset is installed.
const ToolsVersion = "Current"

// Module provides the evaluation-session dependencies.
var Module = fx.Options(
	fx.Provide(NewSessionFactory),
	fx.Provide(NewTargetRunner),
)

// Toolset binds a tool-version tag to a physical toolchain installation
// location within a session.
type Toolset struct {
	ToolsVersion string
	ToolsPath    string
	// OverrideTasksPath is explicitly empty so the engine never resolves task
	// overrides from the ambient installation, which may not match the
	// detected runtime.
	OverrideTasksPath string
}

// Session is an isolated, disposable evaluation context. It owns every
// Project loaded into it and is configured with build execution disabled.
//
// A Session is not safe for concurrent use; callers needing parallel loads
// must create independent sessions.
type Session struct {
	globalProperties *toolchain.GlobalProperties
	toolsets         []Toolset
	projects         map[string]*Project
	fs               fs.DocfxFS
	runner           TargetRunner
	logger           *zap.SugaredLogger
	disposed         bool
}

// SessionFactory creates evaluation sessions scoped to a solution directory.
type SessionFactory interface {
	// CreateSession discovers the installed toolchain and creates a session
	// rooted at solutionDir.
	CreateSession(ctx context.Context, solutionDir string) (*Session, error)
	// CreateSessionForRuntime creates a session rooted at solutionDir for an
	// already-discovered toolchain runtime.
	CreateSessionForRuntime(solutionDir string, runtime *toolchain.RuntimeInfo) (*Session, error)
}

// Params are the parameters required to create a new SessionFactory.
type Params struct {
	fx.In

	Logger    *zap.SugaredLogger
	FS        fs.DocfxFS
	Runner    TargetRunner
	Discovery toolchain.Discovery
}

type sessionFactory struct {
	logger    *zap.SugaredLogger
	fs        fs.DocfxFS
	runner    TargetRunner
	discovery toolchain.Discovery
}

// NewSessionFactory creates a new SessionFactory.
func NewSessionFactory(p Params) SessionFactory {
	return &sessionFactory{
		logger:    p.Logger,
		fs:        p.FS,
		runner:    p.Runner,
		discovery: p.Discovery,
	}
}

func (f *sessionFactory) CreateSession(ctx context.Context, solutionDir string) (*Session, error) {
	runtime, err := f.discovery.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return f.CreateSessionForRuntime(solutionDir, runtime)
}

func (f *sessionFactory) CreateSessionForRuntime(solutionDir string, runtime *toolchain.RuntimeInfo) (*Session, error) {
	props, err := toolchain.ComputeGlobalProperties(runtime, solutionDir)
	if err != nil {
		return nil, err
	}
	if err := toolchain.ApplyToProcessEnvironment(props); err != nil {
		return nil, err
	}

	extensionsPath, _ := props.Get(toolchain.PropertyExtensionsPath)
	return &Session{
		globalProperties: props,
		toolsets: []Toolset{{
			ToolsVersion:      ToolsVersion,
			ToolsPath:         extensionsPath,
			OverrideTasksPath: "",
		}},
		projects: make(map[string]*Project),
		fs:       f.fs,
		runner:   f.runner,
		logger:   f.logger,
	}, nil
}

// GlobalProperties returns the session's global property set. Once the
// session is created the set is immutable apart from InjectProperties.
func (s *Session) GlobalProperties() *toolchain.GlobalProperties {
	return s.globalProperties
}

// Toolsets returns the session's installed toolsets.
func (s *Session) Toolsets() []Toolset {
	out := make([]Toolset, len(s.toolsets))
	copy(out, s.toolsets)
	return out
}

// InjectProperties layers caller-supplied property overrides onto the
// session. Keys already present in the global property set are left
// untouched. Must be called before any project is loaded.
func (s *Session) InjectProperties(overrides map[string]string) {
	for name, value := range overrides {
		if s.globalProperties.Has(name) {
			continue
		}
		s.globalProperties.Set(name, value)
	}
}

// LoadProject loads and evaluates the project file at the given path,
// reusing the already-evaluated form if the path was loaded before.
func (s *Session) LoadProject(projectFilePath string) (*Project, error) {
	if err := s.checkDisposed(); err != nil {
		return nil, err
	}

	key := entity.NormalizePath(projectFilePath)
	if existing, ok := s.projects[key]; ok {
		return existing, nil
	}

	content, err := s.fs.ReadFile(projectFilePath)
	if err != nil {
		return nil, err
	}
	definition, err := ParseDefinition(content)
	if err != nil {
		return nil, err
	}

	project, err := evaluate(s, definition, projectFilePath)
	if err != nil {
		return nil, err
	}
	s.projects[key] = project
	return project, nil
}

// ProjectCount returns the number of distinct projects loaded into the session.
func (s *Session) ProjectCount() int {
	return len(s.projects)
}

// Dispose tears the session down. Projects owned by the session become
// invalid; operations on them fail with a ResourceDisposedError.
func (s *Session) Dispose() {
	s.disposed = true
}

func (s *Session) checkDisposed() error {
	if s.disposed {
		return &errors.ResourceDisposedError{Resource: "evaluation session"}
	}
	return nil
}
