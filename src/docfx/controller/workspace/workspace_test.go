package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"github.com/tintoy/docfx/src/docfx/entity"
	"github.com/tintoy/docfx/src/docfx/internal/errors"
	"github.com/tintoy/docfx/src/docfx/internal/fs"
	"github.com/tintoy/docfx/src/docfx/internal/msbuild"
	"github.com/tintoy/docfx/src/docfx/internal/msbuild/msbuildmock"
	"github.com/tintoy/docfx/src/docfx/internal/textloader"
	"github.com/tintoy/docfx/src/docfx/internal/toolchain"
	"github.com/tintoy/docfx/src/docfx/mapper"
	"github.com/tintoy/docfx/src/docfx/repository/snapshot"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedDiscovery struct {
	info *toolchain.RuntimeInfo
}

func (d fixedDiscovery) Discover(ctx context.Context) (*toolchain.RuntimeInfo, error) {
	return d.info, nil
}

// newTestController wires a controller over real sessions, a real mapper and a
// fresh snapshot repository, with only toolchain discovery and target
// execution stubbed out.
func newTestController(t *testing.T, runner msbuild.TargetRunner) Controller {
	t.Helper()
	t.Setenv(toolchain.PropertyExtensionsPath, "")
	t.Setenv(toolchain.PropertySDKsPath, "")

	logger := zap.NewNop().Sugar()
	docfxFS := fs.New()
	sessions := msbuild.NewSessionFactory(msbuild.Params{
		Logger: logger,
		FS:     docfxFS,
		Runner: runner,
		Discovery: fixedDiscovery{info: &toolchain.RuntimeInfo{
			Version:       "8.0.100",
			BaseDirectory: filepath.Join(t.TempDir(), "toolchain"),
		}},
	})
	texts, err := textloader.New(textloader.Params{FS: docfxFS})
	require.NoError(t, err)
	scope := tally.NewTestScope("", nil)

	return New(Params{
		Logger:    logger,
		Stats:     scope,
		FS:        docfxFS,
		Sessions:  sessions,
		Builder:   mapper.New(mapper.Params{Logger: logger, Texts: texts, Runner: runner}),
		Snapshots: snapshot.New(scope),
	})
}

func succeedingRunner(t *testing.T) msbuild.TargetRunner {
	t.Helper()
	runner := msbuildmock.NewMockTargetRunner(gomock.NewController(t))
	runner.EXPECT().
		ExecuteTarget(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(msbuild.TargetResult{Succeeded: true}, nil).
		AnyTimes()
	return runner
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeProject(t *testing.T, dir, name string) string {
	t.Helper()
	projectPath := filepath.Join(dir, name)
	writeFile(t, projectPath, `<Project Sdk="Microsoft.NET.Sdk"></Project>`)
	base := name[:len(name)-len(filepath.Ext(name))]
	writeFile(t, filepath.Join(dir, base+".cs"), "class "+base+" {}")
	return projectPath
}

func writeSolution(t *testing.T, dir string, memberNames ...string) string {
	t.Helper()
	content := "Microsoft Visual Studio Solution File, Format Version 12.00\n"
	for i, name := range memberNames {
		base := name[:len(name)-len(filepath.Ext(name))]
		content += `Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "` + base +
			`", "` + name + `", "{00000000-0000-0000-0000-00000000000` + string(rune('1'+i)) + `}"` + "\nEndProject\n"
	}
	solutionPath := filepath.Join(dir, "Test.sln")
	writeFile(t, solutionPath, content)
	return solutionPath
}

func TestLoadSolutionDeclaredOrder(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "Alpha.csproj")
	writeProject(t, dir, "Beta.csproj")
	writeProject(t, dir, "Gamma.csproj")
	// Declared order is deliberately not alphabetical.
	solutionPath := writeSolution(t, dir, "Gamma.csproj", "Alpha.csproj", "Beta.csproj")

	controller := newTestController(t, succeedingRunner(t))
	result, err := controller.LoadSolution(context.Background(), solutionPath, nil)
	require.NoError(t, err)

	require.Equal(t, 3, result.Len())
	var names []string
	for _, p := range result.Projects() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, names)
}

func TestLoadSolutionProjectShape(t *testing.T) {
	dir := t.TempDir()
	projectPath := writeProject(t, dir, "App.csproj")
	solutionPath := writeSolution(t, dir, "App.csproj")

	controller := newTestController(t, succeedingRunner(t))
	result, err := controller.LoadSolution(context.Background(), solutionPath, nil)
	require.NoError(t, err)

	project, ok := result.ProjectByPath(projectPath)
	require.True(t, ok)
	assert.Equal(t, "App", project.Name)
	assert.Equal(t, entity.LanguageCSharp, project.Language)
	assert.Len(t, project.Documents, 1)
	assert.Equal(t, []string{"CS1701"}, project.Options.SuppressedDiagnostics)
}

func TestLoadSolutionSharedProjectReuse(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "App.csproj")
	// The same member is declared twice; the second declaration must reuse
	// the already-loaded instance rather than fail the duplicate-path fold.
	solutionPath := writeSolution(t, dir, "App.csproj", "App.csproj")

	controller := newTestController(t, succeedingRunner(t))
	result, err := controller.LoadSolution(context.Background(), solutionPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Len())
}

func TestLoadSolutionIdempotent(t *testing.T) {
	dir := t.TempDir()
	projectPath := writeProject(t, dir, "App.csproj")
	solutionPath := writeSolution(t, dir, "App.csproj")

	controller := newTestController(t, succeedingRunner(t))
	first, err := controller.LoadSolution(context.Background(), solutionPath, nil)
	require.NoError(t, err)
	second, err := controller.LoadSolution(context.Background(), solutionPath, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, second.Len())
	firstProject, ok := first.ProjectByPath(projectPath)
	require.True(t, ok)
	secondProject, ok := second.ProjectByPath(projectPath)
	require.True(t, ok)
	assert.Same(t, firstProject, secondProject)
}

func TestLoadSolutionSkipsUnsupportedMembers(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "App.csproj")
	writeProject(t, dir, "Shared.shproj")
	solutionPath := writeSolution(t, dir, "App.csproj", "Shared.shproj")

	controller := newTestController(t, succeedingRunner(t))
	result, err := controller.LoadSolution(context.Background(), solutionPath, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Len())
	assert.False(t, result.ContainsPath(filepath.Join(dir, "Shared.shproj")))
}

func TestLoadSolutionResolutionFailure(t *testing.T) {
	dir := t.TempDir()
	projectPath := writeProject(t, dir, "App.csproj")
	solutionPath := writeSolution(t, dir, "App.csproj")

	runner := msbuildmock.NewMockTargetRunner(gomock.NewController(t))
	runner.EXPECT().
		ExecuteTarget(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(msbuild.TargetResult{}, errors.New("resolution backend unavailable")).
		AnyTimes()

	controller := newTestController(t, runner)
	result, err := controller.LoadSolution(context.Background(), solutionPath, nil)
	require.NoError(t, err)

	// The project is still part of the workspace, just without references.
	project, ok := result.ProjectByPath(projectPath)
	require.True(t, ok)
	assert.Empty(t, project.References)
	assert.Len(t, project.Documents, 1)
}

func TestLoadSolutionPropertyOverrides(t *testing.T) {
	dir := t.TempDir()
	projectPath := filepath.Join(dir, "App.csproj")
	writeFile(t, projectPath, `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <OutputPath>bin/$(Configuration)</OutputPath>
  </PropertyGroup>
</Project>`)
	writeFile(t, filepath.Join(dir, "App.cs"), "class App {}")
	solutionPath := writeSolution(t, dir, "App.csproj")

	controller := newTestController(t, succeedingRunner(t))
	result, err := controller.LoadSolution(context.Background(), solutionPath, map[string]string{
		"Configuration": "Release",
	})
	require.NoError(t, err)

	project, ok := result.ProjectByPath(projectPath)
	require.True(t, ok)
	assert.Equal(t, "bin/Release", project.OutputPath)
}

func TestLoadSolutionInvalidPath(t *testing.T) {
	controller := newTestController(t, succeedingRunner(t))

	tests := []struct {
		desc string
		path string
	}{
		{desc: "blank path", path: "   "},
		{desc: "empty path", path: ""},
		{desc: "nonexistent file", path: filepath.Join(t.TempDir(), "missing.sln")},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := controller.LoadSolution(context.Background(), tt.path, nil)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err))
		})
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	projectPath := writeProject(t, dir, "App.csproj")

	controller := newTestController(t, succeedingRunner(t))
	project, err := controller.LoadProject(context.Background(), projectPath, nil)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "App", project.Name)
}

func TestLoadProjectUnsupportedKind(t *testing.T) {
	dir := t.TempDir()
	projectPath := writeProject(t, dir, "App.fsproj")

	controller := newTestController(t, succeedingRunner(t))
	project, err := controller.LoadProject(context.Background(), projectPath, nil)
	require.NoError(t, err)
	assert.Nil(t, project)
}
