package msbuild

import (
	"context"
	"iter"
	"path/filepath"

	docfxfs "github.com/tintoy/docfx/src/docfx/internal/fs"
	"github.com/tintoy/docfx/src/docfx/internal/toolchain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Well-known item types and targets.
const (
	// ItemTypeCompile is the compilable-source item type.
	ItemTypeCompile = "Compile"
	// ItemTypeReference is a declared assembly reference.
	ItemTypeReference = "Reference"
	// ItemTypeProjectReference is a declared project-to-project reference.
	ItemTypeProjectReference = "ProjectReference"

	// TargetResolveAssemblyReferences is the dependency-resolution target
	// executed once per project load.
	TargetResolveAssemblyReferences = "ResolveAssemblyReferences"

	// _hintPathMetadata carries an explicit assembly location on a Reference item.
	_hintPathMetadata = "HintPath"
)

// TargetResult reports the outcome of executing one build target.
type TargetResult struct {
	Succeeded bool
	// Outputs are the target's output item specs, in engine order.
	Outputs []string
}

// TargetRunner executes a named build target against an evaluated project.
type TargetRunner interface {
	ExecuteTarget(ctx context.Context, project *Project, target string) (TargetResult, error)
}

// RunnerParams are the parameters required to create a new TargetRunner.
type RunnerParams struct {
	fx.In

	Logger *zap.SugaredLogger
	FS     docfxfs.DocfxFS
}

// NewTargetRunner creates the default TargetRunner: an in-process assembly
// prober that implements the dependency-resolution target by probing the
// project's declared references against the file system.
func NewTargetRunner(p RunnerParams) TargetRunner {
	return &assemblyProber{
		logger: p.Logger,
		fs:     p.FS,
	}
}

type assemblyProber struct {
	logger *zap.SugaredLogger
	fs     docfxfs.DocfxFS
}

func (r *assemblyProber) ExecuteTarget(ctx context.Context, project *Project, target string) (TargetResult, error) {
	if err := project.session.checkDisposed(); err != nil {
		return TargetResult{}, err
	}
	if target != TargetResolveAssemblyReferences {
		r.logger.Warnf("unknown target %q requested for %s", target, project.FilePath())
		return TargetResult{Succeeded: false}, nil
	}

	// Individually unresolvable references are skipped rather than failing
	// the target, matching the engine's design-time resolution behavior.
	var outputs []string

	references, err := project.ItemsOfType(ItemTypeReference)
	if err != nil {
		return TargetResult{}, err
	}
	for _, reference := range references {
		resolved, ok := r.probeReference(project, reference)
		if !ok {
			r.logger.Debugf("unable to resolve reference %q for %s", reference.Include, project.FilePath())
			continue
		}
		outputs = append(outputs, resolved)
	}

	projectReferences, err := project.ItemsOfType(ItemTypeProjectReference)
	if err != nil {
		return TargetResult{}, err
	}
	for _, reference := range projectReferences {
		resolved, ok := r.probeProjectReference(ctx, project.session, reference)
		if !ok {
			continue
		}
		outputs = append(outputs, resolved)
	}

	return TargetResult{Succeeded: true, Outputs: outputs}, nil
}

// probeReference resolves one Reference item: an explicit HintPath wins,
// then the project directory, then the toolchain directories.
func (r *assemblyProber) probeReference(project *Project, reference *Item) (string, bool) {
	if hintPath, err := reference.Metadata(_hintPathMetadata); err == nil && hintPath != "" {
		if !filepath.IsAbs(hintPath) {
			hintPath = filepath.Join(project.dir, hintPath)
		}
		if exists, _ := r.fs.FileExists(hintPath); exists {
			return hintPath, true
		}
	}

	fileName := reference.Include
	if filepath.Ext(fileName) == "" {
		fileName += ".dll"
	}

	searchDirs := []string{project.dir}
	for _, property := range []string{toolchain.PropertyExtensionsPath, toolchain.PropertySDKsPath} {
		if dir, ok := project.session.globalProperties.Get(property); ok {
			searchDirs = append(searchDirs, dir)
		}
	}
	for _, dir := range searchDirs {
		candidate := filepath.Join(dir, fileName)
		if exists, _ := r.fs.FileExists(candidate); exists {
			return candidate, true
		}
	}
	return "", false
}

// probeProjectReference resolves a project-to-project reference to the
// referenced project's output assembly. The referenced project is evaluated
// through the same session, so prior loads are reused.
func (r *assemblyProber) probeProjectReference(ctx context.Context, session *Session, reference *Item) (string, bool) {
	referenced, err := session.LoadProject(reference.FullPath())
	if err != nil {
		r.logger.Debugf("unable to evaluate referenced project %q: %v", reference.Include, err)
		return "", false
	}

	outputPath := referenced.GetPropertyValue("OutputPath")
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(referenced.dir, outputPath)
	}
	base := filepath.Base(referenced.filePath)
	assembly := filepath.Join(outputPath, base[:len(base)-len(filepath.Ext(base))]+".dll")
	if exists, _ := r.fs.FileExists(assembly); exists {
		return assembly, true
	}
	return "", false
}

// ResolveReferences executes the dependency-resolution target for the given
// project and yields each resolved reference-assembly path, absolute, in the
// order the engine reports them. Resolution failure is non-fatal: the
// sequence is simply empty, on the grounds that partial metadata is more
// useful than no metadata.
//
// The sequence re-executes the target on each consumption; callers should
// iterate it at most once per project load and cache the materialized list
// if they need it again.
func ResolveReferences(ctx context.Context, runner TargetRunner, logger *zap.SugaredLogger, project *Project) iter.Seq[string] {
	return func(yield func(string) bool) {
		result, err := runner.ExecuteTarget(ctx, project, TargetResolveAssemblyReferences)
		if err != nil {
			logger.Warnf("dependency resolution failed for %s: %v", project.FilePath(), err)
			return
		}
		if !result.Succeeded {
			logger.Warnf("dependency resolution reported failure for %s; continuing with no references", project.FilePath())
			return
		}
		for _, output := range result.Outputs {
			if !filepath.IsAbs(output) {
				output = filepath.Join(project.dir, output)
			}
			if !yield(output) {
				return
			}
		}
	}
}
