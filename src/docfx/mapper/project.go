// Package mapper assembles analysis-side workspace projects from evaluated
// build-engine projects.
package mapper

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/tintoy/docfx/src/docfx/entity"
	"github.com/tintoy/docfx/src/docfx/internal/msbuild"
	"github.com/tintoy/docfx/src/docfx/internal/textloader"
	"go.lsp.dev/uri"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a new Builder.
var Module = fx.Provide(New)

// _outputPathProperty is the evaluated property carrying the project's
// declared output path.
const _outputPathProperty = "OutputPath"

// _suppressedDiagnostics are nuisance diagnostics raised when evaluated
// assembly references point at this tool's own synthetic reference
// assemblies. CS1701 reports assembly-identity mismatches on such references.
var _suppressedDiagnostics = []string{"CS1701"}

// ProjectLanguage maps a project file extension to its workspace language.
// Exactly two extensions are recognized; anything else reports false, which
// callers treat as a skip signal rather than an error.
func ProjectLanguage(projectFilePath string) (entity.Language, bool) {
	switch strings.ToLower(filepath.Ext(projectFilePath)) {
	case ".csproj":
		return entity.LanguageCSharp, true
	case ".vbproj":
		return entity.LanguageVisualBasic, true
	default:
		return entity.LanguageUnknown, false
	}
}

// DefaultCompilationOptions returns the diagnostic-suppression overrides
// applied to every loaded project.
func DefaultCompilationOptions() entity.CompilationOptions {
	suppressed := make([]string, len(_suppressedDiagnostics))
	copy(suppressed, _suppressedDiagnostics)
	return entity.CompilationOptions{SuppressedDiagnostics: suppressed}
}

// Builder assembles workspace projects from evaluated projects.
type Builder interface {
	// BuildProject produces the workspace project for one loaded, evaluated
	// project. The second return value is false when the project file's kind
	// is not recognized and the project is to be skipped.
	BuildProject(ctx context.Context, project *msbuild.Project, projectFilePath string) (*entity.Project, bool, error)
}

// Params are the parameters required to create a new Builder.
type Params struct {
	fx.In

	Logger *zap.SugaredLogger
	Texts  textloader.Loader
	Runner msbuild.TargetRunner
}

type builderImpl struct {
	logger *zap.SugaredLogger
	texts  textloader.Loader
	runner msbuild.TargetRunner
}

// New creates a new Builder.
func New(p Params) Builder {
	return &builderImpl{
		logger: p.Logger,
		texts:  p.Texts,
		runner: p.Runner,
	}
}

func (b *builderImpl) BuildProject(ctx context.Context, project *msbuild.Project, projectFilePath string) (*entity.Project, bool, error) {
	language, ok := ProjectLanguage(projectFilePath)
	if !ok {
		return nil, false, nil
	}

	// All documents are built before the project entry is assembled, so a
	// snapshot never observes a partial document set.
	documents, err := b.buildDocuments(project)
	if err != nil {
		return nil, false, err
	}

	var references []entity.Reference
	for referencePath := range msbuild.ResolveReferences(ctx, b.runner, b.logger, project) {
		references = append(references, entity.Reference{
			FilePath: referencePath,
			Kind:     entity.ReferenceKindAssembly,
		})
	}

	base := filepath.Base(projectFilePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return &entity.Project{
		ID:           uuid.Must(uuid.NewV4()),
		Name:         name,
		AssemblyName: name,
		Language:     language,
		FilePath:     project.FilePath(),
		OutputPath:   project.GetPropertyValue(_outputPathProperty),
		Documents:    documents,
		References:   references,
	}, true, nil
}

func (b *builderImpl) buildDocuments(project *msbuild.Project) ([]entity.Document, error) {
	compileItems, err := project.ItemsOfType(msbuild.ItemTypeCompile)
	if err != nil {
		return nil, err
	}

	documents := make([]entity.Document, 0, len(compileItems))
	for _, item := range compileItems {
		fullPath, err := item.Metadata("FullPath")
		if err != nil {
			return nil, err
		}
		text, err := b.texts.Load(fullPath)
		if err != nil {
			return nil, err
		}
		documents = append(documents, entity.Document{
			Name:     filepath.Base(fullPath),
			FilePath: fullPath,
			URI:      uri.File(fullPath),
			Text:     text.Text,
			Version:  text.Version,
		})
	}
	return documents, nil
}
