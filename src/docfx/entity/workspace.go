// Package entity contains the domain model for the docfx workspace loader.
package entity

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/tintoy/docfx/src/docfx/internal/errors"
	"go.lsp.dev/uri"
)

// WorkspaceConfigKey is the config key that contains workspace loader configuration.
const WorkspaceConfigKey = "workspace"

// WorkspaceConfig defines the properties of the workspace section of the config files.
type WorkspaceConfig struct {
	// Solution is an optional solution file to load on startup.
	Solution string `yaml:"solution"`
	// Properties are additional evaluation properties applied to every load.
	Properties map[string]string `yaml:"properties"`
}

// Language identifies a recognized source-language project kind.
//
// The set is closed: project files of any other kind are skipped rather than
// mapped to a default language.
type Language int

const (
	// LanguageUnknown is the zero value and never appears in a snapshot.
	LanguageUnknown Language = iota
	// LanguageCSharp identifies a C# project.
	LanguageCSharp
	// LanguageVisualBasic identifies a Visual Basic project.
	LanguageVisualBasic
)

// String implements fmt.Stringer.
func (l Language) String() string {
	switch l {
	case LanguageCSharp:
		return "C#"
	case LanguageVisualBasic:
		return "VB"
	default:
		return "Unknown"
	}
}

// ReferenceKind identifies the kind of a resolved reference.
type ReferenceKind int

// ReferenceKindAssembly identifies a resolved assembly reference. All
// references produced by dependency resolution are of this kind.
const ReferenceKindAssembly ReferenceKind = iota

// Document is one compilable source item of a project. Text content is read
// eagerly at construction time.
type Document struct {
	Name     string
	FilePath string
	URI      uri.URI
	Text     string
	Version  int64
}

// Reference is an absolute path to a dependency assembly.
type Reference struct {
	FilePath string
	Kind     ReferenceKind
}

// CompilationOptions carries per-project diagnostic-suppression overrides.
type CompilationOptions struct {
	SuppressedDiagnostics []string
}

// Project is the analysis-side representation of one loaded project.
// A Project is created once and never mutated afterwards; option overrides
// are applied by folding a replacement copy into a new snapshot.
type Project struct {
	ID           uuid.UUID
	Name         string
	AssemblyName string
	Language     Language
	FilePath     string
	OutputPath   string
	Documents    []Document
	References   []Reference
	Options      CompilationOptions
}

// NormalizePath returns the canonical form of a project file path used for
// snapshot membership checks. Comparison is case-insensitive on file systems
// that are case-insensitive by default.
func NormalizePath(path string) string {
	normalized := filepath.ToSlash(filepath.Clean(path))
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		normalized = strings.ToLower(normalized)
	}
	return normalized
}

// Snapshot is an immutable ordered set of workspace projects. New projects
// are folded in one at a time, each fold producing a new snapshot.
type Snapshot struct {
	projects []*Project
	byPath   map[string]*Project
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{byPath: make(map[string]*Project)}
}

// Len returns the number of projects in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.projects)
}

// Projects returns the snapshot's projects in fold order.
func (s *Snapshot) Projects() []*Project {
	out := make([]*Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// ProjectByPath returns the project loaded from the given file path, if any.
func (s *Snapshot) ProjectByPath(path string) (*Project, bool) {
	p, ok := s.byPath[NormalizePath(path)]
	return p, ok
}

// ContainsPath reports whether a project with the given normalized file path
// is already part of the snapshot.
func (s *Snapshot) ContainsPath(path string) bool {
	_, ok := s.byPath[NormalizePath(path)]
	return ok
}

// WithProject folds a new project into the snapshot, producing a new
// snapshot. A snapshot never contains two projects with the same normalized
// file path.
func (s *Snapshot) WithProject(p *Project) (*Snapshot, error) {
	if p == nil {
		return nil, errors.New("can't fold nil project")
	}
	key := NormalizePath(p.FilePath)
	if _, ok := s.byPath[key]; ok {
		return nil, &errors.PreconditionViolationError{
			Reason: "project " + p.FilePath + " is already part of the snapshot",
		}
	}
	next := s.clone()
	next.projects = append(next.projects, p)
	next.byPath[key] = p
	return next, nil
}

// WithCompilationOptions produces a new snapshot in which the identified
// project carries the given compilation options. The project entry itself is
// replaced by a copy; callers must re-fetch their handle from the new
// snapshot.
func (s *Snapshot) WithCompilationOptions(id uuid.UUID, options CompilationOptions) (*Snapshot, error) {
	next := s.clone()
	for i, p := range next.projects {
		if p.ID != id {
			continue
		}
		updated := *p
		updated.Options = options
		next.projects[i] = &updated
		next.byPath[NormalizePath(updated.FilePath)] = &updated
		return next, nil
	}
	return nil, errors.New("no project with ID " + id.String() + " in snapshot")
}

func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		projects: make([]*Project, len(s.projects)),
		byPath:   make(map[string]*Project, len(s.byPath)+1),
	}
	copy(next.projects, s.projects)
	for k, v := range s.byPath {
		next.byPath[k] = v
	}
	return next
}
