package msbuild

import (
	"path/filepath"
	"strings"

	"github.com/tintoy/docfx/src/docfx/entity"
	"github.com/tintoy/docfx/src/docfx/internal/errors"
)

// _cachedPathMarker is inserted before the file extension of a cached clone's
// derived path, so the clone can coexist with its original in one session.
const _cachedPathMarker = ".cached"

// CloneForCaching produces an independent copy of an already-loaded project
// for reuse without mutating the original. The clone shares the original's
// evaluation session, so it remains valid for target execution, but owns its
// own definition tree and a derived file path.
//
// At most one cached copy may be created per original: cloning an original
// twice, or cloning a clone, fails with a PreconditionViolationError.
func CloneForCaching(project *Project) (*Project, error) {
	if project == nil {
		return nil, &errors.InvalidArgumentError{Name: "project", Reason: "must not be nil"}
	}
	session := project.session
	if err := session.checkDisposed(); err != nil {
		return nil, err
	}
	if project.cachedClone {
		return nil, &errors.PreconditionViolationError{
			Reason: "cannot clone " + project.filePath + ": it is itself a cached clone",
		}
	}
	if project.hasCachedClone {
		return nil, &errors.PreconditionViolationError{
			Reason: "a cached clone of " + project.filePath + " already exists",
		}
	}

	clone, err := evaluate(session, project.definition.DeepClone(), cachedPath(project.filePath))
	if err != nil {
		return nil, err
	}
	clone.cachedClone = true
	project.hasCachedClone = true
	session.projects[entity.NormalizePath(clone.filePath)] = clone
	return clone, nil
}

func cachedPath(projectFilePath string) string {
	ext := filepath.Ext(projectFilePath)
	return strings.TrimSuffix(projectFilePath, ext) + _cachedPathMarker + ext
}
