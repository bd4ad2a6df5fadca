// Package textloader reads document text for the workspace model.
package textloader

import (
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tintoy/docfx/src/docfx/internal/errors"
	"github.com/tintoy/docfx/src/docfx/internal/fs"
	"go.uber.org/fx"
)

// Module provides a new Loader.
var Module = fx.Provide(New)

// _cacheSize bounds the number of cached documents; solutions commonly share
// linked source files between projects.
const _cacheSize = 512

// TextAndVersion pairs document text content with a version stamp.
type TextAndVersion struct {
	Text string
	// Version is the file's modification time in nanoseconds.
	Version int64
}

// Loader yields text-content-plus-version handles for absolute file paths.
type Loader interface {
	Load(path string) (TextAndVersion, error)
}

// Params are the parameters required to create a new Loader.
type Params struct {
	fx.In

	FS fs.DocfxFS
}

type loaderImpl struct {
	fs    fs.DocfxFS
	cache *lru.Cache[string, TextAndVersion]
}

// New creates a new Loader.
func New(p Params) (Loader, error) {
	cache, err := lru.New[string, TextAndVersion](_cacheSize)
	if err != nil {
		return nil, err
	}
	return &loaderImpl{fs: p.FS, cache: cache}, nil
}

// Load reads the full file content as text. Cached entries are reused only
// while the file's version stamp is unchanged.
func (l *loaderImpl) Load(path string) (TextAndVersion, error) {
	if !filepath.IsAbs(path) {
		return TextAndVersion{}, &errors.InvalidArgumentError{Name: "path", Reason: "must be absolute"}
	}

	info, err := l.fs.Stat(path)
	if err != nil {
		return TextAndVersion{}, err
	}
	version := info.ModTime().UnixNano()

	if cached, ok := l.cache.Get(path); ok && cached.Version == version {
		return cached, nil
	}

	content, err := l.fs.ReadFile(path)
	if err != nil {
		return TextAndVersion{}, err
	}
	result := TextAndVersion{Text: string(content), Version: version}
	l.cache.Add(path, result)
	return result, nil
}
