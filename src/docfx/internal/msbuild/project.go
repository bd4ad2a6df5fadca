package msbuild

import (
	"path/filepath"
	"strings"
)

// Project is one evaluated project loaded into a Session. It is mutated only
// by the session that created it and must not be shared across sessions
// without cloning.
type Project struct {
	session    *Session
	filePath   string
	dir        string
	definition *ProjectDefinition

	properties    map[string]string
	propertyOrder []string
	items         map[string][]*Item
	itemTypes     []string

	// cachedClone marks a project produced by CloneForCaching;
	// hasCachedClone marks an original that has already been cloned.
	cachedClone    bool
	hasCachedClone bool
}

// FilePath returns the absolute path of the project file.
func (p *Project) FilePath() string {
	return p.filePath
}

// Directory returns the project's containing directory.
func (p *Project) Directory() string {
	return p.dir
}

// Session returns the owning evaluation session.
func (p *Project) Session() *Session {
	return p.session
}

// GetPropertyValue returns the evaluated value of the named property, or the
// empty string if the property is not defined. Properties not defined by the
// project or its session fall back to the process environment, matching the
// engine's property lookup rules.
func (p *Project) GetPropertyValue(name string) string {
	if value, ok := p.properties[name]; ok {
		return value
	}
	return lookupEnv(name)
}

// PropertyNames returns the names of the project's evaluated properties in
// evaluation order, excluding private names.
func (p *Project) PropertyNames() []string {
	out := make([]string, 0, len(p.propertyOrder))
	for _, name := range p.propertyOrder {
		if IsPrivateProperty(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ItemTypes returns the project's declared item types in declaration order,
// excluding private names.
func (p *Project) ItemTypes() []string {
	out := make([]string, 0, len(p.itemTypes))
	for _, itemType := range p.itemTypes {
		if IsPrivateItemType(itemType) {
			continue
		}
		out = append(out, itemType)
	}
	return out
}

// ItemsOfType returns the project's items of the given type, in declaration
// order. Fails with a ResourceDisposedError if the owning session has been
// torn down.
func (p *Project) ItemsOfType(itemType string) ([]*Item, error) {
	if err := p.session.checkDisposed(); err != nil {
		return nil, err
	}
	items := p.items[itemType]
	out := make([]*Item, len(items))
	copy(out, items)
	return out, nil
}

// Item is one declared project item with its evaluated metadata.
type Item struct {
	ItemType string
	// Include is the evaluated include spec as written, usually relative to
	// the project directory.
	Include string

	recursiveDir string
	metadata     map[string]string
	project      *Project
}

// FullPath returns the item's absolute path.
func (i *Item) FullPath() string {
	if filepath.IsAbs(i.Include) {
		return filepath.Clean(i.Include)
	}
	return filepath.Join(i.project.dir, i.Include)
}

// Metadata returns the named metadata value for the item. Well-known
// metadata is computed from the item's path and file-system state; custom
// metadata comes from the item declaration. Fails with a
// ResourceDisposedError if the owning session has been torn down.
func (i *Item) Metadata(name string) (string, error) {
	if err := i.project.session.checkDisposed(); err != nil {
		return "", err
	}
	if IsWellKnownItemMetadata(name) {
		return i.wellKnownMetadata(name), nil
	}
	return i.metadata[name], nil
}

// MetadataNames returns the item's available metadata names: custom names
// first (excluding private names), then the well-known built-in set.
func (i *Item) MetadataNames() []string {
	out := make([]string, 0, len(i.metadata)+len(wellKnownItemMetadata))
	for name := range i.metadata {
		if IsPrivateMetadata(name) {
			continue
		}
		out = append(out, name)
	}
	out = append(out, wellKnownItemMetadata...)
	return out
}

const _timestampFormat = "2006-01-02 15:04:05.9999999"

func (i *Item) wellKnownMetadata(name string) string {
	fullPath := i.FullPath()
	switch name {
	case "FullPath":
		return fullPath
	case "RootDir":
		return rootDir(fullPath)
	case "Filename":
		base := filepath.Base(fullPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case "Extension":
		return filepath.Ext(fullPath)
	case "RelativeDir":
		dir := filepath.Dir(i.Include)
		if dir == "." {
			return ""
		}
		return dir + string(filepath.Separator)
	case "Directory":
		dir := filepath.Dir(fullPath) + string(filepath.Separator)
		return strings.TrimPrefix(dir, rootDir(fullPath))
	case "RecursiveDir":
		return i.recursiveDir
	case "Identity":
		return i.Include
	case "ModifiedTime", "CreatedTime", "AccessedTime":
		// Creation and access times are not portably available; the engine's
		// contract only requires a stable timestamp per metadata name.
		info, err := i.project.session.fs.Stat(fullPath)
		if err != nil {
			return ""
		}
		return info.ModTime().Format(_timestampFormat)
	default:
		return ""
	}
}

func rootDir(path string) string {
	return filepath.VolumeName(path) + string(filepath.Separator)
}
