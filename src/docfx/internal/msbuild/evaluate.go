package msbuild

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var _propertyPattern = regexp.MustCompile(`\$\(([A-Za-z_][A-Za-z0-9_]*)\)`)
var _conditionPattern = regexp.MustCompile(`^\s*'(.*?)'\s*(==|!=)\s*'(.*?)'\s*$`)

func lookupEnv(name string) string {
	return os.Getenv(name)
}

// evaluate turns a parsed definition into an evaluated Project owned by the
// given session. Global properties take precedence over project-declared
// values; undefined property references expand to the empty string.
func evaluate(session *Session, definition *ProjectDefinition, projectFilePath string) (*Project, error) {
	projectFilePath = filepath.Clean(projectFilePath)
	if !filepath.IsAbs(projectFilePath) {
		abs, err := filepath.Abs(projectFilePath)
		if err != nil {
			return nil, err
		}
		projectFilePath = abs
	}

	project := &Project{
		session:    session,
		filePath:   projectFilePath,
		dir:        filepath.Dir(projectFilePath),
		definition: definition,
		properties: make(map[string]string),
		items:      make(map[string][]*Item),
	}

	ev := &evaluator{session: session, project: project}
	ev.evaluateProperties()
	if err := ev.evaluateItems(); err != nil {
		return nil, err
	}
	return project, nil
}

type evaluator struct {
	session *Session
	project *Project
}

func (e *evaluator) evaluateProperties() {
	p := e.project

	// Global properties seed the property set and cannot be overridden by
	// project-declared assignments.
	globals := e.session.globalProperties
	for _, name := range globals.Names() {
		value, _ := globals.Get(name)
		e.setProperty(name, value)
	}

	base := filepath.Base(p.filePath)
	e.setProperty("MSBuildProjectFullPath", p.filePath)
	e.setProperty("MSBuildProjectDirectory", p.dir)
	e.setProperty("MSBuildProjectFile", base)
	e.setProperty("MSBuildProjectName", strings.TrimSuffix(base, filepath.Ext(base)))
	e.setProperty("MSBuildThisFileDirectory", p.dir+string(filepath.Separator))

	for _, group := range p.definition.PropertyGroups {
		if !e.evalCondition(group.Condition) {
			continue
		}
		for _, property := range group.Properties {
			if !e.evalCondition(property.Condition) {
				continue
			}
			name := property.XMLName.Local
			if globals.Has(name) {
				continue
			}
			e.setProperty(name, e.expand(strings.TrimSpace(property.Value)))
		}
	}
}

func (e *evaluator) setProperty(name, value string) {
	if _, ok := e.project.properties[name]; !ok {
		e.project.propertyOrder = append(e.project.propertyOrder, name)
	}
	e.project.properties[name] = value
}

// expand substitutes $(Name) references. Lookup order: evaluated properties
// so far, then the process environment.
func (e *evaluator) expand(value string) string {
	return _propertyPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := e.project.properties[name]; ok {
			return v
		}
		return lookupEnv(name)
	})
}

// evalCondition evaluates a condition attribute. Only '..'=='..' and
// '..'!='..' comparisons are understood; anything else is treated as
// satisfied, which matches this engine's design-time-only remit.
func (e *evaluator) evalCondition(condition string) bool {
	if strings.TrimSpace(condition) == "" {
		return true
	}
	m := _conditionPattern.FindStringSubmatch(condition)
	if m == nil {
		return true
	}
	equal := strings.EqualFold(e.expand(m[1]), e.expand(m[3]))
	if m[2] == "!=" {
		return !equal
	}
	return equal
}

func (e *evaluator) evaluateItems() error {
	p := e.project

	for _, group := range p.definition.ItemGroups {
		if !e.evalCondition(group.Condition) {
			continue
		}
		for _, element := range group.Items {
			if !e.evalCondition(element.Condition) {
				continue
			}
			if err := e.applyItemElement(element); err != nil {
				return err
			}
		}
	}

	// SDK-style projects get their compile items implicitly when none are
	// declared.
	if p.definition.Sdk != "" && len(p.items[ItemTypeCompile]) == 0 &&
		!strings.EqualFold(p.GetPropertyValue("EnableDefaultCompileItems"), "false") {
		pattern := "**/*.cs"
		if strings.EqualFold(filepath.Ext(p.filePath), ".vbproj") {
			pattern = "**/*.vb"
		}
		if err := e.includeItems(ItemTypeCompile, pattern, "bin/**;obj/**", nil); err != nil {
			return err
		}
	}
	return nil
}

func (e *evaluator) applyItemElement(element ItemElement) error {
	itemType := element.XMLName.Local

	if remove := e.expand(element.Remove); remove != "" {
		e.removeItems(itemType, remove)
		return nil
	}
	include := e.expand(element.Include)
	if include == "" {
		return nil
	}

	metadata := make(map[string]string, len(element.Metadata))
	for _, md := range element.Metadata {
		metadata[md.XMLName.Local] = e.expand(strings.TrimSpace(md.Value))
	}
	return e.includeItems(itemType, include, e.expand(element.Exclude), metadata)
}

func (e *evaluator) includeItems(itemType, include, exclude string, metadata map[string]string) error {
	excluded := make(map[string]bool)
	for _, spec := range splitSpecs(exclude) {
		matches, err := e.expandSpec(spec)
		if err != nil {
			return err
		}
		for _, match := range matches {
			excluded[e.itemKey(match.include)] = true
		}
	}

	for _, spec := range splitSpecs(include) {
		matches, err := e.expandSpec(spec)
		if err != nil {
			return err
		}
		for _, match := range matches {
			if excluded[e.itemKey(match.include)] {
				continue
			}
			e.addItem(&Item{
				ItemType:     itemType,
				Include:      match.include,
				recursiveDir: match.recursiveDir,
				metadata:     metadata,
				project:      e.project,
			})
		}
	}
	return nil
}

func (e *evaluator) addItem(item *Item) {
	p := e.project
	if _, ok := p.items[item.ItemType]; !ok {
		p.itemTypes = append(p.itemTypes, item.ItemType)
	}
	p.items[item.ItemType] = append(p.items[item.ItemType], item)
}

func (e *evaluator) removeItems(itemType, remove string) {
	removed := make(map[string]bool)
	for _, spec := range splitSpecs(remove) {
		matches, err := e.expandSpec(spec)
		if err != nil {
			continue
		}
		for _, match := range matches {
			removed[e.itemKey(match.include)] = true
		}
	}

	kept := e.project.items[itemType][:0]
	for _, item := range e.project.items[itemType] {
		if !removed[e.itemKey(item.Include)] {
			kept = append(kept, item)
		}
	}
	e.project.items[itemType] = kept
}

// itemKey canonicalizes an include spec for exclude/remove matching.
func (e *evaluator) itemKey(include string) string {
	if filepath.IsAbs(include) {
		return filepath.Clean(include)
	}
	return filepath.Join(e.project.dir, include)
}

type itemMatch struct {
	include      string
	recursiveDir string
}

// expandSpec expands one include/exclude/remove spec into concrete matches.
// Wildcard specs match existing files only; literal specs are kept as
// written even when the file does not exist.
func (e *evaluator) expandSpec(spec string) ([]itemMatch, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	normalized := filepath.ToSlash(spec)

	switch {
	case strings.Contains(normalized, "**"):
		return e.expandRecursiveSpec(normalized)
	case strings.ContainsAny(normalized, "*?"):
		pattern := normalized
		if !filepath.IsAbs(spec) {
			pattern = path.Join(filepath.ToSlash(e.project.dir), normalized)
		}
		paths, err := e.session.fs.Glob(filepath.FromSlash(pattern))
		if err != nil {
			return nil, err
		}
		matches := make([]itemMatch, len(paths))
		for i, p := range paths {
			matches[i] = itemMatch{include: e.relativize(p)}
		}
		return matches, nil
	default:
		return []itemMatch{{include: filepath.FromSlash(normalized)}}, nil
	}
}

// expandRecursiveSpec expands a `prefix/**/suffix` spec by walking the file
// system. The part of each match covered by `**` becomes RecursiveDir.
func (e *evaluator) expandRecursiveSpec(normalized string) ([]itemMatch, error) {
	idx := strings.Index(normalized, "**")
	prefix := strings.TrimSuffix(normalized[:idx], "/")
	suffix := strings.TrimPrefix(normalized[idx+2:], "/")
	if suffix == "" {
		suffix = "*"
	}

	root := filepath.FromSlash(prefix)
	if !filepath.IsAbs(root) {
		root = filepath.Join(e.project.dir, root)
	}
	exists, err := e.session.fs.DirExists(root)
	if err != nil || !exists {
		return nil, err
	}

	var matches []itemMatch
	err = e.session.fs.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if ok, _ := path.Match(suffix, d.Name()); !ok {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		recursiveDir := filepath.Dir(rel)
		if recursiveDir == "." {
			recursiveDir = ""
		} else {
			recursiveDir += string(filepath.Separator)
		}
		matches = append(matches, itemMatch{
			include:      e.relativize(p),
			recursiveDir: recursiveDir,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir is already lexical per directory; sort across the whole match
	// set so evaluation is deterministic.
	sort.Slice(matches, func(i, j int) bool { return matches[i].include < matches[j].include })
	return matches, nil
}

func (e *evaluator) relativize(p string) string {
	rel, err := filepath.Rel(e.project.dir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

func splitSpecs(specs string) []string {
	if strings.TrimSpace(specs) == "" {
		return nil
	}
	parts := strings.Split(specs, ";")
	out := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			out = append(out, strings.TrimSpace(part))
		}
	}
	return out
}
