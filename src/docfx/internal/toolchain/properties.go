// Package toolchain provisions the evaluation environment for a load
// operation: the global evaluation properties derived from the installed
// .NET toolchain, and the process-wide environment variables the build
// engine's SDK resolution reads them from.
package toolchain

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tintoy/docfx/src/docfx/internal/errors"
)

// Global evaluation property names.
const (
	// PropertyDesignTimeBuild marks the session as design-time only.
	PropertyDesignTimeBuild = "DesignTimeBuild"
	// PropertyBuildProjectReferences disables recursive builds of referenced projects.
	PropertyBuildProjectReferences = "BuildProjectReferences"
	// PropertyResolveReferenceDependencies enables transitive reference resolution.
	PropertyResolveReferenceDependencies = "_ResolveReferenceDependencies"
	// PropertySolutionDir is the solution root directory, trailing-separator-normalized.
	PropertySolutionDir = "SolutionDir"
	// PropertyExtensionsPath is the toolchain extensions directory.
	PropertyExtensionsPath = "MSBuildExtensionsPath"
	// PropertySDKsPath is the toolchain SDKs directory.
	PropertySDKsPath = "MSBuildSDKsPath"
	// PropertyRoslynTargetsPath is the toolchain compiler-targets directory.
	PropertyRoslynTargetsPath = "RoslynTargetsPath"
)

// RuntimeInfo describes the installed .NET toolchain.
type RuntimeInfo struct {
	Version       string
	BaseDirectory string
}

// GlobalProperties is an ordered name-to-value property mapping, fixed for
// the lifetime of one evaluation session. Per-project overrides are layered
// on top of it, never merged into it.
type GlobalProperties struct {
	names  []string
	values map[string]string
}

// NewGlobalProperties returns an empty property set.
func NewGlobalProperties() *GlobalProperties {
	return &GlobalProperties{values: make(map[string]string)}
}

// Set assigns a property value. First assignment determines ordering.
func (g *GlobalProperties) Set(name, value string) {
	if _, ok := g.values[name]; !ok {
		g.names = append(g.names, name)
	}
	g.values[name] = value
}

// Get returns a property value and whether it is present.
func (g *GlobalProperties) Get(name string) (string, bool) {
	value, ok := g.values[name]
	return value, ok
}

// Has reports whether a property is present.
func (g *GlobalProperties) Has(name string) bool {
	_, ok := g.values[name]
	return ok
}

// Names returns the property names in assignment order.
func (g *GlobalProperties) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Len returns the number of properties.
func (g *GlobalProperties) Len() int {
	return len(g.names)
}

// ComputeGlobalProperties computes the global evaluation properties for a
// session rooted at solutionDir, using the detected toolchain runtime.
func ComputeGlobalProperties(runtime *RuntimeInfo, solutionDir string) (*GlobalProperties, error) {
	if strings.TrimSpace(solutionDir) == "" {
		return nil, &errors.InvalidConfigurationError{Reason: "solution directory must not be blank"}
	}
	if runtime == nil {
		return nil, &errors.InvalidConfigurationError{Reason: "runtime descriptor is required"}
	}
	if strings.TrimSpace(runtime.BaseDirectory) == "" {
		return nil, &errors.InvalidConfigurationError{Reason: "cannot determine toolchain base directory"}
	}

	separator := string(os.PathSeparator)
	solutionDir = filepath.Clean(solutionDir)
	if !strings.HasSuffix(solutionDir, separator) {
		solutionDir += separator
	}

	props := NewGlobalProperties()
	props.Set(PropertyDesignTimeBuild, "true")
	props.Set(PropertyBuildProjectReferences, "false")
	props.Set(PropertyResolveReferenceDependencies, "true")
	props.Set(PropertySolutionDir, solutionDir)
	props.Set(PropertyExtensionsPath, runtime.BaseDirectory)
	props.Set(PropertySDKsPath, filepath.Join(runtime.BaseDirectory, "Sdks"))
	props.Set(PropertyRoslynTargetsPath, filepath.Join(runtime.BaseDirectory, "Roslyn"))

	return props, nil
}

// ApplyToProcessEnvironment writes the toolchain-location properties into
// process-wide environment variables. The build engine's SDK resolution reads
// these from the environment rather than from session properties, so this is
// a deliberate leak of session configuration into process-wide state. There
// is no rollback; concurrent loads targeting different toolchains in the
// same process will race on these variables.
func ApplyToProcessEnvironment(props *GlobalProperties) error {
	for _, name := range []string{PropertyExtensionsPath, PropertySDKsPath} {
		value, ok := props.Get(name)
		if !ok {
			return &errors.InvalidConfigurationError{Reason: "global properties are missing " + name}
		}
		if err := os.Setenv(name, value); err != nil {
			return err
		}
	}
	return nil
}
