package toolchain

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tintoy/docfx/src/docfx/internal/errors"
)

func TestComputeGlobalProperties(t *testing.T) {
	runtime := &RuntimeInfo{
		Version:       "8.0.100",
		BaseDirectory: filepath.Join("/usr", "share", "dotnet", "sdk", "8.0.100"),
	}

	props, err := ComputeGlobalProperties(runtime, filepath.Join("/solutions", "app"))
	require.NoError(t, err)

	separator := string(os.PathSeparator)
	solutionDir, ok := props.Get(PropertySolutionDir)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(solutionDir, separator), "solution dir %q must end with the path separator", solutionDir)

	expectedValues := map[string]string{
		PropertyDesignTimeBuild:              "true",
		PropertyBuildProjectReferences:       "false",
		PropertyResolveReferenceDependencies: "true",
		PropertyExtensionsPath:               runtime.BaseDirectory,
		PropertySDKsPath:                     filepath.Join(runtime.BaseDirectory, "Sdks"),
		PropertyRoslynTargetsPath:            filepath.Join(runtime.BaseDirectory, "Roslyn"),
	}
	for name, expected := range expectedValues {
		value, ok := props.Get(name)
		require.True(t, ok, "missing property %s", name)
		assert.Equal(t, expected, value, "property %s", name)
	}
}

func TestComputeGlobalPropertiesTrailingSeparator(t *testing.T) {
	runtime := &RuntimeInfo{BaseDirectory: "/opt/dotnet/sdk/8.0.100"}

	// Already-normalized directories must not grow a second separator.
	separator := string(os.PathSeparator)
	props, err := ComputeGlobalProperties(runtime, filepath.Join("/solutions", "app")+separator)
	require.NoError(t, err)

	solutionDir, _ := props.Get(PropertySolutionDir)
	assert.False(t, strings.HasSuffix(solutionDir, separator+separator))
	assert.True(t, strings.HasSuffix(solutionDir, separator))
}

func TestComputeGlobalPropertiesInvalidConfiguration(t *testing.T) {
	tests := []struct {
		desc        string
		runtime     *RuntimeInfo
		solutionDir string
	}{
		{
			desc:        "blank solution directory",
			runtime:     &RuntimeInfo{BaseDirectory: "/opt/dotnet"},
			solutionDir: "   ",
		},
		{
			desc:        "missing runtime descriptor",
			runtime:     nil,
			solutionDir: "/solutions/app",
		},
		{
			desc:        "undetermined base directory",
			runtime:     &RuntimeInfo{},
			solutionDir: "/solutions/app",
		},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := ComputeGlobalProperties(tt.runtime, tt.solutionDir)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidConfiguration(err))
		})
	}
}

func TestGlobalPropertiesOrdering(t *testing.T) {
	props := NewGlobalProperties()
	props.Set("B", "1")
	props.Set("A", "2")
	props.Set("B", "3")

	// Re-assignment keeps the original position.
	assert.Equal(t, []string{"B", "A"}, props.Names())
	value, ok := props.Get("B")
	require.True(t, ok)
	assert.Equal(t, "3", value)
	assert.Equal(t, 2, props.Len())
	assert.True(t, props.Has("A"))
	assert.False(t, props.Has("C"))
}

func TestApplyToProcessEnvironment(t *testing.T) {
	t.Setenv(PropertyExtensionsPath, "")
	t.Setenv(PropertySDKsPath, "")

	runtime := &RuntimeInfo{BaseDirectory: "/opt/dotnet/sdk/8.0.100"}
	props, err := ComputeGlobalProperties(runtime, "/solutions/app")
	require.NoError(t, err)

	require.NoError(t, ApplyToProcessEnvironment(props))
	assert.Equal(t, runtime.BaseDirectory, os.Getenv(PropertyExtensionsPath))
	assert.Equal(t, filepath.Join(runtime.BaseDirectory, "Sdks"), os.Getenv(PropertySDKsPath))
}

func TestApplyToProcessEnvironmentMissingProperties(t *testing.T) {
	err := ApplyToProcessEnvironment(NewGlobalProperties())
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfiguration(err))
}
