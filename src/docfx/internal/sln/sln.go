// Package sln parses solution files into an ordered list of member-project
// paths.
package sln

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

// _solutionFolderTypeGUID identifies solution folders, which are grouping
// nodes rather than member projects.
const _solutionFolderTypeGUID = "2150E333-8FDC-42A3-9474-1A3956D46DE8"

var _projectLinePattern = regexp.MustCompile(
	`^Project\("\{([^}]+)\}"\)\s*=\s*"([^"]*)",\s*"([^"]*)",\s*"\{([^}]+)\}"`)

// ParseSolution parses solution file content and returns the member projects'
// absolute paths, in the order the solution declares them. Relative paths are
// resolved against solutionDir; backslash separators are normalized.
//
// Parsing is best effort: malformed project lines are reported through the
// returned error while well-formed lines still contribute to the result.
func ParseSolution(solutionFile io.Reader, solutionDir string) (projects []string, err error) {
	scanner := bufio.NewScanner(solutionFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Project(") {
			continue
		}

		m := _projectLinePattern.FindStringSubmatch(line)
		if m == nil {
			err = multierr.Append(err, fmt.Errorf("malformed project line %q", line))
			continue
		}
		typeGUID, memberPath := strings.ToUpper(m[1]), m[3]
		if typeGUID == _solutionFolderTypeGUID {
			continue
		}
		if memberPath == "" {
			err = multierr.Append(err, fmt.Errorf("project line %q has no path", line))
			continue
		}

		memberPath = filepath.FromSlash(strings.ReplaceAll(memberPath, `\`, "/"))
		if !filepath.IsAbs(memberPath) {
			memberPath = filepath.Join(solutionDir, memberPath)
		}
		projects = append(projects, memberPath)
	}
	if scanErr := scanner.Err(); scanErr != nil {
		err = multierr.Append(err, scanErr)
	}
	return projects, err
}
