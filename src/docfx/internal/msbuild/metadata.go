package msbuild

import (
	"slices"
	"strings"
)

// wellKnownItemMetadata lists the built-in per-item metadata names that are
// always available, regardless of the private-name rule. Sorted.
var wellKnownItemMetadata = []string{
	"AccessedTime",
	"CreatedTime",
	"Directory",
	"Extension",
	"Filename",
	"FullPath",
	"Identity",
	"ModifiedTime",
	"RecursiveDir",
	"RelativeDir",
	"RootDir",
}

// IsWellKnownItemMetadata reports whether the named metadata is built in.
// Well-known metadata is exempt from private-name filtering.
func IsWellKnownItemMetadata(name string) bool {
	_, ok := slices.BinarySearch(wellKnownItemMetadata, name)
	return ok
}

// IsPrivateProperty reports whether the named property is excluded from
// public enumeration.
func IsPrivateProperty(name string) bool {
	return strings.HasPrefix(name, "_")
}

// IsPrivateItemType reports whether the named item type is excluded from
// public enumeration.
func IsPrivateItemType(name string) bool {
	return strings.HasPrefix(name, "_")
}

// IsPrivateMetadata reports whether the named item metadata is excluded from
// public enumeration.
func IsPrivateMetadata(name string) bool {
	return strings.HasPrefix(name, "_")
}
