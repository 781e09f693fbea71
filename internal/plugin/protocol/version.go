// Package protocol handles search provider protocol detection and version compatibility.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/drape/pkg/plugin"
)

const (
	// ProtocolVersion is the provider API version this build speaks.
	ProtocolVersion = plugin.ProtocolVersion

	// MinCompatibleVersion is the oldest provider API version drape accepts.
	MinCompatibleVersion = plugin.MinCompatibleVersion
)

// Version is a parsed MAJOR.MINOR.PATCH protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format. A leading "v" is accepted.
func Parse(version string) (Version, error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(version), "v"), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	var nums [3]int
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid %s version: %s", name, parts[i])
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// IsCompatible checks whether a provider's protocol version can be used.
// The major version must match exactly and the version must not be older than
// MinCompatibleVersion. Newer minor and patch versions are accepted.
func IsCompatible(pluginVersionStr string) (bool, error) {
	pluginVersion, err := Parse(pluginVersionStr)
	if err != nil {
		return false, fmt.Errorf("failed to parse plugin version: %w", err)
	}

	current := GetCurrentVersion()
	if pluginVersion.Major != current.Major {
		return false, fmt.Errorf(
			"incompatible major version: plugin is %s, drape requires %d.x.x",
			pluginVersion, current.Major,
		)
	}

	minVersion, err := Parse(MinCompatibleVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse minimum compatible version: %w", err)
	}
	if pluginVersion.Less(minVersion) {
		return false, fmt.Errorf(
			"plugin version %s is too old, minimum required is %s",
			pluginVersion, MinCompatibleVersion,
		)
	}

	return true, nil
}

// GetCurrentVersion returns ProtocolVersion parsed.
func GetCurrentVersion() Version {
	v, err := Parse(ProtocolVersion)
	if err != nil {
		panic(fmt.Sprintf("invalid ProtocolVersion constant: %v", err))
	}
	return v
}
