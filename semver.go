package autotag

import (
	"fmt"
	"path"
	"strings"

	"github.com/blang/semver"
)

// Clean strips an optional module-style path prefix and a leading "v" from a
// tag name and parses the remainder as a strict semantic version. The
// boolean reports whether the input was a valid version; malformed input is
// not an error, it just marks the tag as not a version tag.
func Clean(raw string) (semver.Version, bool) {
	_, versionComponent := path.Split(raw)
	trimmed := strings.TrimPrefix(versionComponent, "v")

	version, err := semver.Parse(trimmed)
	if err != nil {
		return semver.Version{}, false
	}
	return version, true
}

// IsPrerelease reports whether the version carries a prerelease component.
func IsPrerelease(v semver.Version) bool {
	return len(v.Pre) > 0
}

// Increment returns the next version above raw for the given bump level.
// Major, minor and patch bumps clear prerelease and build metadata. For
// BumpPrerelease the numeric suffix scoped to label is advanced (1.3.0-beta.0
// becomes 1.3.0-beta.1); when raw has no prerelease, or one under a different
// label, a new series starts one patch above the current release.
func Increment(raw string, level BumpLevel, label string) (semver.Version, error) {
	version, ok := Clean(raw)
	if !ok {
		return semver.Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, raw)
	}

	next := semver.Version{
		Major: version.Major,
		Minor: version.Minor,
		Patch: version.Patch,
	}

	switch level {
	case BumpMajor:
		next.Major++
		next.Minor = 0
		next.Patch = 0
	case BumpMinor:
		next.Minor++
		next.Patch = 0
	case BumpPatch:
		next.Patch++
	case BumpPrerelease:
		if len(version.Pre) > 0 && version.Pre[0].VersionStr == label {
			n := uint64(0)
			if len(version.Pre) > 1 && version.Pre[1].IsNum {
				n = version.Pre[1].VersionNum + 1
			}
			next.Pre = prereleaseIdentifiers(label, n)
		} else {
			next.Patch++
			next.Pre = prereleaseIdentifiers(label, 0)
		}
	default:
		return semver.Version{}, fmt.Errorf("cannot increment by level %q", level)
	}

	return next, nil
}

func prereleaseIdentifiers(label string, n uint64) []semver.PRVersion {
	return []semver.PRVersion{
		{VersionStr: label},
		{VersionNum: n, IsNum: true},
	}
}
