// Package scripting holds the value types of the configuration machinery:
// resolved configurations, load snapshots, per-file cache state, staleness
// fingerprints and aggregated dependency roots.
package scripting

import "sort"

// SDK identifies a resolved SDK installation.
type SDK struct {
	Name     string `json:"name"`
	HomePath string `json:"home_path"`
}

// IsValid reports whether the SDK reference points at a usable installation.
// A missing home directory is treated as cache-miss material, never an error.
func (s SDK) IsValid() bool {
	return s.HomePath != ""
}

// Configuration is a resolved script configuration: the compiler classpath,
// the dependency source roots and the SDK the script compiles against.
// Configurations are immutable once constructed.
type Configuration struct {
	ClassPath  []string `json:"class_path"`
	SourcePath []string `json:"source_path"`
	SDK        SDK      `json:"sdk"`
	JavaHome   string   `json:"java_home,omitempty"`
}

// Similar reports whether two configurations are close enough that replacing
// one with the other would not change compilation or highlighting results.
// Classpath, source path and SDK are compared as unordered sets; JavaHome is
// ignored because it is discovery metadata, not a compilation input.
func (c *Configuration) Similar(other *Configuration) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.SDK == other.SDK &&
		sameStringSet(c.ClassPath, other.ClassPath) &&
		sameStringSet(c.SourcePath, other.SourcePath)
}

// Roots returns the dependency roots this configuration contributes.
func (c *Configuration) Roots() ClassRoots {
	roots := NewClassRoots()
	if c == nil {
		return roots
	}
	roots.AddClassFiles(c.ClassPath...)
	roots.AddSourceFiles(c.SourcePath...)
	if c.SDK.IsValid() {
		roots.AddSDKs(c.SDK)
	}
	return roots
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
