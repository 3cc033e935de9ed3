// Package roots maintains the derived view over all applied configurations:
// the aggregated dependency roots, per-file class search scopes and the
// index-rebuild notifications that keep external finders consistent.
package roots

import "scriptconfig/internal/scripting"

// Scope is a resolved set of root paths used for class search. Scopes are
// value types; once handed out they are never mutated.
type Scope struct {
	roots map[string]struct{}
}

// NewScope builds a scope over the given root paths.
func NewScope(paths ...string) Scope {
	s := Scope{roots: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if p != "" {
			s.roots[p] = struct{}{}
		}
	}
	return s
}

// ScopeFor derives the class search scope of a single configuration:
// its classpath entries plus the SDK installation root.
func ScopeFor(cfg *scripting.Configuration) Scope {
	if cfg == nil {
		return NewScope()
	}
	paths := append([]string(nil), cfg.ClassPath...)
	if cfg.SDK.IsValid() {
		paths = append(paths, cfg.SDK.HomePath)
	}
	return NewScope(paths...)
}

// Includes reports whether the path is one of the scope's roots.
func (s Scope) Includes(path string) bool {
	_, ok := s.roots[path]
	return ok
}

// Len returns the number of roots in the scope.
func (s Scope) Len() int { return len(s.roots) }

// Paths returns the scope's roots in unspecified order.
func (s Scope) Paths() []string {
	out := make([]string, 0, len(s.roots))
	for p := range s.roots {
		out = append(out, p)
	}
	return out
}
