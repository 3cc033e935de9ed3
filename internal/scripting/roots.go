package scripting

import "sort"

// ClassRoots is the deduplicated union of class file roots, source file roots
// and SDKs needed to resolve a set of scripts. Order is irrelevant.
type ClassRoots struct {
	ClassFiles  map[string]struct{} `json:"-"`
	SourceFiles map[string]struct{} `json:"-"`
	SDKs        map[SDK]struct{}    `json:"-"`
}

// NewClassRoots creates an empty roots set.
func NewClassRoots() ClassRoots {
	return ClassRoots{
		ClassFiles:  make(map[string]struct{}),
		SourceFiles: make(map[string]struct{}),
		SDKs:        make(map[SDK]struct{}),
	}
}

func (r ClassRoots) AddClassFiles(paths ...string) {
	for _, p := range paths {
		if p != "" {
			r.ClassFiles[p] = struct{}{}
		}
	}
}

func (r ClassRoots) AddSourceFiles(paths ...string) {
	for _, p := range paths {
		if p != "" {
			r.SourceFiles[p] = struct{}{}
		}
	}
}

func (r ClassRoots) AddSDKs(sdks ...SDK) {
	for _, s := range sdks {
		if s.IsValid() {
			r.SDKs[s] = struct{}{}
		}
	}
}

// Union merges other into r.
func (r ClassRoots) Union(other ClassRoots) {
	for p := range other.ClassFiles {
		r.ClassFiles[p] = struct{}{}
	}
	for p := range other.SourceFiles {
		r.SourceFiles[p] = struct{}{}
	}
	for s := range other.SDKs {
		r.SDKs[s] = struct{}{}
	}
}

// ContainsAll reports whether every root in other is already present in r.
func (r ClassRoots) ContainsAll(other ClassRoots) bool {
	for p := range other.ClassFiles {
		if _, ok := r.ClassFiles[p]; !ok {
			return false
		}
	}
	for p := range other.SourceFiles {
		if _, ok := r.SourceFiles[p]; !ok {
			return false
		}
	}
	for s := range other.SDKs {
		if _, ok := r.SDKs[s]; !ok {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no roots are recorded.
func (r ClassRoots) IsEmpty() bool {
	return len(r.ClassFiles) == 0 && len(r.SourceFiles) == 0 && len(r.SDKs) == 0
}

// ClassFileList returns the class file roots sorted for stable output.
func (r ClassRoots) ClassFileList() []string {
	return sortedKeys(r.ClassFiles)
}

// SourceFileList returns the source file roots sorted for stable output.
func (r ClassRoots) SourceFileList() []string {
	return sortedKeys(r.SourceFiles)
}

// SDKList returns the SDKs sorted by name.
func (r ClassRoots) SDKList() []SDK {
	out := make([]SDK, 0, len(r.SDKs))
	for s := range r.SDKs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].HomePath < out[j].HomePath
	})
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
