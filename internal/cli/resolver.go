package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scriptconfig/internal/host"
	"scriptconfig/internal/scripting"
)

// localResolver is the CLI's compiler-side resolver: it builds a script
// configuration from the configured library directories and SDK. Inside an
// IDE the script definition compiler facade takes its place.
type localResolver struct {
	libDirs []string
	sdk     scripting.SDK
}

func newLocalResolver(libDirs []string, sdk scripting.SDK) *localResolver {
	return &localResolver{libDirs: libDirs, sdk: sdk}
}

func (r *localResolver) Resolve(_ context.Context, file host.ScriptFile) (*scripting.Configuration, []scripting.Report, error) {
	var reports []scripting.Report
	var classPath, sourcePath []string

	for _, dir := range r.libDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			reports = append(reports, scripting.ErrorReport("resolver",
				fmt.Sprintf("cannot read library directory %s: %v", dir, err)))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			path := filepath.Join(dir, name)
			switch {
			case strings.HasSuffix(name, "-sources.jar"):
				sourcePath = append(sourcePath, path)
			case strings.HasSuffix(name, ".jar"):
				classPath = append(classPath, path)
			}
		}
	}

	if !r.sdk.IsValid() {
		reports = append(reports, scripting.InfoReport("resolver",
			"no SDK configured; script resolution is limited to library jars"))
	}

	return &scripting.Configuration{
		ClassPath:  classPath,
		SourcePath: sourcePath,
		SDK:        r.sdk,
	}, reports, nil
}
