package common

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"go.lsp.dev/uri"
)

// FileURI converts a file system path to a file:// URI.
func FileURI(path string) uri.URI {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return uri.File(abs)
}

// URIToFilePath converts a file:// URI string to a file system path
func URIToFilePath(u string) string {
	if !strings.HasPrefix(u, "file://") {
		return u
	}

	path := strings.TrimPrefix(u, "file://")

	// Decode URL-encoded characters
	decoded, err := url.PathUnescape(path)
	if err == nil {
		path = decoded
	}

	// On Windows, file URIs look like file:///C:/path/to/file
	// After removing file://, we have /C:/path/to/file
	if runtime.GOOS == "windows" && len(path) > 2 {
		if path[0] == '/' && path[2] == ':' {
			path = path[1:]
		}
		path = filepath.FromSlash(path)
	}

	return path
}
