package host

import (
	"os"
	"path/filepath"
	"time"

	"go.lsp.dev/uri"

	"scriptconfig/internal/common"
)

// LocalFile is a ScriptFile backed directly by the local file system. It is
// used by the CLI; inside an IDE the platform's own file model takes its place.
type LocalFile struct {
	path string
	uri  uri.URI
}

// NewLocalFile creates a ScriptFile for the given path.
func NewLocalFile(path string) *LocalFile {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return &LocalFile{path: abs, uri: common.FileURI(abs)}
}

func (f *LocalFile) URI() uri.URI { return f.uri }

func (f *LocalFile) Path() string { return f.path }

func (f *LocalFile) Content() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f *LocalFile) ModTime() time.Time {
	info, err := os.Stat(f.path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// LocalFileStore resolves local paths and treats no file as open.
type LocalFileStore struct{}

func (LocalFileStore) Lookup(u uri.URI) (ScriptFile, bool) {
	path := common.URIToFilePath(string(u))
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	return NewLocalFile(path), true
}

func (LocalFileStore) IsOpen(uri.URI) bool { return false }
