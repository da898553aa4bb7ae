package blob

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
)

// LocalStore writes deck bytes to a directory on disk, served by the HTTP
// layer under /uploads. It backs the offline/backup upload path.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir}
}

func (s *LocalStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", err
	}
	return "/uploads/" + url.PathEscape(name), nil
}
