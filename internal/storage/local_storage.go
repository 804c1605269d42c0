package storage

import (
	"os"
	"path/filepath"
)

// LocalStorage serves images from a directory on disk.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Path returns the file backing key, or ErrImageNotFound.
func (s *LocalStorage) Path(key string) (string, error) {
	key, err := ImageKey(key)
	if err != nil {
		return "", err
	}

	p := filepath.Join(s.dir, filepath.FromSlash(key))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", ErrImageNotFound
	}
	return p, nil
}
