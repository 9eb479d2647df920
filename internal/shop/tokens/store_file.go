package tokens

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the key/value map as a JSON file. Every Get re-reads
// the file so concurrent processes sharing the file observe each other's
// writes, the same way browser tabs share local storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) read() map[string]string {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]string{}
	}
	return m
}

func (s *FileStore) write(m map[string]string) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.read()[name]
	return v, ok
}

func (s *FileStore) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.read()
	m[name] = value
	return s.write(m)
}

func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.read()
	delete(m, name)
	return s.write(m)
}
