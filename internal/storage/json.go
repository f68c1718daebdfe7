package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore persists one collection as a whole JSON snapshot per write.
type JSONStore struct {
	mu   sync.RWMutex
	path string
}

func NewJSONStore(dataDir, filename string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &JSONStore{path: filepath.Join(dataDir, filename)}, nil
}

func (s *JSONStore) Path() string { return s.path }

// Load decodes the snapshot into dst. A missing file is not an error; dst is
// left as-is.
func (s *JSONStore) Load(dst any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(dst)
}

// Save writes the snapshot through a temp file and an atomic rename, so a
// failed write never corrupts the previous snapshot.
func (s *JSONStore) Save(src any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(src); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}

func (s *JSONStore) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path)
	return err == nil
}
