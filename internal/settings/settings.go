package settings

import (
	"fmt"
	"sync"

	"github.com/jmdelacruz/sarisari-pos/internal/models"
	"github.com/jmdelacruz/sarisari-pos/internal/storage"
)

const FileName = "settings.json"

const DefaultColorScheme = "blue"

var colorSchemes = map[string]bool{
	"blue":   true,
	"green":  true,
	"red":    true,
	"purple": true,
}

var ErrInvalidColorScheme = fmt.Errorf("invalid color scheme")

type Store struct {
	mu      sync.Mutex
	current models.Settings
	file    *storage.JSONStore
}

func Open(dataDir string) (*Store, error) {
	file, err := storage.NewJSONStore(dataDir, FileName)
	if err != nil {
		return nil, err
	}

	s := &Store{file: file, current: models.Settings{ColorScheme: DefaultColorScheme}}
	if err := file.Load(&s.current); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !colorSchemes[s.current.ColorScheme] {
		s.current.ColorScheme = DefaultColorScheme
	}
	return s, nil
}

func (s *Store) Get() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Store) Update(next models.Settings) error {
	if !colorSchemes[next.ColorScheme] {
		return fmt.Errorf("%w: %q", ErrInvalidColorScheme, next.ColorScheme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Save(next); err != nil {
		return err
	}
	s.current = next
	return nil
}
