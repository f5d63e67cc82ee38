// Package theme persists the display theme preference, the only local state
// this client keeps. It is injected configuration with explicit load/save
// hooks rather than ambient global state.
package theme

import (
	"os"
	"strings"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Store reads and writes the theme preference.
type Store interface {
	Load() Theme
	Save(t Theme) error
}

// FileStore keeps the preference in a small plain-text file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the saved theme, defaulting to Light when the file is absent
// or holds an unknown value.
func (s *FileStore) Load() Theme {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return Light
	}
	if Theme(strings.TrimSpace(string(b))) == Dark {
		return Dark
	}
	return Light
}

func (s *FileStore) Save(t Theme) error {
	return os.WriteFile(s.path, []byte(t), 0o600)
}

// Toggle returns the other theme.
func Toggle(t Theme) Theme {
	if t == Light {
		return Dark
	}
	return Light
}
