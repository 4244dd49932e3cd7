package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ResponsesFile  = "api_responses.json"
	ModelListsFile = "model_lists.json"
)

// Store writes capture artifacts under Root. An empty Root means the
// working directory.
type Store struct {
	Root string
}

func (s Store) EnsureDir() error {
	if s.Root == "" {
		return nil
	}
	return os.MkdirAll(s.Root, 0o755)
}

func (s Store) Path(name string) string {
	if s.Root == "" {
		return name
	}
	return filepath.Join(s.Root, name)
}

// WriteJSON writes values as a two-space indented JSON array and returns the
// path written.
func (s Store) WriteJSON(name string, values []json.RawMessage) (string, error) {
	if name == "" {
		return "", errors.New("artifact name required")
	}
	if values == nil {
		values = []json.RawMessage{}
	}
	if err := s.EnsureDir(); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	path := s.Path(name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Writable reports whether files can be created under Root.
func (s Store) Writable() bool {
	if err := s.EnsureDir(); err != nil {
		return false
	}
	testFile := s.Path(".apicap-writetest")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return false
	}
	_ = os.Remove(testFile)
	return true
}
