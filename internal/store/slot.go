package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot persists the snapshot as a single JSON file on disk.
type FileSlot struct {
	path string
}

// NewFileSlot creates a file-backed slot at the given path. The file is
// created on first Save.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Load implements Slot. A missing file is an empty slot, not an error.
func (s *FileSlot) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}
	return data, nil
}

// Save implements Slot.
func (s *FileSlot) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", s.path, err)
	}
	return nil
}

// MemSlot is an in-memory slot for tests and ephemeral runs.
type MemSlot struct {
	data []byte
}

// Load implements Slot.
func (s *MemSlot) Load() ([]byte, error) {
	return s.data, nil
}

// Save implements Slot.
func (s *MemSlot) Save(data []byte) error {
	s.data = append([]byte(nil), data...)
	return nil
}
