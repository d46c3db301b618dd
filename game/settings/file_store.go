package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// persistedSettings is the JSON layout of the settings file
type persistedSettings struct {
	Settings *Settings `json:"settings"`
	SavedAt  time.Time `json:"saved_at"`
}

// FileStore implements Store with a single JSON file
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store, creating the parent directory if needed
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the settings file location
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the settings file, or returns Defaults when it does not exist
func (fs *FileStore) Load() (*Settings, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	jsonData, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var data persistedSettings
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if data.Settings == nil {
		return Defaults(), nil
	}
	data.Settings.Normalize()
	return data.Settings, nil
}

// Save validates and writes the settings file
func (fs *FileStore) Save(s *Settings) error {
	if s == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.write(s)
}

// Reset writes Defaults over the stored settings
func (fs *FileStore) Reset() (*Settings, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	s := Defaults()
	if err := fs.write(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (fs *FileStore) write(s *Settings) error {
	jsonData, err := json.MarshalIndent(persistedSettings{Settings: s, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// write then rename so a crash never leaves a half-written file
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
