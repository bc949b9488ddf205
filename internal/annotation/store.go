package annotation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store handles persistence of annotation data
type Store struct {
	filePath string
}

// NewStore creates a new annotation store
func NewStore(filePath string) *Store {
	return &Store{
		filePath: filePath,
	}
}

// Save writes annotations to disk as JSON
func (s *Store) Save(annotations *Annotations) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(annotations, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal annotations: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write annotations file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to write annotations file: %w", err)
	}
	return nil
}

// Load reads annotations from disk
func (s *Store) Load() (*Annotations, error) {
	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("annotations file not found: %s", s.filePath)
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read annotations file: %w", err)
	}

	var annotations Annotations
	if err := json.Unmarshal(data, &annotations); err != nil {
		return nil, fmt.Errorf("failed to parse annotations file: %w", err)
	}
	if annotations.Files == nil {
		annotations.Files = make(map[string]*FileAnnotations)
	}

	return &annotations, nil
}

// Exists checks if the annotations file exists
func (s *Store) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// Delete removes the annotations file
func (s *Store) Delete() error {
	if !s.Exists() {
		return nil
	}
	return os.Remove(s.filePath)
}

// Path returns the file path where annotations are stored
func (s *Store) Path() string {
	return s.filePath
}

// SaveCollector is a convenience method to save from a collector
func SaveCollector(collector *Collector, filePath string) error {
	return NewStore(filePath).Save(collector.Annotations())
}

// LoadToCollector is a convenience method to load into a new collector
func LoadToCollector(filePath string) (*Collector, error) {
	annotations, err := NewStore(filePath).Load()
	if err != nil {
		return nil, err
	}

	collector := NewCollector()
	collector.annotations = annotations
	return collector, nil
}
