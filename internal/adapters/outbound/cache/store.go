package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/medqc/stacaudit/internal/domain"
)

// Store is a file-based implementation of domain.ResponseStore. It keeps only
// the last successful response.
type Store struct{}

// New creates a new file-based response store.
func New() *Store {
	return &Store{}
}

// Load reads the stored response under dir. Returns domain.ErrNoStoredResult
// if nothing has been stored yet.
func (s *Store) Load(dir string) (*domain.StoredResponse, error) {
	data, err := os.ReadFile(storePath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoStoredResult
		}
		return nil, err
	}

	var stored domain.StoredResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parsing stored response: %w", err)
	}
	return &stored, nil
}

// Save writes the response to disk, creating directories as needed.
func (s *Store) Save(dir string, stored *domain.StoredResponse) error {
	if err := os.MkdirAll(storeDir(dir), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(storePath(dir), data, 0644)
}

// Invalidate removes the stored response.
func (s *Store) Invalidate(dir string) error {
	if err := os.Remove(storePath(dir)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func storeDir(dir string) string {
	return filepath.Join(dir, ".stacaudit", "cache")
}

func storePath(dir string) string {
	return filepath.Join(storeDir(dir), "last.json")
}
