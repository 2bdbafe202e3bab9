// Package storage persists the match catalogue and the live results snapshot as JSON files.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yourusername/live-odds/internal/models"
)

const jsonIndent = "    "

// FileStore reads and writes the on-disk JSON state
type FileStore struct {
	cataloguePath string
	livePath      string
	mu            sync.Mutex
}

// NewFileStore creates a store for the given file paths
func NewFileStore(cataloguePath, livePath string) *FileStore {
	return &FileStore{
		cataloguePath: cataloguePath,
		livePath:      livePath,
	}
}

// ReadCatalogue loads the match catalogue written by the listing step
func (s *FileStore) ReadCatalogue() ([]models.MatchCatalogueEntry, error) {
	var entries []models.MatchCatalogueEntry
	if err := readJSON(s.cataloguePath, &entries); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrCatalogueNotFound, s.cataloguePath)
		}
		return nil, err
	}
	return entries, nil
}

// WriteCatalogue replaces the match catalogue
func (s *FileStore) WriteCatalogue(entries []models.MatchCatalogueEntry) error {
	if entries == nil {
		entries = []models.MatchCatalogueEntry{}
	}
	return s.writeAtomic(s.cataloguePath, entries)
}

// WriteLiveResults replaces the live results snapshot. Readers never observe a
// partially written file.
func (s *FileStore) WriteLiveResults(results models.LiveResultSet) error {
	if results == nil {
		results = models.LiveResultSet{}
	}
	return s.writeAtomic(s.livePath, results)
}

// ReadLiveResults loads the most recent snapshot
func (s *FileStore) ReadLiveResults() (models.LiveResultSet, error) {
	var results models.LiveResultSet
	if err := readJSON(s.livePath, &results); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrSnapshotNotFound, s.livePath)
		}
		return nil, err
	}
	return results, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeAtomic encodes v to a temp file in the target directory and renames it into place
func (s *FileStore) writeAtomic(path string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
