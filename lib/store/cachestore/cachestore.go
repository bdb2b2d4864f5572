package cachestore

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/telebill-community/sql-to-jsonsql/lib/store/schemastore"
)

const schemaFileName = "schema.yaml"

// CacheStore persists the fetched billing schema between runs so the CLI
// does not need a get_schema round trip on every start. A nil store is a
// valid no-op cache.
type CacheStore struct {
	dir string
	mu  sync.RWMutex
}

type schemaFile struct {
	Tables []schemastore.Table `yaml:"tables"`
}

func New(dir string) (*CacheStore, error) {
	cleaned := strings.TrimSpace(dir)
	if cleaned == "" {
		return nil, nil
	}
	if strings.Contains(cleaned, "\x00") {
		return nil, fmt.Errorf("cachestore: invalid cache directory")
	}
	return &CacheStore{dir: filepath.Clean(cleaned)}, nil
}

// Save atomically replaces the cached schema. Writes go through a temp file
// and rename under an exclusive lock file so concurrent runs cannot tear
// the cache.
func (s *CacheStore) Save(tables []schemastore.Table) (string, error) {
	if s == nil {
		return "", fmt.Errorf("cachestore: schema caching requires a configured cache directory")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("cachestore: ensure cache directory: %w", err)
	}

	lockPath := filepath.Join(s.dir, schemaFileName+".lock")
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", &StoreError{
				Code:    http.StatusLocked,
				Message: "cachestore: schema cache is locked",
				Err:     err,
			}
		}
		return "", &StoreError{
			Code:    http.StatusLocked,
			Message: fmt.Sprintf("cachestore: create schema cache lock: %v", err),
			Err:     err,
		}
	}
	defer func() {
		lockFile.Close()
		_ = os.Remove(lockPath)
	}()

	data, err := yaml.Marshal(schemaFile{Tables: tables})
	if err != nil {
		return "", fmt.Errorf("cachestore: encode schema: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.dir, "schema-*.tmp")
	if err != nil {
		return "", fmt.Errorf("cachestore: create temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("cachestore: write schema: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("cachestore: flush schema: %w", err)
	}

	path := filepath.Join(s.dir, schemaFileName)
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("cachestore: replace schema cache: %w", err)
	}
	return path, nil
}

// Load reads the cached schema. The second return reports whether a cache
// file was present.
func (s *CacheStore) Load() ([]schemastore.Table, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.dir, schemaFileName)
	info, statErr := os.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cachestore: stat schema cache: %w", statErr)
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf("cachestore: expected file at %s but found directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("cachestore: read schema cache: %w", err)
	}
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, false, fmt.Errorf("cachestore: decode schema cache: %w", err)
	}
	if len(file.Tables) == 0 {
		return nil, false, fmt.Errorf("cachestore: schema cache %s is empty", path)
	}
	return file.Tables, true, nil
}

// Invalidate removes the cached schema if present.
func (s *CacheStore) Invalidate() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, schemaFileName)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cachestore: remove schema cache: %w", err)
	}
	return nil
}
