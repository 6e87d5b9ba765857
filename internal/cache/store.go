package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// cacheFileExtension is the file extension used for cache entries.
const cacheFileExtension = ".json"

const bytesPerMB = 1024 * 1024

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// FileStore stores response bodies as JSON entry files in one directory.
// Safe for concurrent use.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int

	// maxSizeMB bounds the directory size enforced by Prune (0 = unlimited).
	maxSizeMB int

	mu sync.RWMutex
}

// NewFileStore creates a store rooted at directory, creating it if needed.
// A disabled store needs no directory.
func NewFileStore(directory string, enabled bool, ttlSeconds, maxSizeMB int) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}

	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	if err := os.MkdirAll(directory, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		directory:  directory,
		enabled:    true,
		ttlSeconds: ttlSeconds,
		maxSizeMB:  maxSizeMB,
	}, nil
}

// Get returns the cached body for url.
// Returns ErrCacheNotFound or ErrCacheExpired on a miss.
func (s *FileStore) Get(url string) ([]byte, error) {
	entry, err := s.GetEntry(url)
	if err != nil {
		return nil, err
	}
	return entry.Data, nil
}

// GetEntry returns the full cache entry for url.
func (s *FileStore) GetEntry(url string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if url == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	filePath := s.keyToFilePath(KeyFor(url))
	data, err := os.ReadFile(filePath)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", unmarshalErr)
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(filePath)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}

	return &entry, nil
}

// Set stores data for url, overwriting any previous entry.
func (s *FileStore) Set(url string, data []byte) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if url == "" {
		return ErrInvalidCacheKey
	}

	entry := NewEntry(url, data, s.ttlSeconds)
	entryData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.keyToFilePath(entry.Key)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}

	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return nil
}

// Delete removes the entry for url. Missing entries are not an error.
func (s *FileStore) Delete(url string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if url == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyToFilePath(KeyFor(url)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes all cache entries.
func (s *FileStore) Clear() error {
	if !s.enabled {
		return ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return err
	}
	for _, f := range files {
		if removeErr := os.Remove(f.path); removeErr != nil {
			return fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(f.path), removeErr)
		}
	}
	return nil
}

// CleanupExpired removes expired entries and unreadable files, returning how
// many files were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		data, readErr := os.ReadFile(f.path)
		if readErr != nil {
			continue
		}

		var entry Entry
		if json.Unmarshal(data, &entry) != nil || entry.IsExpired() {
			if os.Remove(f.path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Prune deletes the oldest entries until the store fits in maxSizeMB.
// It returns the number of entries removed.
func (s *FileStore) Prune() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}
	if s.maxSizeMB <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, f := range files {
		total += f.size
	}

	limit := int64(s.maxSizeMB) * bytesPerMB
	sort.Slice(files, func(i, j int) bool { return files[i].modUnix < files[j].modUnix })

	removed := 0
	for _, f := range files {
		if total <= limit {
			break
		}
		if os.Remove(f.path) == nil {
			total -= f.size
			removed++
		}
	}
	return removed, nil
}

// Size returns the total size of all entries in bytes.
func (s *FileStore) Size() (int64, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	return total, nil
}

// Count returns the number of entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.entryFilesLocked()
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// IsEnabled returns true if caching is enabled.
func (s *FileStore) IsEnabled() bool {
	return s.enabled
}

// Directory returns the cache directory path.
func (s *FileStore) Directory() string {
	return s.directory
}

// TTL returns the entry TTL in seconds.
func (s *FileStore) TTL() int {
	return s.ttlSeconds
}

type entryFile struct {
	path    string
	size    int64
	modUnix int64
}

// entryFilesLocked lists entry files. Caller holds s.mu.
func (s *FileStore) entryFilesLocked() ([]entryFile, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	files := make([]entryFile, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != cacheFileExtension {
			continue
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			continue
		}
		files = append(files, entryFile{
			path:    filepath.Join(s.directory, de.Name()),
			size:    info.Size(),
			modUnix: info.ModTime().UnixNano(),
		})
	}
	return files, nil
}

// keyToFilePath maps a hashed key to its entry file.
func (s *FileStore) keyToFilePath(key string) string {
	return filepath.Join(s.directory, key+cacheFileExtension)
}
