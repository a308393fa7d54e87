// Package cache is a small file-backed cache for API payloads that are
// expensive or rate limited to fetch, such as the space list and space-info
// responses. Entries are JSON files keyed by name with an age-based expiry.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache stores JSON payloads under a directory.
type Cache struct {
	dir string
}

// New returns a cache rooted at dir. The directory is created lazily on the
// first write.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Default returns the cache under the user cache directory.
func Default() (*Cache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("getting cache directory: %w", err)
	}
	return New(filepath.Join(base, "cap")), nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(key string) string {
	// Keys are internal constants; sanitize anyway so a space id in a key
	// cannot escape the cache directory.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(c.dir, safe+".json")
}

// Read loads the entry for key into v if it exists and is younger than
// maxAge. A maxAge of zero disables the age check. The boolean reports
// whether a usable entry was found; a missing or expired entry is not an
// error.
func (c *Cache) Read(key string, maxAge time.Duration, v interface{}) (bool, error) {
	path := c.path(key)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	if maxAge > 0 && time.Since(info.ModTime()) > maxAge {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// A corrupt entry is treated as absent rather than fatal.
		return false, nil
	}
	return true, nil
}

// Write stores v as the entry for key, replacing any previous value.
func (c *Cache) Write(key string, v interface{}) error {
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling cache entry %s: %w", key, err)
	}
	if err := os.WriteFile(c.path(key), data, 0o600); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key if it exists.
func (c *Cache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache entry %s: %w", key, err)
	}
	return nil
}
