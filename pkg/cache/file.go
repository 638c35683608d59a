package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache stores entries as JSON files under a directory, one
// subdirectory per entry kind (lineage, layout, artifact):
//
//	~/.cache/lens/layout/3f9a...e1.json
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get reads an entry. Unreadable and expired entries are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	if json.Unmarshal(raw, &e) != nil || e.Key != key || e.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes an entry through a temporary file so concurrent readers never
// see a partial write.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Data: data}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes an entry; a missing entry is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Count returns the number of stored entries per kind.
func (c *FileCache) Count() (map[string]int, error) {
	counts := map[string]int{}
	err := c.walk(func(kind, path string) {
		counts[kind]++
	})
	return counts, err
}

// Clear removes every entry and returns how many were deleted.
func (c *FileCache) Clear() (int, error) {
	n := 0
	err := c.walk(func(kind, path string) {
		if os.Remove(path) == nil {
			n++
		}
	})
	if err != nil {
		return n, err
	}

	kinds, _ := os.ReadDir(c.dir)
	for _, k := range kinds {
		if k.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, k.Name()))
		}
	}
	return n, nil
}

// walk calls fn for every entry file, skipping in-flight temporary files.
func (c *FileCache) walk(fn func(kind, path string)) error {
	kinds, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, k := range kinds {
		if !k.IsDir() {
			continue
		}
		sub := filepath.Join(c.dir, k.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".json" || strings.HasPrefix(f.Name(), ".tmp-") {
				continue
			}
			fn(k.Name(), filepath.Join(sub, f.Name()))
		}
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// path maps a key to <dir>/<kind>/<sha256(key)>.json.
func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, kindOf(key), Hash([]byte(key))+".json")
}

// kindOf extracts the entry kind from keys shaped "[scope]kind:hash".
func kindOf(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 || parts[len(parts)-2] == "" {
		return "other"
	}
	return parts[len(parts)-2]
}

var _ Cache = (*FileCache)(nil)
