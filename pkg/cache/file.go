package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache keeps one JSON record per artifact below a local directory.
//
// Records live at <dir>/<2 hex>/<62 hex>.json, named by the SHA-256 of the
// artifact key, and carry the full key so a record is only served for the
// key that wrote it. Writes go through a temporary file and a rename, so a
// concurrent reader sees either the old record or the new one.
type FileCache struct {
	dir string
}

// NewFileCache opens (and if needed creates) a file cache rooted at dir.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// artifactRecord is the on-disk form of one cached artifact.
type artifactRecord struct {
	Key      string    `json:"key"`
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`
	Expires  time.Time `json:"expires,omitzero"`
	Body     []byte    `json:"body"`
}

func (r artifactRecord) usable(key string, now time.Time) bool {
	if r.Key != key || r.Size != len(r.Body) {
		return false
	}
	return r.Expires.IsZero() || now.Before(r.Expires)
}

// Get returns the artifact stored under key. Expired, unreadable or foreign
// records count as a miss and are removed.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	var rec artifactRecord
	if json.Unmarshal(raw, &rec) != nil || !rec.usable(key, time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return rec.Body, true, nil
}

// Set writes data as the artifact for key. A ttl of zero keeps it until the
// cache is cleared.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now()
	rec := artifactRecord{Key: key, Size: len(data), StoredAt: now, Body: data}
	if ttl > 0 {
		rec.Expires = now.Add(ttl)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return writeAtomic(c.path(key), raw)
}

func writeAtomic(path string, raw []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete drops the artifact for key, if any.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every artifact and leaves an empty cache directory.
func (c *FileCache) Clear(_ context.Context) error {
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Close is a no-op; FileCache holds no open handles.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, name[:2], name[2:]+".json")
}

var (
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*FileCache)(nil)
)
