// Package cache keeps raw feed bodies on disk between runs.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store is a directory of named raw feed bodies. JSON bodies are
// pretty-printed on write so cached feeds are easy to inspect.
type Store struct {
	root   string
	maxAge time.Duration
	pretty bool
	now    func() time.Time
}

// NewStore creates a store rooted at dir.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{root: root, pretty: true, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file backing name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

// Read returns the body stored under name. ok is false when there is no
// entry or the entry is older than the configured max age.
func (s *Store) Read(name string) ([]byte, bool, error) {
	path := s.Path(name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if s.maxAge > 0 && s.now().Sub(info.ModTime()) > s.maxAge {
		return nil, false, nil
	}
	b, err := os.ReadFile(path) //nolint:gosec // path is confined to the cache root
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return b, true, nil
}

// Write stores body under name, replacing any previous entry atomically.
func (s *Store) Write(name string, body []byte) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil { //nolint:gosec // cache dir is user readable
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if s.pretty && strings.EqualFold(filepath.Ext(name), ".json") {
		body = indent(body)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-"+filepath.Base(name)+"-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Clear removes entries whose name starts with prefix and returns how many
// were removed. An empty prefix clears everything in the store.
func (s *Store) Clear(prefix string) (int, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrClear, err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, e.Name())); err != nil {
			return n, fmt.Errorf("%w: %w", ErrClear, err)
		}
		n++
	}
	return n, nil
}

// indent returns body pretty-printed, or unchanged when it is not JSON.
func indent(body []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return body
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
