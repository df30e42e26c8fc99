package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LedgerFile is the name of the snapshot file inside a FileStore directory.
const LedgerFile = "ledger.json"

// FileStore keeps every key in a single JSON document under Dir. The
// document is replaced with one rename, so keys written by the same
// SetMany are always read back together.
type FileStore struct {
	mu  sync.Mutex
	Dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

// Path is the snapshot file location.
func (f *FileStore) Path() string {
	return filepath.Join(f.Dir, LedgerFile)
}

func (f *FileStore) readLocked() (map[string]string, error) {
	data, err := os.ReadFile(f.Path())
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	doc := map[string]string{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", LedgerFile, err)
	}
	return doc, nil
}

func (f *FileStore) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readLocked()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

// SetMany merges entries into the current document, writes the result to a
// temp file and renames it into place. A failure at any step leaves the
// previous document untouched.
func (f *FileStore) SetMany(entries map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readLocked()
	if err != nil {
		return err
	}
	for key, value := range entries {
		doc[key] = string(value)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", LedgerFile, err)
	}

	tmp, err := os.CreateTemp(f.Dir, LedgerFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", LedgerFile, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", LedgerFile, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync %s: %w", LedgerFile, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", LedgerFile, err)
	}
	if err := os.Rename(tmp.Name(), f.Path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", LedgerFile, err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.Path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
