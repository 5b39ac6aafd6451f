package localcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/alfredjeanlab/sitekeep/internal/logging"
)

// fileDoc is the on-disk TOML layout.
type fileDoc struct {
	Items map[string]string `toml:"items"`
}

// File is a Cache persisted as a TOML document. Every write rewrites the
// file through a temp file and rename. Reads pick up changes made by other
// processes when the file's size or mtime changes.
type File struct {
	path string
	log  *zap.Logger

	mu      sync.Mutex
	items   map[string]string
	modTime time.Time
	size    int64
}

var _ Cache = (*File)(nil)

// ErrNotUTF8 is returned by File.SetItem for a key or value that is not
// valid UTF-8. TOML cannot hold such text, and writing it would make the
// whole file unreadable.
var ErrNotUTF8 = errors.New("not valid UTF-8")

// OpenFile loads the cache at path. A missing file is an empty cache.
func OpenFile(path string, logger *zap.Logger) (*File, error) {
	f := &File{
		path:  path,
		log:   logging.OrNop(logger),
		items: make(map[string]string),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) GetItem(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh()
	v, ok := f.items[key]
	return v, ok
}

func (f *File) SetItem(key, value string) error {
	if !utf8.ValidString(key) {
		return fmt.Errorf("localcache: key %q: %w", key, ErrNotUTF8)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("localcache: value for %q: %w", key, ErrNotUTF8)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh()
	prev, had := f.items[key]
	f.items[key] = value
	if err := f.save(); err != nil {
		if had {
			f.items[key] = prev
		} else {
			delete(f.items, key)
		}
		return err
	}
	return nil
}

func (f *File) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh()
	prev, had := f.items[key]
	if !had {
		return nil
	}
	delete(f.items, key)
	if err := f.save(); err != nil {
		f.items[key] = prev
		return err
	}
	return nil
}

func (f *File) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh()
	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// refresh reloads the file when another writer changed it. Caller holds mu.
func (f *File) refresh() {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && len(f.items) > 0 {
			f.items = make(map[string]string)
			f.modTime, f.size = time.Time{}, 0
		}
		return
	}
	if info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return
	}
	if err := f.load(); err != nil {
		f.log.Warn("localcache: reload failed, keeping previous contents",
			zap.String("path", f.path), zap.Error(err))
	}
}

// load reads the file into memory. Caller holds mu.
func (f *File) load() error {
	var doc fileDoc
	if _, err := toml.DecodeFile(f.path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read local cache %s: %w", f.path, err)
	}
	if doc.Items == nil {
		doc.Items = make(map[string]string)
	}
	f.items = doc.Items
	f.stamp()
	return nil
}

// save writes the cache atomically. Caller holds mu.
func (f *File) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(fileDoc{Items: f.items}); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode local cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp cache file: %w", err)
	}
	f.stamp()
	return nil
}

func (f *File) stamp() {
	if info, err := os.Stat(f.path); err == nil {
		f.modTime, f.size = info.ModTime(), info.Size()
	}
}
