// Package workspace holds a project's files in memory and syncs them with a
// host directory. The CLI stages scaffolds and build artifacts here before
// anything touches disk.
package workspace

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

// MaxWorkspaceBytes caps the total size of all files held in a workspace.
const MaxWorkspaceBytes = 8 << 20

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrInvalidPath   = errors.New("invalid path")
	ErrQuotaExceeded = errors.New("workspace quota exceeded")
)

type FileEntry struct {
	Data     []byte
	Hash     uint64
	Created  time.Time
	Modified time.Time
}

// Workspace is an in-memory set of files keyed by slash-separated relative path.
type Workspace struct {
	Mu         sync.RWMutex
	Files      map[string]*FileEntry
	DirtyFiles map[string]bool
	UsedBytes  int
	Dirty      bool
}

func New() *Workspace {
	return &Workspace{
		Files:      make(map[string]*FileEntry),
		DirtyFiles: make(map[string]bool),
	}
}

// ValidPath reports whether name is a clean relative path that stays below
// the workspace root. Any other characters, spaces included, are allowed.
func ValidPath(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || path.Clean(name) != name {
		return false
	}
	if strings.ContainsAny(name, "\x00\\") {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// Write stores a copy of data under name, replacing any previous content.
func (w *Workspace) Write(name string, data []byte) error {
	w.Mu.Lock()
	defer w.Mu.Unlock()

	if !ValidPath(name) {
		return errors.Wrap(ErrInvalidPath, name)
	}

	oldSize := 0
	entry, exists := w.Files[name]
	if exists {
		oldSize = len(entry.Data)
	}
	if w.UsedBytes-oldSize+len(data) > MaxWorkspaceBytes {
		return errors.Wrap(ErrQuotaExceeded, name)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	hash := xxh3.Hash(stored)

	now := time.Now()
	if !exists {
		entry = &FileEntry{Created: now}
		w.Files[name] = entry
	} else if entry.Hash == hash && len(entry.Data) == len(stored) {
		// same content; keep the dirty state as is
		return nil
	}
	entry.Data = stored
	entry.Hash = hash
	entry.Modified = now

	w.DirtyFiles[name] = true
	w.UsedBytes = w.UsedBytes - oldSize + len(stored)
	w.Dirty = true
	return nil
}

// WriteString is Write for text content.
func (w *Workspace) WriteString(name, content string) error {
	return w.Write(name, []byte(content))
}

func (w *Workspace) Read(name string) ([]byte, error) {
	w.Mu.RLock()
	defer w.Mu.RUnlock()

	entry, err := w.lookup(name)
	if err != nil {
		return nil, err
	}
	return entry.Data, nil
}

// ReadString returns the content of name as text. It has the shape of
// compiler.ReadFunc so a workspace can feed import resolution directly.
func (w *Workspace) ReadString(name string) (string, error) {
	data, err := w.Read(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Hash returns the xxh3 hash of the file's content.
func (w *Workspace) Hash(name string) (uint64, error) {
	w.Mu.RLock()
	defer w.Mu.RUnlock()

	entry, err := w.lookup(name)
	if err != nil {
		return 0, err
	}
	return entry.Hash, nil
}

func (w *Workspace) Exists(name string) bool {
	w.Mu.RLock()
	defer w.Mu.RUnlock()
	_, ok := w.Files[name]
	return ok
}

func (w *Workspace) Delete(name string) error {
	w.Mu.Lock()
	defer w.Mu.Unlock()

	entry, err := w.lookup(name)
	if err != nil {
		return err
	}
	w.UsedBytes -= len(entry.Data)
	delete(w.Files, name)

	// persisted copies are removed on the next PersistTo
	w.DirtyFiles[name] = true
	w.Dirty = true
	return nil
}

// lookup expects the caller to hold Mu.
func (w *Workspace) lookup(name string) (*FileEntry, error) {
	if !ValidPath(name) {
		return nil, errors.Wrap(ErrInvalidPath, name)
	}
	entry, ok := w.Files[name]
	if !ok {
		return nil, errors.Wrap(ErrFileNotFound, name)
	}
	return entry, nil
}

// List returns all file paths in sorted order.
func (w *Workspace) List() []string {
	w.Mu.RLock()
	defer w.Mu.RUnlock()

	names := make([]string, 0, len(w.Files))
	for name := range w.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Conflicts lists the workspace files that already exist under root on the host.
func (w *Workspace) Conflicts(root string) []string {
	var found []string
	for _, name := range w.List() {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(name))); err == nil {
			found = append(found, name)
		}
	}
	return found
}

// LoadFrom reads the named files below root into the workspace as clean
// entries. Writing identical content to one later leaves it untouched on the
// host, and deleting one removes it on the next PersistTo. Names missing on
// the host are skipped, as are files that would not fit in the quota.
func (w *Workspace) LoadFrom(root string, names ...string) error {
	for _, name := range names {
		if !ValidPath(name) {
			return errors.Wrap(ErrInvalidPath, name)
		}
		target := filepath.Join(root, filepath.FromSlash(name))
		info, err := os.Stat(target)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "loading %s", name)
		}
		if info.IsDir() {
			continue
		}
		raw, err := os.ReadFile(target)
		if err != nil {
			return errors.Wrapf(err, "loading %s", name)
		}
		w.load(name, raw, info.ModTime())
	}
	return nil
}

func (w *Workspace) load(name string, raw []byte, modified time.Time) {
	w.Mu.Lock()
	defer w.Mu.Unlock()

	oldSize := 0
	if old, ok := w.Files[name]; ok {
		oldSize = len(old.Data)
	}
	if w.UsedBytes-oldSize+len(raw) > MaxWorkspaceBytes {
		return
	}
	w.Files[name] = &FileEntry{
		Data:     raw,
		Hash:     xxh3.Hash(raw),
		Created:  modified,
		Modified: modified,
	}
	w.UsedBytes += len(raw) - oldSize
	delete(w.DirtyFiles, name)
}

// PersistTo writes dirty files below root, creating directories as needed,
// and removes files deleted since the last persist. It returns the first
// error; files that failed stay dirty.
func (w *Workspace) PersistTo(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", root)
	}

	// Snapshot under the lock, then do I/O without it.
	w.Mu.Lock()
	snapshot := make(map[string]*FileEntry)
	var deleted []string
	for name := range w.DirtyFiles {
		if entry, ok := w.Files[name]; ok {
			data := make([]byte, len(entry.Data))
			copy(data, entry.Data)
			snapshot[name] = &FileEntry{Data: data, Modified: entry.Modified}
		} else {
			deleted = append(deleted, name)
		}
		delete(w.DirtyFiles, name)
	}
	w.Dirty = false
	w.Mu.Unlock()

	var firstErr error
	fail := func(name string, err error) {
		w.Mu.Lock()
		w.DirtyFiles[name] = true
		w.Dirty = true
		w.Mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, name := range deleted {
		err := os.Remove(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil && !os.IsNotExist(err) {
			fail(name, errors.Wrapf(err, "removing %s", name))
		}
	}

	for name, entry := range snapshot {
		target := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			fail(name, errors.Wrapf(err, "creating directory for %s", name))
			continue
		}
		if err := os.WriteFile(target, entry.Data, 0o644); err != nil {
			fail(name, errors.Wrapf(err, "writing %s", name))
			continue
		}
		_ = os.Chtimes(target, time.Now(), entry.Modified)
	}

	return firstErr
}
