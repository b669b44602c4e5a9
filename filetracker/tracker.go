package filetracker

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/elementastro/lithium-kernel/internal/workerpool"
)

// ChangeCallback is invoked by the watcher as (path, "new"|"modified").
// Deleted files are never delivered here — only Compare reports deletions.
type ChangeCallback func(path, kind string)

// Tracker recursively scans a directory, snapshots file metadata, and can
// watch the directory in the background for changes. All mutable
// configuration is guarded by mu, grounded on the teacher's
// "mut sync.RWMutex // protects all maps" convention in source_cache.go.
type Tracker struct {
	mu sync.RWMutex

	rootDir      string
	snapshotPath string
	extensions   map[string]struct{}
	recursive    bool
	encryptKey   []byte

	current  Snapshot
	previous Snapshot
	stats    Stats

	cache        *mtimeCache
	cacheEnabled bool

	changeCB ChangeCallback

	stopCh   chan struct{}
	doneCh   chan struct{}
	watching bool
}

// New constructs a Tracker over rootDir, persisting snapshots at
// snapshotPath, tracking only files whose extension is in extensions
// (e.g. ".json", ".yaml"), recursively if recursive is true. The root
// directory is not validated until the first Scan.
func New(rootDir, snapshotPath string, extensions []string, recursive bool) *Tracker {
	extSet := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		extSet[normalizeExt(e)] = struct{}{}
	}
	return &Tracker{
		rootDir:      rootDir,
		snapshotPath: snapshotPath,
		extensions:   extSet,
		recursive:    recursive,
		current:      make(Snapshot),
		cache:        newMtimeCache(1000),
	}
}

// AddFileType registers an additional tracked extension (a leading dot is
// added if missing).
func (t *Tracker) AddFileType(ext string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.extensions[normalizeExt(ext)] = struct{}{}
}

// RemoveFileType unregisters a tracked extension.
func (t *Tracker) RemoveFileType(ext string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.extensions, normalizeExt(ext))
}

// SetEncryptionKey sets (or, with a nil key, clears) the AES-GCM key used
// to encrypt the persisted snapshot.
func (t *Tracker) SetEncryptionKey(key []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.encryptKey = key
}

// SetChangeCallback installs the function the watcher invokes on changes.
func (t *Tracker) SetChangeCallback(fn ChangeCallback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.changeCB = fn
}

func (t *Tracker) matchesExtension(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.extensions) == 0 {
		return true
	}
	_, ok := t.extensions[filepath.Ext(path)]
	return ok
}

// Scan reads the previously persisted snapshot (decrypting it if a key is
// set) and retains it as the baseline for the next Compare, then walks the
// root directory computing a fresh Entry per matching file across a
// worker pool sized to hardware concurrency, and atomically persists the
// new snapshot. A single file's I/O failure is logged and skipped; Scan
// itself never aborts because of one bad file. Compare diffs against the
// snapshot captured by the Scan call before it, not against whatever Scan
// itself just wrote to disk.
func (t *Tracker) Scan() error {
	t.mu.RLock()
	root := t.rootDir
	recursive := t.recursive
	t.mu.RUnlock()

	prior, err := t.loadPrevious()
	if err != nil {
		return err
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return &TrackerError{Kind: KindInvalidRoot, Path: root, Detail: "root directory is invalid"}
	}

	var paths []string
	walkErr := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if !recursive && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if t.matchesExtension(path) {
				paths = append(paths, path)
			}
			return nil
		},
	})
	if walkErr != nil {
		return errors.Wrapf(walkErr, "scan %s", root)
	}

	pool := workerpool.New(runtime.NumCPU())

	var mu sync.Mutex
	fresh := make(Snapshot, len(paths))
	var eg errgroup.Group
	for _, p := range paths {
		p := p
		eg.Go(func() error {
			return pool.Run(func() {
				entry, err := computeEntry(root, p)
				if err != nil {
					// A single bad file is logged and skipped; the scan
					// never aborts for one file, per spec section 4.3.
					log.Printf("filetracker: skipping %s: %v", p, err)
					return
				}
				mu.Lock()
				fresh[entry.Path] = entry
				mu.Unlock()
			})
		})
	}
	_ = eg.Wait()

	t.mu.Lock()
	t.previous = prior
	t.current = fresh
	t.stats.Total = len(fresh)
	t.stats.LastScanTime = time.Now()
	key := t.encryptKey
	snapPath := t.snapshotPath
	t.mu.Unlock()

	return saveSnapshot(snapPath, fresh, key)
}

// loadPrevious reads the persisted snapshot, decrypting it if a key is
// configured. A missing snapshot file is treated as an empty prior
// snapshot, not an error.
func (t *Tracker) loadPrevious() (Snapshot, error) {
	t.mu.RLock()
	path := t.snapshotPath
	key := t.encryptKey
	t.mu.RUnlock()

	snap, err := loadSnapshot(path, key)
	if errors.Is(err, os.ErrNotExist) {
		return make(Snapshot), nil
	}
	return snap, err
}

func computeEntry(root, path string) (Entry, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	fi, err := os.Stat(path)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "stat %s", path)
	}

	h := sha256.New()
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return Entry{}, errors.Wrapf(err, "hash %s", path)
	}

	return Entry{
		Path:          rel,
		LastWriteTime: fi.ModTime(),
		Hash:          hex.EncodeToString(h.Sum(nil)),
		Size:          fi.Size(),
		Extension:     filepath.Ext(path),
	}, nil
}

// GetStatistics returns a value copy of the tracker's current Stats.
func (t *Tracker) GetStatistics() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.stats
	s.Watching = t.watching
	s.CacheEnabled = t.cacheEnabled
	s.CacheSize = t.cache.len()
	return s
}

// GetCurrentStats is an alias for GetStatistics, matching the spec's
// distinction between the held struct and a fresh snapshot; both read the
// same underlying state.
func (t *Tracker) GetCurrentStats() Stats {
	return t.GetStatistics()
}

func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
