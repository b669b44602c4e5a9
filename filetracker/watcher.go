package filetracker

import (
	"os"
	"path/filepath"
	"time"

	"github.com/karrick/godirwalk"
)

// watchInterval is the background poll period, per spec section 4.3.
const watchInterval = 1 * time.Second

// StartWatching launches a background poll loop that walks the root
// directory every second, compares each matching file's mtime against the
// mtime cache (when enabled), and reports "new" or "modified" files to the
// configured ChangeCallback. Deleted files are never reported by the
// watcher — only Compare surfaces deletions. StartWatching is idempotent:
// calling it while already watching is a no-op.
func (t *Tracker) StartWatching() {
	t.mu.Lock()
	if t.watching {
		t.mu.Unlock()
		return
	}
	t.watching = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	t.mu.Unlock()

	go t.watchLoop()
}

// StopWatching signals the poll loop to exit and blocks until it has.
// Calling it when not watching is a no-op.
func (t *Tracker) StopWatching() {
	t.mu.Lock()
	if !t.watching {
		t.mu.Unlock()
		return
	}
	stopCh := t.stopCh
	doneCh := t.doneCh
	t.mu.Unlock()

	close(stopCh)
	<-doneCh

	t.mu.Lock()
	t.watching = false
	t.mu.Unlock()
}

func (t *Tracker) watchLoop() {
	t.mu.RLock()
	doneCh := t.doneCh
	stopCh := t.stopCh
	t.mu.RUnlock()
	defer close(doneCh)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			t.pollOnce()
		}
	}
}

func (t *Tracker) pollOnce() {
	t.mu.RLock()
	root := t.rootDir
	recursive := t.recursive
	cacheEnabled := t.cacheEnabled
	cb := t.changeCB
	t.mu.RUnlock()

	if root == "" {
		return
	}
	if _, err := os.Stat(root); err != nil {
		return
	}

	_ = godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if !recursive && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !t.matchesExtension(path) {
				return nil
			}
			fi, err := os.Stat(path)
			if err != nil {
				return nil
			}
			t.observe(path, fi.ModTime(), cacheEnabled, cb)
			return nil
		},
	})
}

// observe checks path's mtime against the cache, delivering a "new" or
// "modified" notification through cb when the cache is enabled and the
// mtime is unseen or has advanced.
func (t *Tracker) observe(path string, mtime time.Time, cacheEnabled bool, cb ChangeCallback) {
	if !cacheEnabled {
		return
	}

	t.mu.Lock()
	prev, known := t.cache.get(path)
	t.cache.put(path, mtime)
	t.mu.Unlock()

	if cb == nil {
		return
	}
	switch {
	case !known:
		cb(path, "new")
	case mtime.After(prev):
		cb(path, "modified")
	}
}
