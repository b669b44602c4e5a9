package filetracker

import (
	"os"
	"path/filepath"
)

// Recover reads the snapshot at snapshotPath and, for every entry whose
// file no longer exists on disk, writes a placeholder file containing the
// prior LastWriteTime string. This is a best-effort marker, not content
// recovery — see spec section 9's deliberate open question on this point.
// Files it cannot write are skipped.
func (t *Tracker) Recover(snapshotPath string) error {
	t.mu.RLock()
	key := t.encryptKey
	root := t.rootDir
	t.mu.RUnlock()

	snap, err := loadSnapshot(snapshotPath, key)
	if err != nil {
		return err
	}

	for _, entry := range snap {
		fullPath := joinRoot(root, entry.Path)
		if _, err := os.Stat(fullPath); err == nil {
			continue // still present, nothing to recover
		}
		placeholder := entry.LastWriteTime.Format("2006-01-02T15:04:05.000000000Z07:00")
		_ = os.WriteFile(fullPath, []byte(placeholder), 0o644)
	}
	return nil
}

func joinRoot(root, relPath string) string {
	if root == "" {
		return filepath.FromSlash(relPath)
	}
	return filepath.Join(root, filepath.FromSlash(relPath))
}
