package filetracker

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanBuildsSnapshotForMatchingExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "a: 1")
	writeFile(t, filepath.Join(dir, "b.txt"), "ignored")

	tr := New(dir, filepath.Join(dir, "snapshot.json"), []string{"yaml"}, false)
	require.NoError(t, tr.Scan())

	stats := tr.GetStatistics()
	require.Equal(t, 1, stats.Total)
}

func TestScanRejectsInvalidRoot(t *testing.T) {
	tr := New(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "snap.json"), nil, true)
	err := tr.Scan()
	require.Error(t, err)
	var trackerErr *TrackerError
	require.ErrorAs(t, err, &trackerErr)
	require.Equal(t, KindInvalidRoot, trackerErr.Kind)
}

// TestCompareDetectsModifiedFile exercises spec section 8 scenario 4: scan,
// overwrite a tracked file, scan again, and expect Compare to report
// exactly one "modified" entry carrying a non-empty diff body.
func TestCompareDetectsModifiedFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	writeFile(t, target, "version: 1")

	tr := New(dir, filepath.Join(dir, "snapshot.json"), []string{".yaml"}, true)
	require.NoError(t, tr.Scan())

	time.Sleep(10 * time.Millisecond)
	writeFile(t, target, "version: 2")
	require.NoError(t, tr.Scan())

	diff, err := tr.Compare()
	require.NoError(t, err)
	require.Len(t, diff, 1)

	entry, ok := diff["config.yaml"]
	require.True(t, ok)
	require.Equal(t, StatusModified, entry.Status)
	require.NotEmpty(t, entry.Diff)
}

func TestCompareDetectsNewAndDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.yaml")
	removed := filepath.Join(dir, "removed.yaml")
	writeFile(t, kept, "a: 1")
	writeFile(t, removed, "b: 1")

	tr := New(dir, filepath.Join(dir, "snapshot.json"), []string{".yaml"}, true)
	require.NoError(t, tr.Scan())

	require.NoError(t, os.Remove(removed))
	writeFile(t, filepath.Join(dir, "added.yaml"), "c: 1")
	require.NoError(t, tr.Scan())

	diff, err := tr.Compare()
	require.NoError(t, err)
	require.Equal(t, StatusDeleted, diff["removed.yaml"].Status)
	require.Equal(t, StatusNew, diff["added.yaml"].Status)
	_, keptPresent := diff["kept.yaml"]
	require.False(t, keptPresent)
}

func TestSnapshotRoundTripsWithEncryption(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "secret.yaml"), "token: abc")

	snapPath := filepath.Join(dir, "snapshot.enc")
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	tr := New(dir, snapPath, []string{".yaml"}, true)
	tr.SetEncryptionKey(key)
	require.NoError(t, tr.Scan())

	reloaded, err := loadSnapshot(snapPath, key)
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
}

func TestSnapshotLoadFailsWithWrongKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "secret.yaml"), "token: abc")

	snapPath := filepath.Join(dir, "snapshot.enc")
	key := make([]byte, 32)
	wrongKey := make([]byte, 32)
	wrongKey[0] = 1

	tr := New(dir, snapPath, []string{".yaml"}, true)
	tr.SetEncryptionKey(key)
	require.NoError(t, tr.Scan())

	_, err := loadSnapshot(snapPath, wrongKey)
	require.Error(t, err)
	var trackerErr *TrackerError
	require.ErrorAs(t, err, &trackerErr)
	require.Equal(t, KindDecryption, trackerErr.Kind)
}

func TestBatchProcessRunsAllFilesInFixedBatches(t *testing.T) {
	dir := t.TempDir()
	tr := New(dir, filepath.Join(dir, "snapshot.json"), nil, false)

	files := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		files = append(files, filepath.Join(dir, "f"))
	}

	var processed int32
	err := tr.BatchProcess(files, func(string) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 250, processed)
}

func TestRecoverWritesPlaceholderForMissingFile(t *testing.T) {
	dir := t.TempDir()
	gone := filepath.Join(dir, "gone.yaml")
	writeFile(t, gone, "x: 1")

	snapPath := filepath.Join(dir, "snapshot.json")
	tr := New(dir, snapPath, []string{".yaml"}, true)
	require.NoError(t, tr.Scan())

	require.NoError(t, os.Remove(gone))
	require.NoError(t, tr.Recover(snapPath))

	data, err := os.ReadFile(gone)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestAsyncScanCompletes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "a: 1")

	tr := New(dir, filepath.Join(dir, "snapshot.json"), []string{".yaml"}, false)
	h := tr.AsyncScan()
	<-h.Done()
	require.NoError(t, h.Err())
	require.Equal(t, 1, tr.GetStatistics().Total)
}

func TestWatcherReportsNewFile(t *testing.T) {
	dir := t.TempDir()
	tr := New(dir, filepath.Join(dir, "snapshot.json"), []string{".yaml"}, true)
	tr.EnableCache(true)

	type event struct{ path, kind string }
	events := make(chan event, 8)
	tr.SetChangeCallback(func(path, kind string) {
		events <- event{path, kind}
	})

	tr.StartWatching()
	defer tr.StopWatching()

	writeFile(t, filepath.Join(dir, "new.yaml"), "a: 1")

	select {
	case ev := <-events:
		require.Equal(t, "new", ev.kind)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher notification")
	}
}

func TestEnableCacheIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	tr := New(dir, filepath.Join(dir, "snapshot.json"), nil, false)
	tr.EnableCache(true)
	tr.EnableCache(true)
	require.True(t, tr.cacheEnabled)
}

func TestMtimeCacheEvictsOldestOnFull(t *testing.T) {
	c := newMtimeCache(10)
	base := time.Now()
	for i := 0; i < 10; i++ {
		c.put(filepath.Join("p", string(rune('a'+i))), base.Add(time.Duration(i)*time.Second))
	}
	require.Equal(t, 10, c.len())

	c.put(filepath.Join("p", "k"), base.Add(20*time.Second))
	require.LessOrEqual(t, c.len(), 10)

	_, ok := c.get(filepath.Join("p", "a"))
	require.False(t, ok, "oldest entry should have been evicted")
}
