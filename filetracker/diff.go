package filetracker

import (
	"encoding/json"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Compare produces a Diff between the snapshot baseline captured by the
// most recent Scan (the snapshot as it was on disk before that Scan
// overwrote it) and the snapshot Scan just computed: paths only in current
// are "new", paths only in the baseline are "deleted", and paths in both
// with a differing hash are "modified" with a unified-diff body of the two
// entries' JSON representations. Compare before any Scan has run diffs
// against an empty baseline.
func (t *Tracker) Compare() (Diff, error) {
	t.mu.RLock()
	prev := t.previous
	cur := t.current
	t.mu.RUnlock()

	out := make(Diff)
	for path, entry := range cur {
		old, existed := prev[path]
		if !existed {
			out[path] = DiffEntry{Status: StatusNew}
			continue
		}
		if old.Hash != entry.Hash {
			out[path] = DiffEntry{Status: StatusModified, Diff: unifiedEntryDiff(path, old, entry)}
		}
	}
	for path := range prev {
		if _, stillExists := cur[path]; !stillExists {
			out[path] = DiffEntry{Status: StatusDeleted}
		}
	}

	t.mu.Lock()
	t.stats.New, t.stats.Modified, t.stats.Deleted = 0, 0, 0
	for _, d := range out {
		switch d.Status {
		case StatusNew:
			t.stats.New++
		case StatusModified:
			t.stats.Modified++
		case StatusDeleted:
			t.stats.Deleted++
		}
	}
	t.mu.Unlock()

	return out, nil
}

func unifiedEntryDiff(path string, a, b Entry) []string {
	aJSON, _ := json.MarshalIndent(a, "", "  ")
	bJSON, _ := json.MarshalIndent(b, "", "  ")

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(aJSON)),
		B:        difflib.SplitLines(string(bJSON)),
		FromFile: path + " (previous)",
		ToFile:   path + " (current)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
