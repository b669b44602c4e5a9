package filetracker

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// LogDifferences appends a text record of diff (typically a Compare result)
// to path: one "path: status" line per change, followed by the raw diff
// body for any modified entries.
func (t *Tracker) LogDifferences(path string, diff Diff) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open log %s", path)
	}
	defer f.Close()

	paths := make([]string, 0, len(diff))
	for p := range diff {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		entry := diff[p]
		if _, err := fmt.Fprintf(f, "%s: %s\n", p, entry.Status); err != nil {
			return errors.Wrap(err, "write log line")
		}
		for _, line := range entry.Diff {
			if _, err := fmt.Fprintln(f, line); err != nil {
				return errors.Wrap(err, "write diff body")
			}
		}
	}
	return nil
}
