package filetracker

import (
	"golang.org/x/sync/errgroup"
)

// batchSize is the fixed batch size for BatchProcess, per spec section 4.3.
const batchSize = 100

// BatchProcess runs fn over files in fixed-size batches of 100, running
// each batch's items concurrently and awaiting the whole batch before
// starting the next.
func (t *Tracker) BatchProcess(files []string, fn func(path string) error) error {
	for start := 0; start < len(files); start += batchSize {
		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]

		var eg errgroup.Group
		for _, f := range batch {
			f := f
			eg.Go(func() error { return fn(f) })
		}
		if err := eg.Wait(); err != nil {
			return err
		}
	}
	return nil
}
