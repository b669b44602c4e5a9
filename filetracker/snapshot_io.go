package filetracker

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/theckman/go-flock"
)

// saveSnapshot writes snap to path as JSON, encrypting it first if key is
// non-empty. The write takes an exclusive file lock for its duration,
// enforcing the single-writer invariant from spec section 5 even across
// separate processes sharing a snapshot path.
func saveSnapshot(path string, snap Snapshot, key []byte) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}

	if len(key) > 0 {
		payload, err = encrypt(key, payload)
		if err != nil {
			return errors.Wrap(err, "encrypt snapshot")
		}
	}

	lock := flock.NewFlock(path + ".lock")
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "lock snapshot file")
	}
	defer lock.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return errors.Wrap(err, "write snapshot temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "rename snapshot temp file")
	}
	return nil
}

// loadSnapshot reads and decodes the snapshot at path, decrypting it first
// if key is non-empty. Loading with the wrong key yields a
// DecryptionError.
func loadSnapshot(path string, key []byte) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(key) > 0 {
		plain, derr := decrypt(key, data)
		if derr != nil {
			return nil, DecryptionError(path, derr.Error())
		}
		data = plain
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "unmarshal snapshot")
	}
	return snap, nil
}
