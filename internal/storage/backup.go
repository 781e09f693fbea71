package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/drape/internal/security"
)

// BackupVersion is the archive format version written by Backup.
const BackupVersion = 1

// MaxRestoreBytes caps the decompressed size Restore will read.
const MaxRestoreBytes = 64 << 20

// Archive is the decompressed backup document.
type Archive struct {
	Version int               `json:"version"`
	Created time.Time         `json:"created"`
	Entries map[string]string `json:"entries"`
}

// Backup writes every key of p to w as xz-compressed JSON and returns the number of
// keys written.
func Backup(w io.Writer, p Provider) (int, error) {
	keys, err := p.Keys()
	if err != nil {
		return 0, err
	}

	archive := Archive{Version: BackupVersion, Created: time.Now().UTC(), Entries: map[string]string{}}
	for _, k := range keys {
		v, err := p.Get(k)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", k, err)
		}
		archive.Entries[k] = string(v)
	}

	xw, err := xz.NewWriter(w)
	if err != nil {
		return 0, fmt.Errorf("failed to create xz writer: %w", err)
	}
	if err := json.NewEncoder(xw).Encode(archive); err != nil {
		xw.Close()
		return 0, fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := xw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finish backup: %w", err)
	}
	return len(archive.Entries), nil
}

// ReadArchive decompresses and decodes a backup without applying it.
func ReadArchive(r io.Reader) (*Archive, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	var archive Archive
	if err := json.NewDecoder(security.NewLimitedReader(xr, MaxRestoreBytes)).Decode(&archive); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if archive.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %d", archive.Version)
	}
	return &archive, nil
}

// Restore writes every entry of a backup into p, overwriting existing keys, and returns
// the number of keys restored. Keys are validated before anything is written.
func Restore(r io.Reader, p Provider) (int, error) {
	archive, err := ReadArchive(r)
	if err != nil {
		return 0, err
	}
	for k := range archive.Entries {
		if err := ValidateKey(k); err != nil {
			return 0, err
		}
	}
	for k, v := range archive.Entries {
		if err := p.Set(k, []byte(v)); err != nil {
			return 0, err
		}
	}
	return len(archive.Entries), nil
}
