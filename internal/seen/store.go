// Package seen persists fingerprints of already-published article URLs. The
// record is a newline-delimited text file, one hex fingerprint per line,
// append-only: a fingerprint that made it into the file is never removed.
package seen

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrStoreUnavailable marks unrecoverable I/O on the seen-set record.
// A missing record is not an error; it reads as an empty set.
var ErrStoreUnavailable = errors.New("seen store unavailable")

// Fingerprint returns the deduplication key for a canonical article URL:
// the SHA-256 digest of the URL as lowercase hex.
func Fingerprint(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// FileStore is the flat-file seen-set record. The interface it satisfies in
// the pipeline is small enough that a key-value backend could replace it
// without touching callers.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads every fingerprint ever recorded into a set. Duplicate lines in
// the file collapse into one membership entry.
func (s *FileStore) Load() (map[string]struct{}, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrStoreUnavailable, s.path, err)
	}
	defer f.Close()

	set := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, s.path, err)
	}
	return set, nil
}

// Append durably adds the given fingerprints, in order, to the end of the
// record. Existing lines are never rewritten. An empty input is a no-op.
// Failures must propagate to the caller: silently dropping an append means
// duplicate posts on the next run.
func (s *FileStore) Append(fingerprints []string) error {
	if len(fingerprints) == 0 {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrStoreUnavailable, s.path, err)
	}

	w := bufio.NewWriter(f)
	for _, fp := range fingerprints {
		if _, err := fmt.Fprintln(w, fp); err != nil {
			f.Close()
			return fmt.Errorf("%w: write %s: %v", ErrStoreUnavailable, s.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: flush %s: %v", ErrStoreUnavailable, s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrStoreUnavailable, s.path, err)
	}
	return nil
}
