package discovery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/minio/highwayhash"
)

// headSize is how much of a file feeds the cheap pre-hash.
const headSize = 4096

var headKey = []byte("procspectre-dedup-head-hash-key!")

// Deduplicator drops files whose content is byte-identical to a file already kept.
//
// Files are compared by size first, then by a HighwayHash of the first 4 KiB,
// and only then by a full SHA-256 digest. The strong digest is computed only
// for files whose size and head collide with a kept file, so most files are
// never read in full here. The result is the same as hashing every file.
type Deduplicator struct{}

// NewDeduplicator returns a Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// fingerprint caches the lazily computed digests of one file.
type fingerprint struct {
	path    string
	size    int64
	head    uint64
	hasHead bool
	sum     string
}

func (f *fingerprint) headHash() (uint64, error) {
	if f.hasHead {
		return f.head, nil
	}
	file, err := os.Open(f.path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()

	h, err := highwayhash.New64(headKey)
	if err != nil {
		return 0, err
	}
	if _, err := io.CopyN(h, file, headSize); err != nil && err != io.EOF {
		return 0, err
	}
	f.head = h.Sum64()
	f.hasHead = true
	return f.head, nil
}

func (f *fingerprint) contentHash() (string, error) {
	if f.sum != "" {
		return f.sum, nil
	}
	sum, err := HashFile(f.path)
	if err != nil {
		return "", err
	}
	f.sum = sum
	return sum, nil
}

// Dedupe returns paths with content duplicates removed, keeping the first
// occurrence of each distinct content in the original order. Files that cannot
// be read are logged and excluded.
func (d *Deduplicator) Dedupe(paths []string) []string {
	bySize := make(map[int64][]*fingerprint)
	kept := make([]string, 0, len(paths))

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			slog.Warn("excluding unreadable file", "path", path, "error", err)
			continue
		}

		fp := &fingerprint{path: path, size: info.Size()}
		dup, err := d.duplicateOf(fp, bySize[fp.size])
		if err != nil {
			slog.Warn("excluding unreadable file", "path", path, "error", err)
			continue
		}
		if dup != "" {
			slog.Debug("duplicate content", "path", path, "same_as", dup)
			continue
		}

		bySize[fp.size] = append(bySize[fp.size], fp)
		kept = append(kept, path)
	}
	return kept
}

// duplicateOf returns the path of a kept file with the same content as fp, or "".
// Errors refer to fp itself; a kept file that became unreadable just never matches.
func (d *Deduplicator) duplicateOf(fp *fingerprint, candidates []*fingerprint) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}

	head, err := fp.headHash()
	if err != nil {
		return "", err
	}
	for _, c := range candidates {
		ch, err := c.headHash()
		if err != nil || ch != head {
			continue
		}
		sum, err := fp.contentHash()
		if err != nil {
			return "", err
		}
		cs, err := c.contentHash()
		if err != nil {
			continue
		}
		if cs == sum {
			return c.path, nil
		}
	}
	return "", nil
}

// HashFile streams a file through SHA-256 and returns the hex digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
