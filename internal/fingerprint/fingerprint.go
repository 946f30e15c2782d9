// Package fingerprint computes content digests used for book deduplication.
//
// KOReader identifies a document by the MD5 of its first 5 MiB rather than the
// whole file, so that metadata edits appended by the reader do not change the
// identity. PartialMD5 mirrors that scheme; a book uploaded here and the same
// book opened on a device resolve to the same document id.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// PartialBlockSize is how many leading bytes participate in the digest.
const PartialBlockSize = 5 * 1024 * 1024

// PartialMD5 returns the hex digest of the file's first 5 MiB, or "" if the
// file cannot be opened or read. Callers must treat "" as a failure, never as
// "no duplicate found".
func PartialMD5(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, io.LimitReader(f, PartialBlockSize)); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FullMD5 digests the entire file. Used for integrity checks, not identity.
func FullMD5(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}
