package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Hasher is an io.Writer computing a SHA-256 digest and a byte count.
// Not safe for concurrent use.
type Hasher struct {
	h hash.Hash
	n int64
}

// New creates an empty Hasher.
func New() *Hasher {
	return &Hasher{h: sha256.New()}
}

func (h *Hasher) Write(p []byte) (int, error) {
	n, _ := h.h.Write(p)
	h.n += int64(n)
	return n, nil
}

// Sum returns the lowercase hex digest of everything written so far.
func (h *Hasher) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

// Size returns the number of bytes written.
func (h *Hasher) Size() int64 {
	return h.n
}

// Short returns the first 12 hex characters of the digest.
func (h *Hasher) Short() string {
	return h.Sum()[:12]
}

// Reader returns r wrapped so that everything read from it is hashed.
func (h *Hasher) Reader(r io.Reader) io.Reader {
	return io.TeeReader(r, h)
}
