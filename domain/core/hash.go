package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Fingerprinter accumulates a content hash field by field. Every write is
// length- or tag-prefixed so adjacent fields cannot alias each other.
type Fingerprinter struct {
	h   hash.Hash
	buf [8]byte
}

// NewFingerprinter starts an empty fingerprint.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{h: sha256.New()}
}

// Tag writes a single discriminator byte.
func (f *Fingerprinter) Tag(b byte) {
	f.h.Write([]byte{b})
}

// String writes a length-prefixed string.
func (f *Fingerprinter) String(s string) {
	f.Uint(uint64(len(s)))
	f.h.Write([]byte(s))
}

// Uint writes a fixed-width integer.
func (f *Fingerprinter) Uint(v uint64) {
	binary.BigEndian.PutUint64(f.buf[:], v)
	f.h.Write(f.buf[:])
}

// Float writes the IEEE-754 bits of v.
func (f *Fingerprinter) Float(v float64) {
	f.Uint(math.Float64bits(v))
}

// Sum returns the accumulated hash.
func (f *Fingerprinter) Sum() Hash {
	return Hash(hex.EncodeToString(f.h.Sum(nil)))
}
