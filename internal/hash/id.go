// Package hash wraps the stable 64-bit hash used to place record keys into
// hashmap slots.
//
// The hash must stay deterministic across runs and platforms for the life
// of the on-disk format: changing it is a format-incompatible change, the
// same way the teacher package treats xxHash64 as fixed for metric IDs.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given key bytes.
func ID(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// Slot reduces a key's hash modulo n, yielding a hashmap slot index.
// n must be at least 1.
func Slot(key []byte, n uint64) uint64 {
	return ID(key) % n
}
