package section

import (
	"fmt"

	"github.com/Marco-Masera/FastSeek/endian"
	"github.com/Marco-Masera/FastSeek/internal/errs"
)

// EntryKind classifies an IndexEntry's tagged value.
type EntryKind uint8

const (
	// KindNull marks an empty hashmap slot or a chain terminator.
	KindNull EntryKind = iota
	// KindDirect holds a byte offset into the source file and is always
	// the final candidate of its chain.
	KindDirect
	// KindIndirect holds a byte offset into the blocks region, pointing
	// at the next 16-byte pair.
	KindIndirect
)

// nullValue is the reserved all-ones u64 that marks a NULL entry.
const nullValue uint64 = 0xFFFF_FFFF_FFFF_FFFF

// highBit tags an entry as Indirect when set; the low 63 bits carry the
// payload offset in either case.
const highBit uint64 = 1 << 63

// maxPayload is the largest offset representable in 63 bits.
const maxPayload uint64 = highBit - 1

// EntrySize is the on-disk byte size of one IndexEntry.
const EntrySize = 8

// IndexEntry is the 8-byte tagged value stored in each hashmap slot and in
// the "next" half of each blocks-region pair: NULL, Direct(offset), or
// Indirect(block_offset).
type IndexEntry struct {
	raw uint64
}

// Null returns the NULL entry.
func Null() IndexEntry {
	return IndexEntry{raw: nullValue}
}

// NewDirect builds a Direct entry pointing at a source offset.
func NewDirect(offset uint64) (IndexEntry, error) {
	if offset > maxPayload {
		return IndexEntry{}, fmt.Errorf("%w: direct offset %d", errs.ErrOffsetTooLarge, offset)
	}

	return IndexEntry{raw: offset}, nil
}

// NewIndirect builds an Indirect entry pointing at a blocks-region offset.
func NewIndirect(blockOffset uint64) (IndexEntry, error) {
	if blockOffset > maxPayload {
		return IndexEntry{}, fmt.Errorf("%w: block offset %d", errs.ErrOffsetTooLarge, blockOffset)
	}

	return IndexEntry{raw: blockOffset | highBit}, nil
}

// Kind classifies the entry.
func (e IndexEntry) Kind() EntryKind {
	switch {
	case e.raw == nullValue:
		return KindNull
	case e.raw&highBit == 0:
		return KindDirect
	default:
		return KindIndirect
	}
}

// Payload returns the low 63 bits: a source offset for Direct, a
// blocks-region offset for Indirect. Undefined for NULL.
func (e IndexEntry) Payload() uint64 {
	return e.raw &^ highBit
}

// Bytes serializes the entry as big-endian u64.
func (e IndexEntry) Bytes() [EntrySize]byte {
	var b [EntrySize]byte
	endian.GetBigEndianEngine().PutUint64(b[:], e.raw)

	return b
}

// PutBytes writes the entry's big-endian encoding into dst[:8].
func (e IndexEntry) PutBytes(dst []byte) {
	endian.GetBigEndianEngine().PutUint64(dst[:EntrySize], e.raw)
}

// DecodeEntry parses an IndexEntry from its 8-byte big-endian encoding.
func DecodeEntry(data []byte) (IndexEntry, error) {
	if len(data) < EntrySize {
		return IndexEntry{}, fmt.Errorf("%w: index entry needs %d bytes, got %d",
			errs.ErrShortRead, EntrySize, len(data))
	}

	return IndexEntry{raw: endian.GetBigEndianEngine().Uint64(data[:EntrySize])}, nil
}
