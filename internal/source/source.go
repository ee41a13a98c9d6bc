// Package source implements the Record Source contract: producing
// (record_offset, key) pairs in stream order, and re-reading and
// verifying a record given an offset and an expected key. Five index types
// are supported: tabular, FASTA (by id or by sequence), and FASTQ (by id
// or by sequence).
package source

import (
	"fmt"

	"github.com/Marco-Masera/FastSeek/internal/errs"
	"github.com/Marco-Masera/FastSeek/internal/ioutil"
	"github.com/Marco-Masera/FastSeek/internal/section"
)

// EOFOffset signals end-of-stream from NextRecord, matching
// ioutil.EOFOffset (u64::MAX in the original).
const EOFOffset = ioutil.EOFOffset

// Source produces (offset, key) pairs over a record file and can re-read
// and verify a single record by offset.
type Source interface {
	// HeaderFields returns the fields this source's index header must
	// carry: the index type discriminant, and (only meaningful for
	// tabular) the separator byte and column index.
	HeaderFields() (indexType section.IndexType, separator byte, column uint8)

	// NextRecord advances one logical record and returns its offset and
	// key. Returns (EOFOffset, nil, nil) at end of stream.
	NextRecord() (offset uint64, key []byte, err error)

	// VerifyAndRead seeks to offset, reads one full record, and compares
	// its key field to expectedKey. On match, returns the whole record.
	VerifyAndRead(offset uint64, expectedKey []byte) (matched bool, record []byte, err error)

	// Reset returns the stream to the first record, for multi-pass
	// builds.
	Reset() error

	// Count returns the number of logical records in the source. For
	// FASTA/FASTQ this is an approximation (total lines / record arity)
	// used only when the caller did not specify a hashmap size; it is
	// exact only for well-formed sources (spec.md §9's divisibility
	// caveat: a malformed source silently yields a too-small hashmap,
	// recoverable by passing --hashmap-size explicitly).
	Count() (uint64, error)

	// Close releases the underlying file handle.
	Close() error
}

// Open opens filename and builds the Source described by indexType,
// using separator/column only for IndexTabular.
func Open(filename string, indexType section.IndexType, separator byte, column uint8) (Source, error) {
	r, err := ioutil.Open(filename)
	if err != nil {
		return nil, err
	}

	switch indexType {
	case section.IndexTabular:
		if err := validateSeparatorAndColumn(separator); err != nil {
			_ = r.Close()

			return nil, err
		}

		return &tabularSource{r: r, separator: separator, column: column}, nil
	case section.IndexFASTAByID:
		return &fastaSource{r: r, byID: true}, nil
	case section.IndexFASTABySequence:
		return &fastaSource{r: r, byID: false}, nil
	case section.IndexFASTQByID:
		return &fastqSource{r: r, byID: true}, nil
	case section.IndexFASTQBySequence:
		return &fastqSource{r: r, byID: false}, nil
	default:
		_ = r.Close()

		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownIndexType, indexType)
	}
}

func validateSeparatorAndColumn(separator byte) error {
	if separator == 0 {
		return fmt.Errorf("%w: separator must not be the zero byte", errs.ErrBadSeparator)
	}

	return nil
}
