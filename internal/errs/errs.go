// Package errs collects the sentinel errors surfaced by FastSeek's core
// packages. Call sites wrap these with fmt.Errorf("%w: ...", errs.ErrX, ...)
// to attach operation and path context, so callers can still use errors.Is
// to classify failures.
package errs

import "errors"

var (
	// ErrSourceOpen is returned when the record source file cannot be
	// opened or read.
	ErrSourceOpen = errors.New("cannot open or read source file")

	// ErrIndexOpen is returned when the .index file cannot be opened for
	// reading during lookup.
	ErrIndexOpen = errors.New("cannot open index file")

	// ErrUnknownVersion is returned when the header's version field does
	// not match a known format revision.
	ErrUnknownVersion = errors.New("unknown index format version")

	// ErrHeaderLenMismatch is returned when the decoded header_len does
	// not match the expected length for the header's version.
	ErrHeaderLenMismatch = errors.New("header length inconsistent with version")

	// ErrUnknownIndexType is returned when the header's index_type field
	// does not match a known Record Source variant.
	ErrUnknownIndexType = errors.New("unknown index type")

	// ErrOffsetTooLarge is returned when a source or block offset would
	// require the index entry's reserved high bit.
	ErrOffsetTooLarge = errors.New("offset exceeds 63 bits")

	// ErrBadSeparator is returned when a configured tabular separator is
	// unusable; source.Open returns it for the zero byte.
	ErrBadSeparator = errors.New("separator must be a single byte")

	// ErrColumnOutOfRange is returned when the configured tabular column
	// does not exist in an observed record.
	ErrColumnOutOfRange = errors.New("column out of range")

	// ErrShortRead is returned when fewer bytes than required were
	// available to decode a fixed-width record (an index entry or a
	// blocks-region pair).
	ErrShortRead = errors.New("short read decoding fixed-width record")

	// ErrMalformedRecord is returned when a source record does not match
	// the expected line arity for its format (e.g. a truncated FASTQ
	// record).
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNotFound is not a fatal condition: it reports that a keyword has
	// no matching record. Reported on stdout and via a boolean return,
	// never causes a non-zero exit code.
	ErrNotFound = errors.New("keyword not found")
)
