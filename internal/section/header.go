// Package section implements the fixed-width binary records that make up
// a FastSeek index file: the header and the 8-byte index entry. Both are
// framed big-endian per the format's on-disk contract.
package section

import (
	"fmt"

	"github.com/Marco-Masera/FastSeek/endian"
	"github.com/Marco-Masera/FastSeek/internal/errs"
)

// IndexType discriminates which Record Source a header describes.
type IndexType uint8

const (
	// IndexTabular indexes a tabular (CSV/TSV) file by a chosen column.
	IndexTabular IndexType = 0
	// IndexFASTAByID indexes a multi-FASTA file by its header/id line.
	IndexFASTAByID IndexType = 1
	// IndexFASTABySequence indexes a multi-FASTA file by its sequence line.
	IndexFASTABySequence IndexType = 2
	// IndexFASTQByID indexes a FASTQ file by its id line.
	IndexFASTQByID IndexType = 3
	// IndexFASTQBySequence indexes a FASTQ file by its sequence line.
	IndexFASTQBySequence IndexType = 4
)

func (t IndexType) String() string {
	switch t {
	case IndexTabular:
		return "tabular"
	case IndexFASTAByID:
		return "fasta-by-id"
	case IndexFASTABySequence:
		return "fasta-by-sequence"
	case IndexFASTQByID:
		return "fastq-by-id"
	case IndexFASTQBySequence:
		return "fastq-by-sequence"
	default:
		return "unknown"
	}
}

// CurrentVersion is the format version this package writes. Bumping it is
// a format-incompatible change and requires adding an entry to
// headerSizeByVersion.
const CurrentVersion uint8 = 0

// headerSizeByVersion maps a format version to its on-disk header length,
// mirroring the Rust original's per-version HEADER_SIZE table: older
// versions are parsed by their own length rather than the current one.
var headerSizeByVersion = map[uint8]uint8{
	0: 13,
}

// Header is the fixed-width record at the start of a FastSeek index file.
type Header struct {
	Version     uint8
	HashmapSize uint64
	IndexType   IndexType
	Separator   byte // meaningful only when IndexType == IndexTabular
	Column      uint8 // meaningful only when IndexType == IndexTabular
}

// NewHeader builds a Header for the current format version.
func NewHeader(hashmapSize uint64, indexType IndexType, separator byte, column uint8) Header {
	return Header{
		Version:     CurrentVersion,
		HashmapSize: hashmapSize,
		IndexType:   indexType,
		Separator:   separator,
		Column:      column,
	}
}

// Len returns this header's on-disk byte length for its version.
func (h Header) Len() uint8 {
	return headerSizeByVersion[h.Version]
}

// Encode serializes the header in the fixed field order: header_len,
// version, hashmap_size (u64 BE), index_type, separator, column.
func (h Header) Encode() []byte {
	size := h.Len()
	buf := make([]byte, size)
	buf[0] = size
	buf[1] = h.Version

	engine := endian.GetBigEndianEngine()
	engine.PutUint64(buf[2:10], h.HashmapSize)

	buf[10] = byte(h.IndexType)
	if h.IndexType == IndexTabular {
		buf[11] = h.Separator
		buf[12] = h.Column
	}
	// buf[11], buf[12] already zero for non-tabular index types.

	return buf
}

// DecodeHeader parses a Header from bytes read from the start of an index
// file. It trusts data[0] (header_len) to size the read and rejects
// versions it doesn't know about.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) == 0 {
		return Header{}, fmt.Errorf("%w: empty header", errs.ErrHeaderLenMismatch)
	}

	headerLen := data[0]
	version := data[1]

	expected, ok := headerSizeByVersion[version]
	if !ok {
		return Header{}, fmt.Errorf("%w: version %d", errs.ErrUnknownVersion, version)
	}
	if headerLen != expected {
		return Header{}, fmt.Errorf("%w: version %d expects header_len %d, got %d",
			errs.ErrHeaderLenMismatch, version, expected, headerLen)
	}
	if len(data) < int(headerLen) {
		return Header{}, fmt.Errorf("%w: need %d bytes, got %d", errs.ErrHeaderLenMismatch, headerLen, len(data))
	}

	engine := endian.GetBigEndianEngine()
	h := Header{
		Version:     version,
		HashmapSize: engine.Uint64(data[2:10]),
		IndexType:   IndexType(data[10]),
	}
	if h.IndexType > IndexFASTQBySequence {
		return Header{}, fmt.Errorf("%w: %d", errs.ErrUnknownIndexType, data[10])
	}
	if h.IndexType == IndexTabular {
		h.Separator = data[11]
		h.Column = data[12]
	}

	return h, nil
}
