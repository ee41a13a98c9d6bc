package source

import (
	"bytes"
	"fmt"

	"github.com/Marco-Masera/FastSeek/internal/errs"
	"github.com/Marco-Masera/FastSeek/internal/ioutil"
	"github.com/Marco-Masera/FastSeek/internal/section"
)

// fastaSource indexes two lines per record: a header line starting with
// '>' followed by a sequence line. The key is either line, depending on
// byID.
type fastaSource struct {
	r    ioutil.LineReader
	byID bool
}

func (s *fastaSource) indexType() section.IndexType {
	if s.byID {
		return section.IndexFASTAByID
	}

	return section.IndexFASTABySequence
}

func (s *fastaSource) HeaderFields() (section.IndexType, byte, uint8) {
	return s.indexType(), 0, 0
}

func (s *fastaSource) NextRecord() (uint64, []byte, error) {
	offset, header, seq, err := s.readRecord()
	if err != nil || offset == EOFOffset {
		return offset, nil, err
	}

	if s.byID {
		return offset, header, nil
	}

	return offset, seq, nil
}

// readRecord reads one (header, sequence) pair starting at the reader's
// current position, returning the header line's offset.
func (s *fastaSource) readRecord() (uint64, []byte, []byte, error) {
	offset, header, err := s.r.ReadLine()
	if err != nil || offset == EOFOffset {
		return offset, nil, nil, err
	}
	if len(header) == 0 || header[0] != '>' {
		return 0, nil, nil, fmt.Errorf("%w: expected '>' header at offset %d", errs.ErrMalformedRecord, offset)
	}

	_, seq, err := s.r.ReadLine()
	if err != nil {
		return 0, nil, nil, err
	}
	if seq == nil {
		return 0, nil, nil, fmt.Errorf("%w: truncated FASTA record at offset %d", errs.ErrMalformedRecord, offset)
	}

	return offset, header, seq, nil
}

func (s *fastaSource) VerifyAndRead(offset uint64, expectedKey []byte) (bool, []byte, error) {
	if err := s.r.Seek(offset); err != nil {
		return false, nil, err
	}

	_, header, seq, err := s.readRecord()
	if err != nil {
		return false, nil, err
	}

	key := header
	if !s.byID {
		key = seq
	}
	if !bytes.Equal(key, expectedKey) {
		return false, nil, nil
	}

	record := append(append([]byte{}, header...), '\n')
	record = append(append(record, seq...), '\n')

	return true, record, nil
}

func (s *fastaSource) Reset() error {
	return s.r.Reset()
}

// Count approximates the record count as lines/2; this is exact only for
// well-formed multi-FASTA input (spec.md §9).
func (s *fastaSource) Count() (uint64, error) {
	lines, err := ioutil.CountLines(s.r)
	if err != nil {
		return 0, err
	}

	return lines / 2, nil
}

func (s *fastaSource) Close() error {
	return s.r.Close()
}
