package source

import (
	"bytes"
	"fmt"

	"github.com/Marco-Masera/FastSeek/internal/errs"
	"github.com/Marco-Masera/FastSeek/internal/ioutil"
	"github.com/Marco-Masera/FastSeek/internal/section"
)

// fastqSource indexes four lines per record: "@id", sequence, "+",
// qualities. The key is either the id line or the sequence line,
// depending on byID.
type fastqSource struct {
	r    ioutil.LineReader
	byID bool
}

func (s *fastqSource) indexType() section.IndexType {
	if s.byID {
		return section.IndexFASTQByID
	}

	return section.IndexFASTQBySequence
}

func (s *fastqSource) HeaderFields() (section.IndexType, byte, uint8) {
	return s.indexType(), 0, 0
}

func (s *fastqSource) NextRecord() (uint64, []byte, error) {
	offset, id, seq, _, _, err := s.readRecord()
	if err != nil || offset == EOFOffset {
		return offset, nil, err
	}

	if s.byID {
		return offset, id, nil
	}

	return offset, seq, nil
}

// readRecord reads one 4-line record, returning the id line's offset.
func (s *fastqSource) readRecord() (offset uint64, id, seq, plus, qual []byte, err error) {
	offset, id, err = s.r.ReadLine()
	if err != nil || offset == EOFOffset {
		return offset, nil, nil, nil, nil, err
	}
	if len(id) == 0 || id[0] != '@' {
		return 0, nil, nil, nil, nil, fmt.Errorf("%w: expected '@' id at offset %d", errs.ErrMalformedRecord, offset)
	}

	_, seq, err = s.r.ReadLine()
	if err != nil {
		return 0, nil, nil, nil, nil, err
	}
	_, plus, err = s.r.ReadLine()
	if err != nil {
		return 0, nil, nil, nil, nil, err
	}
	_, qual, err = s.r.ReadLine()
	if err != nil {
		return 0, nil, nil, nil, nil, err
	}
	if seq == nil || plus == nil || qual == nil {
		return 0, nil, nil, nil, nil, fmt.Errorf("%w: truncated FASTQ record at offset %d", errs.ErrMalformedRecord, offset)
	}

	return offset, id, seq, plus, qual, nil
}

func (s *fastqSource) VerifyAndRead(offset uint64, expectedKey []byte) (bool, []byte, error) {
	if err := s.r.Seek(offset); err != nil {
		return false, nil, err
	}

	_, id, seq, plus, qual, err := s.readRecord()
	if err != nil {
		return false, nil, err
	}

	key := id
	if !s.byID {
		key = seq
	}
	if !bytes.Equal(key, expectedKey) {
		return false, nil, nil
	}

	var record []byte
	for _, l := range [][]byte{id, seq, plus, qual} {
		record = append(append(record, l...), '\n')
	}

	return true, record, nil
}

func (s *fastqSource) Reset() error {
	return s.r.Reset()
}

// Count approximates the record count as lines/4; exact only for
// well-formed FASTQ input (spec.md §9).
func (s *fastqSource) Count() (uint64, error) {
	lines, err := ioutil.CountLines(s.r)
	if err != nil {
		return 0, err
	}

	return lines / 4, nil
}

func (s *fastqSource) Close() error {
	return s.r.Close()
}
