package source

import (
	"bytes"
	"fmt"

	"github.com/Marco-Masera/FastSeek/internal/errs"
	"github.com/Marco-Masera/FastSeek/internal/ioutil"
	"github.com/Marco-Masera/FastSeek/internal/section"
)

// tabularSource indexes one line per record; the key is the selected
// column after splitting the line by separator.
type tabularSource struct {
	r         ioutil.LineReader
	separator byte
	column    uint8
}

func (s *tabularSource) HeaderFields() (section.IndexType, byte, uint8) {
	return section.IndexTabular, s.separator, s.column
}

func (s *tabularSource) NextRecord() (uint64, []byte, error) {
	offset, line, err := s.r.ReadLine()
	if err != nil || offset == EOFOffset {
		return offset, nil, err
	}

	key, err := s.extractColumn(line)
	if err != nil {
		return 0, nil, err
	}

	return offset, key, nil
}

func (s *tabularSource) extractColumn(line []byte) ([]byte, error) {
	fields := bytes.Split(line, []byte{s.separator})
	if int(s.column) >= len(fields) {
		return nil, fmt.Errorf("%w: column %d, line has %d fields", errs.ErrColumnOutOfRange, s.column, len(fields))
	}

	return fields[s.column], nil
}

func (s *tabularSource) VerifyAndRead(offset uint64, expectedKey []byte) (bool, []byte, error) {
	if err := s.r.Seek(offset); err != nil {
		return false, nil, err
	}

	_, line, err := s.r.ReadLine()
	if err != nil {
		return false, nil, err
	}
	if line == nil {
		return false, nil, fmt.Errorf("%w: offset %d has no record", errs.ErrMalformedRecord, offset)
	}

	key, err := s.extractColumn(line)
	if err != nil {
		return false, nil, err
	}

	if !bytes.Equal(key, expectedKey) {
		return false, nil, nil
	}

	return true, line, nil
}

func (s *tabularSource) Reset() error {
	return s.r.Reset()
}

func (s *tabularSource) Count() (uint64, error) {
	return ioutil.CountLines(s.r)
}

func (s *tabularSource) Close() error {
	return s.r.Close()
}
