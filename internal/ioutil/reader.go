// Package ioutil provides the framed-file primitives the core builds on:
// buffered line reads that report each line's start offset in the
// source's native addressing (raw bytes for a plain file, BGZF virtual
// offsets for a `.gz` source), and a buffered, explicitly-cursored writer
// for the index file.
package ioutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"

	"github.com/Marco-Masera/FastSeek/internal/errs"
)

// EOFOffset is the sentinel returned by ReadLine at end of stream, matching
// the Rust original's u64::MAX end marker.
const EOFOffset uint64 = ^uint64(0)

// LineReader reads logical lines (trailing "\n"/"\r" stripped) from a
// record source and reports the offset of each line's first byte.
type LineReader interface {
	// ReadLine reads one line and returns the offset of its first byte.
	// Returns (EOFOffset, nil, nil) at end of stream.
	ReadLine() (offset uint64, line []byte, err error)
	// Seek repositions the reader so the next ReadLine starts at offset,
	// in the reader's native addressing.
	Seek(offset uint64) error
	// Reset repositions the reader to the first record.
	Reset() error
	// Close releases the underlying file handle.
	Close() error
}

// Open returns a LineReader for filename, dispatching to a BGZF-aware
// reader when the name ends in ".gz" as spec.md §6 requires.
func Open(filename string) (LineReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrSourceOpen, filename, err)
	}

	if strings.HasSuffix(filename, ".gz") {
		return newBGZFLineReader(f)
	}

	return newPlainLineReader(f), nil
}

// plainLineReader reads a plain file with a cumulative byte counter: since
// nothing but our own bufio.Reader buffers ahead of the OS file position,
// the offset of a line is simply the running total of bytes consumed so
// far.
type plainLineReader struct {
	f   *os.File
	r   *bufio.Reader
	pos uint64
}

func newPlainLineReader(f *os.File) *plainLineReader {
	return &plainLineReader{f: f, r: bufio.NewReaderSize(f, 64*1024)}
}

func (p *plainLineReader) ReadLine() (uint64, []byte, error) {
	start := p.pos

	line, err := p.r.ReadBytes('\n')
	if len(line) == 0 && err == io.EOF {
		return EOFOffset, nil, nil
	}
	if err != nil && err != io.EOF {
		return 0, nil, fmt.Errorf("%w: %v", errs.ErrSourceOpen, err)
	}

	p.pos += uint64(len(line))
	line = bytes.TrimRight(line, "\r\n")

	return start, line, nil
}

func (p *plainLineReader) Seek(offset uint64) error {
	if _, err := p.f.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrSourceOpen, offset, err)
	}
	p.r.Reset(p.f)
	p.pos = offset

	return nil
}

func (p *plainLineReader) Reset() error {
	return p.Seek(0)
}

func (p *plainLineReader) Close() error {
	return p.f.Close()
}

// bgzfLineReader reads a BGZF-compressed file, reporting lines' starting
// positions as BGZF virtual offsets. It reads one byte at a time so that
// bgzf.Reader.LastChunk's virtual offset can be sampled precisely between
// bytes: a bufio layer on top of bgzf.Reader would read ahead across
// records and make per-line offsets unrecoverable.
type bgzfLineReader struct {
	f   *os.File
	r   *bgzf.Reader
	pos uint64 // virtual offset of the next unread byte
}

func newBGZFLineReader(f *os.File) (*bgzfLineReader, error) {
	r, err := bgzf.NewReader(f, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: bgzf: %v", errs.ErrSourceOpen, err)
	}

	return &bgzfLineReader{f: f, r: r}, nil
}

func (b *bgzfLineReader) ReadLine() (uint64, []byte, error) {
	start := b.pos

	var line []byte
	var buf [1]byte
	for {
		n, err := b.r.Read(buf[:])
		if n == 1 {
			b.pos = packVirtualOffset(b.r.LastChunk().End)
			if buf[0] == '\n' {
				return start, bytes.TrimRight(line, "\r"), nil
			}
			line = append(line, buf[0])
		}
		if err == io.EOF {
			if len(line) == 0 {
				return EOFOffset, nil, nil
			}

			return start, bytes.TrimRight(line, "\r"), nil
		}
		if err != nil {
			return 0, nil, fmt.Errorf("%w: bgzf read: %v", errs.ErrSourceOpen, err)
		}
	}
}

func (b *bgzfLineReader) Seek(offset uint64) error {
	if err := b.r.Seek(unpackVirtualOffset(offset)); err != nil {
		return fmt.Errorf("%w: bgzf seek to %d: %v", errs.ErrSourceOpen, offset, err)
	}
	b.pos = offset

	return nil
}

func (b *bgzfLineReader) Reset() error {
	return b.Seek(0)
}

func (b *bgzfLineReader) Close() error {
	return b.f.Close()
}

// packVirtualOffset encodes a bgzf.Offset as the 64-bit virtual file
// offset used on the wire: the compressed-block file offset in the high
// 48 bits, the within-block decompressed offset in the low 16 bits.
func packVirtualOffset(o bgzf.Offset) uint64 {
	return uint64(o.File)<<16 | uint64(o.Block)
}

// unpackVirtualOffset is the inverse of packVirtualOffset.
func unpackVirtualOffset(v uint64) bgzf.Offset {
	return bgzf.Offset{File: int64(v >> 16), Block: uint16(v & 0xFFFF)} //nolint:gosec
}

// CountLines counts the lines in the source (a final line without a
// trailing newline counts too), then resets it to the first record. Used only when the caller does not
// specify a hashmap size explicitly.
func CountLines(r LineReader) (uint64, error) {
	var n uint64
	for {
		offset, _, err := r.ReadLine()
		if err != nil {
			return 0, err
		}
		if offset == EOFOffset {
			break
		}
		n++
	}

	return n, r.Reset()
}
