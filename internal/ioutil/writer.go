package ioutil

import (
	"bufio"
	"fmt"
	"os"

	"github.com/Marco-Masera/FastSeek/internal/errs"
)

// IndexWriter is a buffered writer over the on-disk index file. Builder
// code is responsible for tracking which logical offset it intends to
// write at next; IndexWriter only buffers bytes and performs the
// underlying seek+write, flushing on every explicit WriteAt so that
// interleaved writes to the hashmap region and the blocks region never
// get reordered by buffering.
type IndexWriter struct {
	f *os.File
	w *bufio.Writer
}

// CreateIndexWriter truncates-and-creates path for writing.
func CreateIndexWriter(path string) (*IndexWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", errs.ErrSourceOpen, path, err)
	}

	return &IndexWriter{f: f, w: bufio.NewWriterSize(f, 64*1024)}, nil
}

// WriteAt flushes any buffered bytes, seeks to offset, and writes data.
// Subsequent calls to Write continue immediately after data without an
// explicit seek.
func (w *IndexWriter) WriteAt(offset uint64, data []byte) error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", errs.ErrSourceOpen, err)
	}
	if _, err := w.f.Seek(int64(offset), 0); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", errs.ErrSourceOpen, offset, err)
	}

	return w.Write(data)
}

// Write appends data at the writer's current position.
func (w *IndexWriter) Write(data []byte) error {
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("%w: write: %v", errs.ErrSourceOpen, err)
	}

	return nil
}

// Close flushes buffered bytes and closes the underlying file.
func (w *IndexWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.f.Close()

		return fmt.Errorf("%w: flush: %v", errs.ErrSourceOpen, err)
	}

	return w.f.Close()
}

// Name returns the path the writer was created with.
func (w *IndexWriter) Name() string {
	return w.f.Name()
}

// IndexReader is a random-access reader over a finalized index file.
type IndexReader struct {
	f *os.File
}

// OpenIndexReader opens path read-only.
func OpenIndexReader(path string) (*IndexReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrIndexOpen, path, err)
	}

	return &IndexReader{f: f}, nil
}

// ReadAt reads exactly len(buf) bytes starting at offset.
func (r *IndexReader) ReadAt(offset uint64, buf []byte) error {
	if _, err := r.f.ReadAt(buf, int64(offset)); err != nil {
		return fmt.Errorf("%w: read at %d: %v", errs.ErrIndexOpen, offset, err)
	}

	return nil
}

// Close closes the underlying file.
func (r *IndexReader) Close() error {
	return r.f.Close()
}
