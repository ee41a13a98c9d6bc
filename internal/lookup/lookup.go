// Package lookup implements the read side of a FastSeek index: decoding
// the header, hashing a keyword to a hashmap slot, and walking its chain
// of candidates against the original Record Source until a match is
// found.
package lookup

import (
	"go.uber.org/zap"

	"github.com/Marco-Masera/FastSeek/internal/errs"
	"github.com/Marco-Masera/FastSeek/internal/hash"
	"github.com/Marco-Masera/FastSeek/internal/ioutil"
	"github.com/Marco-Masera/FastSeek/internal/options"
	"github.com/Marco-Masera/FastSeek/internal/section"
	"github.com/Marco-Masera/FastSeek/internal/source"
)

// Option configures an Engine at construction time.
type Option = options.Option[*Engine]

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return options.NoError(func(e *Engine) { e.log = log })
}

// Engine answers keyword lookups against a built index file and its
// source record file.
type Engine struct {
	r      *ioutil.IndexReader
	src    source.Source
	header section.Header
	log    *zap.SugaredLogger
}

// Open opens indexPath and the recordPath it indexes, decoding the
// header to recover the Record Source configuration (index type,
// separator, column) the index was built with.
func Open(indexPath, recordPath string, opts ...Option) (*Engine, error) {
	r, err := ioutil.OpenIndexReader(indexPath)
	if err != nil {
		return nil, err
	}

	// Version 0's header is 13 bytes; read generously, DecodeHeader
	// trusts data[0] to find the true length.
	raw := make([]byte, 32)
	if err := r.ReadAt(0, raw[:1]); err != nil {
		_ = r.Close()

		return nil, err
	}
	headerLen := int(raw[0])
	if headerLen > len(raw) {
		raw = make([]byte, headerLen)
	}
	if err := r.ReadAt(0, raw[:headerLen]); err != nil {
		_ = r.Close()

		return nil, err
	}
	header, err := section.DecodeHeader(raw[:headerLen])
	if err != nil {
		_ = r.Close()

		return nil, err
	}

	src, err := source.Open(recordPath, header.IndexType, header.Separator, header.Column)
	if err != nil {
		_ = r.Close()

		return nil, err
	}

	e := &Engine{r: r, src: src, header: header, log: zap.NewNop().Sugar()}
	if err := options.Apply(e, opts...); err != nil {
		_ = e.Close()

		return nil, err
	}

	return e, nil
}

// Search returns the first record whose key equals keyword. When no such
// record exists, it returns (false, nil, errs.ErrNotFound) so callers can
// distinguish "ran fine, nothing found" from a real I/O/format error via
// errors.Is.
func (e *Engine) Search(keyword []byte) (bool, []byte, error) {
	slot := hash.Slot(keyword, e.header.HashmapSize)

	entry, err := e.readSlot(slot)
	if err != nil {
		return false, nil, err
	}

	for {
		switch entry.Kind() {
		case section.KindNull:
			return false, nil, errs.ErrNotFound
		case section.KindDirect:
			matched, record, err := e.src.VerifyAndRead(entry.Payload(), keyword)
			if err != nil {
				return false, nil, err
			}
			if !matched {
				return false, nil, errs.ErrNotFound
			}

			return true, record, nil
		case section.KindIndirect:
			offset, next, err := e.readPair(entry.Payload())
			if err != nil {
				return false, nil, err
			}

			matched, record, err := e.src.VerifyAndRead(offset, keyword)
			if err != nil {
				return false, nil, err
			}
			if matched {
				return true, record, nil
			}
			entry = next
		}
	}
}

// SearchAll returns every record whose key equals keyword, continuing the
// chain walk past the first match. Used by the CLI's --print-duplicates
// surface. When no record matches, it returns (nil, errs.ErrNotFound), the
// same sentinel Search uses.
func (e *Engine) SearchAll(keyword []byte) ([][]byte, error) {
	slot := hash.Slot(keyword, e.header.HashmapSize)

	entry, err := e.readSlot(slot)
	if err != nil {
		return nil, err
	}

	var results [][]byte
	done := false
	for !done {
		switch entry.Kind() {
		case section.KindNull:
			done = true
		case section.KindDirect:
			matched, record, err := e.src.VerifyAndRead(entry.Payload(), keyword)
			if err != nil {
				return nil, err
			}
			if matched {
				results = append(results, record)
			}
			done = true
		case section.KindIndirect:
			offset, next, err := e.readPair(entry.Payload())
			if err != nil {
				return nil, err
			}

			matched, record, err := e.src.VerifyAndRead(offset, keyword)
			if err != nil {
				return nil, err
			}
			if matched {
				results = append(results, record)
			}
			entry = next
		}
	}

	if len(results) == 0 {
		return nil, errs.ErrNotFound
	}

	return results, nil
}

func (e *Engine) readSlot(slot uint64) (section.IndexEntry, error) {
	buf := make([]byte, section.EntrySize)
	if err := e.r.ReadAt(uint64(e.header.Len())+slot*section.EntrySize, buf); err != nil {
		return section.IndexEntry{}, err
	}

	return section.DecodeEntry(buf)
}

// readPair reads a blocks-region (file_offset, next) pair at addr and
// returns the plain offset and the decoded next IndexEntry.
func (e *Engine) readPair(addr uint64) (uint64, section.IndexEntry, error) {
	buf := make([]byte, section.EntrySize*2)
	if err := e.r.ReadAt(addr, buf); err != nil {
		return 0, section.IndexEntry{}, err
	}

	offsetEntry, err := section.DecodeEntry(buf[:section.EntrySize])
	if err != nil {
		return 0, section.IndexEntry{}, err
	}
	next, err := section.DecodeEntry(buf[section.EntrySize:])
	if err != nil {
		return 0, section.IndexEntry{}, err
	}

	return offsetEntry.Payload(), next, nil
}

// Close releases the index reader and the underlying record source.
func (e *Engine) Close() error {
	err1 := e.r.Close()
	err2 := e.src.Close()
	if err1 != nil {
		return err1
	}
	if err2 != nil {
		return err2
	}

	return nil
}
