// Package builder implements the slab-partitioned, bounded-memory index
// builder: it partitions the hash space into slabs that fit in memory,
// streaming the Record Source once per slab, and finalizes a complete
// on-disk index only after every slab has been flushed.
package builder

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Marco-Masera/FastSeek/endian"
	"github.com/Marco-Masera/FastSeek/internal/errs"
	"github.com/Marco-Masera/FastSeek/internal/hash"
	"github.com/Marco-Masera/FastSeek/internal/ioutil"
	"github.com/Marco-Masera/FastSeek/internal/options"
	"github.com/Marco-Masera/FastSeek/internal/pool"
	"github.com/Marco-Masera/FastSeek/internal/section"
	"github.com/Marco-Masera/FastSeek/internal/source"
)

// DefaultBlockBufferSize matches the Rust original's staging buffer for
// blocks-region pairs (1024*50*8 bytes, ~400KiB).
const DefaultBlockBufferSize = 1024 * 50 * 8

// Option configures a Builder at construction time.
type Option = options.Option[*Builder]

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return options.NoError(func(b *Builder) { b.log = log })
}

// WithBlockBufferSize overrides the default blocks-region staging buffer
// size, in bytes.
func WithBlockBufferSize(n int) Option {
	return options.New(func(b *Builder) error {
		if n <= 0 {
			return fmt.Errorf("block buffer size must be positive, got %d", n)
		}
		b.blockBufferSize = n

		return nil
	})
}

// Builder writes a complete FastSeek index file for a Record Source.
type Builder struct {
	src             source.Source
	finalPath       string
	hashmapSize     uint64
	inMemoryMapSize uint64
	blockBufferSize int
	log             *zap.SugaredLogger
}

// New constructs a Builder. If hashmapSize is 0, it is derived from
// src.Count(). inMemoryMapSize is clamped to hashmapSize.
func New(src source.Source, filename string, hashmapSize, inMemoryMapSize uint64, opts ...Option) (*Builder, error) {
	b := &Builder{
		src:             src,
		finalPath:       filename + ".index",
		hashmapSize:     hashmapSize,
		inMemoryMapSize: inMemoryMapSize,
		blockBufferSize: DefaultBlockBufferSize,
		log:             zap.NewNop().Sugar(),
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	if b.hashmapSize == 0 {
		count, err := src.Count()
		if err != nil {
			return nil, err
		}
		b.hashmapSize = count
	}
	if b.hashmapSize == 0 {
		b.hashmapSize = 1
	}
	if b.inMemoryMapSize == 0 || b.inMemoryMapSize > b.hashmapSize {
		b.inMemoryMapSize = b.hashmapSize
	}

	return b, nil
}

// Build writes the index to "<filename>.index", via a temporary file
// renamed into place on success so a crashed build never leaves a
// half-written file at the final name (spec.md §7).
func (b *Builder) Build() error {
	tmpPath := b.finalPath + ".tmp"

	indexType, separator, column := b.src.HeaderFields()
	header := section.NewHeader(b.hashmapSize, indexType, separator, column)

	w, err := ioutil.CreateIndexWriter(tmpPath)
	if err != nil {
		return err
	}
	if err := b.run(w, header); err != nil {
		_ = w.Close()
		_ = os.Remove(tmpPath)

		return err
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return err
	}

	if err := os.Rename(tmpPath, b.finalPath); err != nil {
		return fmt.Errorf("%w: rename %s to %s: %v", errs.ErrSourceOpen, tmpPath, b.finalPath, err)
	}
	b.log.Infow("built index", "path", b.finalPath, "hashmap_size", b.hashmapSize)

	return nil
}

func (b *Builder) run(w *ioutil.IndexWriter, header section.Header) error {
	if err := w.WriteAt(0, header.Encode()); err != nil {
		return err
	}

	blocksStart := uint64(header.Len()) + b.hashmapSize*section.EntrySize
	blockPool := pool.NewByteBufferPool(b.blockBufferSize, 0)
	blockBuf := blockPool.Get()
	defer blockPool.Put(blockBuf)

	st := &slabState{
		w:           w,
		headerLen:   uint64(header.Len()),
		blockBuf:    blockBuf,
		blockCursor: blocksStart,
	}

	marginLo := uint64(0)
	sPrime := min(b.inMemoryMapSize, b.hashmapSize)

	for {
		marginHi := min(marginLo+sPrime, b.hashmapSize)

		if err := b.processSlab(st, marginLo, marginHi); err != nil {
			return err
		}
		b.log.Debugw("slab flushed", "margin_lo", marginLo, "margin_hi", marginHi)

		if marginHi >= b.hashmapSize {
			return nil
		}
		marginLo = marginHi
		if err := b.src.Reset(); err != nil {
			return err
		}
	}
}

// slabState carries the blocks-region write cursor across slab flushes.
// The cursor is tracked explicitly rather than read back from the
// underlying file, because flushing a slab's hashmap slots seeks the
// file handle away from the blocks region and back (spec.md §4.5, §9).
type slabState struct {
	w           *ioutil.IndexWriter
	headerLen   uint64
	blockBuf    *pool.ByteBuffer
	blockCursor uint64 // file offset of the first unflushed byte in blockBuf
}

// blockFirstFree is the file offset that would be assigned to the next
// 16-byte pair appended to the blocks region.
func (st *slabState) blockFirstFree() uint64 {
	return st.blockCursor + uint64(st.blockBuf.Len())
}

func (b *Builder) processSlab(st *slabState, marginLo, marginHi uint64) error {
	slab := make([]section.IndexEntry, marginHi-marginLo)
	for i := range slab {
		slab[i] = section.Null()
	}

	for {
		offset, key, err := b.src.NextRecord()
		if err != nil {
			return err
		}
		if offset == source.EOFOffset {
			break
		}

		h := hash.Slot(key, b.hashmapSize)
		if h < marginLo || h >= marginHi {
			continue
		}

		if err := appendEntry(slab, st, h-marginLo, offset); err != nil {
			return err
		}
		if st.blockBuf.Len() >= b.blockBufferSize {
			if err := b.flushBlocks(st); err != nil {
				return err
			}
		}
	}

	if err := b.flushSlab(st, slab, marginLo); err != nil {
		return err
	}

	return b.flushBlocks(st)
}

// appendEntry implements the chain-append rule (spec.md §4.5): a slot's
// chain is a LIFO linked list realized as a slot plus zero or more
// 16-byte (file_offset, next) pairs in the blocks region. A NULL slot
// becomes Direct; any non-NULL slot is demoted into a freshly appended
// pair, and the slot becomes Indirect, pointing at that pair.
func appendEntry(slab []section.IndexEntry, st *slabState, i, offset uint64) error {
	current := slab[i]
	if current.Kind() == section.KindNull {
		direct, err := section.NewDirect(offset)
		if err != nil {
			return err
		}
		slab[i] = direct

		return nil
	}

	pairAddr := st.blockFirstFree()

	var offsetBytes [section.EntrySize]byte
	endian.GetBigEndianEngine().PutUint64(offsetBytes[:], offset)
	currentBytes := current.Bytes()
	st.blockBuf.Write(offsetBytes[:])
	st.blockBuf.Write(currentBytes[:])

	indirect, err := section.NewIndirect(pairAddr)
	if err != nil {
		return err
	}
	slab[i] = indirect

	return nil
}

func (b *Builder) flushSlab(st *slabState, slab []section.IndexEntry, marginLo uint64) error {
	buf := make([]byte, 0, len(slab)*section.EntrySize)
	var tmp [section.EntrySize]byte
	for _, e := range slab {
		e.PutBytes(tmp[:])
		buf = append(buf, tmp[:]...)
	}

	return st.w.WriteAt(st.headerLen+marginLo*section.EntrySize, buf)
}

func (b *Builder) flushBlocks(st *slabState) error {
	if st.blockBuf.Len() == 0 {
		return nil
	}

	data := st.blockBuf.Bytes()
	if err := st.w.WriteAt(st.blockCursor, data); err != nil {
		return err
	}
	st.blockCursor += uint64(len(data))
	st.blockBuf.Reset()

	return nil
}
