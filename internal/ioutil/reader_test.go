package ioutil

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	for _, l := range lines {
		_, err := f.WriteString(l + "\n")
		require.NoError(t, err)
	}
}

func TestPlainLineReaderReadsOffsetsAndLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.csv")
	writeLines(t, path, []string{"1,prova0,x", "1,prova1,y", "1,prova2,z"})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var offsets []uint64
	var lines []string
	for {
		off, line, err := r.ReadLine()
		require.NoError(t, err)
		if off == EOFOffset {
			break
		}
		offsets = append(offsets, off)
		lines = append(lines, string(line))
	}

	require.Equal(t, []string{"1,prova0,x", "1,prova1,y", "1,prova2,z"}, lines)
	require.Equal(t, []uint64{0, 11, 22}, offsets)
}

func TestPlainLineReaderSeekAndReset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.csv")
	writeLines(t, path, []string{"aaaa", "bbbb", "cccc"})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Seek(5))
	_, line, err := r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "bbbb", string(line))

	require.NoError(t, r.Reset())
	_, line, err = r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "aaaa", string(line))
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.csv")
	writeLines(t, path, []string{"a", "b", "c", "d"})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	n, err := CountLines(r)
	require.NoError(t, err)
	require.Equal(t, uint64(4), n)

	// Reset by CountLines, so the first line is still readable.
	_, line, err := r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "a", string(line))
}

func TestBGZFLineReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.csv.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := bgzf.NewWriter(f, gzip.DefaultCompression)
	for i := range 100 {
		_, err := w.Write([]byte("1,prova" + strconv.Itoa(i) + ",x\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	var offsets []uint64
	count := 0
	for {
		off, line, err := r.ReadLine()
		require.NoError(t, err)
		if off == EOFOffset {
			break
		}
		offsets = append(offsets, off)
		require.Contains(t, string(line), "prova"+strconv.Itoa(count))
		count++
	}
	require.Equal(t, 100, count)

	// Seeking back to an earlier virtual offset must read the same bytes.
	require.NoError(t, r.Seek(offsets[42]))
	_, line, err := r.ReadLine()
	require.NoError(t, err)
	require.Contains(t, string(line), "prova42")
}

