package main

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/require"
)

// runApp drives newApp() through a single Run call and captures whatever
// the command wrote to os.Stdout, since search's output goes straight to
// fmt.Print rather than through a cli.App writer.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	origStdout := os.Stdout
	os.Stdout = w

	outCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outCh <- buf.String()
	}()

	runErr := newApp().Run(append([]string{"fastseek"}, args...))

	os.Stdout = origStdout
	_ = w.Close()
	out := <-outCh
	_ = r.Close()

	return out, runErr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func tabularContent(n int) string {
	var buf bytes.Buffer
	for i := range n {
		fmt.Fprintf(&buf, "1,prova%d,0,0,0,eruheigrnei,Lprova%d\n", i, i)
	}

	return buf.String()
}

func fastaContent(n int) string {
	var buf bytes.Buffer
	for i := range n {
		fmt.Fprintf(&buf, ">seq%d\nACGT%dTTAA\n", i, i)
	}

	return buf.String()
}

func fastqContent(n int) string {
	var buf bytes.Buffer
	for i := range n {
		fmt.Fprintf(&buf, "@read%d\nACGT%dTTAA\n+\nIIIIIIIIII\n", i, i)
	}

	return buf.String()
}

// TestIndexTabularAndSearch_TightMemory covers the "tabular tight-memory"
// scenario: a small in-memory-map-size forces multiple slabs, and every
// record must still be found after the build.
func TestIndexTabularAndSearch_TightMemory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "records.csv", tabularContent(300))

	_, err := runApp(t, "index-tabular", "-c", "1", "--hashmap-size", "40", "--in-memory-map-size", "7", path)
	require.NoError(t, err)
	require.FileExists(t, path+".index")

	for _, i := range []int{0, 1, 42, 150, 299} {
		out, err := runApp(t, "search", path, "prova"+strconv.Itoa(i))
		require.NoError(t, err)
		require.Contains(t, out, "prova"+strconv.Itoa(i))
	}

	out, err := runApp(t, "search", path, "does-not-exist")
	require.NoError(t, err)
	require.Contains(t, out, "not found")
}

// TestIndexTabularAndSearch_AlternateColumn covers keying on a column
// other than 1, with hashmap-size derived from the record count.
func TestIndexTabularAndSearch_AlternateColumn(t *testing.T) {
	dir := t.TempDir()

	var content bytes.Buffer
	for i := range 50 {
		fmt.Fprintf(&content, "row%d,mid%d,tail%d\n", i, i, i)
	}
	path := writeFile(t, dir, "alt.csv", content.String())

	_, err := runApp(t, "index-tabular", "-c", "2", path)
	require.NoError(t, err)

	out, err := runApp(t, "search", path, "tail17")
	require.NoError(t, err)
	require.Contains(t, out, "row17")

	out, err = runApp(t, "search", path, "tail999")
	require.NoError(t, err)
	require.Contains(t, out, "not found")
}

// TestIndexTabularAndSearch_BGZF covers a BGZF-compressed tabular source,
// built and queried through the real CLI build→search round trip.
func TestIndexTabularAndSearch_BGZF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.csv.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := bgzf.NewWriter(f, gzip.DefaultCompression)
	_, err = w.Write([]byte(tabularContent(120)))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	_, err = runApp(t, "index-tabular", "-c", "1", "--hashmap-size", "20", "--in-memory-map-size", "5", path)
	require.NoError(t, err)
	require.FileExists(t, path+".index")

	out, err := runApp(t, "search", path, "prova99")
	require.NoError(t, err)
	require.Contains(t, out, "prova99")

	out, err = runApp(t, "search", path, "prova5")
	require.NoError(t, err)
	require.Contains(t, out, "prova5")
}

// TestIndexFASTA_ByID covers the FASTA-by-header-line scenario; the key
// must include the leading '>'.
func TestIndexFASTA_ByID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seqs.fasta", fastaContent(60))

	_, err := runApp(t, "index-fasta", path)
	require.NoError(t, err)

	out, err := runApp(t, "search", path, ">seq42")
	require.NoError(t, err)
	require.Contains(t, out, ">seq42")
	require.Contains(t, out, "ACGT42TTAA")

	out, err = runApp(t, "search", path, ">seq999")
	require.NoError(t, err)
	require.Contains(t, out, "not found")
}

// TestIndexFASTA_BySequence covers keying on the sequence line instead.
func TestIndexFASTA_BySequence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "seqs.fasta", fastaContent(60))

	_, err := runApp(t, "index-fasta", "--by-sequence", path)
	require.NoError(t, err)

	out, err := runApp(t, "search", path, "ACGT7TTAA")
	require.NoError(t, err)
	require.Contains(t, out, ">seq7")
}

// TestIndexFASTQ_ByID covers the FASTQ-by-id-line scenario.
func TestIndexFASTQ_ByID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reads.fastq", fastqContent(60))

	_, err := runApp(t, "index-fastq", path)
	require.NoError(t, err)

	out, err := runApp(t, "search", path, "@read13")
	require.NoError(t, err)
	require.Contains(t, out, "@read13")
	require.Contains(t, out, "ACGT13TTAA")

	out, err = runApp(t, "search", path, "@read999")
	require.NoError(t, err)
	require.Contains(t, out, "not found")
}

// TestIndexFASTQ_BySequence covers keying on the sequence line instead.
func TestIndexFASTQ_BySequence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reads.fastq", fastqContent(60))

	_, err := runApp(t, "index-fastq", "--by-sequence", path)
	require.NoError(t, err)

	out, err := runApp(t, "search", path, "ACGT29TTAA")
	require.NoError(t, err)
	require.Contains(t, out, "@read29")
}

// TestSearch_HashCollisionStress_N1 forces every record into a single
// hashmap slot, exercising the full Indirect chain-walk on every lookup.
func TestSearch_HashCollisionStress_N1(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "collide.csv", tabularContent(40))

	_, err := runApp(t, "index-tabular", "-c", "1", "--hashmap-size", "1", path)
	require.NoError(t, err)

	for _, i := range []int{0, 13, 39} {
		out, err := runApp(t, "search", path, "prova"+strconv.Itoa(i))
		require.NoError(t, err)
		require.Contains(t, out, "prova"+strconv.Itoa(i))
	}

	out, err := runApp(t, "search", path, "nope")
	require.NoError(t, err)
	require.Contains(t, out, "not found")
}

// TestSearch_PrintDuplicates covers the --print-duplicates surface over a
// key shared by multiple records in the same collision chain.
func TestSearch_PrintDuplicates(t *testing.T) {
	dir := t.TempDir()

	var content bytes.Buffer
	for i := range 20 {
		fmt.Fprintf(&content, "1,same,0,0,0,eruheigrnei,L%d\n", i)
	}
	fmt.Fprintf(&content, "1,other,0,0,0,eruheigrnei,Lother\n")
	path := writeFile(t, dir, "dups.csv", content.String())

	_, err := runApp(t, "index-tabular", "-c", "1", "--hashmap-size", "3", path)
	require.NoError(t, err)

	out, err := runApp(t, "search", "--print-duplicates", path, "same")
	require.NoError(t, err)
	require.Equal(t, 20, strings.Count(out, "eruheigrnei"), "expected exactly 20 duplicate records")
	require.NotContains(t, out, "Lother")
}
