package lookup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Marco-Masera/FastSeek/internal/builder"
	"github.com/Marco-Masera/FastSeek/internal/errs"
	"github.com/Marco-Masera/FastSeek/internal/section"
	"github.com/Marco-Masera/FastSeek/internal/source"
)

func buildTabularIndex(t *testing.T, n int, hashmapSize, inMemoryMapSize uint64) (indexPath, recordPath string) {
	t.Helper()
	dir := t.TempDir()
	recordPath = filepath.Join(dir, "records.csv")

	var content string
	for i := 0; i < n; i++ {
		content += fmt.Sprintf("1,prova%d,0,0,0,eruheigrnei,Lprova%d\n", i, i)
	}
	require.NoError(t, os.WriteFile(recordPath, []byte(content), 0o644))

	src, err := source.Open(recordPath, section.IndexTabular, ',', 1)
	require.NoError(t, err)
	defer src.Close()

	b, err := builder.New(src, recordPath, hashmapSize, inMemoryMapSize)
	require.NoError(t, err)
	require.NoError(t, b.Build())

	return recordPath + ".index", recordPath
}

func TestEngineSearch(t *testing.T) {
	indexPath, recordPath := buildTabularIndex(t, 100, 0, 0)

	eng, err := Open(indexPath, recordPath)
	require.NoError(t, err)
	defer eng.Close()

	matched, record, err := eng.Search([]byte("prova42"))
	require.NoError(t, err)
	require.True(t, matched)
	require.Contains(t, string(record), "prova42")

	matched, _, err = eng.Search([]byte("nope"))
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.False(t, matched)
}

func TestEngineSearchAllWithDuplicates(t *testing.T) {
	dir := t.TempDir()
	recordPath := filepath.Join(dir, "dups.csv")
	content := "1,same,a\n1,same,b\n1,other,c\n1,same,d\n"
	require.NoError(t, os.WriteFile(recordPath, []byte(content), 0o644))

	src, err := source.Open(recordPath, section.IndexTabular, ',', 1)
	require.NoError(t, err)
	defer src.Close()

	b, err := builder.New(src, recordPath, 3, 0)
	require.NoError(t, err)
	require.NoError(t, b.Build())

	eng, err := Open(recordPath+".index", recordPath)
	require.NoError(t, err)
	defer eng.Close()

	results, err := eng.SearchAll([]byte("same"))
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.Contains(t, string(r), "same")
	}

	results, err = eng.SearchAll([]byte("nope"))
	require.True(t, errors.Is(err, errs.ErrNotFound))
	require.Nil(t, results)
}

func TestEngineSearchSingleSlotCollisionChain(t *testing.T) {
	indexPath, recordPath := buildTabularIndex(t, 30, 1, 0)

	eng, err := Open(indexPath, recordPath)
	require.NoError(t, err)
	defer eng.Close()

	for i := 0; i < 30; i++ {
		key := []byte(fmt.Sprintf("prova%d", i))
		matched, _, err := eng.Search(key)
		require.NoError(t, err)
		require.True(t, matched)
	}
}
