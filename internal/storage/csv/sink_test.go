package csv

import (
	"context"
	stdcsv "encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stanfordwho-parser/internal/scraper"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := stdcsv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSinkHeaderFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")

	sink, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.Equal(t, [][]string{{"name", "email", "affiliation", "department"}}, readAll(t, path))
}

func TestSinkFlushMakesRowsVisible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	ctx := context.Background()

	sink, err := Create(path)
	require.NoError(t, err)
	defer sink.Close()

	rec := &scraper.PersonRecord{Name: "Jane Doe", Email: "jane@stanford.edu", Affiliation: "Student - Foo", Department: "Dept of X"}
	require.NoError(t, sink.Write(ctx, 1, rec))
	require.NoError(t, sink.Flush(ctx))

	rows := readAll(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Jane Doe", "jane@stanford.edu", "Student - Foo", "Dept of X"}, rows[1])
	assert.Equal(t, 1, sink.Rows())
}

func TestCreateFailsOnDirectoryPath(t *testing.T) {
	_, err := Create(t.TempDir())
	assert.Error(t, err)
}
