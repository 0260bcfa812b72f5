package tariff

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func toCSV(rows [][]string) []byte {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Join(r, ";"))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func TestParseCSVWindows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("1;МОСКВА;ТП;МОСК;;181102\n")
	require.NoError(t, err)

	rows, err := ParseCSV([]byte(encoded))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "МОСКВА", rows[0][1])
	assert.Equal(t, "181102", rows[0][5])
}

func TestParseCSVCommaAndBOM(t *testing.T) {
	rows, err := ParseCSV([]byte("\xef\xbb\xbfa,b,c\n1,2\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"1", "2"}, rows[1])
}

func TestMatrixName(t *testing.T) {
	assert.Equal(t, "1 Рос", MatrixName("/data/3-1 Рос.csv"))
	assert.Equal(t, "2 СНГ", MatrixName("3-2 СНГ.xlsx"))
	assert.Equal(t, "other", MatrixName("other.csv"))
}

func TestFileSourceMissingDirectory(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent"))
	_, err := src.Stations(context.Background())
	assert.ErrorIs(t, err, ErrSourceMissing)
	_, err = Load(context.Background(), src)
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestFileSourceMissingMatrices(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Книга 2-РП.csv", toCSV([][]string{{"1", "МОСКВА", "ТП", "МОСК", "", "181102"}}))
	writeFile(t, dir, "3-Вводные положения.csv", toCSV([][]string{{"текст"}}))

	src := NewFileSource(dir)
	stations, err := src.Stations(context.Background())
	require.NoError(t, err)
	assert.Len(t, stations, 1)

	_, err = src.Matrices(context.Background())
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestFileSourceUnreadableMatrix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Книга 2-РП.csv", toCSV([][]string{{"1", "МОСКВА", "ТП", "МОСК", "", "181102"}}))
	writeFile(t, dir, "3-1 Рос.csv", toCSV([][]string{{"просто", "текст"}}))

	_, err := Load(context.Background(), NewFileSource(dir))
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestFileSourceLoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Книга 2-РП.csv", toCSV([][]string{
		{"№", "Наименование", "Операции", "Дорога", "ТП", "Код"},
		{"1", "УГЛОВАЯ", "П", "ДВОС", "984700 ХАБАРОВСК - 0км", "984700"},
		{"2", "МОСКВА", "ТП", "МОСК", "181102 МОСКВА-СОРТИРОВОЧНАЯ - 5км", "181102"},
	}))
	writeFile(t, dir, "3-1 Рос.csv", toCSV(matrixFixture()))
	writeFile(t, dir, "1-1 Участки.csv", toCSV([][]string{{"1", "111110", "А"}}))

	src := NewFileSource(dir)
	reg, err := Load(context.Background(), src)
	require.NoError(t, err)

	st := reg.Stats()
	assert.Equal(t, 2, st.Stations)
	assert.Equal(t, 1, st.Matrices)
	assert.Positive(t, st.MatrixEntries)

	km, matrix, ok := reg.MatrixDistance("ХАБАРОВСК", "МОСКВА-СОРТИРОВОЧНАЯ")
	require.True(t, ok)
	assert.Equal(t, 9000, km)
	assert.Equal(t, "1 Рос", matrix)

	tables, err := src.SectionTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "1-1 Участки.csv", tables[0].Name)
}
