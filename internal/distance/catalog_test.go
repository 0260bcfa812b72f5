package distance

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rail_distance/internal/tariff"
)

func writeTable(t *testing.T, dir, name string, rows [][]string) {
	t.Helper()
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Join(r, ";"))
		b.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644))
}

func TestCatalogReloadFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "Книга 2-РП.csv", [][]string{
		{"1", "A", "ТП", "X", "100000 A - 0км", "100000"},
		{"2", "C", "ТП", "X", "300000 C - 0км", "300000"},
	})
	writeTable(t, dir, "3-1 Тест.csv", [][]string{
		{"", "Конечный пункт маршрута", "", ""},
		{"", "", "A", "C"},
		{"№ п/п", "Начальный пункт", "1", "2"},
		{"1", "A", "", "42"},
		{"2", "C", "", ""},
	})
	writeTable(t, dir, "1-1 Участки.csv", [][]string{
		{"1", "100000", "A"},
		{"2", "200000", "B"},
		{"3", "300000", "C"},
	})

	ctx := context.Background()
	src := tariff.NewFileSource(dir)
	c := NewCatalog(nil, nil)

	st, err := c.ReloadTariffs(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Stations)
	require.NotNil(t, c.Registry())

	gs, err := c.RebuildGraph(ctx, FileChains{Source: src})
	require.NoError(t, err)
	assert.Equal(t, GraphStats{Nodes: 3, Edges: 2}, gs)

	res := NewService(c, nil).Resolve(ctx, "A", "C")
	require.True(t, res.Resolved())
	assert.Equal(t, 42, res.KM)
}

func TestCatalogReloadKeepsPreviousOnError(t *testing.T) {
	prev := tariff.NewRegistry([]tariff.StationRecord{{Name: "A", Code: "100000"}}, nil)
	c := NewCatalog(prev, nil)

	_, err := c.ReloadTariffs(context.Background(), tariff.NewFileSource(filepath.Join(t.TempDir(), "absent")))
	assert.ErrorIs(t, err, tariff.ErrSourceMissing)
	assert.Same(t, prev, c.Registry())
}
