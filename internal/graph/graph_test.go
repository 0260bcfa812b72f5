package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(path []Node) []string {
	out := make([]string, len(path))
	for i, n := range path {
		out[i] = n.Name
	}
	return out
}

func TestParseSectionRows(t *testing.T) {
	rows := [][]string{
		{"Книга 1"},
		{"1", "111110", "A"},
		{"2", "222220", "B"},
		{"", "Участок: B - C", ""},
		{"3", "22222", "B"},
		{"4", "333330", "C"},
		{"5", "444440", "D"},
		{"", "", ""},
		{"6", "555550", "E"},
		{"итого"},
	}
	chains := ParseSectionRows(rows)
	require.Len(t, chains, 2)
	assert.Equal(t, []string{"A", "B"}, names(chains[0]))
	assert.Equal(t, []string{"B", "C", "D"}, names(chains[1]))
	assert.Equal(t, "22222", chains[1][0].Code)
}

func TestShortestPathThroughChains(t *testing.T) {
	g := Build([][]Node{
		{{Code: "100000", Name: "A"}, {Code: "200000", Name: "B"}},
		{{Code: "200000", Name: "B"}, {Code: "300000", Name: "C"}},
	})
	assert.Equal(t, 3, g.Nodes())
	assert.Equal(t, 2, g.Edges())

	path := g.ShortestPath("100000", "300000")
	assert.Equal(t, []string{"A", "B", "C"}, names(path))

	// undirected
	path = g.ShortestPath("300000", "100000")
	assert.Equal(t, []string{"C", "B", "A"}, names(path))
}

func TestShortestPathPrefersFewestHops(t *testing.T) {
	g := Build([][]Node{
		{{Code: "1", Name: "A"}, {Code: "2", Name: "B"}, {Code: "3", Name: "C"}, {Code: "4", Name: "D"}},
		{{Code: "1", Name: "A"}, {Code: "5", Name: "E"}, {Code: "4", Name: "D"}},
	})
	path := g.ShortestPath("1", "4")
	assert.Equal(t, []string{"A", "E", "D"}, names(path))
}

func TestShortestPathTruncatedCodes(t *testing.T) {
	g := Build([][]Node{
		{{Code: "10000", Name: "A"}, {Code: "20000", Name: "B"}, {Code: "30000", Name: "C"}},
	})
	path := g.ShortestPath("100007", "300001")
	assert.Equal(t, []string{"A", "B", "C"}, names(path))
	assert.Equal(t, "10000", path[0].Code)
}

func TestShortestPathMissing(t *testing.T) {
	g := Build([][]Node{
		{{Code: "1", Name: "A"}, {Code: "2", Name: "B"}},
		{{Code: "3", Name: "C"}, {Code: "4", Name: "D"}},
	})
	assert.Empty(t, g.ShortestPath("1", "4"))
	assert.Empty(t, g.ShortestPath("1", "9"))

	path := g.ShortestPath("1", "1")
	assert.Equal(t, []string{"A"}, names(path))

	var empty *Graph
	assert.Empty(t, empty.ShortestPath("1", "2"))
}
